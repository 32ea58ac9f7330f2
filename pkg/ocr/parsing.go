package ocr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	amountRE = regexp.MustCompile(`\$?\d{1,3}(?:,\d{3})*(?:\.\d{2})?`)
	dateRE   = regexp.MustCompile(`(\d{1,2})([-/])(\d{1,2})([-/])(\d{2,4})`)
)

// ParseAmountFromMatch normalizes a matched amount such as "$1,234.56" into a
// decimal value by dropping the currency sign and thousands separators.
func ParseAmountFromMatch(found string) (float64, error) {
	s := strings.TrimSpace(found)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount %q", found)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", found, err)
	}
	if v < 0 {
		v = -v
	}
	return v, nil
}

// ParseAmount takes the first currency-like numeral in text. When nothing
// matches the field is 0 and not extracted.
func ParseAmount(text string) Field[float64] {
	v, err := parseAmount(text)
	if err != nil {
		return Missing[float64]()
	}
	return Found(v)
}

func parseAmount(text string) (float64, error) {
	m := amountRE.FindString(text)
	if m == "" {
		return 0, ErrNoAmount
	}
	return ParseAmountFromMatch(m)
}

// dateLayout describes one accepted numeric date order.
type dateLayout struct {
	sep      string
	dayFirst bool
	fullYear bool
}

func (l dateLayout) String() string {
	a, b := "M", "D"
	if l.dayFirst {
		a, b = "D", "M"
	}
	y := "y"
	if l.fullYear {
		y = "Y"
	}
	return a + l.sep + b + l.sep + y
}

// dateLayouts is tried in order; month-first wins ambiguous dates.
var dateLayouts = []dateLayout{
	{"/", false, true},
	{"-", false, true},
	{"/", true, true},
	{"-", true, true},
	{"/", false, false},
	{"-", false, false},
	{"/", true, false},
	{"-", true, false},
}

// ParseDate parses the first date-like token of text against the known
// layouts. The result is a UTC calendar date.
func ParseDate(text string) Field[time.Time] {
	t, err := parseDate(text)
	if err != nil {
		return Missing[time.Time]()
	}
	return Found(t)
}

func parseDate(text string) (time.Time, error) {
	m := dateRE.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, ErrNoDate
	}
	for _, l := range dateLayouts {
		if t, ok := l.parse(m[1], m[2], m[3], m[4], m[5]); ok {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q matches no layout", ErrNoDate, m[0])
}

func (l dateLayout) parse(first, sep1, second, sep2, year string) (time.Time, bool) {
	if sep1 != l.sep || sep2 != l.sep {
		return time.Time{}, false
	}
	if l.fullYear && len(year) != 4 || !l.fullYear && len(year) != 2 {
		return time.Time{}, false
	}
	month, day := first, second
	if l.dayFirst {
		month, day = second, first
	}
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	y, _ := strconv.Atoi(year)
	if !l.fullYear {
		// POSIX pivot: 69-99 are 1900s, 00-68 are 2000s
		if y >= 69 {
			y += 1900
		} else {
			y += 2000
		}
	}
	if mo < 1 || mo > 12 || d < 1 || y < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo {
		return time.Time{}, false
	}
	return t, true
}

// MICR holds the positional split of a MICR line.
type MICR struct {
	BankCode      string
	AccountNumber string
	CheckNumber   string
}

// ParseMICR strips everything but digits and splits the rest into a 3-digit
// bank code, a trailing 4-digit check number and the account number between
// them. Fewer than 9 digits leaves all three empty.
func ParseMICR(text string) Field[MICR] {
	m, err := splitMICR(onlyDigits(text))
	if err != nil {
		return Missing[MICR]()
	}
	return Found(m)
}

func splitMICR(digits string) (MICR, error) {
	if len(digits) < 9 {
		return MICR{}, fmt.Errorf("%w: %d digits", ErrShortMICR, len(digits))
	}
	return MICR{
		BankCode:      digits[:3],
		AccountNumber: digits[3 : len(digits)-4],
		CheckNumber:   digits[len(digits)-4:],
	}, nil
}
