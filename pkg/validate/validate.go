// Package validate applies the field-level acceptance rules to a parsed check.
// It never changes the parsed values; a failing rule only marks the record as
// unacceptable.
package validate

import (
	"fmt"
	"regexp"
	"time"

	"checkparser/pkg/checkparser"
)

// Rule enumerates the validators. They always run in declaration order.
type Rule int

const (
	RuleDate Rule = iota
	RuleAmount
	RuleMICR
	RuleSignature
)

// Rules lists every rule in evaluation order.
var Rules = []Rule{RuleDate, RuleAmount, RuleMICR, RuleSignature}

func (r Rule) String() string {
	switch r {
	case RuleDate:
		return "date"
	case RuleAmount:
		return "amount"
	case RuleMICR:
		return "micr"
	case RuleSignature:
		return "signature"
	}
	return "unknown"
}

// MarshalText lets rules serialize by name.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rule) UnmarshalText(b []byte) error {
	for _, rule := range Rules {
		if rule.String() == string(b) {
			*r = rule
			return nil
		}
	}
	return fmt.Errorf("unknown validation rule %q", b)
}

// Limits bound the date and amount rules.
type Limits struct {
	MaxCheckAgeDays int     `yaml:"max_check_age_days"`
	MaxAmount       float64 `yaml:"max_amount"`
}

// DefaultLimits accepts checks up to 180 days old and up to 10,000,000.
var DefaultLimits = Limits{MaxCheckAgeDays: 180, MaxAmount: 10_000_000}

// Outcome is the verdict of one rule.
type Outcome struct {
	Rule   Rule   `json:"rule"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// Report collects every outcome; Valid is true only when all passed.
type Report struct {
	Valid    bool      `json:"valid"`
	Outcomes []Outcome `json:"outcomes"`
}

// Errors returns the reasons of failed rules.
func (r Report) Errors() []string {
	var out []string
	for _, o := range r.Outcomes {
		if !o.Passed {
			out = append(out, o.Reason)
		}
	}
	return out
}

var micrRE = regexp.MustCompile(`^\d{9,}$`)

// Check runs every rule against f. now is the reference time for the date
// rule.
func Check(f checkparser.Fields, now time.Time, lim Limits) Report {
	rep := Report{Valid: true, Outcomes: make([]Outcome, 0, len(Rules))}
	for _, r := range Rules {
		o := r.apply(f, now, lim)
		if !o.Passed {
			rep.Valid = false
		}
		rep.Outcomes = append(rep.Outcomes, o)
	}
	return rep
}

func (r Rule) apply(f checkparser.Fields, now time.Time, lim Limits) Outcome {
	switch r {
	case RuleDate:
		return checkDate(f.Date, now, lim.MaxCheckAgeDays)
	case RuleAmount:
		return checkAmount(f.Amount, lim.MaxAmount)
	case RuleMICR:
		return checkMICR(f.BankCode + f.AccountNumber + f.CheckNumber)
	case RuleSignature:
		return checkSignature(f.SignatureVerified)
	}
	return Outcome{Rule: r, Reason: "unknown rule"}
}

func checkDate(d *time.Time, now time.Time, maxAgeDays int) Outcome {
	o := Outcome{Rule: RuleDate}
	if d == nil {
		o.Reason = "date is missing"
		return o
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(today) {
		o.Reason = "post-dated check"
		return o
	}
	if today.Sub(day) > time.Duration(maxAgeDays)*24*time.Hour {
		o.Reason = "check too old"
		return o
	}
	o.Passed = true
	return o
}

func checkAmount(amount, max float64) Outcome {
	o := Outcome{Rule: RuleAmount}
	switch {
	case amount <= 0:
		o.Reason = "amount is missing or not positive"
	case amount > max:
		o.Reason = "amount exceeds maximum"
	default:
		o.Passed = true
	}
	return o
}

func checkMICR(code string) Outcome {
	o := Outcome{Rule: RuleMICR}
	if !micrRE.MatchString(code) {
		o.Reason = "invalid MICR code"
		return o
	}
	o.Passed = true
	return o
}

func checkSignature(verified bool) Outcome {
	o := Outcome{Rule: RuleSignature}
	if !verified {
		o.Reason = "signature not verified"
		return o
	}
	o.Passed = true
	return o
}
