package ocr

import "errors"

// ErrNoAmount is returned when no currency-like numeral is present in the text.
var ErrNoAmount = errors.New("no amount detected")

// ErrNoDate is returned when no date-like token parses under any known layout.
var ErrNoDate = errors.New("no date detected")

// ErrShortMICR is returned when the MICR text holds fewer digits than the
// bank code and check number need.
var ErrShortMICR = errors.New("micr line too short")
