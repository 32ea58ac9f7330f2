package checkparser

import (
	"time"

	"checkparser/pkg/fraud"
	"checkparser/pkg/imgproc"
	"checkparser/pkg/ocr"
)

// Result is the typed outcome of parsing one check. Each field records whether
// it was read from the image or defaulted.
type Result struct {
	Amount    ocr.Field[float64]
	Date      ocr.Field[time.Time]
	MICR      ocr.Field[ocr.MICR]
	Fraud     fraud.FraudScore
	Signature fraud.SignatureScore
	// RawText is the unparsed recognizer output per region.
	RawText map[imgproc.Region]string
}

// Fields is the flat record handed to persistence and API clients. Empty
// strings and zero values mean "not extracted", see Result.Extraction.
type Fields struct {
	Amount              float64    `json:"amount_numeric"`
	Date                *time.Time `json:"date"`
	BankCode            string     `json:"bank_code"`
	AccountNumber       string     `json:"account_number"`
	CheckNumber         string     `json:"check_number"`
	FraudDetected       bool       `json:"fraud_detected"`
	FraudConfidence     float64    `json:"fraud_confidence"`
	SignatureConfidence float64    `json:"signature_confidence"`
	SignatureVerified   bool       `json:"signature_verified"`
}

// Fields flattens the result.
func (r *Result) Fields() Fields {
	f := Fields{
		Amount:              r.Amount.Value,
		BankCode:            r.MICR.Value.BankCode,
		AccountNumber:       r.MICR.Value.AccountNumber,
		CheckNumber:         r.MICR.Value.CheckNumber,
		FraudDetected:       r.Fraud.Detected,
		FraudConfidence:     r.Fraud.Confidence,
		SignatureConfidence: r.Signature.Confidence,
		SignatureVerified:   r.Signature.Verified(),
	}
	if r.Date.Extracted {
		d := r.Date.Value
		f.Date = &d
	}
	return f
}

// Extraction reports per field whether a value was extracted. The scorers
// count as extracted when they produced a non-zero confidence.
func (r *Result) Extraction() map[string]bool {
	return map[string]bool{
		"amount":    r.Amount.Extracted,
		"date":      r.Date.Extracted,
		"micr":      r.MICR.Extracted,
		"fraud":     r.Fraud.Confidence > 0,
		"signature": r.Signature.Confidence > 0,
	}
}
