package models

import (
	"strings"
	"time"

	"checkparser/pkg/checkparser"

	"github.com/google/uuid"
)

// DateLayout is how check dates are stored and serialized.
const DateLayout = "2006-01-02"

// Check is a persisted parse result. Rows are written once and never updated.
type Check struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	CheckNumber         string    `gorm:"size:50;not null;index" json:"check_number"`
	AmountNumeric       float64   `json:"amount_numeric"`
	Date                string    `gorm:"size:20" json:"date"` // YYYY-MM-DD, empty when not extracted
	BankCode            string    `gorm:"size:20" json:"bank_code"`
	AccountNumber       string    `gorm:"size:50" json:"account_number"`
	FraudDetected       bool      `gorm:"default:false;index" json:"fraud_detected"`
	FraudConfidence     float64   `json:"fraud_confidence"`
	SignatureConfidence float64   `json:"signature_confidence"`
	SignatureVerified   bool      `gorm:"default:false" json:"signature_verified"`
	FileName            string    `gorm:"size:255" json:"file_name,omitempty"`
	ContentType         string    `gorm:"size:128" json:"content_type,omitempty"`
}

// NewCheck builds a record from parsed fields. A missing check number is
// replaced by a random CHK- token.
func NewCheck(f checkparser.Fields) *Check {
	c := &Check{
		CheckNumber:         f.CheckNumber,
		AmountNumeric:       f.Amount,
		BankCode:            f.BankCode,
		AccountNumber:       f.AccountNumber,
		FraudDetected:       f.FraudDetected,
		FraudConfidence:     f.FraudConfidence,
		SignatureConfidence: f.SignatureConfidence,
		SignatureVerified:   f.SignatureVerified,
	}
	if f.Date != nil {
		c.Date = f.Date.Format(DateLayout)
	}
	if c.CheckNumber == "" {
		c.CheckNumber = GenerateCheckNumber()
	}
	return c
}

// GenerateCheckNumber returns "CHK-" and the first 8 lower-case hex digits of
// a random UUID.
func GenerateCheckNumber() string {
	return "CHK-" + uuid.NewString()[:8]
}

// Fields converts the record back to parsed fields for validation.
func (c *Check) Fields() checkparser.Fields {
	f := checkparser.Fields{
		Amount:              c.AmountNumeric,
		BankCode:            c.BankCode,
		AccountNumber:       c.AccountNumber,
		CheckNumber:         c.CheckNumber,
		FraudDetected:       c.FraudDetected,
		FraudConfidence:     c.FraudConfidence,
		SignatureConfidence: c.SignatureConfidence,
		SignatureVerified:   c.SignatureVerified,
	}
	if t, err := time.Parse(DateLayout, c.Date); err == nil {
		f.Date = &t
	}
	if strings.HasPrefix(c.CheckNumber, "CHK-") {
		f.CheckNumber = ""
	}
	return f
}
