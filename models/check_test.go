package models

import (
	"regexp"
	"testing"
	"time"

	"checkparser/pkg/checkparser"

	"github.com/stretchr/testify/require"
)

func TestNewCheckCopiesFields(t *testing.T) {
	d := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	c := NewCheck(checkparser.Fields{
		Amount:          99.5,
		Date:            &d,
		BankCode:        "123",
		AccountNumber:   "4567",
		CheckNumber:     "0042",
		FraudConfidence: 0.8,
	})
	require.Equal(t, "2024-03-15", c.Date)
	require.Equal(t, "0042", c.CheckNumber)
	require.Equal(t, 99.5, c.AmountNumeric)

	back := c.Fields()
	require.Equal(t, "0042", back.CheckNumber)
	require.True(t, d.Equal(*back.Date))
}

func TestNewCheckGeneratesToken(t *testing.T) {
	tokenRE := regexp.MustCompile(`^CHK-[0-9a-f]{8}$`)
	a := NewCheck(checkparser.Fields{})
	b := NewCheck(checkparser.Fields{})
	require.Regexp(t, tokenRE, a.CheckNumber)
	require.NotEqual(t, a.CheckNumber, b.CheckNumber)
	require.Empty(t, a.Date)

	f := a.Fields()
	require.Empty(t, f.CheckNumber, "generated tokens are not extracted MICR data")
	require.Nil(t, f.Date)
}
