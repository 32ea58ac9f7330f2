package validate

import (
	"encoding/json"
	"testing"
	"time"

	"checkparser/pkg/checkparser"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func goodFields() checkparser.Fields {
	return checkparser.Fields{
		Amount:            250.75,
		Date:              dayPtr(2024, time.May, 20),
		BankCode:          "123",
		AccountNumber:     "456789",
		CheckNumber:       "1001",
		SignatureVerified: true,
	}
}

func TestCheckAllPass(t *testing.T) {
	rep := Check(goodFields(), now, DefaultLimits)
	require.True(t, rep.Valid)
	require.Empty(t, rep.Errors())
	require.Len(t, rep.Outcomes, 4)
	for i, o := range rep.Outcomes {
		require.Equal(t, Rules[i], o.Rule)
	}
}

func TestCheckDate(t *testing.T) {
	cases := []struct {
		name   string
		date   *time.Time
		passed bool
		reason string
	}{
		{"missing", nil, false, "date is missing"},
		{"today", dayPtr(2024, time.June, 1), true, ""},
		{"tomorrow", dayPtr(2024, time.June, 2), false, "post-dated check"},
		{"exactly 180 days", dayPtr(2023, time.December, 4), true, ""},
		{"181 days", dayPtr(2023, time.December, 3), false, "check too old"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := checkDate(tc.date, now, DefaultLimits.MaxCheckAgeDays)
			require.Equal(t, tc.passed, o.Passed)
			require.Equal(t, tc.reason, o.Reason)
		})
	}
}

func TestCheckAmount(t *testing.T) {
	require.False(t, checkAmount(0, DefaultLimits.MaxAmount).Passed)
	require.False(t, checkAmount(-5, DefaultLimits.MaxAmount).Passed)
	require.True(t, checkAmount(0.01, DefaultLimits.MaxAmount).Passed)
	require.True(t, checkAmount(10_000_000, DefaultLimits.MaxAmount).Passed)
	require.Equal(t, "amount exceeds maximum", checkAmount(10_000_000.01, DefaultLimits.MaxAmount).Reason)
}

func TestCheckMICR(t *testing.T) {
	require.True(t, checkMICR("123456789").Passed)
	require.True(t, checkMICR("1234567891234").Passed)
	require.False(t, checkMICR("").Passed)
	require.False(t, checkMICR("12345678").Passed)
	require.False(t, checkMICR("12345678a").Passed)
}

func TestCheckCollectsEveryFailure(t *testing.T) {
	rep := Check(checkparser.Fields{}, now, DefaultLimits)
	require.False(t, rep.Valid)
	require.Equal(t, []string{"date is missing", "amount is missing or not positive", "invalid MICR code", "signature not verified"}, rep.Errors())
}

func TestReportJSONUsesRuleNames(t *testing.T) {
	f := goodFields()
	f.SignatureVerified = false
	b, err := json.Marshal(Check(f, now, DefaultLimits))
	require.NoError(t, err)
	require.Contains(t, string(b), `"rule":"signature"`)
	require.Contains(t, string(b), `"valid":false`)
}
