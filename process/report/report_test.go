package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"checkparser/models"
	"checkparser/pkg/store"

	"github.com/stretchr/testify/require"
)

func TestMonthBounds(t *testing.T) {
	start, end, err := MonthBounds("2024-12")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = MonthBounds("12/2024")
	require.ErrorContains(t, err, "YYYY-MM")
}

func TestRunReport(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.Create(ctx, &models.Check{CheckNumber: "0001", AmountNumeric: 40, FraudDetected: true}))
	require.NoError(t, m.Create(ctx, &models.Check{CheckNumber: "0002", AmountNumeric: 2.5, SignatureVerified: true}))

	month := time.Now().UTC().Format("2006-01")
	var out bytes.Buffer
	require.NoError(t, RunReport(ctx, m, &out, month, true))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[1], "checks=2 total_amount=42.50 fraud_flagged=1 unverified_signatures=1")
	require.True(t, strings.HasPrefix(lines[2], "1|0001|"))
	require.Contains(t, lines[3], "signed=true")

	out.Reset()
	require.NoError(t, RunReport(ctx, m, &out, "1999-01", false))
	require.Contains(t, out.String(), "checks=0")
}
