package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"checkparser/pkg/store"
)

// MonthBounds returns [start, end) in UTC for month in YYYY-MM.
func MonthBounds(month string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// RunReport writes a month-bounded summary of stored checks to w and,
// when list is set, one line per matching check.
func RunReport(ctx context.Context, r store.Reporter, w io.Writer, month string, list bool) error {
	start, end, err := MonthBounds(month)
	if err != nil {
		return err
	}
	s, err := r.Summary(ctx, start, end)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Report for month=%s (UTC):\n", month)
	fmt.Fprintf(w, "  checks=%d total_amount=%.2f fraud_flagged=%d unverified_signatures=%d\n",
		s.Count, s.TotalAmount, s.FraudFlagged, s.UnverifiedSignature)

	if !list {
		return nil
	}
	rows, err := r.Between(ctx, start, end)
	if err != nil {
		return fmt.Errorf("fetch rows failed: %w", err)
	}
	for _, c := range rows {
		fmt.Fprintf(w, "%d|%s|%s|%.2f|%s|fraud=%t|signed=%t|%s\n",
			c.ID, c.CheckNumber, c.FileName, c.AmountNumeric, c.Date,
			c.FraudDetected, c.SignatureVerified, c.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
