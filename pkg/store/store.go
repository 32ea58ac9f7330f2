// Package store persists parsed checks.
package store

import (
	"context"
	"errors"
	"time"

	"checkparser/models"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("check not found")

// Store is the persistence contract. Create assigns ID and CreatedAt.
type Store interface {
	Create(ctx context.Context, c *models.Check) error
	Get(ctx context.Context, id uint) (*models.Check, error)
	// List returns every record, newest first.
	List(ctx context.Context) ([]models.Check, error)
	Close() error
}

// MonthSummary aggregates the checks created in one calendar month.
type MonthSummary struct {
	Month               string  `json:"month"`
	Count               int64   `json:"count"`
	TotalAmount         float64 `json:"total_amount"`
	FraudFlagged        int64   `json:"fraud_flagged"`
	UnverifiedSignature int64   `json:"unverified_signatures"`
}

// Reporter is implemented by stores that can aggregate by creation time.
type Reporter interface {
	Summary(ctx context.Context, start, end time.Time) (MonthSummary, error)
	Between(ctx context.Context, start, end time.Time) ([]models.Check, error)
}
