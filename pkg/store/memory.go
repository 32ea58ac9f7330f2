package store

import (
	"context"
	"sort"
	"time"

	"checkparser/models"

	"github.com/sasha-s/go-deadlock"
)

// Memory keeps checks in process memory. It backs tests and runs without a
// database configured.
type Memory struct {
	mu     deadlock.RWMutex
	nextID uint
	rows   map[uint]models.Check
	now    func() time.Time
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[uint]models.Check), now: time.Now}
}

func (m *Memory) Create(ctx context.Context, c *models.Check) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.CheckNumber == "" {
		c.CheckNumber = models.GenerateCheckNumber()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = m.now().UTC()
	m.rows[c.ID] = *c
	return nil
}

func (m *Memory) Get(ctx context.Context, id uint) (*models.Check, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) List(ctx context.Context) ([]models.Check, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]models.Check, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, c)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Between lists checks created in [start, end), oldest first.
func (m *Memory) Between(ctx context.Context, start, end time.Time) ([]models.Check, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Check
	for i := len(all) - 1; i >= 0; i-- {
		c := all[i]
		if !c.CreatedAt.Before(start) && c.CreatedAt.Before(end) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Summary aggregates checks created in [start, end).
func (m *Memory) Summary(ctx context.Context, start, end time.Time) (MonthSummary, error) {
	rows, err := m.Between(ctx, start, end)
	if err != nil {
		return MonthSummary{}, err
	}
	s := MonthSummary{Month: start.Format("2006-01")}
	for _, c := range rows {
		s.Count++
		s.TotalAmount += c.AmountNumeric
		if c.FraudDetected {
			s.FraudFlagged++
		}
		if !c.SignatureVerified {
			s.UnverifiedSignature++
		}
	}
	return s, nil
}

func (m *Memory) Close() error { return nil }
