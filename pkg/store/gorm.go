package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"checkparser/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Gorm stores checks in Postgres through gorm.
type Gorm struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and, when migrate is set, creates or updates
// the checks table. Migration problems are logged, not fatal, so a read-only
// role can still serve requests.
func OpenPostgres(dsn string, migrate bool) (*Gorm, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	g := NewGorm(db)
	if migrate {
		if err := g.Migrate(); err != nil {
			log.Warn().Str("component", "STORE").Err(err).Msg("migration warning (checks)")
		}
	}
	return g, nil
}

// NewGorm wraps an existing connection. The caller keeps ownership of db's
// lifecycle unless it calls Close on the result.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate runs AutoMigrate for the checks table.
func (g *Gorm) Migrate() error {
	return g.db.AutoMigrate(&models.Check{})
}

func (g *Gorm) Create(ctx context.Context, c *models.Check) error {
	if c.CheckNumber == "" {
		c.CheckNumber = models.GenerateCheckNumber()
	}
	if err := g.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create check: %w", err)
	}
	return nil
}

func (g *Gorm) Get(ctx context.Context, id uint) (*models.Check, error) {
	var c models.Check
	if err := g.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get check %d: %w", id, err)
	}
	return &c, nil
}

func (g *Gorm) List(ctx context.Context) ([]models.Check, error) {
	var out []models.Check
	if err := g.db.WithContext(ctx).Order("id desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	return out, nil
}

// Summary aggregates checks created in [start, end).
func (g *Gorm) Summary(ctx context.Context, start, end time.Time) (MonthSummary, error) {
	var (
		total        sql.NullFloat64
		cnt, flagged int64
		unverified   int64
	)
	row := g.db.WithContext(ctx).Raw(`SELECT COALESCE(SUM(amount_numeric),0), COUNT(*),
		COUNT(*) FILTER (WHERE fraud_detected), COUNT(*) FILTER (WHERE NOT signature_verified)
		FROM checks WHERE created_at >= ? AND created_at < ?`, start, end).Row()
	if err := row.Scan(&total, &cnt, &flagged, &unverified); err != nil {
		return MonthSummary{}, fmt.Errorf("summary query: %w", err)
	}
	return MonthSummary{
		Month:               start.Format("2006-01"),
		Count:               cnt,
		TotalAmount:         total.Float64,
		FraudFlagged:        flagged,
		UnverifiedSignature: unverified,
	}, nil
}

// Between lists checks created in [start, end), oldest first.
func (g *Gorm) Between(ctx context.Context, start, end time.Time) ([]models.Check, error) {
	var out []models.Check
	if err := g.db.WithContext(ctx).Where("created_at >= ? AND created_at < ?", start, end).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list checks between: %w", err)
	}
	return out, nil
}

// Ping checks the underlying connection.
func (g *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
