package main

import (
	"errors"

	"checkparser/pkg/config"
	"checkparser/pkg/store"

	"github.com/rs/zerolog/log"
)

var errNoDSN = errors.New("DB_DSN is not set; the migrate command needs a Postgres DSN")

// openStore connects to Postgres when a DSN is configured and falls back to
// the in-memory store otherwise.
func openStore(cfg config.DB) (store.Store, error) {
	if cfg.DSN == "" {
		log.Warn().Str("component", "STORE").Msg("DB_DSN is not set; checks are kept in memory and lost on restart")
		return store.NewMemory(), nil
	}
	g, err := store.OpenPostgres(cfg.DSN, cfg.AutoMigrate)
	if err != nil {
		return nil, err
	}
	log.Info().Str("component", "STORE").Bool("auto_migrate", cfg.AutoMigrate).Msg("connected to postgres")
	return g, nil
}

// runMigrate creates or updates the checks table and returns.
func runMigrate(cfg config.DB) error {
	if cfg.DSN == "" {
		return errNoDSN
	}
	g, err := store.OpenPostgres(cfg.DSN, false)
	if err != nil {
		return err
	}
	defer g.Close()
	return g.Migrate()
}
