package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"checkparser/pkg/checkparser"
	"checkparser/pkg/config"
	"checkparser/pkg/events"
	"checkparser/pkg/fraud"
	"checkparser/pkg/ocr/tesseract"
	"checkparser/pkg/store"
	"checkparser/process/ingest"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Scans a directory of check images, stores every parsed check and moves the
// file to <dir>/processed. With -watch it keeps processing new files.
func main() {
	dir := flag.String("dir", "incoming", "directory to scan for check images")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	dryRun := flag.Bool("dry-run", false, "parse and log only; no DB writes, files stay in place")
	watch := flag.Bool("watch", false, "watch the directory for new files after the initial scan")
	verbose := flag.Bool("verbose", false, "per-file debug logging")
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	engine, err := tesseract.New(cfg.Tesseract)
	if err != nil {
		log.Fatal().Err(err).Msg("ocr engine")
	}
	h := fraud.NewHeuristic()

	in := &ingest.Ingester{
		Parser:  checkparser.New(engine, h, h),
		Limits:  cfg.Limits,
		Dir:     *dir,
		Workers: *workers,
		DryRun:  *dryRun,
	}
	if !*dryRun {
		if cfg.DB.DSN == "" {
			fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN or use -dry-run")
			os.Exit(2)
		}
		g, err := store.OpenPostgres(cfg.DB.DSN, cfg.DB.AutoMigrate)
		if err != nil {
			log.Fatal().Err(err).Msg("open store")
		}
		defer g.Close()
		in.Store = g

		if cfg.AMQP.URL != "" {
			p, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
			if err != nil {
				log.Fatal().Err(err).Msg("amqp")
			}
			defer p.Close()
			in.Events = p
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := in.Scan(ctx)
	log.Info().Str("component", "INGEST").Int64("stored", stats.Stored).Int64("dry_run", stats.DryRun).
		Int64("skipped", stats.Skipped).Int64("failed", stats.Failed).Msg("scan finished")
	if err != nil {
		log.Error().Err(err).Msg("scan aborted")
		return
	}
	if *watch {
		if err := in.Watch(ctx); err != nil {
			log.Error().Err(err).Msg("watch failed")
		}
	}
}
