// Package ingest pushes a directory of check images through the parser and
// into the store, moving each stored file into a processed/ subdirectory so it
// is handled once.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"checkparser/models"
	"checkparser/pkg/checkparser"
	"checkparser/pkg/events"
	"checkparser/pkg/imgproc"
	"checkparser/pkg/store"
	"checkparser/pkg/validate"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxProcessedBytes is the size budget for archived images.
const DefaultMaxProcessedBytes = 1_000_000

// Ingester processes check files found in Dir.
type Ingester struct {
	Parser *checkparser.Parser
	Store  store.Store
	Events events.Publisher
	Limits validate.Limits

	Dir          string
	ProcessedDir string // defaults to Dir/processed
	Workers      int    // defaults to NumCPU
	DryRun       bool
	// MaxProcessedBytes bounds archived images; larger ones are downscaled.
	MaxProcessedBytes int64
}

// Stats counts what one scan did.
type Stats struct {
	Stored  int64
	DryRun  int64
	Skipped int64
	Failed  int64
}

type counters struct {
	stored, dryRun, skipped, failed atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{Stored: c.stored.Load(), DryRun: c.dryRun.Load(), Skipped: c.skipped.Load(), Failed: c.failed.Load()}
}

func (in *Ingester) workers() int {
	if in.Workers <= 0 {
		return runtime.NumCPU()
	}
	return in.Workers
}

func (in *Ingester) processedDir() string {
	if in.ProcessedDir != "" {
		return in.ProcessedDir
	}
	return filepath.Join(in.Dir, "processed")
}

// Scan processes every candidate file currently in Dir. Per-file failures are
// logged and counted; only context cancellation stops the scan.
func (in *Ingester) Scan(ctx context.Context) (Stats, error) {
	files, err := listCheckFiles(in.Dir)
	if err != nil {
		return Stats{}, err
	}
	log.Info().Str("component", "INGEST").Str("dir", in.Dir).Int("files", len(files)).Int("workers", in.workers()).Msg("scanning")

	var cnt counters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers())
	for _, name := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return in.handle(gctx, name, &cnt)
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return cnt.stats(), err
}

// Watch processes files created in Dir until ctx is done. Events for one file
// are debounced so partially written files are not picked up.
func (in *Ingester) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(in.Dir); err != nil {
		return err
	}
	log.Info().Str("component", "INGEST").Str("dir", in.Dir).Msg("watching (debounced)")

	var cnt counters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers())

	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-gctx.Done():
			err := g.Wait()
			st := cnt.stats()
			log.Info().Str("component", "INGEST").Int64("stored", st.Stored).Int64("failed", st.Failed).Msg("watch stopped")
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case ev, ok := <-w.Events:
			if !ok {
				return g.Wait()
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				name := filepath.Base(ev.Name)
				if isCheckFile(name) {
					pending[name] = time.Now()
				}
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond {
					delete(pending, name)
					g.Go(func() error {
						return in.handle(gctx, name, &cnt)
					})
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return g.Wait()
			}
			log.Warn().Str("component", "INGEST").Err(err).Msg("watch error")
		}
	}
}

func (in *Ingester) handle(ctx context.Context, name string, cnt *counters) error {
	outcome, err := in.ProcessFile(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		cnt.failed.Add(1)
		log.Error().Str("component", "INGEST").Str("file", name).Err(err).Msg("processing failed")
		return nil
	}
	switch outcome {
	case OutcomeStored:
		cnt.stored.Add(1)
	case OutcomeDryRun:
		cnt.dryRun.Add(1)
	default:
		cnt.skipped.Add(1)
	}
	return nil
}

// Outcome says what ProcessFile did with a file.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeDryRun
	OutcomeStored
)

// ProcessFile parses Dir/name, stores the result and archives the file.
func (in *Ingester) ProcessFile(ctx context.Context, name string) (Outcome, error) {
	path := filepath.Join(in.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, err
	}
	mime := imgproc.SniffMIME(data)
	if !imgproc.IsSupportedMIME(mime) {
		log.Debug().Str("component", "INGEST").Str("file", name).Str("mime", mime).Msg("skipping unsupported file")
		return OutcomeSkipped, nil
	}

	res, err := in.Parser.Parse(ctx, data)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("parse %s: %w", name, err)
	}
	check := models.NewCheck(res.Fields())
	check.FileName = name
	check.ContentType = mime

	if in.DryRun {
		log.Info().Str("component", "INGEST").Str("file", name).
			Float64("amount", check.AmountNumeric).Str("date", check.Date).
			Str("check_number", check.CheckNumber).Bool("fraud", check.FraudDetected).
			Msg("dry-run")
		return OutcomeDryRun, nil
	}

	if err := in.Store.Create(ctx, check); err != nil {
		return OutcomeSkipped, err
	}
	log.Info().Str("component", "INGEST").Uint("id", check.ID).Str("file", name).
		Float64("amount", check.AmountNumeric).Msg("check stored")

	if in.Events != nil {
		lim := in.Limits
		if lim == (validate.Limits{}) {
			lim = validate.DefaultLimits
		}
		valid := validate.Check(check.Fields(), time.Now(), lim).Valid
		if err := in.Events.Publish(ctx, events.NewCheckCreated(check, valid)); err != nil {
			log.Warn().Str("component", "INGEST").Err(err).Msg("publish check.created failed")
		}
	}

	maxBytes := in.MaxProcessedBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxProcessedBytes
	}
	if err := moveToProcessed(path, in.processedDir(), name, maxBytes); err != nil {
		log.Warn().Str("component", "INGEST").Str("file", name).Err(err).Msg("failed to move processed file")
	}
	return OutcomeStored, nil
}

func listCheckFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isCheckFile(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func isCheckFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".pdf":
		return true
	}
	return false
}
