package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"checkparser/pkg/checkparser"
	"checkparser/pkg/config"
	"checkparser/pkg/events"
	"checkparser/pkg/fraud"
	"checkparser/pkg/metrics"
	"checkparser/pkg/ocr"
	"checkparser/pkg/ocr/tesseract"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $CHECKPARSER_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	setupLogging(cfg.Log)

	// `./checkparser migrate` runs AutoMigrate and exits. Useful for CI or manual DB setup.
	if flag.Arg(0) == "migrate" {
		if err := runMigrate(cfg.DB); err != nil {
			log.Fatal().Str("component", "MAIN").Err(err).Msg("migration failed")
		}
		fmt.Println("migration completed")
		return
	}

	if err := run(cfg); err != nil {
		log.Fatal().Str("component", "MAIN").Err(err).Msg("server stopped")
	}
}

func setupLogging(cfg config.Log) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func run(cfg config.Config) error {
	engine, err := tesseract.New(cfg.Tesseract)
	if err != nil {
		return err
	}
	version := engine.Version()
	log.Info().Str("component", "MAIN").Str("tesseract", version).
		Strs("languages", engine.Config().Languages).Msg("ocr engine ready")

	st, err := openStore(cfg.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	var pub events.Publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		p, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			return err
		}
		pub = p
	}
	defer pub.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	h := fraud.NewHeuristic()
	parser := checkparser.New(ocr.Observable("tesseract", engine), h, h, checkparser.WithStageObserver(m.ObserveStage))

	var limiter *rate.Limiter
	if cfg.HTTP.UploadRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.HTTP.UploadRate), cfg.HTTP.UploadBurst)
	}
	s := &server{
		parser:    parser,
		store:     st,
		events:    pub,
		metrics:   m,
		limits:    cfg.Limits,
		maxUpload: cfg.HTTP.MaxUploadBytes,
		limiter:   limiter,
		version:   version,
		now:       time.Now,
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           newHandler(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("component", "MAIN").Str("addr", cfg.HTTP.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Str("component", "MAIN").Msg("caught signal, draining requests")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandler builds the gin engine and wraps it with CORS for every route.
func newHandler(s *server) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), s.metrics.Middleware())
	r.MaxMultipartMemory = s.maxUpload
	setupRoutes(r, s)

	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})(r)
}
