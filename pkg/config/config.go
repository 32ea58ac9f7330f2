// Package config loads service settings: an optional YAML file first, then
// environment variables on top. A local .env file is read into the
// environment before either.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"checkparser/pkg/ocr/tesseract"
	"checkparser/pkg/validate"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMaxUploadBytes is the upload cap (10 MB).
const DefaultMaxUploadBytes = 10 << 20

type Config struct {
	HTTP      HTTP             `yaml:"http"`
	DB        DB               `yaml:"db"`
	Tesseract tesseract.Config `yaml:"tesseract"`
	Limits    validate.Limits  `yaml:"limits"`
	AMQP      AMQP             `yaml:"amqp"`
	Log       Log              `yaml:"log"`
}

type HTTP struct {
	Addr           string  `yaml:"addr"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`
	UploadRate     float64 `yaml:"upload_rate"`
	UploadBurst    int     `yaml:"upload_burst"`
}

type DB struct {
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// AMQP publishes check events when URL is set.
type AMQP struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:           ":8081",
			MaxUploadBytes: DefaultMaxUploadBytes,
			UploadRate:     5,
			UploadBurst:    10,
		},
		DB:        DB{AutoMigrate: true},
		Tesseract: tesseract.Config{Languages: []string{"eng"}, PageSegMode: tesseract.DefaultPageSegMode},
		Limits:    validate.DefaultLimits,
		AMQP:      AMQP{Exchange: "checks", RoutingKey: "check.created"},
		Log:       Log{Level: "info", Format: "json"},
	}
}

// Load reads .env (when present), the YAML file at path (when non-empty, or
// from CHECKPARSER_CONFIG) and the environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		path = os.Getenv("CHECKPARSER_CONFIG")
	}
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("HTTP_ADDR", &c.HTTP.Addr)
	str("DB_DSN", &c.DB.DSN)
	str("TESSDATA_PREFIX", &c.Tesseract.TessdataPrefix)
	str("AMQP_URL", &c.AMQP.URL)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	if v, ok := lookup("TESSERACT_LANG"); ok && v != "" {
		c.Tesseract.Languages = strings.Split(v, "+")
	}
	if v, ok := lookup("DB_AUTO_MIGRATE"); ok && v != "" {
		switch strings.ToLower(v) {
		case "false", "0", "no":
			c.DB.AutoMigrate = false
		default:
			c.DB.AutoMigrate = true
		}
	}

	var errs []error
	num := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	num("MAX_UPLOAD_BYTES", func(v string) (err error) {
		c.HTTP.MaxUploadBytes, err = strconv.ParseInt(v, 10, 64)
		return
	})
	num("UPLOAD_RATE", func(v string) (err error) {
		c.HTTP.UploadRate, err = strconv.ParseFloat(v, 64)
		return
	})
	num("UPLOAD_BURST", func(v string) (err error) {
		c.HTTP.UploadBurst, err = strconv.Atoi(v)
		return
	})
	num("MAX_CHECK_AGE_DAYS", func(v string) (err error) {
		c.Limits.MaxCheckAgeDays, err = strconv.Atoi(v)
		return
	})
	num("MAX_AMOUNT", func(v string) (err error) {
		c.Limits.MaxAmount, err = strconv.ParseFloat(v, 64)
		return
	})
	return errors.Join(errs...)
}

// Validate reports settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max_upload_bytes must be positive"))
	}
	if c.HTTP.UploadRate < 0 || c.HTTP.UploadBurst < 0 {
		errs = append(errs, errors.New("upload rate and burst must not be negative"))
	}
	if c.HTTP.UploadRate > 0 && c.HTTP.UploadBurst < 1 {
		errs = append(errs, errors.New("upload_burst must be at least 1 when upload_rate is set"))
	}
	if c.Limits.MaxCheckAgeDays <= 0 {
		errs = append(errs, errors.New("max_check_age_days must be positive"))
	}
	if c.Limits.MaxAmount <= 0 {
		errs = append(errs, errors.New("max_amount must be positive"))
	}
	if err := c.Tesseract.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
