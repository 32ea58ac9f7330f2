// Package tesseract implements ocr.Recognizer on top of the Tesseract engine
// through gosseract. Every call opens its own client, so one Recognizer can be
// shared across goroutines.
package tesseract

import (
	"context"
	"fmt"
	"sort"

	"checkparser/pkg/imgproc"
	"checkparser/pkg/ocr"

	"github.com/otiai10/gosseract/v2"
)

// Config is the explicit engine configuration. The zero value is completed by
// withDefaults: English, single uniform block (PSM 6).
type Config struct {
	Languages      []string          `yaml:"languages"`
	PageSegMode    int               `yaml:"page_seg_mode"`
	TessdataPrefix string            `yaml:"tessdata_prefix"`
	Variables      map[string]string `yaml:"variables"`
}

// DefaultPageSegMode assumes a single uniform block of text.
const DefaultPageSegMode = int(gosseract.PSM_SINGLE_BLOCK)

func (c Config) withDefaults() Config {
	if len(c.Languages) == 0 {
		c.Languages = []string{"eng"}
	}
	if c.PageSegMode == 0 {
		c.PageSegMode = DefaultPageSegMode
	}
	return c
}

// Validate rejects page segmentation modes Tesseract does not define.
func (c Config) Validate() error {
	if c.PageSegMode < 0 || c.PageSegMode > int(gosseract.PSM_RAW_LINE) {
		return fmt.Errorf("tesseract: invalid page segmentation mode %d", c.PageSegMode)
	}
	return nil
}

// Recognizer is the Tesseract-backed ocr.Recognizer.
type Recognizer struct {
	cfg Config
}

// New validates cfg and returns a Recognizer bound to it.
func New(cfg Config) (*Recognizer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Recognizer{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (r *Recognizer) Config() Config {
	return r.cfg
}

// Version reports the linked Tesseract version; it doubles as a self-test that
// the engine library can be initialized.
func (r *Recognizer) Version() string {
	return gosseract.Version()
}

// Recognize encodes region as PNG and runs Tesseract on it.
func (r *Recognizer) Recognize(ctx context.Context, region *imgproc.Grid, opts ocr.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := imgproc.EncodePNG(region)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := r.configure(client, opts); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("tesseract: set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: recognize: %w", err)
	}
	return text, nil
}

func (r *Recognizer) configure(client *gosseract.Client, opts ocr.Options) error {
	if r.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.cfg.TessdataPrefix); err != nil {
			return fmt.Errorf("tesseract: tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(r.cfg.Languages...); err != nil {
		return fmt.Errorf("tesseract: language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(r.cfg.PageSegMode)); err != nil {
		return fmt.Errorf("tesseract: page seg mode: %w", err)
	}
	for _, k := range sortedKeys(r.cfg.Variables) {
		if err := client.SetVariable(gosseract.SettableVariable(k), r.cfg.Variables[k]); err != nil {
			return fmt.Errorf("tesseract: variable %s: %w", k, err)
		}
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			return fmt.Errorf("tesseract: whitelist: %w", err)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
