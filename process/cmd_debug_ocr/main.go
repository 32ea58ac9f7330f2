package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"checkparser/pkg/checkparser"
	"checkparser/pkg/config"
	"checkparser/pkg/fraud"
	"checkparser/pkg/imgproc"
	"checkparser/pkg/ocr"
	"checkparser/pkg/ocr/tesseract"
	"checkparser/pkg/validate"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Runs the full pipeline on one file and prints the parse result as JSON.
func main() {
	f := flag.String("file", "", "check image to parse (jpeg, png or pdf)")
	psm := flag.Int("psm", 0, "override the tesseract page segmentation mode")
	flag.Parse()
	if *f == "" {
		log.Fatal().Msg("-file required")
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli})

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *psm != 0 {
		cfg.Tesseract.PageSegMode = *psm
	}
	engine, err := tesseract.New(cfg.Tesseract)
	if err != nil {
		log.Fatal().Err(err).Msg("ocr engine")
	}
	data, err := os.ReadFile(*f)
	if err != nil {
		log.Fatal().Err(err).Msg("read file")
	}

	h := fraud.NewHeuristic()
	p := checkparser.New(ocr.Observable("tesseract", engine), h, h,
		checkparser.WithStageObserver(func(stage string, d time.Duration) {
			log.Debug().Str("stage", stage).Dur("elapsed", d).Msg("stage done")
		}))
	res, err := p.Parse(context.Background(), data)
	if err != nil {
		log.Fatal().Err(err).Msg("parse")
	}

	raw := make(map[string]string, len(res.RawText))
	for r, text := range res.RawText {
		raw[string(r)] = text
	}
	fields := res.Fields()
	out := struct {
		Fields     checkparser.Fields   `json:"fields"`
		Extraction map[string]bool      `json:"extraction"`
		Signature  fraud.SignatureScore `json:"signature"`
		Validation validate.Report      `json:"validation"`
		RawText    map[string]string    `json:"raw_text"`
		MIME       string               `json:"mime"`
	}{
		Fields:     fields,
		Extraction: res.Extraction(),
		Signature:  res.Signature,
		Validation: validate.Check(fields, time.Now(), cfg.Limits),
		RawText:    raw,
		MIME:       imgproc.SniffMIME(data),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encode")
	}
}
