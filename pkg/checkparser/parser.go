// Package checkparser runs the full check pipeline: decode, preprocess, slice
// regions, recognize and parse fields, then score fraud and signature.
package checkparser

import (
	"context"
	"fmt"
	"time"

	"checkparser/pkg/fraud"
	"checkparser/pkg/imgproc"
	"checkparser/pkg/ocr"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "checkparser/pkg/checkparser"

// Stage names reported to the stage observer.
const (
	StageDecode     = "decode"
	StagePreprocess = "preprocess"
	StageRegions    = "regions"
	StageRecognize  = "recognize"
	StageMICR       = "micr"
	StageScore      = "score"
)

// StageObserver receives the wall time of each pipeline stage.
type StageObserver func(stage string, elapsed time.Duration)

// Option configures a Parser.
type Option func(*Parser)

// WithStageObserver reports stage timings to fn.
func WithStageObserver(fn StageObserver) Option {
	return func(p *Parser) { p.observe = fn }
}

// Parser is stateless between calls and safe for concurrent use as long as its
// collaborators are.
type Parser struct {
	recognizer ocr.Recognizer
	fraud      fraud.FraudScorer
	signature  fraud.SignatureScorer
	observe    StageObserver
}

// New wires a Parser from its collaborators.
func New(r ocr.Recognizer, fs fraud.FraudScorer, ss fraud.SignatureScorer, opts ...Option) *Parser {
	p := &Parser{
		recognizer: r,
		fraud:      fs,
		signature:  ss,
		observe:    func(string, time.Duration) {},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse decodes data and runs the pipeline. Only undecodable input, a grid
// that cannot be sliced or a cancelled context produce an error; every other
// failure leaves the affected field defaulted.
func (p *Parser) Parse(ctx context.Context, data []byte) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "parse check", trace.WithAttributes(attribute.Int("input.bytes", len(data))))
	defer span.End()

	var img *imgproc.Grid
	err := p.stage(ctx, StageDecode, func(context.Context) error {
		var err error
		img, err = imgproc.Decode(data)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	res, err := p.ParseGrid(ctx, img)
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

// ParseGrid runs every stage after decoding on an already decoded image.
func (p *Parser) ParseGrid(ctx context.Context, img *imgproc.Grid) (*Result, error) {
	res := &Result{RawText: make(map[imgproc.Region]string, len(imgproc.Regions))}

	var clean *imgproc.Grid
	if err := p.stage(ctx, StagePreprocess, func(context.Context) error {
		clean = imgproc.Preprocess(img)
		return nil
	}); err != nil {
		return nil, err
	}

	var regions imgproc.RegionSet
	if err := p.stage(ctx, StageRegions, func(context.Context) error {
		var err error
		regions, err = imgproc.ExtractRegions(clean)
		return err
	}); err != nil {
		return nil, fmt.Errorf("extract regions: %w", err)
	}

	if err := p.stage(ctx, StageRecognize, func(ctx context.Context) error {
		res.RawText[imgproc.RegionAmount] = p.recognize(ctx, imgproc.RegionAmount, imgproc.CleanForText(regions[imgproc.RegionAmount]), ocr.Options{})
		res.RawText[imgproc.RegionDate] = p.recognize(ctx, imgproc.RegionDate, imgproc.CleanForText(regions[imgproc.RegionDate]), ocr.Options{})
		return nil
	}); err != nil {
		return nil, err
	}
	res.Amount = ocr.ParseAmount(res.RawText[imgproc.RegionAmount])
	res.Date = ocr.ParseDate(res.RawText[imgproc.RegionDate])

	if err := p.stage(ctx, StageMICR, func(ctx context.Context) error {
		micr := imgproc.EnhanceMICR(regions[imgproc.RegionMICR])
		res.RawText[imgproc.RegionMICR] = p.recognize(ctx, imgproc.RegionMICR, micr, ocr.Options{Whitelist: ocr.DigitWhitelist})
		return nil
	}); err != nil {
		return nil, err
	}
	res.MICR = ocr.ParseMICR(res.RawText[imgproc.RegionMICR])

	if err := p.stage(ctx, StageScore, func(context.Context) error {
		res.Fraud = p.fraud.ScoreFraud(img)
		res.Signature = p.signature.ScoreSignature(regions[imgproc.RegionSignature])
		return nil
	}); err != nil {
		return nil, err
	}

	log.Debug().Str("component", "PARSER").
		Bool("amount", res.Amount.Extracted).
		Bool("date", res.Date.Extracted).
		Bool("micr", res.MICR.Extracted).
		Bool("fraud", res.Fraud.Detected).
		Msg("check parsed")
	return res, nil
}

// stage runs fn inside a span after checking for cancellation.
func (p *Parser) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	defer span.End()
	start := time.Now()
	err := fn(ctx)
	p.observe(name, time.Since(start))
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// recognize returns "" when the recognizer fails so the field defaults.
func (p *Parser) recognize(ctx context.Context, region imgproc.Region, g *imgproc.Grid, opts ocr.Options) string {
	text, err := p.recognizer.Recognize(ctx, g, opts)
	if err != nil {
		log.Warn().Str("component", "PARSER").Str("region", string(region)).Err(err).Msg("recognition failed")
		return ""
	}
	return text
}
