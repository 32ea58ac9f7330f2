package ocr

import (
	"context"

	"checkparser/pkg/imgproc"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DigitWhitelist restricts recognition to MICR digits.
const DigitWhitelist = "0123456789"

// Options tune a single recognition call. An empty Whitelist allows every
// character.
type Options struct {
	Whitelist string
}

// Recognizer turns a pixel region into raw text. Implementations must not keep
// state between calls.
type Recognizer interface {
	Recognize(ctx context.Context, region *imgproc.Grid, opts Options) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, region *imgproc.Grid, opts Options) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, region *imgproc.Grid, opts Options) (string, error) {
	return f(ctx, region, opts)
}

const instrumentationName = "checkparser/pkg/ocr"

type observableRecognizer struct {
	name string
	r    Recognizer
}

// Observable wraps r so every call opens a trace span and logs a snippet of
// the recognized text at debug level.
func Observable(name string, r Recognizer) Recognizer {
	return &observableRecognizer{name: name, r: r}
}

func (o *observableRecognizer) Recognize(ctx context.Context, region *imgproc.Grid, opts Options) (string, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "recognize "+o.name)
	defer span.End()
	span.SetAttributes(attribute.Bool("digits_only", opts.Whitelist == DigitWhitelist))
	if region != nil {
		span.SetAttributes(
			attribute.Int("region.width", region.Width),
			attribute.Int("region.height", region.Height),
		)
	}

	text, err := o.r.Recognize(ctx, region, opts)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	log.Debug().Str("component", "OCR").Str("engine", o.name).Str("text", snippet(normalizeOCRText(text), 80)).Msg("recognized")
	return text, nil
}
