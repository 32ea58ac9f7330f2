package imgproc

import (
	"bytes"
	"errors"
	"fmt"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/go-fitz"
)

// PDFRenderDPI is the resolution used when rasterizing the first PDF page.
const PDFRenderDPI = 200

// ErrUndecodable is the sentinel wrapped by every DecodeError.
var ErrUndecodable = errors.New("undecodable image")

// DecodeError reports input that could not be turned into a pixel grid.
type DecodeError struct {
	MIME string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.MIME == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode image (%s): %v", e.MIME, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrUndecodable, e.Err} }

// Supported MIME types, as reported by mimetype detection.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEPDF  = "application/pdf"
)

// SniffMIME detects the content type of data, ignoring parameters.
func SniffMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsSupportedMIME reports whether the decoder accepts the given sniffed type.
func IsSupportedMIME(m string) bool {
	switch m {
	case MIMEJPEG, MIMEPNG, MIMEPDF:
		return true
	}
	return false
}

// Decode turns raw JPEG, PNG or PDF bytes into a 3-channel RGB grid. For PDF
// input only the first page is rendered.
func Decode(data []byte) (*Grid, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty buffer")}
	}
	m := SniffMIME(data)
	switch m {
	case MIMEJPEG, MIMEPNG:
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, &DecodeError{MIME: m, Err: err}
		}
		if img.Bounds().Empty() {
			return nil, &DecodeError{MIME: m, Err: errors.New("zero-sized image")}
		}
		return FromImage(img), nil
	case MIMEPDF:
		return decodePDF(data)
	default:
		return nil, &DecodeError{MIME: m, Err: errors.New("unsupported format")}
	}
}

func decodePDF(data []byte) (*Grid, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, &DecodeError{MIME: MIMEPDF, Err: err}
	}
	defer doc.Close()
	if doc.NumPage() == 0 {
		return nil, &DecodeError{MIME: MIMEPDF, Err: errors.New("no pages")}
	}
	img, err := doc.ImageDPI(0, PDFRenderDPI)
	if err != nil {
		return nil, &DecodeError{MIME: MIMEPDF, Err: fmt.Errorf("render page 0: %w", err)}
	}
	return FromImage(img), nil
}
