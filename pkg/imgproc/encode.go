package imgproc

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// EncodePNG serializes a grid as PNG.
func EncodePNG(g *Grid) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, g.Image(), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes a grid to path; the format follows the file extension.
func Save(g *Grid, path string) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return imaging.Save(g.Image(), path)
}
