package imgproc

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

const (
	adaptiveBlock  = 11
	adaptiveOffset = 2
)

// Preprocess runs grayscale, adaptive thresholding, denoising and deskew. The
// output has the input's dimensions. On failure the input is returned as a
// copy so later stages can still run on it.
func Preprocess(g *Grid) *Grid {
	out, err := preprocess(g)
	if err != nil {
		log.Warn().Str("component", "PREPROCESS").Err(err).Msg("preprocessing skipped")
		return g.Clone()
	}
	return out
}

func preprocess(g *Grid) (*Grid, error) {
	src, err := matOf(g)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	gray := grayMat(src)
	defer gray.Close()

	bin, clean := gocv.NewMat(), gocv.NewMat()
	defer bin.Close()
	defer clean.Close()
	gocv.AdaptiveThreshold(gray, &bin, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, adaptiveBlock, adaptiveOffset)
	gocv.FastNlMeansDenoising(bin, &clean)

	theta, err := skewAngle(clean)
	if err != nil {
		return nil, fmt.Errorf("deskew: %w", err)
	}
	if math.Abs(theta) < 1e-6 {
		return gridOf(clean)
	}
	out := gocv.NewMat()
	defer out.Close()
	rotate(clean, &out, -theta)
	return gridOf(out)
}
