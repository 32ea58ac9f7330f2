package imgproc

import "gocv.io/x/gocv"

// AdaptiveThreshold binarizes g against the Gaussian-weighted mean of each
// block x block neighbourhood minus offset: pixels above it become 255, the
// rest 0. Multi-channel input is converted to grayscale first.
func AdaptiveThreshold(g *Grid, block int, offset float32) (*Grid, error) {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.AdaptiveThreshold(src, dst, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, block, offset)
	})
}

func otsu(src gocv.Mat, dst *gocv.Mat) float32 {
	return gocv.Threshold(src, dst, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
}

// Otsu binarizes g at its Otsu level.
func Otsu(g *Grid) (*Grid, error) {
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) { otsu(src, dst) })
}

// OtsuLevel returns the threshold Otsu's method picks for g; pixels above it
// are foreground.
func OtsuLevel(g *Grid) (uint8, error) {
	var level float32
	if _, err := apply(g, func(src gocv.Mat, dst *gocv.Mat) { level = otsu(src, dst) }); err != nil {
		return 0, err
	}
	return uint8(level), nil
}
