package imgproc

import "gocv.io/x/gocv"

// Denoise runs OpenCV's non-local-means filter with its default strength
// (h = 3, 7x7 template, 21x21 search window). On a binary grid this only
// touches isolated noise.
func Denoise(g *Grid) (*Grid, error) {
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) { gocv.FastNlMeansDenoising(src, dst) })
}
