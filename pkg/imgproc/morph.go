package imgproc

import (
	"image"

	"gocv.io/x/gocv"
)

// open is erosion followed by dilation with a kw x kh rectangle; it removes
// bright specks smaller than the element.
func open(src gocv.Mat, dst *gocv.Mat, kw, kh int) {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kw, kh))
	defer kernel.Close()
	gocv.MorphologyEx(src, dst, gocv.MorphOpen, kernel)
}

// Open applies a morphological opening with a kw x kh rectangle.
func Open(g *Grid, kw, kh int) (*Grid, error) {
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) { open(src, dst, kw, kh) })
}

// CleanForText prepares a region for recognition: grayscale, Otsu binarization
// and a 3x3 opening. Invalid input is returned as a copy.
func CleanForText(g *Grid) *Grid {
	out, err := apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		bin := gocv.NewMat()
		defer bin.Close()
		otsu(src, &bin)
		open(bin, dst, 3, 3)
	})
	if err != nil {
		return g.Clone()
	}
	return out
}
