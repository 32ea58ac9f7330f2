package imgproc

import (
	"image"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

const (
	micrClipLimit = 2.0
	micrTiles     = 8
)

// CLAHE equalizes g with contrast-limited adaptive histograms over a
// tilesX x tilesY grid.
func CLAHE(g *Grid, clipLimit float64, tilesX, tilesY int) (*Grid, error) {
	c := gocv.NewCLAHEWithParams(clipLimit, image.Pt(tilesX, tilesY))
	defer c.Close()
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) { c.Apply(src, dst) })
}

// EnhanceMICR prepares the MICR strip for digit recognition: grayscale, CLAHE,
// 3x3 Gaussian blur, Otsu binarization and a 2x2 opening. Invalid input is
// returned as a copy.
func EnhanceMICR(g *Grid) *Grid {
	out, err := apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		clahe := gocv.NewCLAHEWithParams(micrClipLimit, image.Pt(micrTiles, micrTiles))
		defer clahe.Close()
		eq, blur, bin := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
		defer eq.Close()
		defer blur.Close()
		defer bin.Close()

		clahe.Apply(src, &eq)
		gocv.GaussianBlur(eq, &blur, image.Pt(3, 3), 0, 0, gocv.BorderDefault)
		otsu(blur, &bin)
		open(bin, dst, 2, 2)
	})
	if err != nil {
		log.Warn().Str("component", "MICR").Err(err).Msg("enhancement skipped")
		return g.Clone()
	}
	return out
}
