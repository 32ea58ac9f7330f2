package imgproc

import (
	"errors"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// ErrNoForeground is returned when a grid has no pixel above zero to fit a
// bounding rectangle to.
var ErrNoForeground = errors.New("no foreground pixels")

// SkewAngle fits the minimum-area rectangle around every pixel above zero and
// returns its angle folded into [-45, 45]. Positive means the content leans
// clockwise on screen.
func SkewAngle(g *Grid) (float64, error) {
	src, err := matOf(g)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	gray := grayMat(src)
	defer gray.Close()
	return skewAngle(gray)
}

func skewAngle(bin gocv.Mat) (float64, error) {
	if gocv.CountNonZero(bin) == 0 {
		return 0, ErrNoForeground
	}
	idx := gocv.NewMat()
	defer idx.Close()
	gocv.FindNonZero(bin, &idx)
	pts := gocv.NewPointVectorFromMat(idx)
	defer pts.Close()
	return foldSkew(gocv.MinAreaRect(pts).Angle), nil
}

// foldSkew maps a minimum-area-rectangle angle onto [-45, 45]. OpenCV reports
// [-90, 0) before 4.5 and (0, 90] since.
func foldSkew(a float64) float64 {
	switch {
	case a < -45:
		return a + 90
	case a > 45:
		return a - 90
	}
	return a
}

// rotate turns src clockwise by deg degrees about (W/2, H/2) with bicubic
// sampling and replicated borders. The size is kept.
func rotate(src gocv.Mat, dst *gocv.Mat, deg float64) {
	w, h := src.Cols(), src.Rows()
	m := gocv.GetRotationMatrix2D(image.Pt(w/2, h/2), -deg, 1.0)
	defer m.Close()
	gocv.WarpAffineWithParams(src, dst, m, image.Pt(w, h), gocv.InterpolationCubic, gocv.BorderReplicate, color.RGBA{})
}

// Rotate turns g clockwise by deg degrees about its centre, keeping its size
// and channels.
func Rotate(g *Grid, deg float64) (*Grid, error) {
	if deg == 0 {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		return g.Clone(), nil
	}
	src, err := matOf(g)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	rotate(src, &dst, deg)
	return gridOf(dst)
}

// Deskew rotates g by the negated skew angle. Angles below 1e-6 degrees leave
// the grid as is.
func Deskew(g *Grid) (*Grid, error) {
	theta, err := SkewAngle(g)
	if err != nil {
		return nil, err
	}
	if math.Abs(theta) < 1e-6 {
		return g.Clone(), nil
	}
	return Rotate(g, -theta)
}
