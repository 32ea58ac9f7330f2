package imgproc

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrEmptyResult is returned when an OpenCV stage produced no pixels.
var ErrEmptyResult = errors.New("empty result")

// matOf wraps the grid's pixels in a Mat of the matching type. The Mat shares
// g.Pix; stages must only read from it. Close it when done.
func matOf(g *Grid) (gocv.Mat, error) {
	if err := g.Validate(); err != nil {
		return gocv.Mat{}, err
	}
	mt := gocv.MatTypeCV8UC1
	if g.Channels == 3 {
		mt = gocv.MatTypeCV8UC3
	}
	m, err := gocv.NewMatFromBytes(g.Height, g.Width, mt, g.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("wrap grid: %w", err)
	}
	return m, nil
}

// gridOf copies a CV_8UC1 or CV_8UC3 Mat into a new grid.
func gridOf(m gocv.Mat) (*Grid, error) {
	if m.Empty() {
		return nil, ErrEmptyResult
	}
	g := &Grid{Width: m.Cols(), Height: m.Rows(), Channels: m.Channels(), Pix: m.ToBytes()}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// grayMat returns a single-channel copy of src. Grids are RGB, so three
// channels convert with luma weights.
func grayMat(src gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if src.Channels() == 1 {
		src.CopyTo(&gray)
		return gray
	}
	gocv.CvtColor(src, &gray, gocv.ColorRGBToGray)
	return gray
}

// apply runs op on the grayscale Mat of g and returns its output as a grid.
func apply(g *Grid, op func(src gocv.Mat, dst *gocv.Mat)) (*Grid, error) {
	src, err := matOf(g)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	gray := grayMat(src)
	defer gray.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	op(gray, &dst)
	return gridOf(dst)
}

// ToGray converts a grid to a single channel. Single-channel input is copied.
func ToGray(g *Grid) (*Grid, error) {
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) { src.CopyTo(dst) })
}

// Resize scales g to w x h with bilinear interpolation, keeping its channels.
func Resize(g *Grid, w, h int) (*Grid, error) {
	src, err := matOf(g)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	return gridOf(dst)
}

// MeanStdDev returns the grayscale mean and population standard deviation.
func MeanStdDev(g *Grid) (float64, float64, error) {
	src, err := matOf(g)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()
	gray := grayMat(src)
	defer gray.Close()
	mean, std := gocv.NewMat(), gocv.NewMat()
	defer mean.Close()
	defer std.Close()
	gocv.MeanStdDev(gray, &mean, &std)
	if mean.Empty() || std.Empty() {
		return 0, 0, ErrEmptyResult
	}
	return mean.GetDoubleAt(0, 0), std.GetDoubleAt(0, 0), nil
}
