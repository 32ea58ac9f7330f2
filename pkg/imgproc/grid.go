package imgproc

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrInvalidGrid is returned when a grid has non-positive dimensions or a pixel
// buffer that does not match them.
var ErrInvalidGrid = errors.New("invalid pixel grid")

// Grid is an 8-bit pixel buffer with explicit dimensions. Channels is 1 for
// grayscale or 3 for RGB; Pix is row-major with Channels samples per pixel.
type Grid struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewGrid allocates a zero-filled grid.
func NewGrid(width, height, channels int) *Grid {
	return &Grid{Width: width, Height: height, Channels: channels, Pix: make([]uint8, width*height*channels)}
}

// Placeholder is the 100x100 single-channel zero grid substituted for empty regions.
func Placeholder() *Grid {
	return NewGrid(100, 100, 1)
}

// Validate reports whether the grid is usable by the pipeline stages.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil", ErrInvalidGrid)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, g.Width, g.Height)
	}
	if g.Channels != 1 && g.Channels != 3 {
		return fmt.Errorf("%w: %d channels", ErrInvalidGrid, g.Channels)
	}
	if len(g.Pix) != g.Width*g.Height*g.Channels {
		return fmt.Errorf("%w: buffer length %d", ErrInvalidGrid, len(g.Pix))
	}
	return nil
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	out := &Grid{Width: g.Width, Height: g.Height, Channels: g.Channels, Pix: make([]uint8, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// At returns the first channel sample at (x, y).
func (g *Grid) At(x, y int) uint8 {
	return g.Pix[(y*g.Width+x)*g.Channels]
}

// Set writes v into every channel at (x, y).
func (g *Grid) Set(x, y int, v uint8) {
	i := (y*g.Width + x) * g.Channels
	for c := 0; c < g.Channels; c++ {
		g.Pix[i+c] = v
	}
}

// Crop copies the rectangle [x0,x1) x [y0,y1) into a new grid.
func (g *Grid) Crop(x0, y0, x1, y1 int) *Grid {
	w, h := x1-x0, y1-y0
	out := NewGrid(w, h, g.Channels)
	rowLen := w * g.Channels
	for y := 0; y < h; y++ {
		src := ((y0+y)*g.Width + x0) * g.Channels
		copy(out.Pix[y*rowLen:(y+1)*rowLen], g.Pix[src:src+rowLen])
	}
	return out
}

// Image returns an image.Image copy of the grid: *image.Gray for one channel,
// *image.NRGBA for three.
func (g *Grid) Image() image.Image {
	if g.Channels == 1 {
		img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
		for y := 0; y < g.Height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+g.Width], g.Pix[y*g.Width:(y+1)*g.Width])
		}
		return img
	}
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			s := (y*g.Width + x) * 3
			d := y*img.Stride + x*4
			img.Pix[d] = g.Pix[s]
			img.Pix[d+1] = g.Pix[s+1]
			img.Pix[d+2] = g.Pix[s+2]
			img.Pix[d+3] = 255
		}
	}
	return img
}

// FromImage converts any image into a 3-channel RGB grid. Alpha is composited
// over white so transparent PNG backgrounds read as paper.
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Over)
	g := NewGrid(b.Dx(), b.Dy(), 3)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			s := y*nrgba.Stride + x*4
			d := (y*g.Width + x) * 3
			g.Pix[d] = nrgba.Pix[s]
			g.Pix[d+1] = nrgba.Pix[s+1]
			g.Pix[d+2] = nrgba.Pix[s+2]
		}
	}
	return g
}
