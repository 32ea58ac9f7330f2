package imgproc

import (
	"errors"
	"fmt"
)

// Region names a fixed sub-rectangle of a check.
type Region string

const (
	RegionAmount    Region = "amount"
	RegionDate      Region = "date"
	RegionSignature Region = "signature"
	RegionMICR      Region = "micr"
)

// Regions lists every region in extraction order.
var Regions = []Region{RegionAmount, RegionDate, RegionSignature, RegionMICR}

// ErrRegionExtraction marks a grid that could not be sliced at all.
var ErrRegionExtraction = errors.New("region extraction failed")

// frac is a rectangle in fractions of the frame: rows [top,bottom), cols [left,right).
type frac struct {
	top, bottom, left, right float64
}

var regionLayout = map[Region]frac{
	RegionAmount:    {0.10, 0.30, 0.65, 0.95},
	RegionDate:      {0.05, 0.15, 0.70, 0.95},
	RegionSignature: {0.60, 0.80, 0.60, 0.95},
	RegionMICR:      {0.80, 1.00, 0.10, 0.90},
}

// RegionSet always holds exactly the four named regions.
type RegionSet map[Region]*Grid

// ExtractRegions slices g into the amount, date, signature and MICR regions.
// Zero-area regions are replaced by Placeholder. If g itself is unusable every
// region is a placeholder and ErrRegionExtraction is returned alongside.
func ExtractRegions(g *Grid) (RegionSet, error) {
	set := make(RegionSet, len(Regions))
	if err := g.Validate(); err != nil {
		for _, r := range Regions {
			set[r] = Placeholder()
		}
		return set, fmt.Errorf("%w: %w", ErrRegionExtraction, err)
	}
	for _, r := range Regions {
		f := regionLayout[r]
		y0, y1 := int(float64(g.Height)*f.top), int(float64(g.Height)*f.bottom)
		x0, x1 := int(float64(g.Width)*f.left), int(float64(g.Width)*f.right)
		if x1 <= x0 || y1 <= y0 {
			set[r] = Placeholder()
			continue
		}
		set[r] = g.Crop(x0, y0, x1, y1)
	}
	return set, nil
}
