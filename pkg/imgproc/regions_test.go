package imgproc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractRegionsFractions(t *testing.T) {
	g := NewGrid(1000, 500, 1)
	set, err := ExtractRegions(g)
	require.NoError(t, err)
	require.Len(t, set, 4)

	want := map[Region][2]int{
		RegionAmount:    {300, 100},
		RegionDate:      {250, 50},
		RegionSignature: {350, 100},
		RegionMICR:      {800, 100},
	}
	for r, dims := range want {
		require.Equal(t, dims[0], set[r].Width, r)
		require.Equal(t, dims[1], set[r].Height, r)
	}
}

func TestExtractRegionsCopiesPixels(t *testing.T) {
	g := NewGrid(100, 100, 1)
	g.Set(70, 20, 200)

	set, err := ExtractRegions(g)
	require.NoError(t, err)
	amount := set[RegionAmount]
	require.Equal(t, uint8(200), amount.At(70-65, 20-10))

	amount.Set(0, 0, 9)
	require.Equal(t, uint8(0), g.At(65, 10))
}

func TestExtractRegionsZeroAreaUsesPlaceholder(t *testing.T) {
	// 5 rows: date rows are int(0.25)=0 to int(0.75)=0
	g := NewGrid(40, 5, 3)
	set, err := ExtractRegions(g)
	require.NoError(t, err)
	require.Len(t, set, 4)
	require.Equal(t, Placeholder(), set[RegionDate])
	require.Equal(t, 1, set[RegionMICR].Height)
}

func TestExtractRegionsTotalFailure(t *testing.T) {
	set, err := ExtractRegions(nil)
	require.ErrorIs(t, err, ErrRegionExtraction)
	require.Len(t, set, 4)
	for _, r := range Regions {
		require.Equal(t, Placeholder(), set[r])
	}
}
