package terrain

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"

	"voxelspace/internal/mathutil"
)

var (
	// ErrNotPowerOfTwo is returned when a map dimension is not a power of two.
	ErrNotPowerOfTwo = errors.New("terrain: map dimensions must be powers of two")
	// ErrEmptyMap is returned for zero-sized maps or sample slices that do not cover the grid.
	ErrEmptyMap = errors.New("terrain: empty or short map data")
)

// grid holds the wrap masks shared by both map kinds.
// Width and Height are powers of two, so wrapping is a bitmask, not a modulo.
type grid struct {
	Width  int
	Height int
	maskX  int
	maskY  int
	shift  int
}

func newGrid(w, h, n int) (grid, error) {
	if w <= 0 || h <= 0 || n < w*h {
		return grid{}, fmt.Errorf("%w: %dx%d with %d samples", ErrEmptyMap, w, h, n)
	}
	if !mathutil.IsPowerOfTwo(w) || !mathutil.IsPowerOfTwo(h) {
		return grid{}, fmt.Errorf("%w: got %dx%d", ErrNotPowerOfTwo, w, h)
	}
	return grid{
		Width:  w,
		Height: h,
		maskX:  w - 1,
		maskY:  h - 1,
		shift:  mathutil.Log2(w),
	}, nil
}

// Index returns the flat offset of the wrapped cell (x, y).
// Negative coordinates wrap as well since the masks operate on two's complement.
func (g grid) Index(x, y int) int {
	return (y&g.maskY)<<g.shift | x&g.maskX
}

// HeightMap is an immutable power-of-two elevation grid stored row-major.
type HeightMap struct {
	grid
	Data []uint16
}

// NewHeightMap validates dimensions once so the projection loop can mask without checks.
func NewHeightMap(w, h int, data []uint16) (*HeightMap, error) {
	g, err := newGrid(w, h, len(data))
	if err != nil {
		return nil, err
	}
	return &HeightMap{grid: g, Data: slices.Clone(data[:w*h])}, nil
}

// At returns the height of the wrapped cell (x, y).
func (m *HeightMap) At(x, y int) uint16 {
	return m.Data[m.Index(x, y)]
}

// Ground returns the height under a world-space point.
func (m *HeightMap) Ground(x, y float64) float64 {
	return float64(m.At(int(math.Floor(x)), int(math.Floor(y))))
}

// ColorMap is an immutable power-of-two color grid. Its period is independent of the HeightMap.
type ColorMap struct {
	grid
	Data []color.NRGBA
}

// NewColorMap validates dimensions the same way NewHeightMap does.
func NewColorMap(w, h int, data []color.NRGBA) (*ColorMap, error) {
	g, err := newGrid(w, h, len(data))
	if err != nil {
		return nil, err
	}
	return &ColorMap{grid: g, Data: slices.Clone(data[:w*h])}, nil
}

// At returns the color of the wrapped cell (x, y).
func (m *ColorMap) At(x, y int) color.NRGBA {
	return m.Data[m.Index(x, y)]
}
