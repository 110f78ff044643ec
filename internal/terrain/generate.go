package terrain

import (
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"
)

const (
	noiseAlpha   = 2.0 // smoothing
	noiseBeta    = 2.0 // frequency
	noiseOctaves = 3
	noiseCells   = 6.0 // noise features across one map period

	waterLevel = 70
	maxHeight  = 255
)

// band is one stop of the elevation color ramp.
type band struct {
	top uint16
	c   color.NRGBA
}

var ramp = []band{
	{waterLevel, color.NRGBA{R: 38, G: 84, B: 150, A: 255}},
	{waterLevel + 8, color.NRGBA{R: 206, G: 190, B: 132, A: 255}},
	{150, color.NRGBA{R: 84, G: 140, B: 62, A: 255}},
	{205, color.NRGBA{R: 120, G: 108, B: 96, A: 255}},
	{maxHeight, color.NRGBA{R: 236, G: 236, B: 240, A: 255}},
}

// Generate builds a seamless size×size terrain from Perlin noise.
// The same seed always yields the same maps.
func Generate(size int, seed int64) (*HeightMap, *ColorMap, error) {
	if _, err := newGrid(size, size, size*size); err != nil {
		return nil, nil, err
	}

	p := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)
	s := float64(size)
	freq := noiseCells / s

	raw := make([]float64, size*size)
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x), float64(y)
			// Blend four shifted samples so opposite edges match and the map tiles.
			n := p.Noise2D(fx*freq, fy*freq)*(s-fx)*(s-fy) +
				p.Noise2D((fx-s)*freq, fy*freq)*fx*(s-fy) +
				p.Noise2D(fx*freq, (fy-s)*freq)*(s-fx)*fy +
				p.Noise2D((fx-s)*freq, (fy-s)*freq)*fx*fy
			n /= s * s
			raw[y*size+x] = n
			lo = math.Min(lo, n)
			hi = math.Max(hi, n)
		}
	}

	span := hi - lo
	if span < 1e-9 {
		span = 1
	}
	heights := make([]uint16, size*size)
	for i, n := range raw {
		v := uint16((n - lo) / span * maxHeight)
		if v < waterLevel {
			v = waterLevel
		}
		heights[i] = v
	}

	hm, err := NewHeightMap(size, size, heights)
	if err != nil {
		return nil, nil, err
	}

	colors := make([]color.NRGBA, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			h := hm.At(x, y)
			c := rampColor(h)
			if h > waterLevel {
				// Light from the north-west: brighten slopes facing it.
				slope := float64(int(h)-int(hm.At(x+1, y+1))) * 0.04
				c = shade(c, 1+math.Max(-0.35, math.Min(0.35, slope)))
			}
			colors[y*size+x] = c
		}
	}

	cm, err := NewColorMap(size, size, colors)
	if err != nil {
		return nil, nil, err
	}
	return hm, cm, nil
}

func rampColor(h uint16) color.NRGBA {
	for _, b := range ramp {
		if h <= b.top {
			return b.c
		}
	}
	return ramp[len(ramp)-1].c
}

func shade(c color.NRGBA, k float64) color.NRGBA {
	scale := func(v uint8) uint8 {
		f := float64(v) * k
		if f > 255 {
			return 255
		}
		return uint8(f + 0.5)
	}
	return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}
