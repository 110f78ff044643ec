package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameBufferFill(t *testing.T) {
	for _, n := range []int{1, 3, 7, 64} {
		fb := NewFrameBuffer(n, n+1)
		fb.Fill(sky)
		img := fb.Image()
		for y := 0; y < n+1; y++ {
			for x := 0; x < n; x++ {
				assert.Equal(t, sky, img.NRGBAAt(x, y))
			}
		}
	}
	NewFrameBuffer(0, 0).Fill(sky)
}

func TestFrameBufferSetRunsClips(t *testing.T) {
	fb := NewFrameBuffer(3, 4)
	fb.SetRuns([]Run{
		{Column: 1, RowStart: -2, RowEnd: 2, Color: grass},
		{Column: 2, RowStart: 3, RowEnd: 10, Color: rock},
		{Column: 5, RowStart: 0, RowEnd: 4, Color: dirt},
	})
	img := fb.Image()

	assert.Equal(t, grass, img.NRGBAAt(1, 0))
	assert.Equal(t, grass, img.NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 2))
	assert.Equal(t, rock, img.NRGBAAt(2, 3))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(2, 2))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))
}

func TestFrameBufferSetPixels(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.SetPixels([]Point{
		{X: 1, Y: 0, Color: sand},
		{X: -1, Y: 0, Color: rock},
		{X: 0, Y: 2, Color: rock},
	})
	img := fb.Image()
	assert.Equal(t, sand, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))

	// Image shares pixels with the buffer.
	fb.SetPixels([]Point{{X: 0, Y: 1, Color: dirt}})
	assert.Equal(t, dirt, img.NRGBAAt(0, 1))
}

func TestColorRegistryIsIdempotent(t *testing.T) {
	reg := NewColorRegistry()
	id := Pack(grass)
	reg.Register(id, grass)
	reg.Register(id, rock)

	c, ok := reg.Lookup(id)
	assert.True(t, ok)
	assert.Equal(t, grass, c)
	assert.Equal(t, 1, reg.Len())

	_, ok = reg.Lookup(Pack(rock))
	assert.False(t, ok)
}

func TestPackKeepsAlpha(t *testing.T) {
	assert.Equal(t, ColorID(0xFF102030), Pack(color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}))
	assert.Equal(t, ColorID(0), Pack(color.NRGBA{}))
	assert.NotEqual(t, Pack(color.NRGBA{R: 1}), Pack(color.NRGBA{R: 1, A: 1}))
}

func TestColumnBufferReset(t *testing.T) {
	cb := NewColumnBuffer(2, 3)
	cb.Set(1, 2, 7)
	assert.Equal(t, ColorID(7), cb.Column(1)[2])
	cb.Reset()
	assert.Equal(t, ColorID(0), cb.At(1, 2))
}
