package raster

import (
	"image"
	"image/color"
)

// Point is a single pixel write.
type Point struct {
	X, Y  int
	Color color.NRGBA
}

// Sink accepts reconstructed output in batches.
type Sink interface {
	SetPixels(points []Point)
	SetRuns(runs []Run)
}

// FrameBuffer holds the rendering target as a flat slice for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8 // RGBA interleaved, len = W*H*4
}

// NewFrameBuffer allocates a zeroed (fully transparent) buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
	}
}

// Fill paints every pixel with c.
func (fb *FrameBuffer) Fill(c color.NRGBA) {
	if len(fb.Color) == 0 {
		return
	}
	px := [4]uint8{c.R, c.G, c.B, c.A}
	copy(fb.Color, px[:])
	// Double the initialised prefix until the whole slice is covered.
	for n := 4; n < len(fb.Color); n *= 2 {
		copy(fb.Color[n:], fb.Color[:n])
	}
}

// SetPixels writes individual pixels; points outside the buffer are ignored.
func (fb *FrameBuffer) SetPixels(points []Point) {
	for _, p := range points {
		if p.X < 0 || p.X >= fb.Width || p.Y < 0 || p.Y >= fb.Height {
			continue
		}
		fb.set((p.Y*fb.Width+p.X)*4, p.Color)
	}
}

// SetRuns writes vertical spans, clipped to the buffer.
func (fb *FrameBuffer) SetRuns(runs []Run) {
	stride := fb.Width * 4
	for _, r := range runs {
		if r.Column < 0 || r.Column >= fb.Width {
			continue
		}
		start, end := max(r.RowStart, 0), min(r.RowEnd, fb.Height)
		for i := start*stride + r.Column*4; start < end; start, i = start+1, i+stride {
			fb.set(i, r.Color)
		}
	}
}

func (fb *FrameBuffer) set(i int, c color.NRGBA) {
	fb.Color[i] = c.R
	fb.Color[i+1] = c.G
	fb.Color[i+2] = c.B
	fb.Color[i+3] = c.A
}

// Image exposes the buffer as an NRGBA image. The pixels are shared, not copied.
func (fb *FrameBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    fb.Color,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}
