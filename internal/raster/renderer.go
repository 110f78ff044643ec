package raster

import (
	"errors"
	"image"
	"image/color"
	"runtime"
	"sync"

	"voxelspace/internal/camera"
	"voxelspace/internal/terrain"
)

// ErrNilMap is returned when a renderer is built without both maps.
var ErrNilMap = errors.New("raster: height map and color map are required")

// Options tunes a Renderer.
type Options struct {
	// Workers bounds reconstruction fan-out. Defaults to NumCPU.
	Workers int
	// Background is painted before any terrain.
	Background color.NRGBA
}

// Renderer runs the full pipeline: project, reconstruct, commit to a frame.
// It is safe for concurrent use; every Render owns its scratch buffers.
type Renderer struct {
	hm         *terrain.HeightMap
	cm         *terrain.ColorMap
	screen     Screen
	workers    int
	background color.NRGBA

	columns sync.Pool // *ColumnBuffer sized for screen
}

// NewRenderer validates its inputs once so Render never has to.
func NewRenderer(hm *terrain.HeightMap, cm *terrain.ColorMap, screen Screen, opts Options) (*Renderer, error) {
	if hm == nil || cm == nil {
		return nil, ErrNilMap
	}
	if err := screen.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	r := &Renderer{
		hm:         hm,
		cm:         cm,
		screen:     screen,
		workers:    opts.Workers,
		background: opts.Background,
	}
	r.columns.New = func() any {
		return NewColumnBuffer(screen.Width, screen.Height)
	}
	return r, nil
}

// Render draws one frame for pose.
func (r *Renderer) Render(pose camera.Pose) *image.NRGBA {
	fb := NewFrameBuffer(r.screen.Width, r.screen.Height)
	r.RenderTo(fb, pose)
	return fb.Image()
}

// RenderTo draws pose into an arbitrary sink. Background filling is the
// caller's job when the sink is not a FrameBuffer.
func (r *Renderer) RenderTo(sink Sink, pose camera.Pose) {
	if fb, ok := sink.(*FrameBuffer); ok {
		fb.Fill(r.background)
	}

	cb := r.columns.Get().(*ColumnBuffer)
	defer r.columns.Put(cb)

	reg := NewColorRegistry()
	ProjectInto(cb, reg, r.hm, r.cm, pose, r.screen)
	sink.SetRuns(Reconstruct(cb, reg, r.workers))
}

// Ground returns the terrain height under a world point.
func (r *Renderer) Ground(x, y float64) float64 {
	return r.hm.Ground(x, y)
}

func (r *Renderer) Screen() Screen {
	return r.screen
}

func (r *Renderer) Background() color.NRGBA {
	return r.background
}
