package raster

import (
	"errors"
	"fmt"

	"voxelspace/internal/camera"
)

const (
	DefaultFieldOfView = 90.0
	DefaultScale       = 120.0
	DefaultDistance    = 800.0
)

// ErrInvalidScreen is returned for screens without a positive size.
var ErrInvalidScreen = errors.New("raster: invalid screen")

// Screen is the per-session render configuration shared by every frame.
type Screen struct {
	Width       int
	Height      int
	CellSize    int     // output pixels per rendered pixel
	MaxDistance float64 // far plane when the pose has none
	FieldOfView float64 // degrees
	Scale       float64 // vertical projection scale
}

// Validate checks the invariants the projector relies on.
func (s Screen) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidScreen, s.Width, s.Height)
	}
	if s.FieldOfView < 0 || s.FieldOfView >= 180 {
		return fmt.Errorf("%w: field of view %.1f", ErrInvalidScreen, s.FieldOfView)
	}
	if s.CellSize < 0 || s.MaxDistance < 0 || s.Scale < 0 {
		return fmt.Errorf("%w: negative cell size, distance or scale", ErrInvalidScreen)
	}
	return nil
}

// far returns the march limit: the nearer of the pose and screen limits.
func (s Screen) far(p camera.Pose) float64 {
	far := s.MaxDistance
	if p.ZFar > 0 && (far <= 0 || p.ZFar < far) {
		far = p.ZFar
	}
	if far <= 0 {
		far = DefaultDistance
	}
	return far
}

// fov ignores pose values outside (0, 180), the range Validate enforces
// on the screen.
func (s Screen) fov(p camera.Pose) float64 {
	switch {
	case p.FieldOfView > 0 && p.FieldOfView < 180:
		return p.FieldOfView
	case s.FieldOfView > 0:
		return s.FieldOfView
	}
	return DefaultFieldOfView
}

func (s Screen) scale(p camera.Pose) float64 {
	switch {
	case p.Scale > 0:
		return p.Scale
	case s.Scale > 0:
		return s.Scale
	}
	return DefaultScale
}
