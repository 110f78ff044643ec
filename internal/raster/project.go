package raster

import (
	"math"

	"voxelspace/internal/camera"
	"voxelspace/internal/mathutil"
	"voxelspace/internal/terrain"
)

const (
	depthStart      = 1.0
	depthStep       = 1.0
	depthStepGrowth = 0.005 // slices thin out with distance
)

// Project marches depth slices away from the camera and records, per screen
// column, the color id of every terrain sample that rises above everything
// nearer to the camera.
func Project(hm *terrain.HeightMap, cm *terrain.ColorMap, pose camera.Pose, screen Screen) (*ColumnBuffer, *ColorRegistry) {
	cb := NewColumnBuffer(screen.Width, screen.Height)
	reg := NewColorRegistry()
	ProjectInto(cb, reg, hm, cm, pose, screen)
	return cb, reg
}

// ProjectInto is Project with caller-provided scratch buffers.
// cb is reset first and must match the screen size.
func ProjectInto(cb *ColumnBuffer, reg *ColorRegistry, hm *terrain.HeightMap, cm *terrain.ColorMap, pose camera.Pose, screen Screen) {
	cb.Reset()
	p := newProjection(cb, reg, hm, cm, pose, screen)
	p.run()
}

// projection carries the per-render state of one depth march.
type projection struct {
	hm  *terrain.HeightMap
	cm  *terrain.ColorMap
	cb  *ColumnBuffer
	reg *ColorRegistry

	// ybuf[col] is the highest (smallest) row claimed so far in col.
	ybuf []int

	x, y, alt float64
	sin, cos  float64
	tanHalf   float64
	scale     float64
	offset    float64 // horizon plus pitch shift, in rows
	far       float64
}

func newProjection(cb *ColumnBuffer, reg *ColorRegistry, hm *terrain.HeightMap, cm *terrain.ColorMap, pose camera.Pose, screen Screen) *projection {
	yaw := mathutil.Deg2Rad(pose.Angle)
	scale := screen.scale(pose)

	ybuf := make([]int, cb.Width)
	for i := range ybuf {
		ybuf[i] = cb.Height
	}

	return &projection{
		hm:      hm,
		cm:      cm,
		cb:      cb,
		reg:     reg,
		ybuf:    ybuf,
		x:       pose.X,
		y:       pose.Y,
		alt:     pose.Z,
		sin:     math.Sin(yaw),
		cos:     math.Cos(yaw),
		tanHalf: math.Tan(mathutil.Deg2Rad(screen.fov(pose)) / 2),
		scale:   scale,
		offset:  pose.Horizon + math.Tan(mathutil.Deg2Rad(pose.Pitch))*scale,
		far:     screen.far(pose),
	}
}

func (p *projection) run() {
	for z, dz := depthStart, depthStep; z < p.far; z, dz = z+dz, dz+depthStepGrowth {
		p.slice(z)
	}
}

// slice samples one depth line across all columns.
//
// This is the HOT PATH: no allocation, no bounds validation of map
// coordinates (the masks wrap them).
func (p *projection) slice(z float64) {
	w := p.cb.Width
	zt := z * p.tanHalf

	lx := -p.cos*zt - p.sin*z + p.x
	ly := p.sin*zt - p.cos*z + p.y
	rx := p.cos*zt - p.sin*z + p.x
	ry := -p.sin*zt - p.cos*z + p.y

	dx := (rx - lx) / float64(w)
	dy := (ry - ly) / float64(w)
	invZ := p.scale / z

	for col := 0; col < w; col++ {
		mx := int(math.Floor(lx))
		my := int(math.Floor(ly))
		lx += dx
		ly += dy

		h := float64(p.hm.At(mx, my))
		v := (p.alt-h)*invZ + p.offset
		// Rows off screen or behind a nearer claim are dropped, never clamped.
		if !(v >= 0 && v < float64(p.ybuf[col])) {
			continue
		}
		row := int(v)

		c := p.cm.At(mx, my)
		if c.A == 0 {
			// Fully transparent cell: a hole in the terrain.
			continue
		}
		id := Pack(c)
		p.cb.Set(col, row, id)
		p.ybuf[col] = row
		p.reg.Register(id, c)
	}
}
