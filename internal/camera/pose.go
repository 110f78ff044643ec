package camera

// Pose is the camera state for one frame. It is a value type: movement
// produces a new Pose and never modifies the committed one.
type Pose struct {
	X, Y float64
	// Z is the altitude used by the projection.
	Z float64
	// Angle is yaw in degrees. The view direction is (-sin, -cos).
	Angle float64
	// Pitch in degrees, kept within [-90, 90].
	Pitch float64
	// Horizon is the screen row of the horizon line.
	Horizon float64
	// Height is the minimum clearance above the terrain, see Clearance.
	Height float64
	// Scale, ZFar and FieldOfView override the screen defaults when > 0.
	Scale       float64
	ZFar        float64
	FieldOfView float64
}

// Clearance lifts the camera so it stays at least Height above the ground.
func Clearance(p Pose, ground func(x, y float64) float64) Pose {
	if ground == nil {
		return p
	}
	if floor := ground(p.X, p.Y) + p.Height; p.Z < floor {
		p.Z = floor
	}
	return p
}
