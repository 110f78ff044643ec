package camera

import (
	"math"
	"time"

	"voxelspace/internal/mathutil"
)

const (
	// DefaultTick replaces a zero or negative elapsed time.
	DefaultTick = 16 * time.Millisecond
	// MaxTick caps elapsed time so a stall does not teleport the camera.
	MaxTick = 100 * time.Millisecond

	MoveSpeed    = 120.0 // map cells per second
	TurnSpeed    = 90.0  // degrees per second
	HorizonSpeed = 300.0 // screen rows per second
	PitchSpeed   = 60.0  // degrees per second

	MaxPitch = 90.0
)

// Simulate returns the pose after applying sym for elapsed time.
// It is pure: p is a copy and the caller's pose is never touched.
func Simulate(sym Symbol, p Pose, elapsed time.Duration) Pose {
	dt := Tick(elapsed).Seconds()

	switch sym {
	case Forward, Back:
		d := MoveSpeed * dt
		if sym == Back {
			d = -d
		}
		rad := mathutil.Deg2Rad(p.Angle)
		p.X -= math.Sin(rad) * d
		p.Y -= math.Cos(rad) * d
	case TurnLeft:
		p.Angle = mathutil.NormalizeDegrees(p.Angle + TurnSpeed*dt)
	case TurnRight:
		p.Angle = mathutil.NormalizeDegrees(p.Angle - TurnSpeed*dt)
	case LookUp:
		p.Horizon += HorizonSpeed * dt
	case LookDown:
		p.Horizon -= HorizonSpeed * dt
	case PitchUp:
		p.Pitch = mathutil.Clamp(p.Pitch+PitchSpeed*dt, -MaxPitch, MaxPitch)
	case PitchDown:
		p.Pitch = mathutil.Clamp(p.Pitch-PitchSpeed*dt, -MaxPitch, MaxPitch)
	}
	return p
}

// Tick applies the elapsed-time policy: never zero, never above MaxTick.
func Tick(elapsed time.Duration) time.Duration {
	if elapsed <= 0 {
		return DefaultTick
	}
	if elapsed > MaxTick {
		return MaxTick
	}
	return elapsed
}
