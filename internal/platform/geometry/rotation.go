package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// parallelEpsilon bounds when two directions are treated as parallel and when
// a forward vector is treated as zero-length.
const parallelEpsilon = 1e-6

// LookRotation returns the rotation whose local forward (+Z) axis points along
// forward and whose local up axis is the component of up orthogonal to
// forward.
//
// A zero-length forward vector has no defined orientation; the identity
// rotation and ok=false are returned so callers can keep the current rotation
// unchanged. When forward and up are parallel the roll is resolved by
// substituting world-forward as the up axis, or world-right when forward is
// itself aligned with world-forward. Both fallbacks are deterministic.
func LookRotation(forward, up mgl64.Vec3) (mgl64.Quat, bool) {
	if forward.Len() < parallelEpsilon {
		return mgl64.QuatIdent(), false
	}
	f := forward.Normalize()

	u := up
	if u.Len() < parallelEpsilon {
		u = WorldUp
	}
	if nearParallel(f, u) {
		u = WorldForward
		if nearParallel(f, u) {
			u = WorldRight
		}
	}

	right := u.Cross(f).Normalize()
	realUp := f.Cross(right)

	// Column-major basis matrix mapping local right/up/forward onto world.
	m := mgl64.Mat4{
		right[0], right[1], right[2], 0,
		realUp[0], realUp[1], realUp[2], 0,
		f[0], f[1], f[2], 0,
		0, 0, 0, 1,
	}
	return mgl64.Mat4ToQuat(m).Normalize(), true
}

// Forward returns the world-space direction of the rotation's local +Z axis.
func Forward(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(WorldForward)
}

// EulerDegrees converts a rotation into Euler angles in degrees, applied in
// z-x-y order about world axes. Angles are normalized to [0, 360). This
// representation is for reporting only; rotation math stays in quaternions.
func EulerDegrees(q mgl64.Quat) [3]float64 {
	m := q.Normalize().Mat4()

	sinX := -m.At(1, 2)
	var x, y, z float64
	if math.Abs(sinX) < 0.999999 {
		x = math.Asin(sinX)
		y = math.Atan2(m.At(0, 2), m.At(2, 2))
		z = math.Atan2(m.At(1, 0), m.At(1, 1))
	} else if sinX > 0 {
		// Gimbal lock looking straight up: fold roll into yaw.
		x = math.Pi / 2
		y = math.Atan2(m.At(0, 1), m.At(0, 0))
		z = 0
	} else {
		x = -math.Pi / 2
		y = math.Atan2(-m.At(0, 1), m.At(0, 0))
		z = 0
	}

	return [3]float64{
		normalizeDegrees(mgl64.RadToDeg(x)),
		normalizeDegrees(mgl64.RadToDeg(y)),
		normalizeDegrees(mgl64.RadToDeg(z)),
	}
}

// QuatFromEulerDegrees builds a rotation from z-x-y ordered Euler angles in
// degrees, inverse of EulerDegrees.
func QuatFromEulerDegrees(angles [3]float64) mgl64.Quat {
	x := mgl64.DegToRad(angles[0])
	y := mgl64.DegToRad(angles[1])
	z := mgl64.DegToRad(angles[2])
	qy := mgl64.QuatRotate(y, WorldUp)
	qx := mgl64.QuatRotate(x, WorldRight)
	qz := mgl64.QuatRotate(z, WorldForward)
	return qy.Mul(qx).Mul(qz).Normalize()
}

// normalizeDegrees wraps an angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// Collapse -0 and values that rounded up to 360.
	if deg == 360 || deg == 0 {
		return 0
	}
	return deg
}

// nearParallel reports whether two directions are parallel or anti-parallel.
func nearParallel(a, b mgl64.Vec3) bool {
	dot := a.Normalize().Dot(b.Normalize())
	return math.Abs(dot) > 1-parallelEpsilon
}
