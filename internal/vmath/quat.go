// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package vmath

import "math"

// Quat is a rotation quaternion with W as the scalar part.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle builds a rotation of angle radians around axis.
// axis must be normalized.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	half := angle / 2
	s := math.Sin(half)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math.Cos(half),
	}
}

// QuatFromEuler builds a rotation from pitch (X), yaw (Y) and roll (Z)
// in radians, applied in yaw-pitch-roll order.
func QuatFromEuler(pitch, yaw, roll float64) Quat {
	qy := QuatFromAxisAngle(Vec3{Y: 1}, yaw)
	qx := QuatFromAxisAngle(Vec3{X: 1}, pitch)
	qz := QuatFromAxisAngle(Vec3{Z: 1}, roll)
	return qy.Mul(qx).Mul(qz)
}

// Mul returns the composed rotation q then r applied in r-first order,
// i.e. (q.Mul(r)).Rotate(v) == q.Rotate(r.Rotate(v)).
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Conjugate returns the inverse rotation for a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

func (q Quat) Dot(r Quat) float64 {
	return q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W
}

func (q Quat) NormSq() float64 {
	return q.Dot(q)
}

func (q Quat) Norm() float64 {
	return math.Sqrt(q.NormSq())
}

// Normalize returns the unit quaternion, falling back to identity when the
// input is degenerate.
func (q Quat) Normalize() Quat {
	n := q.Norm()
	if n < 1e-12 {
		return QuatIdentity()
	}
	inv := 1.0 / n
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// IsFinite reports whether all components are finite numbers.
func (q Quat) IsFinite() bool {
	return !math.IsNaN(q.X) && !math.IsInf(q.X, 0) &&
		!math.IsNaN(q.Y) && !math.IsInf(q.Y, 0) &&
		!math.IsNaN(q.Z) && !math.IsInf(q.Z, 0) &&
		!math.IsNaN(q.W) && !math.IsInf(q.W, 0)
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	s := q.W
	// v' = 2(u·v)u + (s²-u·u)v + 2s(u×v)
	return u.Scale(2 * u.Dot(v)).
		Add(v.Scale(s*s - u.Dot(u))).
		Add(u.Cross(v).Scale(2 * s))
}

// Forward returns the rotated -Z axis (camera-style forward).
func (q Quat) Forward() Vec3 {
	return q.Rotate(Vec3{Z: -1})
}

// Up returns the rotated +Y axis.
func (q Quat) Up() Vec3 {
	return q.Rotate(Vec3{Y: 1})
}

// Right returns the rotated +X axis.
func (q Quat) Right() Vec3 {
	return q.Rotate(Vec3{X: 1})
}

// Slerp interpolates from q to r by t in [0,1], taking the shorter arc.
// Falls back to normalized lerp when the rotations are nearly aligned.
func (q Quat) Slerp(r Quat, t float64) Quat {
	dot := q.Dot(r)
	if dot < 0 {
		r = Quat{-r.X, -r.Y, -r.Z, -r.W}
		dot = -dot
	}

	if dot > 0.9995 {
		return Quat{
			X: q.X + t*(r.X-q.X),
			Y: q.Y + t*(r.Y-q.Y),
			Z: q.Z + t*(r.Z-q.Z),
			W: q.W + t*(r.W-q.W),
		}.Normalize()
	}

	theta0 := math.Acos(dot)
	theta := theta0 * t
	sinTheta := math.Sin(theta)
	sinTheta0 := math.Sin(theta0)

	s0 := math.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quat{
		X: q.X*s0 + r.X*s1,
		Y: q.Y*s0 + r.Y*s1,
		Z: q.Z*s0 + r.Z*s1,
		W: q.W*s0 + r.W*s1,
	}.Normalize()
}

// ToAxisAngle decomposes a unit quaternion into a rotation axis and an
// angle in radians. The zero rotation yields the +X axis and angle 0.
func (q Quat) ToAxisAngle() (Vec3, float64) {
	w := clamp(q.W, -1, 1)
	angle := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < 1e-9 {
		return Vec3{X: 1}, 0
	}
	inv := 1.0 / s
	return Vec3{q.X * inv, q.Y * inv, q.Z * inv}, angle
}

// AngleTo returns the rotation angle in radians between q and r.
func (q Quat) AngleTo(r Quat) float64 {
	d := math.Abs(q.Dot(r))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// Euler returns pitch (X), yaw (Y) and roll (Z) in radians for the
// yaw-pitch-roll convention used by QuatFromEuler.
func (q Quat) Euler() (pitch, yaw, roll float64) {
	// Pitch from the forward vector's elevation avoids gimbal surprises
	// near ±90°.
	fwd := q.Forward()
	pitch = math.Asin(clamp(fwd.Y, -1, 1))
	yaw = math.Atan2(-fwd.X, -fwd.Z)

	up := q.Up()
	right := q.Right()
	// Roll is the bank of the right axis against the horizon plane.
	roll = math.Atan2(right.Y, up.Y)
	return pitch, yaw, roll
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
