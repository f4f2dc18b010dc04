// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// mountCorrection tips the device frame by a fixed 90° pitch so that a
// phone mounted landscape in the holder looks down the display -Z axis.
var mountCorrection = vmath.QuatFromAxisAngle(vmath.Vec3{X: 1}, -math.Pi/2)

// remapAttitude re-expresses a device-frame attitude in the display
// frame: flip the handedness of the sensor frame, then change basis by
// the fixed mount correction. Identity maps to identity, so a freshly
// recentered device reads as "looking forward".
func remapAttitude(q vmath.Quat) vmath.Quat {
	flipped := vmath.Quat{X: q.X, Y: -q.Y, Z: -q.Z, W: q.W}
	return mountCorrection.Mul(flipped).Mul(mountCorrection.Conjugate()).Normalize()
}

// remapVector applies the matching handedness flip and mount rotation
// to a device-frame vector (angular rate, acceleration).
func remapVector(v vmath.Vec3) vmath.Vec3 {
	flipped := vmath.Vec3{X: v.X, Y: -v.Y, Z: -v.Z}
	return mountCorrection.Rotate(flipped)
}
