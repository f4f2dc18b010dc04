// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/stereo_rig/internal/imu"
	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi

	// Acceleration magnitudes below this are sensor glitches; the
	// gravity term is skipped for that tick.
	minAccelMagnitude = 0.5 // m/s²
)

// Config tunes the head pose estimator. Zero values disable the
// corresponding optional stage.
type Config struct {
	// GyroTrust is the complementary filter weight toward the gyro
	// path. Values close to 1 trust the gyro short-term and let
	// gravity pull out drift slowly.
	GyroTrust float64

	// PredictionTime advances the pose along the current angular rate
	// by this many seconds to mask input latency.
	PredictionTime float64

	// SmoothingTau is the smoothing time constant in seconds. The
	// per-tick decay is derived from the actual delta time, so the
	// response is the same at any frame rate.
	SmoothingTau float64

	// Pitch clamp, applied in Euler space after smoothing.
	ClampPitch  bool
	MinPitchDeg float64
	MaxPitchDeg float64

	// Gravity drift correction. DriftGain is the fraction of the
	// measured tilt error corrected per second.
	DriftCorrection   bool
	DriftThresholdDeg float64
	DriftGain         float64

	// LandscapeRemap converts device-frame samples from a
	// landscape-mounted phone into the display frame. Sources that
	// already report in the display frame leave this off.
	LandscapeRemap bool
}

// DefaultConfig returns the tuning used by the viewer.
func DefaultConfig() Config {
	return Config{
		GyroTrust:         0.98,
		PredictionTime:    0.0,
		SmoothingTau:      0.05,
		DriftCorrection:   true,
		DriftThresholdDeg: 1.0,
		DriftGain:         0.5,
	}
}

// Estimator fuses raw orientation samples into a stable head pose with
// drift correction and recenter support. It owns the HeadPose; callers
// read the per-tick value and never mutate it.
type Estimator struct {
	cfg Config
	src imu.Source

	state State
	pose  HeadPose

	// offset is the recenter offset, composed with every raw reading.
	offset vmath.Quat
	// preOffset is the last fused rotation with the recenter offset
	// removed, captured for the next recenter.
	preOffset vmath.Quat

	recenterPending bool
}

// NewEstimator creates an estimator reading from src.
func NewEstimator(src imu.Source, cfg Config) *Estimator {
	return &Estimator{
		cfg:       cfg,
		src:       src,
		offset:    vmath.QuatIdentity(),
		preOffset: vmath.QuatIdentity(),
		pose:      HeadPose{Rotation: vmath.QuatIdentity()},
	}
}

// Supported reports whether the underlying source provides angular
// rate. When false the caller substitutes an alternate source.
func (e *Estimator) Supported() bool {
	return e.src.HasGyro()
}

// State returns the estimator lifecycle state.
func (e *Estimator) State() State {
	return e.state
}

// Pose returns the current head pose.
func (e *Estimator) Pose() HeadPose {
	return e.pose
}

// RequestRecenter latches a recenter request. It is applied at the
// start of the next tick; while Uncalibrated the request is dropped.
func (e *Estimator) RequestRecenter() {
	e.recenterPending = true
}

// Tick consumes the latest sample and advances the pose estimate by dt
// seconds. On a sample gap or a numerically invalid sample the previous
// pose is reused unchanged.
func (e *Estimator) Tick(dt float64) HeadPose {
	if e.recenterPending {
		e.recenterPending = false
		if e.state == Tracking {
			e.offset = e.preOffset.Conjugate()
		}
	}

	s, err := e.src.Next()
	if err != nil {
		// TransientSampleGap: hold the last pose, no snap to identity.
		return e.pose
	}
	if !s.Attitude.IsFinite() || !s.AngularRate.IsFinite() || !s.Acceleration.IsFinite() {
		return e.pose
	}

	raw := s.Attitude
	rate := s.AngularRate
	accel := s.Acceleration
	if e.cfg.LandscapeRemap {
		raw = remapAttitude(raw)
		rate = remapVector(rate)
		accel = remapVector(accel)
	}

	gyroQ := e.offset.Mul(raw).Normalize()

	fused := gyroQ
	if accel.LenSq() >= minAccelMagnitude*minAccelMagnitude {
		gravityQ := gravityOrientation(accel, gyroQ)
		fused = gravityQ.Slerp(gyroQ, e.cfg.GyroTrust)
	}

	if e.cfg.PredictionTime > 0 {
		rateMag := rate.Len()
		if rateMag > 1e-9 {
			step := vmath.QuatFromAxisAngle(rate.Normalize(), rateMag*degToRad*e.cfg.PredictionTime)
			fused = fused.Mul(step)
		}
	}

	smoothed := fused
	if e.state == Tracking && e.cfg.SmoothingTau > 0 && dt > 0 {
		decay := 1 - math.Exp(-dt/e.cfg.SmoothingTau)
		smoothed = e.pose.Rotation.Slerp(fused, decay)
	}

	if e.cfg.ClampPitch {
		smoothed = clampPitch(smoothed, e.cfg.MinPitchDeg, e.cfg.MaxPitchDeg)
	}

	if e.cfg.DriftCorrection && dt > 0 && accel.LenSq() >= minAccelMagnitude*minAccelMagnitude {
		smoothed = correctDrift(smoothed, accel, e.cfg.DriftThresholdDeg, e.cfg.DriftGain*dt)
	}

	smoothed = smoothed.Normalize()
	if !smoothed.IsFinite() {
		return e.pose
	}

	var av vmath.Vec3
	if e.state == Tracking && dt > 0 {
		delta := smoothed.Mul(e.pose.Rotation.Conjugate())
		axis, angle := delta.ToAxisAngle()
		av = axis.Scale(angle * radToDeg / dt)
	}

	e.pose = HeadPose{Rotation: smoothed, AngularVelocity: av}
	e.preOffset = e.offset.Conjugate().Mul(smoothed).Normalize()
	e.state = Tracking
	return e.pose
}

// gravityOrientation derives pitch and roll from the measured gravity
// direction. Gravity carries no yaw information, so the yaw of the gyro
// path is kept as-is instead of being dragged toward zero.
func gravityOrientation(accel vmath.Vec3, gyroQ vmath.Quat) vmath.Quat {
	up := accel.Neg().Normalize()
	pitch := math.Atan2(-up.Z, math.Sqrt(up.X*up.X+up.Y*up.Y))
	roll := math.Atan2(up.X, up.Y)
	_, yaw, _ := gyroQ.Euler()
	return vmath.QuatFromEuler(pitch, yaw, roll)
}

// clampPitch limits the Euler pitch to [minDeg, maxDeg], preserving yaw
// and roll.
func clampPitch(q vmath.Quat, minDeg, maxDeg float64) vmath.Quat {
	pitch, yaw, roll := q.Euler()
	clamped := pitch
	if clamped < minDeg*degToRad {
		clamped = minDeg * degToRad
	}
	if clamped > maxDeg*degToRad {
		clamped = maxDeg * degToRad
	}
	if clamped == pitch {
		return q
	}
	return vmath.QuatFromEuler(clamped, yaw, roll)
}

// correctDrift nudges the pose so its up vector tracks the negated
// gravity direction. The correction is proportional, never a snap, so
// residual drift bleeds out without a visible jump.
func correctDrift(q vmath.Quat, accel vmath.Vec3, thresholdDeg, gain float64) vmath.Quat {
	measuredUp := q.Rotate(accel.Neg().Normalize())
	worldUp := vmath.Vec3{Y: 1}

	angle := measuredUp.AngleBetween(worldUp)
	if angle < thresholdDeg*degToRad {
		return q
	}

	axis := measuredUp.Cross(worldUp).Normalize()
	if axis.LenSq() < 1e-12 {
		return q
	}
	step := angle * gain
	if step > angle {
		step = angle
	}
	return vmath.QuatFromAxisAngle(axis, step).Mul(q).Normalize()
}
