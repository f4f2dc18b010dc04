// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package orientation

import (
	"math"
	"time"

	"github.com/relabs-tech/stereo_rig/internal/imu"
	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

const gravityMS2 = 9.80665

type mockSource struct {
	start   time.Time
	enabled bool
}

// NewMockSource creates a mock orientation source that generates smooth
// changing attitudes with physically consistent rate and gravity.
func NewMockSource() imu.Source {
	return &mockSource{start: time.Now(), enabled: true}
}

func (m *mockSource) SetEnabled(enabled bool) { m.enabled = enabled }

func (m *mockSource) HasGyro() bool { return true }

func (m *mockSource) Next() (imu.Sample, error) {
	if !m.enabled {
		return imu.Sample{}, imu.ErrNoSample
	}

	now := time.Now()
	elapsed := now.Sub(m.start).Seconds()

	pitch := 15 * degToRad * math.Cos(elapsed*0.7)
	yaw := 20 * degToRad * math.Sin(elapsed)
	roll := 5 * degToRad * math.Sin(elapsed*0.3)
	att := vmath.QuatFromEuler(pitch, yaw, roll)

	// Analytic derivatives give a plausible angular rate in deg/s.
	rate := vmath.Vec3{
		X: -15 * 0.7 * math.Sin(elapsed*0.7),
		Y: 20 * math.Cos(elapsed),
		Z: 5 * 0.3 * math.Cos(elapsed*0.3),
	}

	// Gravity as the device accelerometer would see it.
	accel := att.Conjugate().Rotate(vmath.Vec3{Y: -gravityMS2})

	return imu.Sample{
		Attitude:     att,
		AngularRate:  rate,
		Acceleration: accel,
		Time:         now,
	}, nil
}
