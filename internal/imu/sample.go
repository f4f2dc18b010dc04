package imu

import (
	"errors"
	"time"

	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// ErrNoSample is returned by a Source when no new sample is available this
// tick. Consumers should hold their previous estimate rather than reset.
var ErrNoSample = errors.New("imu: no new sample")

// Sample is one raw orientation reading. Attitude is in the device frame,
// rate in deg/s, acceleration in m/s² including gravity.
type Sample struct {
	Attitude     vmath.Quat `json:"attitude"`
	AngularRate  vmath.Vec3 `json:"angular_rate"`
	Acceleration vmath.Vec3 `json:"acceleration"`
	Time         time.Time  `json:"time"`
}

// Source provides the latest cached sample as a non-blocking poll.
// Implementations: mock generator, MPU9250 over SPI, serial bridge.
type Source interface {
	Next() (Sample, error)
	SetEnabled(enabled bool)
	// HasGyro reports whether the underlying hardware provides angular
	// rate. When false the caller must substitute an alternate
	// orientation input.
	HasGyro() bool
}
