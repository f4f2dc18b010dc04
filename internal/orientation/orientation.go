package orientation

import (
	"errors"

	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// HeadPose is the filtered orientation estimate for the current tick.
// Rotation is always unit-norm; AngularVelocity is finite-differenced
// from the previous tick, in deg/s.
type HeadPose struct {
	Rotation        vmath.Quat `json:"rotation"`
	AngularVelocity vmath.Vec3 `json:"angular_velocity"`
}

// State is the estimator lifecycle state.
type State int

const (
	// Uncalibrated means no valid sample has been fused yet.
	Uncalibrated State = iota
	// Tracking means the estimator holds a valid pose.
	Tracking
)

func (s State) String() string {
	switch s {
	case Uncalibrated:
		return "uncalibrated"
	case Tracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// ErrUnsupportedSensor indicates the orientation hardware lacks a
// gyroscope. The caller should substitute an alternate source such as
// ManualSource; the estimator never fabricates readings.
var ErrUnsupportedSensor = errors.New("orientation: no gyroscope available")
