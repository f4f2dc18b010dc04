package orientation

import (
	"sync"
	"time"

	"github.com/relabs-tech/stereo_rig/internal/imu"
	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// ManualSource is the fallback orientation input for devices without a
// gyroscope: a pointer or keyboard drives yaw and pitch directly. It
// reports HasGyro false so the estimator exposes the capability flag.
type ManualSource struct {
	mu       sync.Mutex
	yawDeg   float64
	pitchDeg float64
	enabled  bool
}

func NewManualSource() *ManualSource {
	return &ManualSource{enabled: true}
}

// Point sets the current look direction in degrees.
func (m *ManualSource) Point(yawDeg, pitchDeg float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.yawDeg = yawDeg
	m.pitchDeg = pitchDeg
}

func (m *ManualSource) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

func (m *ManualSource) HasGyro() bool { return false }

func (m *ManualSource) Next() (imu.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return imu.Sample{}, imu.ErrNoSample
	}

	att := vmath.QuatFromEuler(m.pitchDeg*degToRad, m.yawDeg*degToRad, 0)
	return imu.Sample{
		Attitude:     att,
		Acceleration: att.Conjugate().Rotate(vmath.Vec3{Y: -gravityMS2}),
		Time:         time.Now(),
	}, nil
}
