package profile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/stereo_rig/internal/gaze"
	"github.com/relabs-tech/stereo_rig/internal/orientation"
	"github.com/relabs-tech/stereo_rig/internal/stereo"
)

// Profile is one viewer definition: the optics of a physical headset
// shell plus tracking and interaction tuning. Profiles are plain data;
// authoring them is out of scope.
type Profile struct {
	Name       string                   `yaml:"name"`
	Eye        stereo.EyeConfig         `yaml:"eye"`
	Distortion stereo.DistortionProfile `yaml:"distortion"`
	Tracking   Tracking                 `yaml:"tracking"`
	Gaze       Gaze                     `yaml:"gaze"`
}

// Tracking is the head pose filter tuning carried by a profile.
type Tracking struct {
	GyroTrust         float64 `yaml:"gyro_trust"`
	PredictionTime    float64 `yaml:"prediction_time"`
	SmoothingTau      float64 `yaml:"smoothing_tau"`
	DriftCorrection   bool    `yaml:"drift_correction"`
	DriftThresholdDeg float64 `yaml:"drift_threshold_deg"`
	DriftGain         float64 `yaml:"drift_gain"`
	LandscapeRemap    bool    `yaml:"landscape_remap"`
}

// Gaze is the interaction tuning carried by a profile.
type Gaze struct {
	MaxDistance       float64 `yaml:"max_distance"`
	DwellSeconds      float64 `yaml:"dwell_seconds"`
	AutoSelectOnDwell bool    `yaml:"auto_select_on_dwell"`
	DoubleTapSeconds  float64 `yaml:"double_tap_seconds"`
}

// Load reads a profile YAML file. Optics values are clamped to their
// valid ranges here, never inside the render math.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and clamps a profile document.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile: parse: %w", err)
	}

	p.Eye = p.Eye.Clamped()
	p.Distortion = p.Distortion.Clamped()

	if p.Tracking.GyroTrust <= 0 || p.Tracking.GyroTrust > 1 {
		p.Tracking.GyroTrust = 0.98
	}
	if p.Gaze.MaxDistance <= 0 {
		p.Gaze.MaxDistance = 20
	}
	if p.Gaze.DwellSeconds <= 0 {
		p.Gaze.DwellSeconds = 2
	}
	if p.Gaze.DoubleTapSeconds <= 0 {
		p.Gaze.DoubleTapSeconds = 0.3
	}
	return &p, nil
}

// EstimatorConfig maps the profile onto the estimator tuning.
func (p *Profile) EstimatorConfig() orientation.Config {
	return orientation.Config{
		GyroTrust:         p.Tracking.GyroTrust,
		PredictionTime:    p.Tracking.PredictionTime,
		SmoothingTau:      p.Tracking.SmoothingTau,
		DriftCorrection:   p.Tracking.DriftCorrection,
		DriftThresholdDeg: p.Tracking.DriftThresholdDeg,
		DriftGain:         p.Tracking.DriftGain,
		LandscapeRemap:    p.Tracking.LandscapeRemap,
	}
}

// GazeConfig maps the profile onto the interaction engine tuning.
func (p *Profile) GazeConfig() gaze.Config {
	return gaze.Config{
		MaxGazeDistance:   p.Gaze.MaxDistance,
		DwellDuration:     time.Duration(p.Gaze.DwellSeconds * float64(time.Second)),
		AutoSelectOnDwell: p.Gaze.AutoSelectOnDwell,
		DoubleTapWindow:   time.Duration(p.Gaze.DoubleTapSeconds * float64(time.Second)),
	}
}
