// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package stereo

// Valid ranges for viewer configuration. Out-of-range values are
// clamped where configuration is applied; the render math never sees
// them.
const (
	MinIPD = 0.055 // meters
	MaxIPD = 0.075

	MinFOVDeg = 60.0
	MaxFOVDeg = 120.0

	// K2 multiplies r⁴; anything past ±1 diverges visibly inside the
	// lens field.
	MaxDistortionCoeff = 1.0
)

// EyeConfig holds the per-eye camera parameters shared by both eyes.
type EyeConfig struct {
	IPD    float64 `yaml:"ipd"`     // meters
	FOVDeg float64 `yaml:"fov_deg"` // degrees
	Near   float64 `yaml:"near"`
	Far    float64 `yaml:"far"`

	// Optical center bias per eye, in normalized screen units.
	LeftCenterBias  CenterBias `yaml:"left_center_bias"`
	RightCenterBias CenterBias `yaml:"right_center_bias"`
}

// CenterBias shifts the optical center away from the geometric center
// of an eye's half of the display.
type CenterBias struct {
	U float64 `yaml:"u"`
	V float64 `yaml:"v"`
}

// Clamped returns the config with all values forced into valid range.
func (c EyeConfig) Clamped() EyeConfig {
	c.IPD = clampf(c.IPD, MinIPD, MaxIPD)
	c.FOVDeg = clampf(c.FOVDeg, MinFOVDeg, MaxFOVDeg)
	if c.Near <= 0 {
		c.Near = 0.01
	}
	if c.Far <= c.Near {
		c.Far = c.Near + 100
	}
	return c
}

// DistortionProfile describes the inverse lens distortion applied at
// composite time. The chromatic deltas adjust K1 per color channel to
// compensate wavelength-dependent refraction; the correction negates
// the forward polynomial rather than solving a true functional inverse,
// matching the lens profiles this was tuned against.
type DistortionProfile struct {
	K1 float64 `yaml:"k1"`
	K2 float64 `yaml:"k2"`

	// Per-channel K1 deltas, indexed R, G, B.
	ChromaDelta [3]float64 `yaml:"chroma_delta"`

	ScreenToLens float64 `yaml:"screen_to_lens"` // meters
}

// Clamped returns the profile with coefficients bounded to the stable
// range.
func (p DistortionProfile) Clamped() DistortionProfile {
	p.K1 = clampf(p.K1, -MaxDistortionCoeff, MaxDistortionCoeff)
	p.K2 = clampf(p.K2, -MaxDistortionCoeff, MaxDistortionCoeff)
	for i := range p.ChromaDelta {
		p.ChromaDelta[i] = clampf(p.ChromaDelta[i], -MaxDistortionCoeff, MaxDistortionCoeff)
	}
	if p.ScreenToLens < 0 {
		p.ScreenToLens = 0
	}
	return p
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
