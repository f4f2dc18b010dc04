package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/relabs-tech/stereo_rig/internal/stereo"
)

const sampleProfile = `
name: cardboard-v2
eye:
  ipd: 0.064
  fov_deg: 100
  near: 0.1
  far: 200
  left_center_bias: {u: 0.01, v: 0}
  right_center_bias: {u: -0.01, v: 0}
distortion:
  k1: 0.34
  k2: 0.55
  chroma_delta: [0.006, 0, -0.006]
  screen_to_lens: 0.042
tracking:
  gyro_trust: 0.98
  smoothing_tau: 0.05
  drift_correction: true
  drift_threshold_deg: 1
  drift_gain: 0.5
gaze:
  max_distance: 15
  dwell_seconds: 1.5
  auto_select_on_dwell: true
  double_tap_seconds: 0.25
`

func TestParseFullProfile(t *testing.T) {
	p, err := Parse([]byte(sampleProfile))
	if err != nil {
		t.Fatal(err)
	}

	if p.Name != "cardboard-v2" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Eye.IPD != 0.064 || p.Eye.FOVDeg != 100 {
		t.Errorf("eye config = %+v", p.Eye)
	}
	if p.Eye.LeftCenterBias.U != 0.01 || p.Eye.RightCenterBias.U != -0.01 {
		t.Errorf("center biases = %+v / %+v", p.Eye.LeftCenterBias, p.Eye.RightCenterBias)
	}
	if p.Distortion.K1 != 0.34 || p.Distortion.K2 != 0.55 {
		t.Errorf("distortion = %+v", p.Distortion)
	}
	if p.Distortion.ChromaDelta != [3]float64{0.006, 0, -0.006} {
		t.Errorf("chroma deltas = %v", p.Distortion.ChromaDelta)
	}

	cfg := p.GazeConfig()
	if cfg.MaxGazeDistance != 15 {
		t.Errorf("max gaze distance = %g", cfg.MaxGazeDistance)
	}
	if cfg.DwellDuration != 1500*time.Millisecond {
		t.Errorf("dwell duration = %v", cfg.DwellDuration)
	}
	if !cfg.AutoSelectOnDwell {
		t.Error("auto select lost in mapping")
	}
	if cfg.DoubleTapWindow != 250*time.Millisecond {
		t.Errorf("double tap window = %v", cfg.DoubleTapWindow)
	}

	est := p.EstimatorConfig()
	if est.GyroTrust != 0.98 || est.SmoothingTau != 0.05 || !est.DriftCorrection {
		t.Errorf("estimator config = %+v", est)
	}
}

func TestParseClampsOptics(t *testing.T) {
	p, err := Parse([]byte(`
eye:
  ipd: 0.3
  fov_deg: 170
distortion:
  k1: 9
`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Eye.IPD != stereo.MaxIPD {
		t.Errorf("IPD = %g, want clamped to %g", p.Eye.IPD, stereo.MaxIPD)
	}
	if p.Eye.FOVDeg != stereo.MaxFOVDeg {
		t.Errorf("FOV = %g, want clamped to %g", p.Eye.FOVDeg, stereo.MaxFOVDeg)
	}
	if p.Distortion.K1 != stereo.MaxDistortionCoeff {
		t.Errorf("K1 = %g, want clamped to %g", p.Distortion.K1, stereo.MaxDistortionCoeff)
	}
}

func TestParseDefaults(t *testing.T) {
	p, err := Parse([]byte(`name: bare`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Tracking.GyroTrust != 0.98 {
		t.Errorf("default gyro trust = %g", p.Tracking.GyroTrust)
	}
	if p.Gaze.MaxDistance != 20 {
		t.Errorf("default max distance = %g", p.Gaze.MaxDistance)
	}
	if p.Gaze.DwellSeconds != 2 {
		t.Errorf("default dwell = %g", p.Gaze.DwellSeconds)
	}
	if p.Gaze.DoubleTapSeconds != 0.3 {
		t.Errorf("default double tap = %g", p.Gaze.DoubleTapSeconds)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("eye: [unclosed")); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(sampleProfile), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "cardboard-v2" {
		t.Errorf("name = %q", p.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
