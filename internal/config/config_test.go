package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
# Viewer configuration
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_VIEWER=viewer

TOPIC_POSE=rig/pose
TOPIC_EVENTS=rig/events
TOPIC_GAZE=rig/gaze

DISPLAY_WIDTH=1280
DISPLAY_HEIGHT=720
TICK_INTERVAL=16
DIVIDER_ON=true

PROFILE_PATH=./profiles/cardboard.yaml
ORIENTATION_SOURCE=mock
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("broker = %q", cfg.MQTTBroker)
	}
	if cfg.DisplayWidth != 1280 || cfg.DisplayHeight != 720 {
		t.Errorf("display = %dx%d", cfg.DisplayWidth, cfg.DisplayHeight)
	}
	if cfg.TickInterval != 16 {
		t.Errorf("tick interval = %d", cfg.TickInterval)
	}
	if !cfg.DividerOn {
		t.Error("divider flag lost")
	}
	if cfg.OrientationSource != "mock" {
		t.Errorf("orientation source = %q", cfg.OrientationSource)
	}
	if cfg.TopicPose != "rig/pose" || cfg.TopicGaze != "rig/gaze" {
		t.Errorf("topics = %q / %q", cfg.TopicPose, cfg.TopicGaze)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"BOGUS_KEY=1\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("err = %v, want unknown key error", err)
	}
}

func TestLoadRejectsBadOrientationSource(t *testing.T) {
	bad := strings.Replace(validConfig, "ORIENTATION_SOURCE=mock", "ORIENTATION_SOURCE=ouija", 1)
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("expected an error for an unknown orientation source")
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"NOT A KEY VALUE PAIR\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config line") {
		t.Fatalf("err = %v, want line error", err)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		strip string
	}{
		{"missing broker", "MQTT_BROKER"},
		{"missing display", "DISPLAY_WIDTH"},
		{"missing tick interval", "TICK_INTERVAL"},
		{"missing profile", "PROFILE_PATH"},
		{"missing source", "ORIENTATION_SOURCE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var b strings.Builder
			for _, line := range strings.Split(validConfig, "\n") {
				if strings.HasPrefix(line, tc.strip+"=") {
					continue
				}
				b.WriteString(line + "\n")
			}
			if _, err := Load(writeConfig(t, b.String())); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestSourceSpecificRequirements(t *testing.T) {
	imu := strings.Replace(validConfig, "ORIENTATION_SOURCE=mock", "ORIENTATION_SOURCE=imu", 1)
	if _, err := Load(writeConfig(t, imu)); err == nil {
		t.Fatal("imu source without SPI settings must fail validation")
	}
	if _, err := Load(writeConfig(t, imu+"IMU_SPI_DEVICE=/dev/spidev0.0\nIMU_CS_PIN=GPIO25\n")); err != nil {
		t.Fatalf("imu source with SPI settings failed: %v", err)
	}

	serial := strings.Replace(validConfig, "ORIENTATION_SOURCE=mock", "ORIENTATION_SOURCE=serial", 1)
	if _, err := Load(writeConfig(t, serial)); err == nil {
		t.Fatal("serial source without port settings must fail validation")
	}
	if _, err := Load(writeConfig(t, serial+"SERIAL_PORT=/dev/ttyUSB0\nSERIAL_BAUD_RATE=115200\n")); err != nil {
		t.Fatalf("serial source with port settings failed: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
