package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/relabs-tech/stereo_rig/internal/config"
	"github.com/relabs-tech/stereo_rig/internal/gaze"
	"github.com/relabs-tech/stereo_rig/internal/profile"
)

// initTestConfig installs the package's test configuration: a 1px-wide
// display, so eye buffer allocation fails while the surface itself
// exists. InitGlobal is once-per-process, so every test here shares it.
func initTestConfig(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	content := `
MQTT_BROKER=tcp://localhost:1883
TOPIC_POSE=rig/pose
TOPIC_EVENTS=rig/events
TOPIC_GAZE=rig/gaze
DISPLAY_WIDTH=1
DISPLAY_HEIGHT=32
TICK_INTERVAL=16
PROFILE_PATH=./profile.yaml
ORIENTATION_SOURCE=mock
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := config.InitGlobal(path); err != nil {
		t.Fatal(err)
	}
}

func TestNewViewerDegradedDisplayIsNotFatal(t *testing.T) {
	initTestConfig(t)

	prof, err := profile.Parse([]byte("name: degraded"))
	if err != nil {
		t.Fatal(err)
	}

	reg := gaze.NewRegistry()
	scene := newDemoScene(reg)

	// The eye buffers cannot fit a 1px display, but the surface exists;
	// construction must succeed and rendering fall back to mono.
	v, err := NewViewer(prof, scene, scene.Cast, reg, nil)
	if err != nil {
		t.Fatalf("NewViewer failed on a degraded display: %v", err)
	}

	if left, right := v.renderer.EyeBuffers(); left != nil || right != nil {
		t.Fatal("eye buffers should be unallocated at width 1")
	}

	if err := v.Tick(0.016, time.Now()); err != nil {
		t.Fatalf("mono tick failed: %v", err)
	}
}
