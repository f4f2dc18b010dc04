// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/stereo_rig/internal/config"
	"github.com/relabs-tech/stereo_rig/internal/gaze"
	"github.com/relabs-tech/stereo_rig/internal/imu"
	"github.com/relabs-tech/stereo_rig/internal/orientation"
	"github.com/relabs-tech/stereo_rig/internal/profile"
	"github.com/relabs-tech/stereo_rig/internal/stereo"
	"github.com/relabs-tech/stereo_rig/internal/trigger"
)

// GazeStatus is the per-tick interaction snapshot published for
// monitors.
type GazeStatus struct {
	Hovering      bool    `json:"hovering"`
	Target        string  `json:"target,omitempty"`
	DwellProgress float64 `json:"dwell_progress"`
}

// Viewer owns the three core subsystems and drives them in a fixed
// per-tick order: sample, fuse, gaze, render, composite, present.
// It replaces any implicit singletons; construction and teardown are
// explicit.
type Viewer struct {
	cfg  *config.Config
	prof *profile.Profile

	estimator *orientation.Estimator
	renderer  *stereo.Renderer
	registry  *gaze.Registry
	engine    *gaze.Engine
	trigger   *trigger.Button

	scene    stereo.Scene
	consumer FrameConsumer

	client mqtt.Client
}

// NewViewer builds a viewer from the global configuration and the
// loaded profile. scene and cast are the external scene collaborators;
// consumer receives the composited frame each tick.
func NewViewer(prof *profile.Profile, scene stereo.Scene, cast gaze.CastFunc, reg *gaze.Registry, consumer FrameConsumer) (*Viewer, error) {
	cfg := config.Get()

	src, err := newOrientationSource(cfg)
	if err != nil {
		return nil, err
	}

	estimator := orientation.NewEstimator(src, prof.EstimatorConfig())
	if !estimator.Supported() {
		log.Println("viewer: WARNING: orientation source has no gyroscope, expect degraded tracking")
	}

	renderer := stereo.NewRenderer(prof.Eye, prof.Distortion)
	if cfg.DividerOn {
		renderer.SetDivider(true, dividerColor)
	}
	if err := renderer.SetDisplaySize(cfg.DisplayWidth, cfg.DisplayHeight); err != nil {
		if cfg.DisplayWidth <= 0 || cfg.DisplayHeight <= 0 {
			// No display surface to present into at all; this is the
			// one fatal initialization error.
			return nil, fmt.Errorf("viewer: display %dx%d: %w", cfg.DisplayWidth, cfg.DisplayHeight, err)
		}
		// The surface exists but the eye buffers don't fit it (e.g. a
		// 1px-wide display). Rendering degrades to mono and allocation
		// is retried every frame.
		log.Printf("viewer: WARNING: eye buffers unavailable for %dx%d, rendering mono: %v",
			cfg.DisplayWidth, cfg.DisplayHeight, err)
	}

	btn := trigger.NewButton()
	engine := gaze.NewEngine(prof.GazeConfig(), reg, cast, btn, estimator.RequestRecenter)

	if consumer == nil {
		consumer = nullConsumer{}
	}

	return &Viewer{
		cfg:       cfg,
		prof:      prof,
		estimator: estimator,
		renderer:  renderer,
		registry:  reg,
		engine:    engine,
		trigger:   btn,
		scene:     scene,
		consumer:  consumer,
	}, nil
}

// Trigger exposes the digital trigger for input bindings.
func (v *Viewer) Trigger() *trigger.Button {
	return v.trigger
}

// Estimator exposes the head pose estimator, e.g. for an explicit
// recenter binding.
func (v *Viewer) Estimator() *orientation.Estimator {
	return v.estimator
}

// Run connects to MQTT and drives the tick loop until the process is
// stopped.
func (v *Viewer) Run() error {
	opts := mqtt.NewClientOptions().
		AddBroker(v.cfg.MQTTBroker).
		SetClientID(v.cfg.MQTTClientIDViewer)

	v.client = mqtt.NewClient(opts)
	if token := v.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer v.client.Disconnect(250)
	log.Printf("viewer: connected to MQTT broker at %s", v.cfg.MQTTBroker)

	ticker := time.NewTicker(time.Duration(v.cfg.TickInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("viewer: starting tick loop")

	var lastTick time.Time
	for t := range ticker.C {
		var dt float64
		if lastTick.IsZero() {
			dt = float64(v.cfg.TickInterval) / 1000
		} else {
			dt = t.Sub(lastTick).Seconds()
		}
		lastTick = t

		if err := v.Tick(dt, t); err != nil {
			return err
		}
	}
	return nil
}

// Tick runs one frame. The fused pose is computed once and that exact
// value feeds both the gaze raycast and both eye renders, so pointing
// and parallax can never disagree within a frame.
func (v *Viewer) Tick(dt float64, now time.Time) error {
	pose := v.estimator.Tick(dt)

	events := v.engine.Tick(pose, now)

	frame, err := v.renderer.RenderFrame(pose, v.scene)
	if err != nil {
		return fmt.Errorf("viewer: render: %w", err)
	}

	status := GazeStatus{DwellProgress: v.engine.DwellProgress(now)}
	if target, ok := v.engine.Hovered(); ok {
		status.Hovering = true
		status.Target = target.String()
	}

	drawOverlay(frame, pose, status)

	if err := v.consumer.Present(frame); err != nil {
		log.Printf("viewer: present error: %v", err)
	}

	v.publish(pose, status, events)
	return nil
}

func (v *Viewer) publish(pose orientation.HeadPose, status GazeStatus, events []gaze.Event) {
	if v.client == nil {
		// Not connected (ticking outside Run); nothing to publish to.
		return
	}
	if payload, err := json.Marshal(pose); err != nil {
		log.Printf("viewer: pose marshal error: %v", err)
	} else if token := v.client.Publish(v.cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("viewer: MQTT publish error (pose): %v", token.Error())
	}

	if payload, err := json.Marshal(status); err != nil {
		log.Printf("viewer: gaze marshal error: %v", err)
	} else if token := v.client.Publish(v.cfg.TopicGaze, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("viewer: MQTT publish error (gaze): %v", token.Error())
	}

	for _, ev := range events {
		if payload, err := json.Marshal(ev); err != nil {
			log.Printf("viewer: event marshal error: %v", err)
		} else if token := v.client.Publish(v.cfg.TopicEvents, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("viewer: MQTT publish error (events): %v", token.Error())
		}
	}
}

// newOrientationSource builds the configured sample source.
func newOrientationSource(cfg *config.Config) (imu.Source, error) {
	switch cfg.OrientationSource {
	case "mock":
		log.Println("viewer: using mock orientation source")
		return orientation.NewMockSource(), nil
	case "imu":
		log.Printf("viewer: using MPU9250 on %s (CS %s)", cfg.IMUSPIDevice, cfg.IMUCSPin)
		return orientation.NewIMUSource("head", cfg.IMUSPIDevice, cfg.IMUCSPin)
	case "serial":
		log.Printf("viewer: using serial bridge on %s", cfg.SerialPort)
		return orientation.NewSerialSource(cfg.SerialPort, uint(cfg.SerialBaudRate))
	case "manual":
		log.Println("viewer: using manual orientation source (no gyroscope)")
		return orientation.NewManualSource(), nil
	default:
		return nil, fmt.Errorf("viewer: unknown orientation source %q", cfg.OrientationSource)
	}
}

// RunViewer builds the demo scene and runs the viewer loop. frameOut,
// when non-empty, receives the composited frame as a PNG each second.
func RunViewer(frameOut string) error {
	cfg := config.Get()

	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return err
	}
	log.Printf("viewer: loaded profile %q (IPD=%.3f FOV=%.0f K1=%.2f K2=%.2f)",
		prof.Name, prof.Eye.IPD, prof.Eye.FOVDeg, prof.Distortion.K1, prof.Distortion.K2)

	reg := gaze.NewRegistry()
	scene := newDemoScene(reg)

	var consumer FrameConsumer
	if frameOut != "" {
		consumer = NewPNGWriter(frameOut, time.Second)
	}

	viewer, err := NewViewer(prof, scene, scene.Cast, reg, consumer)
	if err != nil {
		return err
	}
	return viewer.Run()
}
