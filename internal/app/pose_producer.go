// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"encoding/json"
	"log"
	"math"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/stereo_rig/internal/config"
	"github.com/relabs-tech/stereo_rig/internal/orientation"
	"github.com/relabs-tech/stereo_rig/internal/profile"
)

// RunPoseProducer runs the head pose estimator headless and publishes
// fused poses to MQTT. Used for rig bring-up before a display is wired.
func RunPoseProducer() error {
	log.Println("starting stereo-rig head pose producer")

	cfg := config.Get()

	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return err
	}

	src, err := newOrientationSource(cfg)
	if err != nil {
		return err
	}
	estimator := orientation.NewEstimator(src, prof.EstimatorConfig())
	if !estimator.Supported() {
		// Headless, so there is no manual input to fall back to.
		return orientation.ErrUnsupportedSensor
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	ticker := time.NewTicker(time.Duration(cfg.TickInterval) * time.Millisecond)
	defer ticker.Stop()

	var lastTick time.Time
	for t := range ticker.C {
		var dt float64
		if lastTick.IsZero() {
			dt = float64(cfg.TickInterval) / 1000
		} else {
			dt = t.Sub(lastTick).Seconds()
		}
		lastTick = t

		pose := estimator.Tick(dt)

		payload, err := json.Marshal(pose)
		if err != nil {
			log.Printf("json marshal error (pose): %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (pose): %v", token.Error())
			continue
		}

		pitch, yaw, roll := pose.Rotation.Euler()
		log.Printf("%s tick: pose P=%.2f Y=%.2f R=%.2f | rate x=%.1f y=%.1f z=%.1f | state=%s",
			t.Format(time.RFC3339),
			pitch*180/math.Pi, yaw*180/math.Pi, roll*180/math.Pi,
			pose.AngularVelocity.X, pose.AngularVelocity.Y, pose.AngularVelocity.Z,
			estimator.State(),
		)
	}
	return nil
}
