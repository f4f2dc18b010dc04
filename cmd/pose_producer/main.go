// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/stereo_rig/internal/app"
	"github.com/relabs-tech/stereo_rig/internal/config"
)

func main() {
	configPath := flag.String("config", "./stereo_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting stereo-rig head pose producer (IMU → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunPoseProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
