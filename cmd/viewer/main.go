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
	frameOut := flag.String("frame-out", "", "path for periodic PNG snapshots of the composited frame")
	flag.Parse()

	log.Println("starting stereo-rig viewer (pose → gaze → stereo composite)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunViewer(*frameOut); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
