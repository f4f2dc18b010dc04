// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"fmt"
	"math"
	"time"

	"github.com/relabs-tech/stereo_rig/internal/orientation"
)

// RunMockConsole fuses the mock source and prints poses, with no
// broker or hardware needed.
func RunMockConsole() error {
	estimator := orientation.NewEstimator(orientation.NewMockSource(), orientation.DefaultConfig())

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		pose := estimator.Tick(0.1)
		pitch, yaw, roll := pose.Rotation.Euler()
		fmt.Printf(
			"PITCH=%6.2f  YAW=%6.2f  ROLL=%6.2f\n",
			pitch*180/math.Pi,
			yaw*180/math.Pi,
			roll*180/math.Pi,
		)
	}
	return nil
}
