// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/relabs-tech/stereo_rig/internal/orientation"
)

var (
	overlayColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	dividerColor = color.RGBA{R: 32, G: 32, B: 32, A: 255}
	dwellColor   = color.RGBA{R: 90, G: 200, B: 120, A: 255}
)

// drawOverlay paints the debug HUD onto the composited frame: a pose
// readout in the top-left and a dwell progress bar under each eye
// center.
func drawOverlay(frame *image.RGBA, pose orientation.HeadPose, status GazeStatus) {
	drawer := &font.Drawer{
		Dst:  frame,
		Src:  &image.Uniform{overlayColor},
		Face: basicfont.Face7x13,
	}

	pitch, yaw, roll := pose.Rotation.Euler()
	drawer.Dot = fixed.P(4, 13)
	drawer.DrawString(fmt.Sprintf("P:%6.1f Y:%6.1f R:%6.1f",
		pitch*180/math.Pi, yaw*180/math.Pi, roll*180/math.Pi))

	if status.Hovering {
		drawer.Dot = fixed.P(4, 26)
		drawer.DrawString("gaze: " + shortHandle(status.Target))
	}

	if status.DwellProgress > 0 {
		b := frame.Bounds()
		eyeW := b.Dx() / 2
		barW := eyeW / 4
		fill := int(float64(barW) * status.DwellProgress)
		y := b.Dy() - 8
		for _, cx := range []int{eyeW / 2, eyeW + eyeW/2} {
			x0 := cx - barW/2
			for x := 0; x < fill; x++ {
				frame.SetRGBA(x0+x, y, dwellColor)
				frame.SetRGBA(x0+x, y+1, dwellColor)
			}
		}
	}
}

func shortHandle(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
