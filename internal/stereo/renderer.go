// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package stereo

import (
	"image"
	"image/color"

	"github.com/relabs-tech/stereo_rig/internal/orientation"
	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// Eye selects one of the two render targets.
type Eye int

const (
	EyeLeft Eye = iota
	EyeRight
)

// Camera is the per-eye view handed to the scene for rendering.
type Camera struct {
	Rotation vmath.Quat
	Position vmath.Vec3
	FOVDeg   float64
	Near     float64
	Far      float64
}

// Scene renders the world into an eye buffer. Scene construction and
// content are external collaborators; the renderer only drives them.
type Scene interface {
	RenderEye(dst *image.RGBA, cam Camera)
}

// Renderer renders both eye views from the current head pose and
// composites them with inverse lens distortion. It owns the two eye
// frame buffers exclusively.
type Renderer struct {
	eyeCfg  EyeConfig
	profile DistortionProfile

	distortion   bool
	divider      bool
	dividerColor color.RGBA

	width, height int
	left, right   *EyeFrameBuffer
	out           *image.RGBA
}

// NewRenderer creates a renderer. Both the eye config and the
// distortion profile are clamped here, at configuration time.
func NewRenderer(eyeCfg EyeConfig, profile DistortionProfile) *Renderer {
	return &Renderer{
		eyeCfg:       eyeCfg.Clamped(),
		profile:      profile.Clamped(),
		distortion:   true,
		dividerColor: color.RGBA{A: 255},
	}
}

// EyeConfig returns the clamped per-eye configuration in effect.
func (r *Renderer) EyeConfig() EyeConfig {
	return r.eyeCfg
}

// Profile returns the clamped distortion profile in effect.
func (r *Renderer) Profile() DistortionProfile {
	return r.profile
}

// SetDistortionEnabled toggles distortion compositing. When disabled
// (profile unavailable) eye buffers are blitted directly instead of
// failing to render.
func (r *Renderer) SetDistortionEnabled(enabled bool) {
	r.distortion = enabled
}

// SetDivider enables a thin divider line at the eye boundary.
func (r *Renderer) SetDivider(enabled bool, c color.RGBA) {
	r.divider = enabled
	r.dividerColor = c
}

// SetDisplaySize resizes the output surface and both eye buffers.
// Unchanged dimensions are a no-op; otherwise the old buffers are
// released before reallocation. A zero-sized surface leaves the eye
// buffers unallocated; rendering falls back to mono and allocation is
// retried next frame.
func (r *Renderer) SetDisplaySize(width, height int) error {
	if width == r.width && height == r.height && r.left != nil && r.right != nil {
		return nil
	}
	r.width = width
	r.height = height

	if r.left != nil {
		r.left.Release()
		r.left = nil
	}
	if r.right != nil {
		r.right.Release()
		r.right = nil
	}
	r.out = nil
	if width > 0 && height > 0 {
		r.out = image.NewRGBA(image.Rect(0, 0, width, height))
	}

	left, err := newEyeFrameBuffer(width, height)
	if err != nil {
		return err
	}
	right, err := newEyeFrameBuffer(width, height)
	if err != nil {
		left.Release()
		return err
	}
	r.left = left
	r.right = right
	return nil
}

// EyeBuffers exposes the current eye frame buffers; nil when
// allocation has failed for the current display size.
func (r *Renderer) EyeBuffers() (left, right *EyeFrameBuffer) {
	return r.left, r.right
}

// EyeLocalOffset returns the eye position in the head-local frame:
// ±IPD/2 along the X axis.
func (r *Renderer) EyeLocalOffset(eye Eye) vmath.Vec3 {
	half := r.eyeCfg.IPD / 2
	if eye == EyeLeft {
		return vmath.Vec3{X: -half}
	}
	return vmath.Vec3{X: half}
}

// EyeCamera builds the camera for one eye from the tick's head pose.
func (r *Renderer) EyeCamera(eye Eye, pose orientation.HeadPose) Camera {
	local := r.EyeLocalOffset(eye)
	return Camera{
		Rotation: pose.Rotation,
		Position: pose.Rotation.Rotate(local),
		FOVDeg:   r.eyeCfg.FOVDeg,
		Near:     r.eyeCfg.Near,
		Far:      r.eyeCfg.Far,
	}
}

// RenderFrame renders both eyes with the given pose and composites the
// final display image. The same pose value must be used for the gaze
// raycast of the tick; RenderFrame never re-fuses.
//
// When the eye buffers are unallocated the frame degrades to a mono
// pass-through render and allocation is retried; only a completely
// absent display surface is an error.
func (r *Renderer) RenderFrame(pose orientation.HeadPose, scene Scene) (*image.RGBA, error) {
	if r.out == nil {
		return nil, ErrRenderResource
	}

	if r.left == nil || r.right == nil {
		if err := r.retryAllocate(); err != nil {
			// Mono pass-through: one centered camera straight into
			// the display surface.
			cam := Camera{
				Rotation: pose.Rotation,
				FOVDeg:   r.eyeCfg.FOVDeg,
				Near:     r.eyeCfg.Near,
				Far:      r.eyeCfg.Far,
			}
			scene.RenderEye(r.out, cam)
			return r.out, nil
		}
	}

	scene.RenderEye(r.left.Image(), r.EyeCamera(EyeLeft, pose))
	scene.RenderEye(r.right.Image(), r.EyeCamera(EyeRight, pose))

	eyeW, _ := r.left.Size()
	r.compositeEye(r.left, 0, r.eyeCfg.LeftCenterBias)
	r.compositeEye(r.right, eyeW, r.eyeCfg.RightCenterBias)

	// An odd display width leaves a spare column right of the second
	// eye region; paint it opaque black instead of leaving it unwritten.
	for x := 2 * eyeW; x < r.width; x++ {
		for y := 0; y < r.height; y++ {
			r.out.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}

	if r.divider {
		r.drawDivider(eyeW)
	}
	return r.out, nil
}

func (r *Renderer) retryAllocate() error {
	left, err := newEyeFrameBuffer(r.width, r.height)
	if err != nil {
		return err
	}
	right, err := newEyeFrameBuffer(r.width, r.height)
	if err != nil {
		left.Release()
		return err
	}
	r.left = left
	r.right = right
	return nil
}

// compositeEye warps one eye buffer into its half of the display. For
// each destination texel the centered coordinate is scaled by a
// per-channel factor 1 + (K1+Δc)·r² + K2·r⁴ and the channel sampled at
// the result. Samples falling outside the buffer are black, which is
// the intended lens vignette.
func (r *Renderer) compositeEye(buf *EyeFrameBuffer, xOffset int, bias CenterBias) {
	src := buf.Image()
	w, h := buf.Size()
	cu := 0.5 + bias.U
	cv := 0.5 + bias.V

	k1 := r.profile.K1
	k2 := r.profile.K2
	dr := r.profile.ChromaDelta[0]
	dg := r.profile.ChromaDelta[1]
	db := r.profile.ChromaDelta[2]

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var px [3]uint8
			if r.distortion {
				u := (float64(x)+0.5)/float64(w) - cu
				v := (float64(y)+0.5)/float64(h) - cv
				r2 := u*u + v*v
				r4 := r2 * r2

				px[0] = sampleChannel(src, w, h, u*(1+(k1+dr)*r2+k2*r4)+cu, v*(1+(k1+dr)*r2+k2*r4)+cv, 0)
				px[1] = sampleChannel(src, w, h, u*(1+(k1+dg)*r2+k2*r4)+cu, v*(1+(k1+dg)*r2+k2*r4)+cv, 1)
				px[2] = sampleChannel(src, w, h, u*(1+(k1+db)*r2+k2*r4)+cu, v*(1+(k1+db)*r2+k2*r4)+cv, 2)
			} else {
				// Distortion unavailable: direct blit.
				i := src.PixOffset(x, y)
				px[0] = src.Pix[i]
				px[1] = src.Pix[i+1]
				px[2] = src.Pix[i+2]
			}

			o := r.out.PixOffset(x+xOffset, y)
			r.out.Pix[o] = px[0]
			r.out.Pix[o+1] = px[1]
			r.out.Pix[o+2] = px[2]
			r.out.Pix[o+3] = 255
		}
	}
}

// sampleChannel reads one channel at normalized UV with nearest
// sampling. UV outside [0,1] yields black for that channel.
func sampleChannel(src *image.RGBA, w, h int, u, v float64, channel int) uint8 {
	if u < 0 || u >= 1 || v < 0 || v >= 1 {
		return 0
	}
	x := int(u * float64(w))
	y := int(v * float64(h))
	if x >= w {
		x = w - 1
	}
	if y >= h {
		y = h - 1
	}
	return src.Pix[src.PixOffset(x, y)+channel]
}

func (r *Renderer) drawDivider(eyeW int) {
	for y := 0; y < r.height; y++ {
		r.out.SetRGBA(eyeW, y, r.dividerColor)
		if eyeW > 0 {
			r.out.SetRGBA(eyeW-1, y, r.dividerColor)
		}
	}
}
