// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package stereo

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/relabs-tech/stereo_rig/internal/orientation"
	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// gradientScene fills the target with a deterministic per-texel pattern
// and records every camera it was handed.
type gradientScene struct {
	cams []Camera
}

func (s *gradientScene) RenderEye(dst *image.RGBA, cam Camera) {
	s.cams = append(s.cams, cam)
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 7),
				G: uint8(y * 11),
				B: uint8((x + y) * 3),
				A: 255,
			})
		}
	}
}

func testEyeConfig() EyeConfig {
	return EyeConfig{IPD: 0.064, FOVDeg: 90, Near: 0.1, Far: 100}
}

func identityPose() orientation.HeadPose {
	return orientation.HeadPose{Rotation: vmath.QuatIdentity()}
}

func TestEyeLocalOffsetIsHalfIPD(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{})

	left := r.EyeLocalOffset(EyeLeft)
	right := r.EyeLocalOffset(EyeRight)

	if left.X != -0.032 || left.Y != 0 || left.Z != 0 {
		t.Fatalf("left offset = %+v, want {-0.032 0 0}", left)
	}
	if right.X != 0.032 || right.Y != 0 || right.Z != 0 {
		t.Fatalf("right offset = %+v, want {0.032 0 0}", right)
	}
}

func TestEyeCameraRotatesOffsetWithPose(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{})
	pose := orientation.HeadPose{Rotation: vmath.QuatFromEuler(0, math.Pi/2, 0)}

	cam := r.EyeCamera(EyeRight, pose)

	// Yaw +90°: head-local +X ends up along world -Z.
	if math.Abs(cam.Position.X) > 1e-9 || math.Abs(cam.Position.Z+0.032) > 1e-9 {
		t.Fatalf("rotated eye position = %+v, want {0 0 -0.032}", cam.Position)
	}
	if cam.Rotation != pose.Rotation {
		t.Fatal("camera rotation must match the head pose")
	}
}

func TestConfigClampedAtConstruction(t *testing.T) {
	r := NewRenderer(
		EyeConfig{IPD: 0.2, FOVDeg: 30},
		DistortionProfile{K1: 5, K2: -3, ChromaDelta: [3]float64{2, 0, -2}},
	)

	cfg := r.EyeConfig()
	if cfg.IPD != MaxIPD {
		t.Errorf("IPD = %g, want clamped to %g", cfg.IPD, MaxIPD)
	}
	if cfg.FOVDeg != MinFOVDeg {
		t.Errorf("FOV = %g, want clamped to %g", cfg.FOVDeg, MinFOVDeg)
	}
	if cfg.Near <= 0 || cfg.Far <= cfg.Near {
		t.Errorf("near/far not sanitized: %g/%g", cfg.Near, cfg.Far)
	}

	p := r.Profile()
	if p.K1 != MaxDistortionCoeff || p.K2 != -MaxDistortionCoeff {
		t.Errorf("K1/K2 = %g/%g, want ±%g", p.K1, p.K2, MaxDistortionCoeff)
	}
	if p.ChromaDelta[0] != MaxDistortionCoeff || p.ChromaDelta[2] != -MaxDistortionCoeff {
		t.Errorf("chroma deltas not clamped: %v", p.ChromaDelta)
	}
}

func TestIdentityDistortionIsExactPassthrough(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{})
	// A center bias must not shift an identity warp.
	cfg := r.eyeCfg
	cfg.LeftCenterBias = CenterBias{U: 0.1, V: -0.05}
	r.eyeCfg = cfg

	if err := r.SetDisplaySize(64, 32); err != nil {
		t.Fatal(err)
	}
	out, err := r.RenderFrame(identityPose(), &gradientScene{})
	if err != nil {
		t.Fatal(err)
	}

	left, _ := r.EyeBuffers()
	src := left.Image()
	w, h := left.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := src.RGBAAt(x, y)
			got := out.RGBAAt(x, y)
			if got != want {
				t.Fatalf("texel (%d,%d): got %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestStrongDistortionVignettesCorners(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{K1: 1, K2: 1})
	if err := r.SetDisplaySize(64, 64); err != nil {
		t.Fatal(err)
	}
	out, err := r.RenderFrame(identityPose(), &gradientScene{})
	if err != nil {
		t.Fatal(err)
	}

	// The corner sample lands far outside the buffer and must be black,
	// not a clamped edge texel.
	c := out.RGBAAt(0, 0)
	if c.R != 0 || c.G != 0 || c.B != 0 {
		t.Fatalf("corner texel = %+v, want black vignette", c)
	}
	if c.A != 255 {
		t.Fatalf("corner alpha = %d, want opaque", c.A)
	}
}

func TestChromaDeltaSamplesChannelsSeparately(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{
		K1:          0.3,
		ChromaDelta: [3]float64{0.2, 0, -0.2},
	})
	if err := r.SetDisplaySize(128, 64); err != nil {
		t.Fatal(err)
	}
	out, err := r.RenderFrame(identityPose(), &gradientScene{})
	if err != nil {
		t.Fatal(err)
	}

	// Off-center the channel scale factors differ, so the gradient's
	// channels come from different source texels.
	c := out.RGBAAt(8, 8)
	plain := color.RGBA{R: uint8(8 * 7), G: uint8(8 * 11), B: uint8(16 * 3), A: 255}
	if c == plain {
		t.Fatalf("texel (8,8) = %+v: chromatic deltas had no effect", c)
	}
}

func TestSetDisplaySizeReallocates(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{})
	if err := r.SetDisplaySize(64, 32); err != nil {
		t.Fatal(err)
	}
	left1, right1 := r.EyeBuffers()

	if err := r.SetDisplaySize(128, 64); err != nil {
		t.Fatal(err)
	}
	left2, right2 := r.EyeBuffers()

	if left1 == left2 || right1 == right2 {
		t.Fatal("resize must allocate fresh eye buffers")
	}
	if left1.Image() != nil {
		t.Fatal("old buffer not released on resize")
	}
	if w, h := left2.Size(); w != 64 || h != 64 {
		t.Fatalf("eye buffer size = %dx%d, want 64x64", w, h)
	}
}

func TestSetDisplaySizeSameSizeIsNoOp(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{})
	if err := r.SetDisplaySize(64, 32); err != nil {
		t.Fatal(err)
	}
	left1, right1 := r.EyeBuffers()

	if err := r.SetDisplaySize(64, 32); err != nil {
		t.Fatal(err)
	}
	left2, right2 := r.EyeBuffers()

	if left1 != left2 || right1 != right2 {
		t.Fatal("unchanged size must keep the existing buffers")
	}
}

func TestRenderWithoutSurfaceFails(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{})
	if _, err := r.RenderFrame(identityPose(), &gradientScene{}); err == nil {
		t.Fatal("expected an error with no display surface")
	}
}

func TestMonoFallbackAndRecovery(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{})

	// Width 1 halves to a zero-width eye buffer: allocation fails but
	// the display surface itself exists.
	if err := r.SetDisplaySize(1, 32); err == nil {
		t.Fatal("expected eye buffer allocation to fail at width 1")
	}

	scene := &gradientScene{}
	out, err := r.RenderFrame(identityPose(), scene)
	if err != nil {
		t.Fatalf("mono fallback must not fail: %v", err)
	}
	if out.Bounds().Dx() != 1 {
		t.Fatalf("mono frame width = %d, want 1", out.Bounds().Dx())
	}
	if len(scene.cams) != 1 {
		t.Fatalf("mono fallback rendered %d views, want 1", len(scene.cams))
	}
	if scene.cams[0].Position != (vmath.Vec3{}) {
		t.Fatalf("mono camera position = %+v, want centered", scene.cams[0].Position)
	}

	// A proper resize restores stereo rendering.
	if err := r.SetDisplaySize(64, 32); err != nil {
		t.Fatal(err)
	}
	scene = &gradientScene{}
	if _, err := r.RenderFrame(identityPose(), scene); err != nil {
		t.Fatal(err)
	}
	if len(scene.cams) != 2 {
		t.Fatalf("stereo frame rendered %d views, want 2", len(scene.cams))
	}
	if scene.cams[0].Position.X >= scene.cams[1].Position.X {
		t.Fatal("left eye must sit at negative X of the right eye")
	}
}

func TestOddWidthSpareColumnOpaque(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{})
	if err := r.SetDisplaySize(65, 16); err != nil {
		t.Fatal(err)
	}
	out, err := r.RenderFrame(identityPose(), &gradientScene{})
	if err != nil {
		t.Fatal(err)
	}

	// Both eye regions cover columns 0..63; column 64 must still be
	// written, as opaque black.
	for y := 0; y < 16; y++ {
		if got := out.RGBAAt(64, y); got != (color.RGBA{A: 255}) {
			t.Fatalf("spare column texel (64,%d) = %+v, want opaque black", y, got)
		}
	}
}

func TestDividerDrawn(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{})
	r.SetDivider(true, color.RGBA{R: 255, A: 255})
	if err := r.SetDisplaySize(64, 32); err != nil {
		t.Fatal(err)
	}
	out, err := r.RenderFrame(identityPose(), &gradientScene{})
	if err != nil {
		t.Fatal(err)
	}

	for y := 0; y < 32; y++ {
		if got := out.RGBAAt(32, y); got != (color.RGBA{R: 255, A: 255}) {
			t.Fatalf("divider texel (32,%d) = %+v", y, got)
		}
	}
}

func TestDistortionDisabledBlitsDirect(t *testing.T) {
	r := NewRenderer(testEyeConfig(), DistortionProfile{K1: 1, K2: 1})
	r.SetDistortionEnabled(false)
	if err := r.SetDisplaySize(64, 32); err != nil {
		t.Fatal(err)
	}
	out, err := r.RenderFrame(identityPose(), &gradientScene{})
	if err != nil {
		t.Fatal(err)
	}

	// With distortion off even an aggressive profile must not warp.
	left, _ := r.EyeBuffers()
	want := left.Image().RGBAAt(3, 3)
	if got := out.RGBAAt(3, 3); got != want {
		t.Fatalf("texel (3,3) = %+v, want direct blit %+v", got, want)
	}
}
