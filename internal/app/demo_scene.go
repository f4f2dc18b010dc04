package app

import (
	"image"
	"image/color"
	"log"
	"math"

	"github.com/relabs-tech/stereo_rig/internal/gaze"
	"github.com/relabs-tech/stereo_rig/internal/stereo"
	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// demoScene is a minimal stand-in for the external scene collaborator:
// a ring of gaze-selectable spheres around the user. It implements both
// the renderer's Scene and the gaze engine's intersection query.
type demoScene struct {
	targets []*demoTarget
}

type demoTarget struct {
	center  vmath.Vec3
	radius  float64
	col     color.RGBA
	handle  gaze.TargetHandle
	hovered bool
}

func newDemoScene(reg *gaze.Registry) *demoScene {
	colors := []color.RGBA{
		{R: 220, G: 80, B: 80, A: 255},
		{R: 80, G: 200, B: 90, A: 255},
		{R: 80, G: 120, B: 230, A: 255},
		{R: 230, G: 200, B: 70, A: 255},
	}

	s := &demoScene{}
	for i, col := range colors {
		yaw := (float64(i) - 1.5) * math.Pi / 6 // spread across the forward arc
		t := &demoTarget{
			center: vmath.Vec3{
				X: 5 * math.Sin(yaw),
				Z: -5 * math.Cos(yaw),
			},
			radius: 0.6,
			col:    col,
		}
		t.handle = reg.Register(gaze.Capabilities{
			OnGazeEnter: func() { t.hovered = true },
			OnGazeExit:  func() { t.hovered = false },
			OnSelect:    func() { log.Printf("scene: target %s selected", t.handle) },
		})
		s.targets = append(s.targets, t)
	}
	return s
}

// Cast is the scene intersection query: first sphere hit along the ray
// within maxDistance.
func (s *demoScene) Cast(origin, dir vmath.Vec3, maxDistance float64) (gaze.Hit, bool) {
	best := gaze.Hit{Distance: maxDistance}
	found := false

	for _, t := range s.targets {
		// Standard ray-sphere: solve |o + d·t - c|² = r².
		oc := origin.Sub(t.center)
		b := oc.Dot(dir)
		c := oc.LenSq() - t.radius*t.radius
		disc := b*b - c
		if disc < 0 {
			continue
		}
		dist := -b - math.Sqrt(disc)
		if dist < 0 || dist > best.Distance {
			continue
		}
		point := origin.Add(dir.Scale(dist))
		best = gaze.Hit{
			Point:    point,
			Normal:   point.Sub(t.center).Normalize(),
			Distance: dist,
			Target:   t.handle,
		}
		found = true
	}
	return best, found
}

// RenderEye paints the scene into an eye buffer: sky gradient plus a
// projected disc per target. Good enough to see distortion, parallax
// and hover feedback on real optics.
func (s *demoScene) RenderEye(dst *image.RGBA, cam stereo.Camera) {
	b := dst.Bounds()
	w := b.Dx()
	h := b.Dy()
	if w == 0 || h == 0 {
		return
	}

	for y := 0; y < h; y++ {
		shade := uint8(40 + 60*y/h)
		for x := 0; x < w; x++ {
			i := dst.PixOffset(x, y)
			dst.Pix[i] = shade / 2
			dst.Pix[i+1] = shade / 2
			dst.Pix[i+2] = shade
			dst.Pix[i+3] = 255
		}
	}

	// Perspective scale from the vertical FOV.
	f := 0.5 / math.Tan(cam.FOVDeg*math.Pi/180/2)
	inv := cam.Rotation.Conjugate()

	for _, t := range s.targets {
		p := inv.Rotate(t.center.Sub(cam.Position))
		if p.Z > -cam.Near || -p.Z > cam.Far {
			continue
		}
		depth := -p.Z
		cx := int((p.X/depth*f + 0.5) * float64(h))
		cy := int((-p.Y/depth*f + 0.5) * float64(h))
		cx += (w - h) / 2 // center the square projection in the buffer
		r := int(t.radius / depth * f * float64(h))
		if r < 1 {
			r = 1
		}

		col := t.col
		if t.hovered {
			col = color.RGBA{
				R: col.R/2 + 127,
				G: col.G/2 + 127,
				B: col.B/2 + 127,
				A: 255,
			}
		}
		fillDisc(dst, cx, cy, r, col)
	}
}

func fillDisc(dst *image.RGBA, cx, cy, r int, col color.RGBA) {
	b := dst.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
				continue
			}
			dst.SetRGBA(x, y, col)
		}
	}
}
