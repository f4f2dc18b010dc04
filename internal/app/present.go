package app

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"
)

// FrameConsumer receives the final composited image each tick. The
// concrete display surface (DRM framebuffer, SDL window, stream) is an
// external collaborator.
type FrameConsumer interface {
	Present(frame *image.RGBA) error
}

type nullConsumer struct{}

func (nullConsumer) Present(*image.RGBA) error { return nil }

// PNGWriter presents frames by writing a PNG snapshot to a path, rate
// limited so the rig's SD card survives it. Useful for headless
// bring-up and the web monitor's frame endpoint.
type PNGWriter struct {
	path     string
	interval time.Duration
	last     time.Time
}

func NewPNGWriter(path string, interval time.Duration) *PNGWriter {
	return &PNGWriter{path: path, interval: interval}
}

func (w *PNGWriter) Present(frame *image.RGBA) error {
	now := time.Now()
	if !w.last.IsZero() && now.Sub(w.last) < w.interval {
		return nil
	}
	w.last = now

	tmp := w.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("frame writer: create: %w", err)
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("frame writer: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("frame writer: close: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("frame writer: rename: %w", err)
	}
	return nil
}
