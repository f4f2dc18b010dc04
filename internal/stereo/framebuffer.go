package stereo

import (
	"errors"
	"fmt"
	"image"
)

// ErrRenderResource indicates a frame buffer could not be allocated,
// usually a zero-sized surface. The renderer degrades to mono
// pass-through for the frame and retries next tick.
var ErrRenderResource = errors.New("stereo: render resource unavailable")

// EyeFrameBuffer is one eye's offscreen render target, sized to half
// the display width by the full height.
type EyeFrameBuffer struct {
	img    *image.RGBA
	width  int
	height int
}

// newEyeFrameBuffer allocates a buffer for the given display size.
func newEyeFrameBuffer(displayW, displayH int) (*EyeFrameBuffer, error) {
	w := displayW / 2
	if w <= 0 || displayH <= 0 {
		return nil, fmt.Errorf("%w: eye buffer %dx%d", ErrRenderResource, w, displayH)
	}
	return &EyeFrameBuffer{
		img:    image.NewRGBA(image.Rect(0, 0, w, displayH)),
		width:  w,
		height: displayH,
	}, nil
}

// Image returns the backing image.
func (b *EyeFrameBuffer) Image() *image.RGBA {
	return b.img
}

// Size returns the buffer dimensions.
func (b *EyeFrameBuffer) Size() (w, h int) {
	return b.width, b.height
}

// Release drops the backing storage. Must be called before a resize
// reallocation so the old target is never leaked across it.
func (b *EyeFrameBuffer) Release() {
	b.img = nil
	b.width = 0
	b.height = 0
}
