package trigger

import (
	"sync"
	"time"
)

// Edge is one digital trigger transition. Edges are captured as they
// occur and drained by the tick loop, so a press lands deterministically
// at the start of the next tick.
type Edge struct {
	Down bool
	At   time.Time
}

// Source supplies trigger edges once per tick. The physical mapping
// (touch, tap, button, controller) is outside the core.
type Source interface {
	Poll() []Edge
}

// Button is a programmatic trigger source. Press and Release may be
// called from any goroutine; Poll is called by the tick loop only.
type Button struct {
	mu      sync.Mutex
	pending []Edge
	down    bool
}

func NewButton() *Button {
	return &Button{}
}

// Press latches a down edge. Repeated presses without a release are
// ignored.
func (b *Button) Press() {
	b.edge(true)
}

// Release latches an up edge.
func (b *Button) Release() {
	b.edge(false)
}

func (b *Button) edge(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.down == down {
		return
	}
	b.down = down
	b.pending = append(b.pending, Edge{Down: down, At: time.Now()})
}

// Poll drains the captured edges in order.
func (b *Button) Poll() []Edge {
	b.mu.Lock()
	defer b.mu.Unlock()
	edges := b.pending
	b.pending = nil
	return edges
}
