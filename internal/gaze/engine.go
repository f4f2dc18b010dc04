// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gaze

import (
	"time"

	"github.com/relabs-tech/stereo_rig/internal/orientation"
	"github.com/relabs-tech/stereo_rig/internal/trigger"
	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// Hit is the result of a scene intersection query.
type Hit struct {
	Point    vmath.Vec3
	Normal   vmath.Vec3
	Distance float64
	Target   TargetHandle
}

// CastFunc is the external scene intersection query: cast a ray and
// report the first interactable hit, if any.
type CastFunc func(origin, dir vmath.Vec3, maxDistance float64) (Hit, bool)

// Config tunes the interaction engine.
type Config struct {
	MaxGazeDistance   float64
	DwellDuration     time.Duration
	AutoSelectOnDwell bool
	DoubleTapWindow   time.Duration
}

// DefaultConfig returns the viewer's interaction tuning.
func DefaultConfig() Config {
	return Config{
		MaxGazeDistance:   20.0,
		DwellDuration:     2 * time.Second,
		AutoSelectOnDwell: true,
		DoubleTapWindow:   300 * time.Millisecond,
	}
}

// Engine turns the head-pose forward ray and a digital trigger into
// hover, dwell and select events with exactly-once delivery per
// transition.
type Engine struct {
	cfg      Config
	reg      *Registry
	cast     CastFunc
	triggers trigger.Source
	recenter func()

	hovering   bool
	hovered    TargetHandle
	dwellStart time.Time

	triggerDown  bool
	lastDownAt   time.Time
	haveLastDown bool

	queue eventQueue
}

// NewEngine wires the engine to its collaborators. recenter is invoked
// on a double tap; pass the estimator's RequestRecenter.
func NewEngine(cfg Config, reg *Registry, cast CastFunc, triggers trigger.Source, recenter func()) *Engine {
	return &Engine{
		cfg:      cfg,
		reg:      reg,
		cast:     cast,
		triggers: triggers,
		recenter: recenter,
	}
}

// Hovered returns the current hovered target, if any.
func (e *Engine) Hovered() (TargetHandle, bool) {
	return e.hovered, e.hovering
}

// DwellProgress reports dwell completion in [0,1] for visual feedback.
// It resets to 0 whenever a Select fires.
func (e *Engine) DwellProgress(now time.Time) float64 {
	if !e.hovering || e.cfg.DwellDuration <= 0 {
		return 0
	}
	p := float64(now.Sub(e.dwellStart)) / float64(e.cfg.DwellDuration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Tick evaluates one frame of interaction against the tick's fused
// head pose — the same value used for rendering. It returns the events
// delivered this tick, already dispatched to target capabilities in
// emission order.
func (e *Engine) Tick(pose orientation.HeadPose, now time.Time) []Event {
	// A hovered target that was destroyed reads as a miss.
	if e.hovering && !e.reg.Valid(e.hovered) {
		e.exitHover(now)
	}

	origin := vmath.Vec3{}
	dir := pose.Rotation.Forward()

	hit, ok := e.cast(origin, dir, e.cfg.MaxGazeDistance)
	if ok && !e.reg.Valid(hit.Target) {
		// Never raise events for invalid targets.
		ok = false
	}

	switch {
	case ok && !e.hovering:
		e.enterHover(hit.Target, now)
	case ok && hit.Target != e.hovered:
		e.exitHover(now)
		e.enterHover(hit.Target, now)
	case ok:
		// Unchanged target: dwell evaluation. Repeatable, not
		// one-shot — the timer restarts after each select.
		if e.cfg.AutoSelectOnDwell && now.Sub(e.dwellStart) >= e.cfg.DwellDuration {
			e.queue.emit(Select, e.hovered, now)
			e.dwellStart = now
		}
	case e.hovering:
		e.exitHover(now)
	}

	for _, edge := range e.triggers.Poll() {
		if edge.Down == e.triggerDown {
			continue
		}
		e.triggerDown = edge.Down
		if !edge.Down {
			continue
		}

		if e.haveLastDown && edge.At.Sub(e.lastDownAt) <= e.cfg.DoubleTapWindow {
			// One recenter per pair; a third tap starts a new pair.
			e.recenter()
			e.haveLastDown = false
		} else {
			e.lastDownAt = edge.At
			e.haveLastDown = true
		}

		if e.hovering {
			e.queue.emit(Select, e.hovered, now)
			e.dwellStart = now
		}
	}

	events := e.queue.drain()
	e.dispatch(events)
	return events
}

func (e *Engine) enterHover(t TargetHandle, now time.Time) {
	e.hovering = true
	e.hovered = t
	e.dwellStart = now
	e.queue.emit(GazeEnter, t, now)
}

func (e *Engine) exitHover(now time.Time) {
	e.queue.emit(GazeExit, e.hovered, now)
	e.hovering = false
	e.hovered = NilTarget
}

func (e *Engine) dispatch(events []Event) {
	for _, ev := range events {
		caps, ok := e.reg.capabilities(ev.Target)
		if !ok {
			// Target vanished between emission and delivery; the
			// event still records the transition for observers.
			continue
		}
		switch ev.Kind {
		case GazeEnter:
			if caps.OnGazeEnter != nil {
				caps.OnGazeEnter()
			}
		case GazeExit:
			if caps.OnGazeExit != nil {
				caps.OnGazeExit()
			}
		case Select:
			if caps.OnSelect != nil {
				caps.OnSelect()
			}
		}
	}
}
