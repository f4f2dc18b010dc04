// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gaze

import (
	"sync"

	"github.com/google/uuid"
)

// TargetHandle identifies an interactable scene target. Handles are
// lightweight references; holding one does not keep the target alive.
type TargetHandle uuid.UUID

// NilTarget is the zero handle.
var NilTarget TargetHandle

func (h TargetHandle) String() string {
	return uuid.UUID(h).String()
}

// MarshalText serializes the handle in canonical UUID form so event
// payloads carry the same representation monitors display.
func (h TargetHandle) MarshalText() ([]byte, error) {
	return uuid.UUID(h).MarshalText()
}

func (h *TargetHandle) UnmarshalText(data []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return err
	}
	*h = TargetHandle(u)
	return nil
}

// Capabilities is the fixed interaction record registered per target:
// three callback slots, no dynamic type discovery.
type Capabilities struct {
	OnGazeEnter func()
	OnGazeExit  func()
	OnSelect    func()
}

// Registry maps target handles to their interaction capabilities.
// Scene code registers targets; the engine only looks them up.
type Registry struct {
	mu      sync.RWMutex
	targets map[TargetHandle]Capabilities
}

func NewRegistry() *Registry {
	return &Registry{targets: make(map[TargetHandle]Capabilities)}
}

// Register adds a target and returns its new handle.
func (r *Registry) Register(caps Capabilities) TargetHandle {
	h := TargetHandle(uuid.New())
	r.mu.Lock()
	r.targets[h] = caps
	r.mu.Unlock()
	return h
}

// Unregister removes a target. A hovered target that disappears is
// treated as a miss on the engine's next tick.
func (r *Registry) Unregister(h TargetHandle) {
	r.mu.Lock()
	delete(r.targets, h)
	r.mu.Unlock()
}

// Valid reports whether the handle refers to a live target.
func (r *Registry) Valid(h TargetHandle) bool {
	r.mu.RLock()
	_, ok := r.targets[h]
	r.mu.RUnlock()
	return ok
}

func (r *Registry) capabilities(h TargetHandle) (Capabilities, bool) {
	r.mu.RLock()
	caps, ok := r.targets[h]
	r.mu.RUnlock()
	return caps, ok
}
