package gaze

import "time"

// EventKind enumerates the interaction events.
type EventKind int

const (
	GazeEnter EventKind = iota
	GazeExit
	Select
)

func (k EventKind) String() string {
	switch k {
	case GazeEnter:
		return "gaze_enter"
	case GazeExit:
		return "gaze_exit"
	case Select:
		return "select"
	default:
		return "unknown"
	}
}

// Event is one interaction transition. Events are transient: produced,
// dispatched and discarded within a single tick.
type Event struct {
	Kind   EventKind    `json:"kind"`
	Target TargetHandle `json:"target"`
	Time   time.Time    `json:"time"`
}

// eventQueue collects the tick's events for single-consumer delivery
// in emission order. Handlers run only from the drain, never from the
// transition evaluation itself, so a Select handler cannot re-trigger
// another Select within the same tick.
type eventQueue struct {
	events []Event
}

func (q *eventQueue) emit(kind EventKind, target TargetHandle, at time.Time) {
	q.events = append(q.events, Event{Kind: kind, Target: target, Time: at})
}

func (q *eventQueue) drain() []Event {
	events := q.events
	q.events = nil
	return events
}
