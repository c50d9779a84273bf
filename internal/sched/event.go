// internal/sched/event.go

package sched

import (
	"time"
)

// StatusKind represents the type of harness event.
type StatusKind int

const (
	StatusArmed StatusKind = iota
	StatusTick
	StatusDispatch
	StatusStop
)

// StatusEvent is emitted on every tick and on key harness actions.
type StatusEvent struct {
	Time time.Time
	Kind StatusKind
	Task string // task name for StatusDispatch, empty otherwise
	Tick uint32 // counter value observed when the event was produced
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusArmed:
		return "Armed"
	case StatusTick:
		return "Tick"
	case StatusDispatch:
		return "Dispatch"
	case StatusStop:
		return "Stop"
	default:
		return "Unknown"
	}
}
