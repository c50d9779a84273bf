// internal/sched/scheduler.go

// Package sched implements a cooperative, non-preemptive task scheduler
// driven by a free-running 32-bit tick counter. Tasks live in a fixed,
// caller-owned table; Tick advances the counter (typically from a timer
// goroutine standing in for an interrupt) and Run performs one dispatch
// pass over the table from the main execution context.
package sched

import (
	"errors"
	"math"
	"sync/atomic"
)

var (
	// ErrNoTable is returned by Init when the task table is nil or empty.
	ErrNoTable = errors.New("sched: no task table")
	// ErrNilTaskFunc is returned by Init when a table entry has no callable.
	ErrNilTaskFunc = errors.New("sched: task with nil func")
)

// Scheduler dispatches a fixed table of periodic and continuous tasks.
//
// The tick counter is the single point of cross-context sharing: Tick may
// run concurrently with Run, everything else (Run, table mutation,
// re-initialization) belongs to one dispatch goroutine.
type Scheduler struct {
	ticks        atomic.Uint32 // free-running counter, only ever advanced
	tickInterval atomic.Uint32 // amount added per Tick

	table []Task // borrowed from the caller, never copied or resized
}

// Init binds the scheduler to a caller-owned task table with a tick
// interval of 1. See InitWithInterval.
func (s *Scheduler) Init(table []Task) error {
	return s.InitWithInterval(table, 1)
}

// InitWithInterval binds the scheduler to a caller-owned task table and
// sets the amount the counter advances per Tick call.
//
// It fails without touching the table or any externally visible state when
// the table is absent or any entry has a nil Func. On success the counter
// is reset to zero and every entry's due-time stamp is set so that the
// first Run pass fires each periodic task exactly once, even before the
// first Tick.
func (s *Scheduler) InitWithInterval(table []Task, tickInterval uint32) error {
	if len(table) == 0 {
		return ErrNoTable
	}
	for i := range table {
		if table[i].Func == nil {
			return ErrNilTaskFunc
		}
	}

	// Arm every task: with lastCalled at MaxUint32-Interval+1 the unsigned
	// subtraction ticks(=0) - lastCalled equals Interval, so the first due
	// check passes with no first-run special case. For Interval 0 the
	// expression wraps to 0, which continuous tasks never read anyway.
	for i := range table {
		table[i].lastCalled = math.MaxUint32 - table[i].Interval + 1
	}

	s.table = table
	s.tickInterval.Store(tickInterval)
	s.ticks.Store(0)
	return nil
}

// Tick advances the counter by the configured tick interval and returns
// the new value. It is the sole writer of the counter and is safe to call
// from a context other than the dispatch goroutine.
func (s *Scheduler) Tick() uint32 {
	return s.ticks.Add(s.tickInterval.Load())
}

// TickCount returns the current counter value without mutating it.
func (s *Scheduler) TickCount() uint32 {
	return s.ticks.Load()
}

// SetTickInterval replaces the per-Tick increment, taking effect with the
// next Tick call. Already elapsed intervals are not rescaled; callers
// changing this at runtime accept the measurement seam.
func (s *Scheduler) SetTickInterval(tickInterval uint32) {
	s.tickInterval.Store(tickInterval)
}

// Run performs exactly one dispatch pass over the task table in order.
//
// Each iteration snapshots the counter independently, so a concurrent Tick
// skews at most the tasks after it, never the arithmetic of a single task.
// A nil Func terminates the pass at that position. A task with Interval 0
// runs unconditionally; a periodic task runs when the unsigned modular
// difference since its last run reaches its interval, and is then stamped
// with the snapshot used for the comparison. No task runs more than once
// per pass.
func (s *Scheduler) Run() {
	for i := range s.table {
		t := &s.table[i]
		if t.Func == nil {
			break
		}

		ctr := s.ticks.Load()
		switch {
		case t.Interval == 0:
			t.Func()
		case ctr-t.lastCalled >= t.Interval:
			// Modular uint32 subtraction stays correct across the counter
			// wrap as long as overdue-ness is under half the range.
			t.Func()
			t.lastCalled = ctr
		}
	}
}
