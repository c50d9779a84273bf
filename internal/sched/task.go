package sched

// TaskFunc is the callable a task dispatches: no arguments, no result.
// Work functions are expected to run to completion quickly and return.
type TaskFunc func()

// Task is one schedulable unit inside a caller-owned task table.
//
// Func and Interval are caller-mutable, but only from the same context that
// calls Run: setting Func to nil truncates the active table at that entry,
// and changing Interval retunes the task from its next due check onward.
// The scheduler itself only reads them.
type Task struct {
	Func     TaskFunc
	Interval uint32 // ticks between runs; 0 means run on every pass

	// tick value at which this task last ran, owned by the scheduler.
	lastCalled uint32
}

// NewTask builds a table entry for fn running every interval ticks.
// An interval of 0 marks a continuous task.
func NewTask(fn TaskFunc, interval uint32) Task {
	return Task{Func: fn, Interval: interval}
}
