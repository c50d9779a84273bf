package job

import (
	"time"
)

// SpinWork returns a runnable that busy-loops for roughly the given number
// of microseconds. It keeps the dispatch goroutine on-CPU, which is what a
// real task body does between returns in a cooperative loop.
func SpinWork(us int) func() {
	d := time.Duration(us) * time.Microsecond
	return func() {
		deadline := time.Now().Add(d)
		for time.Now().Before(deadline) {
		}
	}
}

// SleepWork returns a runnable that sleeps for the given number of
// microseconds, yielding the CPU instead of spinning.
func SleepWork(us int) func() {
	d := time.Duration(us) * time.Microsecond
	return func() {
		time.Sleep(d)
	}
}

// ByKind maps a config workload kind to a runnable. Unknown kinds fall
// back to spin.
func ByKind(kind string, us int) func() {
	switch kind {
	case "sleep":
		return SleepWork(us)
	default:
		return SpinWork(us)
	}
}
