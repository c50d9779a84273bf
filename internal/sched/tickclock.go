// internal/sched/tickclock.go

package sched

import (
	"sync/atomic"
	"time"
)

// TickClock drives a Scheduler's counter from wall-clock time, standing in
// for the timer interrupt of an embedded target. Every period it calls the
// advance function from its own goroutine and signals Ch so a dispatch
// loop can pace itself on real ticks.
type TickClock struct {
	Ch      chan struct{}
	advance func() uint32
	emitted atomic.Int64
	stop    chan struct{}
}

// NewTickClock creates a clock that calls advance once per period.
// The clock does not start until Start is called.
func NewTickClock(advance func() uint32, buffer int) *TickClock {
	return &TickClock{
		Ch:      make(chan struct{}, buffer),
		advance: advance,
		stop:    make(chan struct{}),
	}
}

// Start begins advancing at the given period. The signal send is
// non-blocking: if the dispatch loop falls behind, tick signals are
// dropped but the counter still advances, matching an interrupt that
// fires regardless of what the main loop is doing.
func (c *TickClock) Start(period time.Duration) {
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.advance()
				c.emitted.Add(1)
				select {
				case c.Ch <- struct{}{}:
				default:
				}
			case <-c.stop:
				close(c.Ch)
				return
			}
		}
	}()
}

// Stop signals the clock goroutine to exit and closes Ch.
func (c *TickClock) Stop() {
	close(c.stop)
}

// Emitted returns how many ticks the clock has driven so far.
func (c *TickClock) Emitted() int64 {
	return c.emitted.Load()
}
