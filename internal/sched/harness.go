// internal/sched/harness.go

package sched

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"ticksched/internal/job"
)

// Summary describes one completed simulation run.
type Summary struct {
	Started    time.Time
	Duration   time.Duration
	Ticks      int64
	Dispatches int64
}

// Harness owns the task table built from a Config and drives a Scheduler
// the way board code would: a TickClock goroutine advances the counter
// while the harness loop calls Run once per tick signal. Trace events are
// streamed on a status channel and optionally mirrored to CSV.
type Harness struct {
	cfg   Config
	sched *Scheduler
	table []Task
	names []string // table index -> task name

	clock    *TickClock
	statusCh chan StatusEvent
	reloadCh chan Config

	log         zerolog.Logger
	tickLimiter *rate.Limiter // keeps per-tick debug lines from flooding

	// run bookkeeping, written only by the event consumer
	ranTotals map[string]int64
	summary   Summary

	csvFile   *os.File
	csvWriter *csv.Writer
}

// NewHarness validates cfg, builds the task table and arms the scheduler.
func NewHarness(cfg Config, log zerolog.Logger) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Harness{
		cfg:         cfg,
		sched:       &Scheduler{},
		statusCh:    make(chan StatusEvent, 256),
		reloadCh:    make(chan Config, 1),
		log:         log,
		tickLimiter: rate.NewLimiter(rate.Limit(10), 10),
		ranTotals:   make(map[string]int64, len(cfg.Tasks)),
	}

	h.table = make([]Task, len(cfg.Tasks))
	h.names = make([]string, len(cfg.Tasks))
	for i, spec := range cfg.Tasks {
		work := job.ByKind(spec.Kind, spec.WorkUS)
		name := spec.Name
		h.names[i] = name
		h.table[i] = NewTask(func() {
			work()
			h.statusCh <- StatusEvent{
				Time: time.Now(),
				Kind: StatusDispatch,
				Task: name,
				Tick: h.sched.TickCount(),
			}
		}, spec.Interval)
	}

	if err := h.sched.InitWithInterval(h.table, cfg.TickIncrement); err != nil {
		return nil, err
	}
	return h, nil
}

// EnableCSVLogging opens the given path for CSV logging of trace events.
// Must be called before Run.
func (h *Harness) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Write([]string{"timestamp", "tick", "event", "task"})
	w.Flush()
	h.csvFile = f
	h.csvWriter = w
	return nil
}

// StatusChannel exposes the read-only event stream for optional consumers.
func (h *Harness) StatusChannel() <-chan StatusEvent { return h.statusCh }

// Reload hands a freshly parsed config to the harness loop. The loop
// applies it between dispatch passes, keeping table mutation on the
// dispatch goroutine. Latest config wins if reloads arrive faster than
// passes complete.
func (h *Harness) Reload(cfg Config) {
	select {
	case h.reloadCh <- cfg:
	default:
		select {
		case <-h.reloadCh:
		default:
		}
		select {
		case h.reloadCh <- cfg:
		default:
		}
	}
}

// Run drives the simulation until cfg.RunTicks ticks have elapsed or ctx
// is cancelled, consuming trace events as they arrive.
func (h *Harness) Run(ctx context.Context) error {
	if h.cfg.CSVLog != "" && h.csvWriter == nil {
		if err := h.EnableCSVLogging(h.cfg.CSVLog); err != nil {
			return fmt.Errorf("csv log: %w", err)
		}
	}

	h.summary.Started = time.Now()
	h.clock = NewTickClock(h.sched.Tick, 256)
	h.clock.Start(time.Duration(h.cfg.TickUS) * time.Microsecond)

	go h.loop(ctx)

	for ev := range h.statusCh {
		h.handleEvent(ev)
	}

	h.summary.Duration = time.Since(h.summary.Started)
	h.summary.Ticks = h.clock.Emitted()

	if h.csvFile != nil {
		h.csvWriter.Flush()
		h.csvFile.Close()
	}
	return nil
}

// Summary reports the totals of a completed run.
func (h *Harness) Summary() (Summary, map[string]int64) {
	return h.summary, h.ranTotals
}

// loop is the dispatch side: one Run pass per tick signal, pending config
// applied between passes. The scheduler fires every periodic task on the
// very first pass, before any tick has elapsed.
func (h *Harness) loop(ctx context.Context) {
	defer func() {
		h.clock.Stop()
	}()

	h.statusCh <- StatusEvent{Time: time.Now(), Kind: StatusArmed}
	h.sched.Run()

	var ticksSeen int64
	for {
		select {
		case <-ctx.Done():
			h.emitStop()
			return
		case _, ok := <-h.clock.Ch:
			if !ok {
				h.emitStop()
				return
			}
			ticksSeen++
			h.statusCh <- StatusEvent{
				Time: time.Now(),
				Kind: StatusTick,
				Tick: h.sched.TickCount(),
			}

			select {
			case cfg := <-h.reloadCh:
				h.apply(cfg)
			default:
			}

			h.sched.Run()

			if h.cfg.RunTicks > 0 && ticksSeen >= h.cfg.RunTicks {
				h.emitStop()
				return
			}
		}
	}
}

func (h *Harness) emitStop() {
	h.statusCh <- StatusEvent{
		Time: time.Now(),
		Kind: StatusStop,
		Tick: h.sched.TickCount(),
	}
	close(h.statusCh)
}

// apply retunes the running table from a reloaded config: task intervals
// are matched by name, and the counter increment is swapped when changed.
// Runs on the dispatch goroutine only.
func (h *Harness) apply(cfg Config) {
	byName := make(map[string]TaskSpec, len(cfg.Tasks))
	for _, spec := range cfg.Tasks {
		byName[spec.Name] = spec
	}

	for i, name := range h.names {
		spec, ok := byName[name]
		if !ok {
			continue
		}
		if h.table[i].Interval != spec.Interval {
			h.log.Info().
				Str("task", name).
				Uint32("interval", spec.Interval).
				Msg("task interval retuned")
			h.table[i].Interval = spec.Interval
		}
	}

	if cfg.TickIncrement != h.cfg.TickIncrement {
		h.sched.SetTickInterval(cfg.TickIncrement)
		h.log.Info().
			Uint32("tick_increment", cfg.TickIncrement).
			Msg("tick increment changed")
		h.cfg.TickIncrement = cfg.TickIncrement
	}
}

func (h *Harness) handleEvent(ev StatusEvent) {
	switch ev.Kind {
	case StatusTick:
		// ticks arrive at wall-clock rate; sample them in the log
		if h.tickLimiter.Allow() {
			h.log.Debug().Uint32("tick", ev.Tick).Msg("tick")
		}
		return
	case StatusDispatch:
		h.ranTotals[ev.Task]++
		h.summary.Dispatches++
		h.log.Debug().
			Str("task", ev.Task).
			Uint32("tick", ev.Tick).
			Int64("total", h.ranTotals[ev.Task]).
			Msg("dispatch")
	case StatusArmed:
		h.log.Info().Int("tasks", len(h.table)).Msg("scheduler armed")
	case StatusStop:
		h.log.Info().
			Uint32("tick", ev.Tick).
			Int64("dispatches", h.summary.Dispatches).
			Msg("scheduler stopped")
	}

	if h.csvWriter != nil {
		h.csvWriter.Write([]string{
			ev.Time.Format(time.RFC3339Nano),
			strconv.FormatUint(uint64(ev.Tick), 10),
			ev.Kind.String(),
			ev.Task,
		})
		h.csvWriter.Flush()
	}
}
