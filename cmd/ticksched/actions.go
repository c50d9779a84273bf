package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli"

	"ticksched/internal/history"
	"ticksched/internal/sched"
)

var (
	cfgPath string
	debug   bool
	watch   bool
	passes  int64
	dbPath  string
	limit   int
)

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

func runAction(_ *cli.Context) error {
	log := newLogger()

	cfg, err := sched.Parse(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	h, err := sched.NewHarness(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if watch {
		stop, err := sched.WatchConfig(cfgPath, log, h.Reload)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer stop()
	}

	if err := h.Run(ctx); err != nil {
		return err
	}

	summary, totals := h.Summary()
	fmt.Printf("ran %d ticks in %s, %d dispatches\n",
		summary.Ticks, summary.Duration.Round(time.Millisecond), summary.Dispatches)
	for _, t := range cfg.Tasks {
		fmt.Printf("  %-16s %6d\n", t.Name, totals[t.Name])
	}

	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		defer store.Close()
		if err := persistRun(store, summary, totals); err != nil {
			log.Warn().Err(err).Msg("run summary not recorded")
		}
	}
	return nil
}

// persistRun records a completed run. It deliberately does not take the
// run context: a signal-terminated run arrives here with that context
// already cancelled, and the summary must still be written.
func persistRun(store *history.Store, summary sched.Summary, totals map[string]int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return store.Append(ctx, history.Run{
		Started:    summary.Started,
		Duration:   summary.Duration,
		Ticks:      summary.Ticks,
		Dispatches: summary.Dispatches,
	}, totals)
}

func planAction(_ *cli.Context) error {
	cfg, err := sched.Parse(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	plan := sched.Forecast(cfg.Tasks, passes, cfg.TickIncrement)
	lastPass := int64(-1)
	for _, e := range plan {
		if e.Pass != lastPass {
			fmt.Printf("pass %d:\n", e.Pass)
			lastPass = e.Pass
		}
		marker := ""
		if e.Continuous {
			marker = " (continuous)"
		}
		fmt.Printf("  %s%s\n", e.Task, marker)
	}
	return nil
}

func historyAction(_ *cli.Context) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("#%-4d %s  %8s  %8d ticks  %8d dispatches\n",
			r.ID, r.Started.Format("2006-01-02 15:04:05"),
			r.Duration.Round(time.Millisecond), r.Ticks, r.Dispatches)
	}
	return nil
}
