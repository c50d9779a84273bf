package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ticksched/internal/history"
	"ticksched/internal/sched"
)

func TestPersistRunSurvivesShutdownCancel(t *testing.T) {
	t.Parallel()
	store, err := history.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	// a ^C-terminated run reaches persistence with its shutdown context
	// already cancelled; recording must not depend on it
	runCtx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := sched.Summary{
		Started:    time.Now(),
		Duration:   time.Second,
		Ticks:      42,
		Dispatches: 7,
	}
	if err := persistRun(store, summary, map[string]int64{"blink": 7}); err != nil {
		t.Fatalf("persistRun: %v", err)
	}

	runs, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Ticks != 42 {
		t.Fatalf("recorded runs = %+v, want one with 42 ticks", runs)
	}

	// the cancelled context itself still fails, which is why persistRun
	// must not use it
	if err := store.Append(runCtx, history.Run{Started: time.Now()}, nil); err == nil {
		t.Fatal("Append with cancelled context unexpectedly succeeded")
	}
}
