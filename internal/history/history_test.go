package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestAppendAndRecent(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute).Round(time.Millisecond)
	run := Run{
		Started:    started,
		Duration:   3 * time.Second,
		Ticks:      1000,
		Dispatches: 250,
	}
	totals := map[string]int64{"blink": 200, "poll": 50}
	if err := store.Append(ctx, run, totals); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, Run{Started: time.Now(), Ticks: 10}, nil); err != nil {
		t.Fatalf("Append second: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Recent returned %d runs, want 2", len(runs))
	}
	// newest first
	if runs[0].Ticks != 10 {
		t.Fatalf("first run Ticks = %d, want 10", runs[0].Ticks)
	}
	got := runs[1]
	if !got.Started.Equal(started) {
		t.Fatalf("Started = %v, want %v", got.Started, started)
	}
	if got.Duration != run.Duration || got.Ticks != run.Ticks || got.Dispatches != run.Dispatches {
		t.Fatalf("stored run = %+v, want %+v", got, run)
	}

	back, err := store.TaskTotals(ctx, got.ID)
	if err != nil {
		t.Fatalf("TaskTotals: %v", err)
	}
	if back["blink"] != 200 || back["poll"] != 50 {
		t.Fatalf("TaskTotals = %v, want %v", back, totals)
	}
}

func TestRecentLimit(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, Run{Started: time.Now(), Ticks: int64(i)}, nil); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	runs, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Recent returned %d runs, want 3", len(runs))
	}
	if runs[0].Ticks != 4 {
		t.Fatalf("newest run Ticks = %d, want 4", runs[0].Ticks)
	}
}
