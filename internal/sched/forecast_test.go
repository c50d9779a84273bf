package sched

import (
	"reflect"
	"testing"
)

func TestForecastMixedTable(t *testing.T) {
	t.Parallel()
	tasks := []TaskSpec{
		{Name: "a", Interval: 5},
		{Name: "b", Interval: 0},
	}

	got := Forecast(tasks, 6, 1)
	want := []PlanEntry{
		{Pass: 0, Task: "a"},
		{Pass: 0, Task: "b", Continuous: true},
		{Pass: 1, Task: "b", Continuous: true},
		{Pass: 2, Task: "b", Continuous: true},
		{Pass: 3, Task: "b", Continuous: true},
		{Pass: 4, Task: "b", Continuous: true},
		{Pass: 5, Task: "a"},
		{Pass: 5, Task: "b", Continuous: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Forecast = %v, want %v", got, want)
	}
}

func TestForecastKeepsTableOrderWithinPass(t *testing.T) {
	t.Parallel()
	tasks := []TaskSpec{
		{Name: "late", Interval: 2},
		{Name: "early", Interval: 2},
	}

	got := Forecast(tasks, 3, 1)
	want := []PlanEntry{
		{Pass: 0, Task: "late"},
		{Pass: 0, Task: "early"},
		{Pass: 2, Task: "late"},
		{Pass: 2, Task: "early"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Forecast = %v, want %v", got, want)
	}
}

func TestForecastScalesWithTickIncrement(t *testing.T) {
	t.Parallel()
	tasks := []TaskSpec{{Name: "a", Interval: 5}}

	// counter advances by 2 per pass, so interval 5 recurs every 3 passes
	got := Forecast(tasks, 10, 2)
	want := []PlanEntry{
		{Pass: 0, Task: "a"},
		{Pass: 3, Task: "a"},
		{Pass: 6, Task: "a"},
		{Pass: 9, Task: "a"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Forecast = %v, want %v", got, want)
	}
}

// TestForecastMatchesDispatcher cross-checks the predicted passes against
// the scheduler itself driven one Tick per pass.
func TestForecastMatchesDispatcher(t *testing.T) {
	t.Parallel()
	tasks := []TaskSpec{
		{Name: "a", Interval: 5},
		{Name: "b", Interval: 3},
	}
	const (
		passes    = 30
		increment = 2
	)

	var s Scheduler
	firedAt := map[string][]int64{}
	table := []Task{
		NewTask(nil, tasks[0].Interval),
		NewTask(nil, tasks[1].Interval),
	}
	var pass int64
	table[0].Func = func() { firedAt["a"] = append(firedAt["a"], pass) }
	table[1].Func = func() { firedAt["b"] = append(firedAt["b"], pass) }
	if err := s.InitWithInterval(table, increment); err != nil {
		t.Fatalf("InitWithInterval: %v", err)
	}

	for pass = 0; pass < passes; pass++ {
		if pass > 0 {
			s.Tick()
		}
		s.Run()
	}

	predicted := map[string][]int64{}
	for _, e := range Forecast(tasks, passes, increment) {
		predicted[e.Task] = append(predicted[e.Task], e.Pass)
	}

	if !reflect.DeepEqual(firedAt, predicted) {
		t.Fatalf("dispatcher fired %v, forecast predicted %v", firedAt, predicted)
	}
}

func TestForecastEmpty(t *testing.T) {
	t.Parallel()
	if got := Forecast(nil, 5, 1); got != nil {
		t.Fatalf("Forecast(nil) = %v, want nil", got)
	}
	if got := Forecast([]TaskSpec{{Name: "a", Interval: 1}}, 0, 1); got != nil {
		t.Fatalf("Forecast(.., 0) = %v, want nil", got)
	}
	// a zero increment behaves like 1 instead of stalling
	if got := Forecast([]TaskSpec{{Name: "a", Interval: 2}}, 3, 0); len(got) != 2 {
		t.Fatalf("Forecast with zero increment = %v, want 2 entries", got)
	}
}
