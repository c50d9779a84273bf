package sched

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// PlanEntry is one predicted dispatch: task fires on the given pass,
// counting from the first pass after initialization (pass 0, on which
// every task fires).
type PlanEntry struct {
	Pass       int64
	Task       string
	Continuous bool
}

// planKey orders predicted dispatches by pass, then table position.
type planKey struct {
	pass int64
	idx  int
}

func planCmp(a, b any) int {
	ka, kb := a.(planKey), b.(planKey)
	switch {
	case ka.pass < kb.pass:
		return -1
	case ka.pass > kb.pass:
		return 1
	case ka.idx < kb.idx:
		return -1
	case ka.idx > kb.idx:
		return 1
	default:
		return 0
	}
}

// Forecast predicts the dispatch order of the first `passes` dispatch
// passes for the given task specs, assuming the harness cadence of one
// pass per tick and a cold start (every task due on pass 0). Continuous
// tasks appear on every pass.
//
// tickIncrement is the counter advance per tick: a periodic task with
// interval k recurs every ceil(k/tickIncrement) passes, matching what
// the dispatch loop does when the increment covers more than one tick
// unit. The pass-0 stamp and every later stamp land on increment
// multiples, so the ceiling spacing is exact, not an approximation.
func Forecast(tasks []TaskSpec, passes int64, tickIncrement uint32) []PlanEntry {
	if passes <= 0 || len(tasks) == 0 {
		return nil
	}
	inc := int64(tickIncrement)
	if inc <= 0 {
		inc = 1
	}

	rbt := redblacktree.NewWith(planCmp)
	for i, t := range tasks {
		rbt.Put(planKey{pass: 0, idx: i}, t)
	}

	var plan []PlanEntry
	for {
		node := rbt.Left()
		if node == nil {
			break
		}
		key := node.Key.(planKey)
		if key.pass >= passes {
			break
		}
		spec := node.Value.(TaskSpec)
		rbt.Remove(key)

		plan = append(plan, PlanEntry{
			Pass:       key.pass,
			Task:       spec.Name,
			Continuous: spec.Interval == 0,
		})

		// continuous tasks come back every pass, periodic ones once the
		// counter has covered their interval
		next := key.pass + 1
		if spec.Interval > 0 {
			next = key.pass + (int64(spec.Interval)+inc-1)/inc
		}
		rbt.Put(planKey{pass: next, idx: key.idx}, spec)
	}
	return plan
}
