// Package scheduler drives a plan's DAG to completion: it admits ready
// steps, dispatches each through the step pipeline concurrently, and
// streams one completion per step in the order each becomes terminal.
//
// A single driver goroutine owns the status vector and the DAG; it is the
// only reader or writer of either, so no mutex guards them. Per-step work
// runs on its own goroutine and reports back over one completion channel,
// per the re-architecture guidance against a shared-mutex status vector.
package scheduler

import (
	"context"

	"github.com/lorikeet-run/lorikeet/internal/graph"
	"github.com/lorikeet-run/lorikeet/internal/pipeline"
	"github.com/lorikeet-run/lorikeet/internal/plan"
	"github.com/lorikeet-run/lorikeet/internal/runtime"
)

// status is the driver-private state of one step.
type status int

const (
	awaiting status = iota
	completed
	errored
)

// Completion is one step's terminal record, emitted exactly once per step.
type Completion struct {
	Index   int
	Step    plan.Step
	Outcome plan.Outcome
}

type completionMsg struct {
	index   int
	outcome plan.Outcome
}

// Run dispatches g's steps against rt and returns a channel emitting one
// Completion per node, closed once every node has been emitted exactly
// once. The scheduler never blocks Run's caller; all coordination happens
// on the returned channel and an internal driver goroutine.
func Run(ctx context.Context, g *graph.Graph, rt *runtime.Context) <-chan Completion {
	out := make(chan Completion, len(g.Nodes))
	go drive(ctx, g, rt, out)
	return out
}

func drive(ctx context.Context, g *graph.Graph, rt *runtime.Context, out chan<- Completion) {
	defer close(out)

	n := len(g.Nodes)
	statuses := make([]status, n)
	dispatched := make([]bool, n)
	completions := make(chan completionMsg)
	inFlight := 0

	dispatch := func(idx int) {
		dispatched[idx] = true
		inFlight++
		step := *g.Nodes[idx].Step
		go func() {
			completions <- completionMsg{index: idx, outcome: pipeline.Run(ctx, step, rt)}
		}()
	}

	ready := func(idx int) bool {
		for _, dep := range g.Nodes[idx].DependsOn {
			if statuses[dep] != completed {
				return false
			}
		}
		return true
	}

	for _, root := range g.Roots() {
		dispatch(root)
	}

	for inFlight > 0 {
		msg := <-completions
		inFlight--

		st := completed
		if msg.outcome.Error != nil {
			st = errored
		}
		statuses[msg.index] = st

		out <- Completion{Index: msg.index, Step: *g.Nodes[msg.index].Step, Outcome: msg.outcome}

		for _, w := range g.Nodes[msg.index].Dependents {
			if dispatched[w] || st == errored {
				continue
			}
			if ready(w) {
				dispatch(w)
			}
		}
	}

	// Every node left undispatched has at least one errored ancestor: it
	// can never become ready. Synthesize its terminal Outcome without
	// running its action.
	depErr := plan.DependencyNotMet
	for idx := range g.Nodes {
		if dispatched[idx] {
			continue
		}
		dispatched[idx] = true
		out <- Completion{
			Index:   idx,
			Step:    *g.Nodes[idx].Step,
			Outcome: plan.Outcome{Error: &depErr},
		}
	}
}
