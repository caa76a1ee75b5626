// Package graph builds the dependency DAG from a list of plan steps:
// resolving require/required_by/step-reference edges, rejecting cycles by
// name, and producing a stable index-based adjacency structure the
// scheduler drives.
package graph

import (
	"fmt"
	"sort"

	"github.com/lorikeet-run/lorikeet/internal/plan"
	lkerrors "github.com/lorikeet-run/lorikeet/pkg/errors"
)

// Node is one vertex in the dependency graph, keyed by the step's position
// in the original declaration order (which is also the tie-breaker order).
type Node struct {
	Index      int
	Step       *plan.Step
	DependsOn  []int // in-edges: steps that must complete first
	Dependents []int // out-edges: steps that depend on this one
}

// Graph is the resolved dependency graph over a plan's steps.
type Graph struct {
	Nodes []*Node
}

// NewGraph allocates an empty graph sized for n steps.
func NewGraph(n int) *Graph {
	return &Graph{Nodes: make([]*Node, 0, n)}
}

func (g *Graph) addEdge(from, to int) {
	for _, d := range g.Nodes[from].Dependents {
		if d == to {
			return // duplicate edges collapse to one
		}
	}
	g.Nodes[from].Dependents = append(g.Nodes[from].Dependents, to)
	g.Nodes[to].DependsOn = append(g.Nodes[to].DependsOn, from)
}

// Build constructs the DAG from steps in their declared order. It resolves
// Ref actions, require, and required_by into edges, then rejects cycles,
// naming one participating step in the error.
func Build(steps []plan.Step) (*Graph, error) {
	g := NewGraph(len(steps))
	nameIndex := make(map[string]int, len(steps))

	for i := range steps {
		if _, exists := nameIndex[steps[i].Name]; exists {
			return nil, lkerrors.NewStepsValidationError(fmt.Sprintf("duplicate step name %q", steps[i].Name))
		}
		nameIndex[steps[i].Name] = i
		g.Nodes = append(g.Nodes, &Node{Index: i, Step: &steps[i]})
	}

	resolve := func(name, via, stepName string) (int, error) {
		idx, ok := nameIndex[name]
		if !ok {
			return 0, lkerrors.NewStepsValidationError(fmt.Sprintf(
				"`%s` can not be found. defined from %s on `%s`", name, via, stepName))
		}
		return idx, nil
	}

	for i := range steps {
		step := &steps[i]

		if step.Action.Kind == plan.ActionRef {
			u, err := resolve(step.Action.Ref, "step run type", step.Name)
			if err != nil {
				return nil, err
			}
			g.addEdge(u, i)
		}

		for _, dep := range step.Require {
			u, err := resolve(dep, "`require`", step.Name)
			if err != nil {
				return nil, err
			}
			g.addEdge(u, i)
		}

		for _, dep := range step.RequiredBy {
			w, err := resolve(dep, "`required_by`", step.Name)
			if err != nil {
				return nil, err
			}
			g.addEdge(i, w)
		}
	}

	if cycle := detectCycle(g); cycle != "" {
		return nil, lkerrors.NewStepsValidationError(fmt.Sprintf("`%s` has a circular dependency", cycle))
	}

	return g, nil
}

// Roots returns the indices of steps with no unresolved in-edges, in
// declaration order — the initial dispatch set for the scheduler.
func (g *Graph) Roots() []int {
	var roots []int
	for _, n := range g.Nodes {
		if len(n.DependsOn) == 0 {
			roots = append(roots, n.Index)
		}
	}
	sort.Ints(roots)
	return roots
}
