// Package action implements the probes a step can run: a literal value, a
// reference to another step's output, a shell command, an HTTP request, a
// system-info read, or a disk-space read. All six implement a single
// Executor interface so the step pipeline never needs to know which kind it
// is driving.
package action

import (
	"context"
	"fmt"

	"github.com/lorikeet-run/lorikeet/internal/plan"
	"github.com/lorikeet-run/lorikeet/internal/runtime"
)

// Executor runs one action and returns its raw, unfiltered output.
type Executor interface {
	Execute(ctx context.Context, rt *runtime.Context) (string, error)
}

// Build returns the Executor for a. It never returns an error itself;
// malformed actions are a construction-time concern the loader already
// rejects.
func Build(a plan.Action) Executor {
	switch a.Kind {
	case plan.ActionValue:
		return valueAction{value: a.Value}
	case plan.ActionRef:
		return refAction{name: a.Ref}
	case plan.ActionShell:
		return shellAction{spec: a.Shell}
	case plan.ActionHTTP:
		return httpAction{spec: a.HTTP}
	case plan.ActionSystem:
		return systemAction{kind: a.System}
	case plan.ActionDisk:
		return diskAction{spec: a.Disk}
	default:
		return unknownAction{kind: a.Kind}
	}
}

type unknownAction struct{ kind plan.ActionKind }

func (u unknownAction) Execute(context.Context, *runtime.Context) (string, error) {
	return "", fmt.Errorf("unknown action kind %v", u.kind)
}

// valueAction always returns a fixed literal. Used for plan-level constants
// and as the degenerate case a plan file falls back to when no other action
// shape matches.
type valueAction struct{ value string }

func (v valueAction) Execute(context.Context, *runtime.Context) (string, error) {
	return v.value, nil
}

// refAction returns a previously published step's output. The graph
// guarantees the referenced step has already run by the time this executes.
type refAction struct{ name string }

func (r refAction) Execute(_ context.Context, rt *runtime.Context) (string, error) {
	out, ok := rt.Output(r.name)
	if !ok {
		return "", fmt.Errorf("step `%s` could not be found", r.name)
	}
	return out, nil
}
