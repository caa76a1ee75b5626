// Package pipeline runs one step's full attempt loop: initial delay, then
// retries of action -> filter chain -> expectation check, with an optional
// on-fail action run after each failing attempt.
package pipeline

import (
	"context"
	"time"

	"github.com/lorikeet-run/lorikeet/internal/action"
	"github.com/lorikeet-run/lorikeet/internal/expect"
	"github.com/lorikeet-run/lorikeet/internal/filter"
	"github.com/lorikeet-run/lorikeet/internal/plan"
	"github.com/lorikeet-run/lorikeet/internal/runtime"
)

// sleeper lets tests replace time.Sleep with something that doesn't block.
type sleeper func(ctx context.Context, d time.Duration)

func contextSleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Run executes step's full attempt loop and returns its terminal Outcome.
// It never returns a Go error: every failure mode is captured in the
// returned Outcome so the scheduler can treat all steps uniformly.
func Run(ctx context.Context, step plan.Step, rt *runtime.Context) plan.Outcome {
	return run(ctx, step, rt, contextSleep)
}

func run(ctx context.Context, step plan.Step, rt *runtime.Context, sleep sleeper) plan.Outcome {
	start := time.Now()

	sleep(ctx, time.Duration(step.Retry.InitialDelayMs)*time.Millisecond)

	attempts := step.Retry.RetryCount + 1

	var lastOutput string
	var lastErr error
	var onFailOutput, onFailErr *string

	for attempt := uint(0); attempt < attempts; attempt++ {
		if attempt > 0 {
			sleep(ctx, time.Duration(step.Retry.RetryDelayMs)*time.Millisecond)
		}

		out, err := attemptOnce(ctx, step, rt)
		lastOutput, lastErr = out, err

		if err == nil {
			break
		}

		if step.OnFail != nil {
			fOut, fErr := action.Build(*step.OnFail).Execute(ctx, rt)
			if fErr != nil {
				msg := fErr.Error()
				onFailErr = &msg
				onFailOutput = nil
			} else {
				onFailOutput = &fOut
				onFailErr = nil
			}
		}
	}

	duration := time.Since(start)

	if lastErr != nil {
		msg := lastErr.Error()
		return plan.Outcome{
			Error:        &msg,
			Duration:     duration,
			OnFailOutput: onFailOutput,
			OnFailError:  onFailErr,
		}
	}

	// do_output only gates public result visibility (internal/result); the
	// shared output map is always written on success so Ref steps can see
	// a predecessor's value even when that predecessor suppresses its own
	// displayed output.
	if lastOutput != "" {
		rt.PutOutput(step.Name, lastOutput)
	}

	return plan.Outcome{
		Output:       &lastOutput,
		Duration:     duration,
		OnFailOutput: onFailOutput,
		OnFailError:  onFailErr,
	}
}

// attemptOnce runs the action once, applies the filter chain, and checks
// the expectation, returning the filtered output and the first error from
// any stage.
func attemptOnce(ctx context.Context, step plan.Step, rt *runtime.Context) (string, error) {
	raw, err := action.Build(step.Action).Execute(ctx, rt)
	if err != nil {
		return "", err
	}

	filtered, err := filter.Apply(step.Filters, raw)
	if err != nil {
		return "", err
	}

	if err := expect.Check(step.Expect, filtered); err != nil {
		return filtered, err
	}

	return filtered, nil
}
