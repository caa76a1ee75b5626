package result

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lorikeet-run/lorikeet/internal/plan"
	"github.com/lorikeet-run/lorikeet/internal/scheduler"
)

func TestProject_SuccessfulStepWithOutput(t *testing.T) {
	t.Parallel()

	out := "hello"
	c := scheduler.Completion{
		Step:    plan.Step{Name: "a", DoOutput: true},
		Outcome: plan.Outcome{Output: &out, Duration: 1500 * time.Microsecond},
	}

	r := Project(c)
	require.True(t, r.Pass)
	require.Equal(t, "hello", r.Output)
	require.False(t, r.Skipped)
	require.InDelta(t, 1.5, r.DurationMs, 0.001)
}

func TestProject_DoOutputFalseSuppressesOutput(t *testing.T) {
	t.Parallel()

	out := "hello"
	c := scheduler.Completion{
		Step:    plan.Step{Name: "a", DoOutput: false},
		Outcome: plan.Outcome{Output: &out},
	}

	r := Project(c)
	require.Equal(t, "", r.Output)
}

func TestProject_DependencySkippedIsFlagged(t *testing.T) {
	t.Parallel()

	depErr := plan.DependencyNotMet
	c := scheduler.Completion{
		Step:    plan.Step{Name: "b"},
		Outcome: plan.Outcome{Error: &depErr},
	}

	r := Project(c)
	require.False(t, r.Pass)
	require.True(t, r.Skipped)
	require.Equal(t, plan.DependencyNotMet, r.Error)
}

func TestProject_OrdinaryFailureIsNotSkipped(t *testing.T) {
	t.Parallel()

	errMsg := "boom"
	c := scheduler.Completion{
		Step:    plan.Step{Name: "a"},
		Outcome: plan.Outcome{Error: &errMsg},
	}

	r := Project(c)
	require.False(t, r.Pass)
	require.False(t, r.Skipped)
}

func TestConstructionFailure_NamesRecordLorikeet(t *testing.T) {
	t.Parallel()

	r := ConstructionFailure(errors.New("circular dependency: `a`"))
	require.Equal(t, "lorikeet", r.Name)
	require.False(t, r.Pass)
	require.Contains(t, r.Error, "circular dependency")
}
