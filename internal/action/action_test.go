package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorikeet-run/lorikeet/internal/plan"
	"github.com/lorikeet-run/lorikeet/internal/runtime"
)

func TestBuild_ValueActionReturnsLiteral(t *testing.T) {
	t.Parallel()

	exec := Build(plan.Action{Kind: plan.ActionValue, Value: "hello"})
	out, err := exec.Execute(context.Background(), runtime.NewContext())
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestBuild_RefActionReadsPublishedOutput(t *testing.T) {
	t.Parallel()

	rt := runtime.NewContext()
	rt.PutOutput("parent", "parent output")

	exec := Build(plan.Action{Kind: plan.ActionRef, Ref: "parent"})
	out, err := exec.Execute(context.Background(), rt)
	require.NoError(t, err)
	require.Equal(t, "parent output", out)
}

func TestBuild_RefActionMissingOutputErrors(t *testing.T) {
	t.Parallel()

	exec := Build(plan.Action{Kind: plan.ActionRef, Ref: "nope"})
	_, err := exec.Execute(context.Background(), runtime.NewContext())
	require.Error(t, err)
}

func TestBuild_ShellActionRunsCommand(t *testing.T) {
	t.Parallel()

	exec := Build(plan.Action{Kind: plan.ActionShell, Shell: &plan.ShellSpec{Cmd: "echo hello"}})
	out, err := exec.Execute(context.Background(), runtime.NewContext())
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestBuild_ShellActionFailureIncludesStderr(t *testing.T) {
	t.Parallel()

	exec := Build(plan.Action{Kind: plan.ActionShell, Shell: &plan.ShellSpec{Cmd: "echo oops 1>&2; exit 1"}})
	_, err := exec.Execute(context.Background(), runtime.NewContext())
	require.Error(t, err)
	require.Contains(t, err.Error(), "oops")
}

func TestBuild_ShellActionFullErrorIncludesStatusCode(t *testing.T) {
	t.Parallel()

	exec := Build(plan.Action{Kind: plan.ActionShell, Shell: &plan.ShellSpec{
		Cmd:       "echo out; echo oops 1>&2; exit 7",
		FullError: true,
	}})
	_, err := exec.Execute(context.Background(), runtime.NewContext())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Status Code:7")
	require.Contains(t, err.Error(), "Error:oops")
	require.Contains(t, err.Error(), "Output:out")
}

func TestBuild_UnknownActionKindErrors(t *testing.T) {
	t.Parallel()

	exec := Build(plan.Action{Kind: plan.ActionKind(99)})
	_, err := exec.Execute(context.Background(), runtime.NewContext())
	require.Error(t, err)
}

func TestPrettyBytes_RendersExpectedUnits(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1.00KB", prettyBytes(1000))
	require.Equal(t, "1.50MB", prettyBytes(1_500_000))
}
