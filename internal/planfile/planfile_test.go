package planfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorikeet-run/lorikeet/internal/plan"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValueAndBashSteps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := writeFile(t, dir, "test.yml", `
a:
  value: "x"
b:
  bash: "echo y"
  require: a
`)

	steps, err := Load(planPath, "")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.Equal(t, "a", steps[0].Name)
	require.Equal(t, plan.ActionValue, steps[0].Action.Kind)
	require.Equal(t, "x", steps[0].Action.Value)

	require.Equal(t, "b", steps[1].Name)
	require.Equal(t, plan.ActionShell, steps[1].Action.Kind)
	require.Equal(t, "echo y", steps[1].Action.Shell.Cmd)
	require.Equal(t, []string{"a"}, steps[1].Require)
}

func TestLoad_StepPrecedenceOverBash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := writeFile(t, dir, "test.yml", `
a:
  step: "other"
  bash: "echo ignored"
`)

	steps, err := Load(planPath, "")
	require.NoError(t, err)
	require.Equal(t, plan.ActionRef, steps[0].Action.Kind)
	require.Equal(t, "other", steps[0].Action.Ref)
}

func TestLoad_ExpectationKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := writeFile(t, dir, "test.yml", `
a:
  value: "42"
  greater_than: "10"
`)

	steps, err := Load(planPath, "")
	require.NoError(t, err)
	require.Equal(t, plan.ExpectGreaterThan, steps[0].Expect.Kind)
	require.InDelta(t, 10.0, steps[0].Expect.Number, 0.0001)
}

func TestLoad_FiltersJmesPathAndRegexAppendInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := writeFile(t, dir, "test.yml", `
a:
  value: '{"msg":"retry in 30s"}'
  jmespath: "msg"
  regex: '\d+'
`)

	steps, err := Load(planPath, "")
	require.NoError(t, err)
	require.Len(t, steps[0].Filters, 2)
	require.Equal(t, plan.FilterJmesPath, steps[0].Filters[0].Kind)
	require.Equal(t, plan.FilterRegex, steps[0].Filters[1].Kind)
}

func TestLoad_RequireAcceptsScalarOrList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := writeFile(t, dir, "test.yml", `
a:
  value: "1"
b:
  value: "2"
c:
  value: "3"
  require:
    - a
    - b
`)

	steps, err := Load(planPath, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, steps[2].Require)
}

func TestLoad_TemplatesWithConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", "host: example.com\n")
	planPath := writeFile(t, dir, "test.yml", `
a:
  value: "https://{{ .host }}/health"
`)

	steps, err := Load(planPath, configPath)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/health", steps[0].Action.Value)
}

func TestLoad_DuplicateStepNameFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := writeFile(t, dir, "test.yml", `
a:
  value: "1"
a:
  value: "2"
`)

	_, err := Load(planPath, "")
	require.Error(t, err)
}

func TestLoad_EmptyStepNameFailsValidation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := writeFile(t, dir, "test.yml", `
"":
  value: "1"
`)

	_, err := Load(planPath, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation error")
}

func TestLoad_DefaultsDoOutputTrue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := writeFile(t, dir, "test.yml", `
a:
  value: "1"
`)

	steps, err := Load(planPath, "")
	require.NoError(t, err)
	require.True(t, steps[0].DoOutput)
}
