// Command lorikeet runs a YAML test plan's steps as a dependency-ordered,
// concurrent DAG and reports pass/fail per step plus an aggregate outcome.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lorikeet-run/lorikeet/internal/graph"
	"github.com/lorikeet-run/lorikeet/internal/obslog"
	"github.com/lorikeet-run/lorikeet/internal/planfile"
	"github.com/lorikeet-run/lorikeet/internal/report/junit"
	"github.com/lorikeet-run/lorikeet/internal/report/slack"
	"github.com/lorikeet-run/lorikeet/internal/report/webhook"
	"github.com/lorikeet-run/lorikeet/internal/result"
	"github.com/lorikeet-run/lorikeet/internal/runtime"
	"github.com/lorikeet-run/lorikeet/internal/scheduler"
	lkerrors "github.com/lorikeet-run/lorikeet/pkg/errors"
)

type flags struct {
	configPath string
	quiet      bool
	webhooks   []string
	slack      string
	junitPath  string
	hostname   string
	terminal   bool
}

func main() {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "lorikeet [test_plan]",
		Short:         "Run a parallel test plan for operations and deployment validation",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := "test.yml"
			if len(args) == 1 {
				planPath = args[0]
			}
			return run(cmd.Context(), planPath, f)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "template context for the plan file")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "suppress per-step result printing")
	cmd.Flags().StringArrayVarP(&f.webhooks, "webhook", "w", nil, "webhook URL to submit results to (repeatable)")
	cmd.Flags().StringVar(&f.slack, "slack", "", "Slack incoming-webhook URL to submit a summary to")
	cmd.Flags().StringVarP(&f.junitPath, "junit", "j", "", "path to write a JUnit XML report")
	cmd.Flags().StringVarP(&f.hostname, "hostname", "h", "", "hostname recorded in reports (defaults to os.Hostname)")
	cmd.Flags().BoolVarP(&f.terminal, "terminal", "t", false, "force coloured terminal output")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes one invocation end to end: load, schedule, report, and
// return an error only for usage/logging setup trouble (construction and
// runtime step failures are carried in the result stream, not returned).
func run(ctx context.Context, planPath string, f *flags) error {
	logLevel := "info"
	logger, err := obslog.New(obslog.Options{Level: logLevel})
	if err != nil {
		return err
	}

	hostname := f.hostname
	if hostname == "" {
		if h, err := os.Hostname(); err == nil {
			hostname = h
		}
	}

	records := execute(ctx, planPath, f.configPath, logger)

	colored := f.terminal || term.IsTerminal(int(os.Stdout.Fd()))
	if !f.quiet {
		printResults(os.Stdout, records, colored)
	}

	if f.junitPath != "" {
		if err := junit.Write(records, f.junitPath, hostname); err != nil {
			logger.Error("failed to write junit report", "error", err)
		}
	}

	if len(f.webhooks) > 0 {
		if err := webhook.Submit(ctx, f.webhooks, hostname, records); err != nil {
			logger.Error("failed to submit webhook", "error", err)
		}
	}

	if f.slack != "" {
		if err := slack.Submit(ctx, f.slack, hostname, records); err != nil {
			logger.Error("failed to submit slack summary", "error", err)
		}
	}

	if hasFailure(records) {
		os.Exit(1)
	}
	return nil
}

// execute loads and runs the plan, returning either the per-step result
// stream or a single synthetic construction-failure record.
func execute(ctx context.Context, planPath, configPath string, logger *obslog.Logger) []result.Record {
	steps, err := planfile.Load(planPath, configPath)
	if err != nil {
		cerr := lkerrors.NewConstructionError(err)
		logger.Error("failed to load test plan", "error", cerr)
		return []result.Record{result.ConstructionFailure(cerr)}
	}

	g, err := graph.Build(steps)
	if err != nil {
		cerr := lkerrors.NewConstructionError(err)
		logger.Error("failed to build dependency graph", "error", cerr)
		return []result.Record{result.ConstructionFailure(cerr)}
	}

	rt := runtime.NewContext()
	completions := scheduler.Run(ctx, g, rt)
	return result.ProjectAll(completions)
}

func hasFailure(records []result.Record) bool {
	for _, r := range records {
		if !r.Pass {
			return true
		}
	}
	return false
}
