// Package result converts a step's internal Outcome into the public Record
// shape consumed by the JUnit writer, webhook/Slack submitters, and the
// terminal printer.
package result

import (
	"github.com/lorikeet-run/lorikeet/internal/plan"
	"github.com/lorikeet-run/lorikeet/internal/scheduler"
)

// Record is the stable, public shape of one step's terminal result.
type Record struct {
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Pass         bool    `json:"pass"`
	Output       string  `json:"output"`
	Error        string  `json:"error,omitempty"`
	OnFailOutput string  `json:"on_fail_output,omitempty"`
	OnFailError  string  `json:"on_fail_error,omitempty"`
	DurationMs   float32 `json:"duration_ms"`
	Skipped      bool    `json:"skipped"`
}

// Project converts one scheduler Completion into a Record. do_output
// suppression hides Output in the public record even though the step's
// pipeline still ran (or, for a dependency-skipped step, never ran).
func Project(c scheduler.Completion) Record {
	step, outcome := c.Step, c.Outcome

	r := Record{
		Name:        step.Name,
		Description: step.Description,
		Pass:        outcome.Error == nil,
		DurationMs:  float32(outcome.Duration.Microseconds()) / 1000.0,
	}

	if outcome.Error != nil {
		r.Error = *outcome.Error
		r.Skipped = *outcome.Error == plan.DependencyNotMet
	}

	if step.DoOutput && outcome.Output != nil {
		r.Output = *outcome.Output
	}

	if outcome.OnFailOutput != nil {
		r.OnFailOutput = *outcome.OnFailOutput
	}
	if outcome.OnFailError != nil {
		r.OnFailError = *outcome.OnFailError
	}

	return r
}

// ProjectAll projects a full completion stream, in whatever order it is
// received.
func ProjectAll(completions <-chan scheduler.Completion) []Record {
	var records []Record
	for c := range completions {
		records = append(records, Project(c))
	}
	return records
}

// ConstructionFailure builds the single synthetic record emitted when a
// plan never reaches the scheduler (parse error, unresolved dependency,
// cycle): a uniform one-record stream so downstream sinks never need to
// special-case construction failures.
func ConstructionFailure(err error) Record {
	return Record{
		Name:  "lorikeet",
		Pass:  false,
		Error: err.Error(),
	}
}
