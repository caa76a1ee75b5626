package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lorikeet-run/lorikeet/internal/result"
)

var (
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	plainStyle = lipgloss.NewStyle()
)

// printResults renders one YAML-ish block per record, styled pass/fail
// when colored is set.
func printResults(w io.Writer, records []result.Record, colored bool) {
	style := plainStyle
	for _, r := range records {
		if colored {
			if r.Pass {
				style = passStyle
			} else {
				style = failStyle
			}
		}
		fmt.Fprintln(w, style.Render(renderRecord(r)))
	}
}

func renderRecord(r result.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "- name: %s\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(&b, "  description: %s\n", r.Description)
	}
	fmt.Fprintf(&b, "  pass: %t\n", r.Pass)

	if r.Output != "" {
		if strings.Contains(r.Output, "\n") {
			indented := strings.ReplaceAll(r.Output, "\n", "\n    ")
			fmt.Fprintf(&b, "  output: |\n    %s\n", indented)
		} else {
			fmt.Fprintf(&b, "  output: %s\n", r.Output)
		}
	}

	if r.Error != "" {
		fmt.Fprintf(&b, "  error: %s\n", r.Error)
	}

	fmt.Fprintf(&b, "  duration: %.2fms", r.DurationMs)

	return b.String()
}
