// Package slack renders a run's results as a Slack incoming-webhook
// payload. This is a supplemented collaborator: the original tool only
// posts a generic JSON webhook, but a Slack-shaped summary is a common
// real-world extension of the same notification path.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lorikeet-run/lorikeet/internal/result"
)

type message struct {
	Text string `json:"text"`
}

// Submit POSTs a pass/fail summary of records to a Slack incoming webhook
// URL.
func Submit(ctx context.Context, url, hostname string, records []result.Record) error {
	body, err := json.Marshal(message{Text: summarize(hostname, records)})
	if err != nil {
		return fmt.Errorf("could not encode slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func summarize(hostname string, records []result.Record) string {
	passed, failed, skipped := 0, 0, 0
	var failedNames []string

	for _, r := range records {
		switch {
		case r.Pass:
			passed++
		case r.Skipped:
			skipped++
		default:
			failed++
			failedNames = append(failedNames, r.Name)
		}
	}

	status := ":white_check_mark:"
	if failed > 0 {
		status = ":x:"
	}

	summary := fmt.Sprintf("%s *%s*: %d passed, %d failed, %d skipped", status, hostname, passed, failed, skipped)
	if len(failedNames) > 0 {
		summary += fmt.Sprintf(" (failed: %s)", strings.Join(failedNames, ", "))
	}
	return summary
}
