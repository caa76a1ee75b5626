// Package webhook POSTs a run's results as a single JSON payload to one or
// more configured URLs.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lorikeet-run/lorikeet/internal/result"
)

// payload is the JSON body sent to each webhook URL.
type payload struct {
	Hostname  string          `json:"hostname"`
	HasErrors bool            `json:"has_errors"`
	Tests     []result.Record `json:"tests"`
}

// Submit POSTs records to every url in urls. It submits to each url in
// turn and returns the first error encountered, after having attempted
// the rest (a failing webhook should not silently hide a reachable one).
func Submit(ctx context.Context, urls []string, hostname string, records []result.Record) error {
	body := payload{
		Hostname:  hostname,
		HasErrors: hasErrors(records),
		Tests:     records,
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not encode webhook payload: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	var firstErr error
	for _, url := range urls {
		if err := post(ctx, client, url, encoded); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func post(ctx context.Context, client *http.Client, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not build webhook request for `%s`: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request to `%s` failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook `%s` returned status %d", url, resp.StatusCode)
	}
	return nil
}

func hasErrors(records []result.Record) bool {
	for _, r := range records {
		if !r.Pass {
			return true
		}
	}
	return false
}
