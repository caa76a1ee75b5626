package slack

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorikeet-run/lorikeet/internal/result"
)

func TestSubmit_PostsSummaryWithFailedNames(t *testing.T) {
	t.Parallel()

	var receivedBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		receivedBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	records := []result.Record{
		{Name: "a", Pass: true},
		{Name: "b", Pass: false},
		{Name: "c", Pass: false, Skipped: true},
	}

	err := Submit(t.Context(), srv.URL, "host1", records)
	require.NoError(t, err)
	require.Contains(t, receivedBody, "1 passed, 1 failed, 1 skipped")
	require.Contains(t, receivedBody, "b")
}

func TestSummarize_AllPassedUsesCheckmark(t *testing.T) {
	t.Parallel()

	summary := summarize("host1", []result.Record{{Name: "a", Pass: true}})
	require.Contains(t, summary, ":white_check_mark:")
}
