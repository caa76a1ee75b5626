package webhook

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorikeet-run/lorikeet/internal/result"
)

func TestSubmit_PostsJSONPayload(t *testing.T) {
	t.Parallel()

	var receivedBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		receivedBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	records := []result.Record{{Name: "a", Pass: false}}
	err := Submit(t.Context(), []string{srv.URL}, "host1", records)
	require.NoError(t, err)
	require.Contains(t, receivedBody, `"has_errors":true`)
	require.Contains(t, receivedBody, `"hostname":"host1"`)
}

func TestSubmit_NonOKStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Submit(t.Context(), []string{srv.URL}, "host1", nil)
	require.Error(t, err)
}

func TestSubmit_AttemptsAllURLsAndReturnsFirstError(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := Submit(t.Context(), []string{"http://127.0.0.1:0/bad", srv.URL}, "host1", nil)
	require.Error(t, err)
	require.Equal(t, 1, hits)
}
