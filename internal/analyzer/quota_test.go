package analyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copylab/adlens/pkg/openrouter"
)

func keyServer(t *testing.T, status int, body string) openrouter.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return openrouter.NewClient("test-key", openrouter.WithBaseURL(srv.URL))
}

func TestFetchQuota(t *testing.T) {
	client := keyServer(t, http.StatusOK, `{"data": {"rate_limit": {"requests": 200, "interval": "10s"}}}`)

	quota, err := FetchQuota(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, 200, quota.MaxRequests)
	assert.Equal(t, 10*time.Second, quota.Interval)
}

func TestFetchQuota_UpstreamError(t *testing.T) {
	client := keyServer(t, http.StatusInternalServerError, `{"error": "boom"}`)

	_, err := FetchQuota(context.Background(), client)
	require.ErrorIs(t, err, ErrQuotaUnavailable)
}

func TestFetchQuota_MalformedInterval(t *testing.T) {
	client := keyServer(t, http.StatusOK, `{"data": {"rate_limit": {"requests": 200, "interval": "soon"}}}`)

	_, err := FetchQuota(context.Background(), client)
	require.ErrorIs(t, err, ErrQuotaUnavailable)
}

func TestFetchQuota_NonPositiveRequests(t *testing.T) {
	client := keyServer(t, http.StatusOK, `{"data": {"rate_limit": {"requests": 0, "interval": "10s"}}}`)

	_, err := FetchQuota(context.Background(), client)
	require.ErrorIs(t, err, ErrQuotaUnavailable)
}
