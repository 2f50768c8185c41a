package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page body", func(t *testing.T) {
		var userAgent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent = r.Header.Get("User-Agent")
			w.Write([]byte("<html>ok</html>"))
		}))
		defer server.Close()

		f := NewHTTPFetcher(&HTTPOptions{Timeout: 5 * time.Second, UserAgent: "gatherer-test"}, slog.Default())
		body, err := f.Fetch(ctx, server.URL)

		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", body)
		assert.Equal(t, "gatherer-test", userAgent)
	})

	t.Run("non-2xx is a failure", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		f := NewHTTPFetcher(nil, slog.Default())
		_, err := f.Fetch(ctx, server.URL)

		assert.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.Equal(t, 1, calls, "fetch must not retry")
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		f := NewHTTPFetcher(nil, slog.Default())
		_, err := f.Fetch(ctx, url)
		assert.Error(t, err)
	})
}

func TestFunc(t *testing.T) {
	var f Fetcher = Func(func(ctx context.Context, url string) (string, error) {
		return "page:" + url, nil
	})

	body, err := f.Fetch(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "page:x", body)
}
