package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

type HTTPOptions struct {
	Timeout   time.Duration
	UserAgent string
}

func DefaultHTTPOptions() *HTTPOptions {
	return &HTTPOptions{
		Timeout:   30 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// HTTPFetcher fetches pages with a plain HTTP GET. It never retries.
type HTTPFetcher struct {
	client *resty.Client
	logger *slog.Logger
}

func NewHTTPFetcher(opts *HTTPOptions, logger *slog.Logger) *HTTPFetcher {
	if opts == nil {
		opts = DefaultHTTPOptions()
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &HTTPFetcher{
		client: client,
		logger: logger.With("component", "http_fetcher"),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.logger.Info("fetching", "url", url)

	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		f.logger.Error("fetch failed", "url", url, "error", err)
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if res.IsError() {
		f.logger.Error("fetch failed", "url", url, "status", res.StatusCode())
		return "", fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, url, res.StatusCode())
	}

	return res.String(), nil
}
