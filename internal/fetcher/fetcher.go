// Package fetcher provides the page fetching capability used by the crawlers.
package fetcher

import (
	"context"
	"errors"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

// Fetcher returns the raw text of the page at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Func adapts a plain function to the Fetcher interface.
type Func func(ctx context.Context, url string) (string, error)

func (f Func) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}
