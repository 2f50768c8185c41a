package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maltedev/gatherer-scraper/internal/browser"
	"github.com/playwright-community/playwright-go"
)

// BrowserFetcher renders pages in a headless browser and returns the
// resulting document markup.
type BrowserFetcher struct {
	browser *browser.Browser
	logger  *slog.Logger
}

func NewBrowserFetcher(b *browser.Browser, logger *slog.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		browser: b,
		logger:  logger.With("component", "browser_fetcher"),
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.logger.Info("fetching", "url", url)

	page, err := f.browser.NewPage()
	if err != nil {
		f.logger.Error("fetch failed", "url", url, "error", err)
		return "", err
	}
	defer page.Close()

	res, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		f.logger.Error("fetch failed", "url", url, "error", err)
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if res != nil && !res.Ok() {
		f.logger.Error("fetch failed", "url", url, "status", res.Status())
		return "", fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, url, res.Status())
	}

	content, err := page.Content()
	if err != nil {
		f.logger.Error("fetch failed", "url", url, "error", err)
		return "", fmt.Errorf("failed to read page content: %w", err)
	}

	return content, nil
}
