// Package crawler drives the Gatherer list and detail crawls. All fetches are
// sequential and a single failure aborts the whole crawl.
package crawler

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/maltedev/gatherer-scraper/internal/fetcher"
	"github.com/maltedev/gatherer-scraper/internal/parser"
)

const DefaultBaseURL = "http://gatherer.wizards.com/Pages"

type Options struct {
	BaseURL string
}

type Crawler struct {
	fetcher fetcher.Fetcher
	parser  parser.Parser
	baseURL string
	logger  *slog.Logger
}

func New(f fetcher.Fetcher, p parser.Parser, opts *Options, logger *slog.Logger) *Crawler {
	baseURL := DefaultBaseURL
	if opts != nil && opts.BaseURL != "" {
		baseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	return &Crawler{
		fetcher: f,
		parser:  p,
		baseURL: baseURL,
		logger:  logger.With("component", "crawler"),
	}
}

// ListURL is the compact search result page for a set, pages start at 1.
func (c *Crawler) ListURL(setName string, page int) string {
	return fmt.Sprintf("%s/Search/Default.aspx?output=compact&set=%%5b%%22%s%%22%%5d&page=%d",
		c.baseURL, url.QueryEscape(setName), page)
}

// DetailURL is the detail page of a card, in printed wording when printed is set.
func (c *Crawler) DetailURL(multiverseID int, printed bool) string {
	u := fmt.Sprintf("%s/Card/Details.aspx?multiverseid=%d", c.baseURL, multiverseID)
	if printed {
		u += "&printed=true"
	}
	return u
}
