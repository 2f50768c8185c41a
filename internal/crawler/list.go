package crawler

import (
	"context"
	"fmt"

	"github.com/maltedev/gatherer-scraper/internal/models"
)

// FetchCardList returns every row of a set across all result pages, in page
// order. Pagination controls only show a window of pages, so the highest
// page number is tracked across all pages fetched so far.
func (c *Crawler) FetchCardList(ctx context.Context, setName string) ([]*models.CardListRow, error) {
	c.logger.Info("starting list crawl", "set", setName)

	var rows []*models.CardListRow
	maxPage := 1

	for page := 1; page <= maxPage; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		html, err := c.fetcher.Fetch(ctx, c.ListURL(setName, page))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d of %s: %w", page, setName, err)
		}

		listPage, err := c.parser.ParseListPage(html)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %d of %s: %w", page, setName, err)
		}

		rows = append(rows, listPage.Rows...)
		for _, n := range listPage.PageNumbers {
			if n > maxPage {
				maxPage = n
			}
		}

		c.logger.Info("processed list page", "set", setName, "page", page, "rows", len(listPage.Rows), "max_page", maxPage)
	}

	if rows == nil {
		rows = make([]*models.CardListRow, 0)
	}

	c.logger.Info("list crawl completed", "set", setName, "rows", len(rows), "pages", maxPage)
	return rows, nil
}
