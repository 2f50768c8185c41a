package crawler

import (
	"context"
	"fmt"

	"github.com/maltedev/gatherer-scraper/internal/models"
)

// FetchCard fetches the oracle and the printed detail pages of a card, one
// after the other, and returns the oracle faces with their printed variant
// attached.
func (c *Crawler) FetchCard(ctx context.Context, multiverseID int) ([]*models.CardFace, error) {
	c.logger.Info("starting detail crawl", "multiverse_id", multiverseID)

	oracle, err := c.fetchFaces(ctx, multiverseID, false)
	if err != nil {
		return nil, err
	}

	printed, err := c.fetchFaces(ctx, multiverseID, true)
	if err != nil {
		return nil, err
	}

	dropped := MergePrinted(oracle, printed)
	for _, face := range dropped {
		c.logger.Debug("printed face has no oracle counterpart", "multiverse_id", multiverseID, "number", face.Number)
	}

	c.logger.Info("detail crawl completed", "multiverse_id", multiverseID, "faces", len(oracle))
	return oracle, nil
}

func (c *Crawler) fetchFaces(ctx context.Context, multiverseID int, printed bool) ([]*models.CardFace, error) {
	view := "oracle"
	if printed {
		view = "printed"
	}

	html, err := c.fetcher.Fetch(ctx, c.DetailURL(multiverseID, printed))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s view of %d: %w", view, multiverseID, err)
	}

	page, err := c.parser.ParseDetailPage(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s view of %d: %w", view, multiverseID, err)
	}

	for _, face := range page.Faces {
		face.Title = page.Title
	}

	return page.Faces, nil
}

// MergePrinted attaches each printed face to the oracle face with the same
// collector number. A face receives at most one printed variant. Printed
// faces that find no partner are returned and otherwise dropped.
func MergePrinted(oracle, printed []*models.CardFace) []*models.CardFace {
	var unmatched []*models.CardFace

	for _, p := range printed {
		matched := false
		for _, o := range oracle {
			if o.Number == p.Number && o.Printed == nil {
				o.Printed = p
				matched = true
				break
			}
		}
		if !matched {
			unmatched = append(unmatched, p)
		}
	}

	return unmatched
}
