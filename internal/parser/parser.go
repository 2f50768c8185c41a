package parser

import (
	"errors"

	"github.com/maltedev/gatherer-scraper/internal/models"
)

var (
	ErrMissingReference   = errors.New("missing card reference")
	ErrMalformedReference = errors.New("malformed card reference")
)

// ListPage is the extracted content of one compact search result page.
type ListPage struct {
	Rows []*models.CardListRow
	// PageNumbers holds the numeric pagination links visible on the page.
	PageNumbers []int
}

// DetailPage is the extracted content of one card detail page.
type DetailPage struct {
	Title string
	Faces []*models.CardFace
}

type Parser interface {
	ParseListPage(html string) (*ListPage, error)
	ParseDetailPage(html string) (*DetailPage, error)
}
