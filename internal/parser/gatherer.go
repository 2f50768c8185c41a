package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/gatherer-scraper/internal/models"
)

const (
	cardItemSelector  = ".cardItem"
	pagingSelector    = ".pagingcontrols a"
	componentSelector = ".cardComponentContainer"
	titleSelector     = `[id$="_subtitleDisplay"]`
)

type GathererParser struct{}

func NewGathererParser() *GathererParser {
	return &GathererParser{}
}

func (p *GathererParser) ParseListPage(html string) (*ListPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &ListPage{
		Rows: make([]*models.CardListRow, 0),
	}

	var rowErr error
	doc.Find(cardItemSelector).EachWithBreak(func(i int, item *goquery.Selection) bool {
		row, err := ParseCardRow(item)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		page.Rows = append(page.Rows, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	doc.Find(pagingSelector).Each(func(_ int, link *goquery.Selection) {
		// Links such as "<" and ">" carry no page number.
		if n, err := strconv.Atoi(strings.TrimSpace(link.Text())); err == nil {
			page.PageNumbers = append(page.PageNumbers, n)
		}
	})

	return page, nil
}

func (p *GathererParser) ParseDetailPage(html string) (*DetailPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &DetailPage{
		Title: strings.TrimSpace(doc.Find(titleSelector).First().Text()),
		Faces: make([]*models.CardFace, 0),
	}

	var faceErr error
	doc.Find(componentSelector).EachWithBreak(func(i int, component *goquery.Selection) bool {
		face, err := ParseCardFace(component)
		if err != nil {
			faceErr = fmt.Errorf("component %d: %w", i, err)
			return false
		}
		if face != nil {
			page.Faces = append(page.Faces, face)
		}
		return true
	})
	if faceErr != nil {
		return nil, faceErr
	}

	return page, nil
}
