package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/gatherer-scraper/internal/models"
)

// ParseCardRow parses one .cardItem row of the compact list view.
func ParseCardRow(sel *goquery.Selection) (*models.CardListRow, error) {
	href, _ := sel.Find(".name a").First().Attr("href")
	id, err := ParseMultiverseID(href)
	if err != nil {
		return nil, fmt.Errorf("card row name link: %w", err)
	}

	row := &models.CardListRow{
		MultiverseID: id,
		Name:         strings.TrimSpace(sel.Find(".name").Text()),
		Type:         strings.TrimSpace(sel.Find(".type").Text()),
		Printings:    make([]models.RowPrinting, 0),
	}

	if symbols := ExtractSymbols(sel.Find(".mana")); len(symbols) > 0 {
		row.ManaSymbols = symbols
	}

	var numericals []string
	sel.Find(".numerical").Each(func(_ int, cell *goquery.Selection) {
		numericals = append(numericals, strings.TrimSpace(cell.Text()))
	})
	row.Power, row.Toughness, row.Loyalty = rowStats(cellAt(numericals, 0), cellAt(numericals, 1))

	var printErr error
	sel.Find(".printings a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		img := link.Find("img").First()
		alt, _ := img.Attr("alt")
		src, _ := img.Attr("src")
		linkHref, _ := link.Attr("href")

		printingID, err := ParseMultiverseID(linkHref)
		if err != nil {
			printErr = fmt.Errorf("card row printing link: %w", err)
			return false
		}

		row.Printings = append(row.Printings, models.RowPrinting{
			Set:          alt,
			Rarity:       rarityFromSource(src),
			MultiverseID: printingID,
		})
		return true
	})
	if printErr != nil {
		return nil, printErr
	}

	return row, nil
}

// rowStats maps the two numerical cells of a list row to power/toughness or
// loyalty. A missing cell is treated like an empty one.
func rowStats(first, second string) (power, toughness, loyalty string) {
	if second == "" {
		return "", "", ""
	}
	if first != "" {
		return first, second, ""
	}
	return "", "", second
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
