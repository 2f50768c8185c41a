package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/gatherer-scraper/internal/models"
)

// ParseCardFace parses one .cardComponentContainer of a detail page. It
// returns nil without error when the component holds no face.
func ParseCardFace(sel *goquery.Selection) (*models.CardFace, error) {
	rightColID, _ := sel.Find(".rightCol").First().Attr("id")
	if rightColID == "" {
		return nil, nil
	}
	s := newScope(sel, IDPrefix(rightColID))

	face := &models.CardFace{
		Name:    s.text("nameRow"),
		CMC:     s.text("cmcRow"),
		Types:   s.text("typeRow"),
		Text:    NormalizeText(s.value("textRow")),
		Flavor:  flavorText(s.value("flavorRow")),
		Rarity:  s.text("rarityRow"),
		Number:  s.text("numberRow"),
		Artist:  s.text("artistRow"),
		Rulings: parseRulings(s),
	}

	if symbols := ExtractSymbols(s.element("manaRow")); len(symbols) > 0 {
		face.ManaSymbols = symbols
	}

	face.Power, face.Toughness, face.Loyalty = faceStats(s.text("ptRow"))

	setSymbol := s.element("currentSetSymbol")
	face.Expansion = strings.TrimSpace(setSymbol.Text())

	href, _ := setSymbol.Find("a").First().Attr("href")
	id, err := ParseMultiverseID(href)
	if err != nil {
		return nil, fmt.Errorf("face %s current set link: %w", s.prefix, err)
	}
	face.MultiverseID = id

	printings, err := parsePrintings(s)
	if err != nil {
		return nil, fmt.Errorf("face %s: %w", s.prefix, err)
	}
	if len(printings) > 0 {
		face.Printings = printings
	}

	return face, nil
}

// faceStats splits a P/T row value. Values without a slash are loyalty.
func faceStats(raw string) (power, toughness, loyalty string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ""
	}
	if before, after, found := strings.Cut(raw, "/"); found {
		return strings.TrimSpace(before), strings.TrimSpace(after), ""
	}
	return "", "", raw
}

func flavorText(sel *goquery.Selection) string {
	var parts []string
	sel.Children().Each(func(_ int, child *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(child.Text()))
	})
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func parsePrintings(s scope) ([]models.Printing, error) {
	var printings []models.Printing
	var printErr error

	s.element("otherSetsValue").Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		id, err := ParseMultiverseID(href)
		if err != nil {
			printErr = fmt.Errorf("other sets link: %w", err)
			return false
		}

		img := link.Find("img").First()
		src, _ := img.Attr("src")
		alt, _ := img.Attr("alt")

		setCode, rarity, err := setInfoFromSource(src)
		if err != nil {
			printErr = err
			return false
		}

		printings = append(printings, models.Printing{
			MultiverseID: id,
			SetCode:      setCode,
			Rarity:       rarity,
			Set:          stripSetAnnotation(alt),
		})
		return true
	})

	return printings, printErr
}

// parseRulings reads the rulings table: first cell date, last cell text.
// Dates that do not parse are kept as written.
func parseRulings(s scope) []models.Ruling {
	rulings := make([]models.Ruling, 0)

	s.element("rulingsContainer").Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}

		rawDate := strings.TrimSpace(cells.First().Text())
		date, err := FormatRulingDate(rawDate)
		if err != nil {
			date = rawDate
		}

		markup, err := cells.Last().Html()
		if err != nil {
			return
		}

		rulings = append(rulings, models.Ruling{
			Date: date,
			Text: NormalizeBlock(markup),
		})
	})

	return rulings
}
