package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// ExtractSymbols returns the alt text of every icon marker below sel in
// document order. Repeated symbols are kept.
func ExtractSymbols(sel *goquery.Selection) []string {
	symbols := make([]string, 0)
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		alt, _ := img.Attr("alt")
		symbols = append(symbols, alt)
	})
	return symbols
}
