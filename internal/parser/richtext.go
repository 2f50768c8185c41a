package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	iconMarkerPattern = regexp.MustCompile(`<img[^>]*?alt="([^"]*)"[^>]*?>`)
	italicPattern     = regexp.MustCompile(`</?i(?:\s[^>]*)?>`)

	entityReplacer = strings.NewReplacer(
		"&#x2212;", "−",
		"&minus;", "−",
		"&rsquo;", "’",
		"&#x2019;", "’",
		"&quot;", `"`,
	)
)

// NormalizeBlock turns the inner markup of a single text block into plain
// text. Icon markers become {code} tokens and italics are dropped.
func NormalizeBlock(markup string) string {
	text := iconMarkerPattern.ReplaceAllString(markup, "{${1}}")
	text = italicPattern.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)
	// The renderer escapes & ' < > " on output, undo whatever is left.
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}

// NormalizeText normalizes every child block of sel and joins them with
// newlines. An empty result means the field is absent.
func NormalizeText(sel *goquery.Selection) string {
	var parts []string
	sel.Children().Each(func(_ int, child *goquery.Selection) {
		markup, err := child.Html()
		if err != nil {
			return
		}
		parts = append(parts, NormalizeBlock(markup))
	})
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
