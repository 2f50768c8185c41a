package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/gatherer-scraper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragment(t *testing.T, html, selector string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	sel := doc.Find(selector)
	require.NotZero(t, sel.Length(), "selector %q matched nothing", selector)
	return sel
}

func TestExtractSymbols(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name:     "Document order with repeats",
			html:     `<div id="m">` + testutil.ManaIcon("2") + testutil.ManaIcon("W") + testutil.ManaIcon("W") + `</div>`,
			expected: []string{"2", "W", "W"},
		},
		{
			name:     "No markers",
			html:     `<div id="m">no icons here</div>`,
			expected: []string{},
		},
		{
			name:     "Nested markers",
			html:     `<div id="m"><span>` + testutil.ManaIcon("U") + `</span><p>` + testutil.ManaIcon("B") + `</p></div>`,
			expected: []string{"U", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractSymbols(fragment(t, tt.html, "#m"))
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		blocks   string
		expected string
	}{
		{
			name:     "Icon markers become tokens in order",
			blocks:   `<div>` + testutil.ManaIcon("W") + testutil.ManaIcon("U") + `: Draw a card.</div>`,
			expected: "{W}{U}: Draw a card.",
		},
		{
			name:     "Italics stripped, text kept",
			blocks:   `<div>Flying <i>(This creature can't be blocked except by creatures with flying.)</i></div>`,
			expected: "Flying (This creature can't be blocked except by creatures with flying.)",
		},
		{
			name:     "Entities decoded",
			blocks:   `<div>&#x2212;3: Target player&rsquo;s &quot;thing&quot; gets &minus;1.</div>`,
			expected: "−3: Target player’s \"thing\" gets −1.",
		},
		{
			name:     "Blocks joined by newline and trimmed",
			blocks:   `<div>  First ability.  </div><div>Second ability.</div>`,
			expected: "First ability.\nSecond ability.",
		},
		{
			name:     "Ampersands survive rendering",
			blocks:   `<div>Rock &amp; Roll</div>`,
			expected: "Rock & Roll",
		},
		{
			name:     "No children",
			blocks:   ``,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := fragment(t, `<div id="v">`+tt.blocks+`</div>`, "#v")
			assert.Equal(t, tt.expected, NormalizeText(sel))
		})
	}
}

func TestNormalizeBlockIdempotentOnPlainText(t *testing.T) {
	inputs := []string{
		"Flying",
		"Whenever a creature dies, draw a card.",
		"Rock & Roll",
		"{T}: Add {G}.",
		"  padded  ",
	}

	for _, input := range inputs {
		once := NormalizeBlock(input)
		assert.Equal(t, once, NormalizeBlock(once), "input %q", input)
	}
}

func TestFormatRulingDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		hasError bool
	}{
		{"01/15/2014", "2014-01-15", false},
		{"6/22/2018", "2018-06-22", false},
		{" 10/1/2009 ", "2009-10-01", false},
		{"2014-01-15", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := FormatRulingDate(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
