// Package testutil renders Gatherer-shaped HTML for parser and crawler tests.
package testutil

import (
	"fmt"
	"html"
	"strings"
)

const imageHandler = "../../Handlers/Image.ashx"

type Row struct {
	ID   int
	Name string
	Type string
	Mana []string
	// Numericals renders one .numerical cell per entry; nil renders none.
	Numericals []string
	Printings  []RowPrinting
	// OmitLink drops the name link, producing a row without a reference.
	OmitLink bool
}

type RowPrinting struct {
	ID     int
	Set    string
	Rarity string
}

type Face struct {
	Prefix     string
	Name       string
	Mana       []string
	CMC        string
	Types      string
	TextBlocks []string
	Flavor     []string
	PT         string
	Rarity     string
	Number     string
	Artist     string
	Expansion  string
	ID         int
	OtherSets  []OtherSet
	Rulings    []Ruling
}

type OtherSet struct {
	ID      int
	SetCode string
	Rarity  string
	Alt     string
}

type Ruling struct {
	Date   string
	Markup string
}

// ManaIcon renders an inline icon marker for symbol.
func ManaIcon(symbol string) string {
	return fmt.Sprintf(`<img src="%s?size=small&amp;name=%s&amp;type=symbol" alt="%s" align="absbottom" />`,
		imageHandler, html.EscapeString(symbol), html.EscapeString(symbol))
}

func manaIcons(symbols []string) string {
	var b strings.Builder
	for _, s := range symbols {
		b.WriteString(ManaIcon(s))
	}
	return b.String()
}

// ListPage renders a compact search result page.
func ListPage(rows []Row, pages []int) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="compact">`)
	for _, r := range rows {
		b.WriteString(`<tr class="cardItem">`)
		if r.OmitLink {
			fmt.Fprintf(&b, `<td class="name">%s</td>`, html.EscapeString(r.Name))
		} else {
			fmt.Fprintf(&b, `<td class="name"><a href="../Card/Details.aspx?multiverseid=%d">%s</a></td>`, r.ID, html.EscapeString(r.Name))
		}
		fmt.Fprintf(&b, `<td class="type">%s</td>`, html.EscapeString(r.Type))
		fmt.Fprintf(&b, `<td class="mana">%s</td>`, manaIcons(r.Mana))
		for _, n := range r.Numericals {
			fmt.Fprintf(&b, `<td class="numerical">%s</td>`, html.EscapeString(n))
		}
		b.WriteString(`<td class="printings">`)
		for _, p := range r.Printings {
			fmt.Fprintf(&b, `<a href="../Card/Details.aspx?multiverseid=%d"><img src="%s?type=symbol&amp;set=XX&amp;size=small&amp;rarity=%s" alt="%s" /></a>`,
				p.ID, imageHandler, p.Rarity, html.EscapeString(p.Set))
		}
		b.WriteString(`</td></tr>`)
	}
	b.WriteString(`</table><div class="pagingcontrols">`)
	if len(pages) > 0 {
		b.WriteString(`<a href="?page=0">&lt;</a>`)
	}
	for _, n := range pages {
		fmt.Fprintf(&b, ` <a href="?page=%d">%d</a>`, n-1, n)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// DetailPage renders a card detail page with one component per face plus
// a trailing component that holds no face.
func DetailPage(title string, faces ...Face) string {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	fmt.Fprintf(&b, `<span id="ctl00_ctl00_ctl00_MainContent_SubContent_SubContentHeader_subtitleDisplay">%s</span>`, html.EscapeString(title))
	b.WriteString(`<table class="cardDetails"><tr>`)
	for _, f := range faces {
		b.WriteString(`<td class="cardComponentContainer">`)
		b.WriteString(renderFace(f))
		b.WriteString(`</td>`)
	}
	b.WriteString(`<td class="cardComponentContainer"><div class="emptyComponent"></div></td>`)
	b.WriteString(`</tr></table></body></html>`)
	return b.String()
}

func renderFace(f Face) string {
	var b strings.Builder
	p := f.Prefix

	row := func(name, label, value string) {
		fmt.Fprintf(&b, `<div class="row" id="%s_%s"><div class="label">%s</div><div class="value">%s</div></div>`, p, name, label, value)
	}

	fmt.Fprintf(&b, `<div class="leftCol" id="%s_leftCol"></div>`, p)
	fmt.Fprintf(&b, `<div class="rightCol" id="%s_rightCol">`, p)
	row("nameRow", "Card Name:", html.EscapeString(f.Name))
	if len(f.Mana) > 0 {
		row("manaRow", "Mana Cost:", manaIcons(f.Mana))
	}
	if f.CMC != "" {
		row("cmcRow", "Converted Mana Cost:", f.CMC)
	}
	row("typeRow", "Types:", html.EscapeString(f.Types))
	if len(f.TextBlocks) > 0 {
		var text strings.Builder
		for _, block := range f.TextBlocks {
			fmt.Fprintf(&text, `<div class="cardtextbox">%s</div>`, block)
		}
		row("textRow", "Card Text:", text.String())
	}
	if len(f.Flavor) > 0 {
		var flavor strings.Builder
		for _, line := range f.Flavor {
			fmt.Fprintf(&flavor, `<div class="flavortextbox">%s</div>`, html.EscapeString(line))
		}
		row("flavorRow", "Flavor Text:", flavor.String())
	}
	if f.PT != "" {
		row("ptRow", "P/T:", html.EscapeString(f.PT))
	}
	fmt.Fprintf(&b, `<div class="row" id="%s_setRow"><div class="label">Expansion:</div><div class="value">`+
		`<div id="%s_currentSetSymbol"><a href="Details.aspx?multiverseid=%d"><img src="%s?type=symbol&amp;set=XX&amp;size=small&amp;rarity=C" alt="%s" /></a>`+
		`<a href="Details.aspx?multiverseid=%d">%s</a></div></div></div>`,
		p, p, f.ID, imageHandler, html.EscapeString(f.Expansion), f.ID, html.EscapeString(f.Expansion))
	row("rarityRow", "Rarity:", html.EscapeString(f.Rarity))
	if len(f.OtherSets) > 0 {
		var sets strings.Builder
		fmt.Fprintf(&sets, `<div id="%s_otherSetsValue">`, p)
		for _, o := range f.OtherSets {
			fmt.Fprintf(&sets, `<a href="Details.aspx?multiverseid=%d"><img src="%s?type=symbol&amp;set=%s&amp;size=small&amp;rarity=%s" alt="%s" /></a>`,
				o.ID, imageHandler, o.SetCode, o.Rarity, html.EscapeString(o.Alt))
		}
		sets.WriteString(`</div>`)
		fmt.Fprintf(&b, `<div class="row" id="%s_otherSetsRow"><div class="label">All Sets:</div><div class="value">%s</div></div>`, p, sets.String())
	}
	row("numberRow", "Card Number:", html.EscapeString(f.Number))
	row("artistRow", "Artist:", html.EscapeString(f.Artist))
	b.WriteString(`</div>`)

	if len(f.Rulings) > 0 {
		fmt.Fprintf(&b, `<div id="%s_rulingsContainer"><table class="rulingsTable">`, p)
		for i, r := range f.Rulings {
			fmt.Fprintf(&b, `<tr class="post"><td id="%s_rulingsRepeater_ctl%02d_rulingDate">%s</td><td id="%s_rulingsRepeater_ctl%02d_rulingText">%s</td></tr>`,
				p, i, r.Date, p, i, r.Markup)
		}
		b.WriteString(`</table></div>`)
	}

	return b.String()
}
