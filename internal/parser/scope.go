package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const rightColSuffix = "_rightCol"

// IDPrefix derives the face id prefix from the id of its right column.
func IDPrefix(rightColID string) string {
	return strings.TrimSuffix(rightColID, rightColSuffix)
}

// scope resolves id-based lookups for a single face so that several faces on
// one page never read each other's rows.
type scope struct {
	root   *goquery.Selection
	prefix string
}

func newScope(root *goquery.Selection, prefix string) scope {
	return scope{root: root, prefix: prefix}
}

func (s scope) element(name string) *goquery.Selection {
	return s.root.Find(fmt.Sprintf(`[id="%s_%s"]`, s.prefix, name))
}

func (s scope) value(row string) *goquery.Selection {
	return s.element(row).Find(".value")
}

func (s scope) text(row string) string {
	return strings.TrimSpace(s.value(row).Text())
}
