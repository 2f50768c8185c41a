package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/maltedev/gatherer-scraper/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputTable = "table"
)

func validOutput(format string) bool {
	switch format {
	case outputJSON, outputYAML, outputTable:
		return true
	}
	return false
}

func writeRows(w io.Writer, format string, rows []*models.CardListRow) error {
	if format == outputTable {
		renderRowTable(w, rows)
		return nil
	}
	return encode(w, format, rows)
}

func writeFaces(w io.Writer, format string, faces []*models.CardFace) error {
	if format == outputTable {
		for i, face := range faces {
			if i > 0 {
				fmt.Fprintln(w)
			}
			renderFace(w, face)
		}
		return nil
	}
	return encode(w, format, faces)
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func renderRowTable(w io.Writer, rows []*models.CardListRow) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Type", "Mana", "Stats", "Printings"})

	for _, row := range rows {
		t.AppendRow(table.Row{
			row.MultiverseID,
			row.Name,
			row.Type,
			manaCost(row.ManaSymbols),
			stats(row.Power, row.Toughness, row.Loyalty),
			len(row.Printings),
		})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d cards", len(rows))})
	t.Render()
}

var (
	faceHeader    = color.New(color.FgCyan, color.Bold)
	printedHeader = color.New(color.FgYellow)
)

func renderFace(w io.Writer, face *models.CardFace) {
	faceHeader.Fprintf(w, "%s  %s\n", face.Name, manaCost(face.ManaSymbols))

	t := newTable(w)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 72, WidthMaxEnforcer: text.WrapSoft},
	})

	field := func(name, value string) {
		if value != "" {
			t.AppendRow(table.Row{name, value})
		}
	}

	field("Multiverse ID", fmt.Sprint(face.MultiverseID))
	field("Number", face.Number)
	field("Title", face.Title)
	field("Types", face.Types)
	field("CMC", face.CMC)
	field("Text", face.Text)
	field("Flavor", face.Flavor)
	field("Stats", stats(face.Power, face.Toughness, face.Loyalty))
	field("Rarity", face.Rarity)
	field("Expansion", face.Expansion)
	field("Artist", face.Artist)

	if len(face.Printings) > 0 {
		sets := make([]string, 0, len(face.Printings))
		for _, p := range face.Printings {
			sets = append(sets, fmt.Sprintf("%s (%s)", p.Set, p.Rarity))
		}
		field("Printings", strings.Join(sets, "\n"))
	}

	for _, r := range face.Rulings {
		field(r.Date, r.Text)
	}

	t.Render()

	if face.Printed != nil {
		printedHeader.Fprintf(w, "printed: %s\n", face.Printed.Name)
		if face.Printed.Text != "" {
			fmt.Fprintln(w, face.Printed.Text)
		}
	}
}

func manaCost(symbols []string) string {
	var b strings.Builder
	for _, s := range symbols {
		b.WriteString("{" + s + "}")
	}
	return b.String()
}

func stats(power, toughness, loyalty string) string {
	if power != "" || toughness != "" {
		return power + "/" + toughness
	}
	return loyalty
}
