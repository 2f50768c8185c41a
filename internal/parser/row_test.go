package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maltedev/gatherer-scraper/internal/models"
	"github.com/maltedev/gatherer-scraper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRow(t *testing.T, row testutil.Row) (*models.CardListRow, error) {
	t.Helper()
	html := testutil.ListPage([]testutil.Row{row}, nil)
	return ParseCardRow(fragment(t, html, ".cardItem").First())
}

func TestParseCardRow(t *testing.T) {
	row, err := parseRow(t, testutil.Row{
		ID:         370754,
		Name:       "Ajani, Caller of the Pride",
		Type:       "Planeswalker — Ajani",
		Mana:       []string{"1", "W", "W"},
		Numericals: []string{"", "4"},
		Printings: []testutil.RowPrinting{
			{ID: 370754, Set: "Magic 2014 Core Set", Rarity: "M"},
			{ID: 249682, Set: "Magic 2013", Rarity: "M"},
		},
	})
	require.NoError(t, err)

	expected := &models.CardListRow{
		MultiverseID: 370754,
		Name:         "Ajani, Caller of the Pride",
		Type:         "Planeswalker — Ajani",
		ManaSymbols:  []string{"1", "W", "W"},
		Loyalty:      "4",
		Printings: []models.RowPrinting{
			{Set: "Magic 2014 Core Set", Rarity: "M", MultiverseID: 370754},
			{Set: "Magic 2013", Rarity: "M", MultiverseID: 249682},
		},
	}
	if diff := cmp.Diff(expected, row); diff != "" {
		t.Errorf("ParseCardRow() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCardRowStats(t *testing.T) {
	tests := []struct {
		name       string
		numericals []string
		power      string
		toughness  string
		loyalty    string
	}{
		{"Creature", []string{"2", "3"}, "2", "3", ""},
		{"Planeswalker", []string{"", "4"}, "", "", "4"},
		{"Empty second cell", []string{"2", ""}, "", "", ""},
		{"Both empty", []string{"", ""}, "", "", ""},
		{"Second cell absent", []string{"2"}, "", "", ""},
		{"No cells", nil, "", "", ""},
		{"Star power", []string{"*", "*"}, "*", "*", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := parseRow(t, testutil.Row{ID: 1, Name: "X", Type: "Creature", Numericals: tt.numericals})
			require.NoError(t, err)
			assert.Equal(t, tt.power, row.Power)
			assert.Equal(t, tt.toughness, row.Toughness)
			assert.Equal(t, tt.loyalty, row.Loyalty)
		})
	}
}

func TestParseCardRowEmptyFields(t *testing.T) {
	row, err := parseRow(t, testutil.Row{ID: 12, Name: "Island", Type: "Basic Land — Island"})
	require.NoError(t, err)

	assert.Nil(t, row.ManaSymbols)
	assert.NotNil(t, row.Printings)
	assert.Empty(t, row.Printings)
}

func TestParseCardRowMissingReference(t *testing.T) {
	_, err := parseRow(t, testutil.Row{Name: "Broken", Type: "Instant", OmitLink: true})
	assert.ErrorIs(t, err, ErrMissingReference)
}
