package models

// CardFace is one printable face of a card as shown on a detail page.
type CardFace struct {
	MultiverseID int      `json:"multiverseId" yaml:"multiverseId"`
	Number       string   `json:"number" yaml:"number"`
	Title        string   `json:"title,omitempty" yaml:"title,omitempty"`
	Name         string   `json:"name" yaml:"name"`
	Types        string   `json:"types" yaml:"types"`
	CMC          string   `json:"cmc,omitempty" yaml:"cmc,omitempty"`
	ManaSymbols  []string `json:"manaSymbols,omitempty" yaml:"manaSymbols,omitempty"`
	Text         string   `json:"text,omitempty" yaml:"text,omitempty"`
	Flavor       string   `json:"flavor,omitempty" yaml:"flavor,omitempty"`
	Power        string   `json:"power,omitempty" yaml:"power,omitempty"`
	Toughness    string   `json:"toughness,omitempty" yaml:"toughness,omitempty"`
	Loyalty      string   `json:"loyalty,omitempty" yaml:"loyalty,omitempty"`
	Rarity       string   `json:"rarity" yaml:"rarity"`
	Artist       string   `json:"artist" yaml:"artist"`
	Expansion    string   `json:"expansion" yaml:"expansion"`

	Printings []Printing `json:"printings,omitempty" yaml:"printings,omitempty"`
	Rulings   []Ruling   `json:"rulings" yaml:"rulings"`

	// Printed holds the localized as-printed variant of this face.
	Printed *CardFace `json:"printed,omitempty" yaml:"printed,omitempty"`
}

// Printing is another known appearance of a card face.
type Printing struct {
	MultiverseID int    `json:"multiverseId" yaml:"multiverseId"`
	SetCode      string `json:"setCode" yaml:"setCode"`
	Rarity       string `json:"rarity" yaml:"rarity"`
	Set          string `json:"set" yaml:"set"`
}

// Ruling is a dated rules clarification. Date is YYYY-MM-DD.
type Ruling struct {
	Date string `json:"date" yaml:"date"`
	Text string `json:"text" yaml:"text"`
}

// CardListRow is the summary record of one row in the compact list view.
type CardListRow struct {
	MultiverseID int           `json:"multiverseId" yaml:"multiverseId"`
	Name         string        `json:"name" yaml:"name"`
	Type         string        `json:"type" yaml:"type"`
	ManaSymbols  []string      `json:"manaSymbols,omitempty" yaml:"manaSymbols,omitempty"`
	Power        string        `json:"power,omitempty" yaml:"power,omitempty"`
	Toughness    string        `json:"toughness,omitempty" yaml:"toughness,omitempty"`
	Loyalty      string        `json:"loyalty,omitempty" yaml:"loyalty,omitempty"`
	Printings    []RowPrinting `json:"printings" yaml:"printings"`
}

// RowPrinting is a printing as listed in the compact view, which carries no set code.
type RowPrinting struct {
	Set          string `json:"set" yaml:"set"`
	Rarity       string `json:"rarity" yaml:"rarity"`
	MultiverseID int    `json:"multiverseId" yaml:"multiverseId"`
}

// HasPowerToughness reports whether the face is a creature-style face.
func (f *CardFace) HasPowerToughness() bool {
	return f.Power != "" || f.Toughness != ""
}

// Validate returns the list of invariant violations, if any.
func (f *CardFace) Validate() []string {
	var errors []string

	if f.MultiverseID <= 0 {
		errors = append(errors, "multiverseId is required")
	}

	if f.HasPowerToughness() && f.Loyalty != "" {
		errors = append(errors, "power/toughness and loyalty are mutually exclusive")
	}

	if f.Rulings == nil {
		errors = append(errors, "rulings must be initialized")
	}

	return errors
}
