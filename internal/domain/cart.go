package domain

import (
	"fmt"
	"strings"
)

type CartID string
type CartItemID int

type ProductType int

const (
	ProductSimple ProductType = iota
	ProductConfigurable
)

// configurableTypeName is the storefront's type name for products that carry options.
const configurableTypeName = "ConfigurableProduct"

// ParseProductType maps a storefront type name or a CLI flag value to a ProductType.
// Anything that is not configurable is treated as simple.
func ParseProductType(raw string) ProductType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case strings.ToLower(configurableTypeName), "configurable":
		return ProductConfigurable
	default:
		return ProductSimple
	}
}

func (t ProductType) String() string {
	switch t {
	case ProductConfigurable:
		return "configurable"
	default:
		return "simple"
	}
}

type MediaEntry struct {
	File     string
	Label    string
	Position int
}

func (m MediaEntry) IsZero() bool {
	return m == MediaEntry{}
}

type Item struct {
	SKU   string
	Name  string
	Media []MediaEntry
}

// PrimaryImage returns the entry marked with position 1, else the first entry.
func (i Item) PrimaryImage() (MediaEntry, bool) {
	if len(i.Media) == 0 {
		return MediaEntry{}, false
	}
	for _, entry := range i.Media {
		if entry.Position == 1 {
			return entry, true
		}
	}

	return i.Media[0], true
}

type Money struct {
	Value    float64
	Currency string
}

func (m Money) String() string {
	if m.Currency == "" {
		return fmt.Sprintf("%.2f", m.Value)
	}
	return fmt.Sprintf("%.2f %s", m.Value, m.Currency)
}

type CartLine struct {
	ID       CartItemID
	SKU      string
	Name     string
	Quantity float64
	Price    Money
}

type Cart struct {
	ID         CartID
	Lines      []CartLine
	GrandTotal Money
}

func (c Cart) TotalQuantity() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}
