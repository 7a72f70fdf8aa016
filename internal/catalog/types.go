package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/enums"
)

const (
	// AllCategory is the pseudo category slug that lists every product.
	AllCategory = "all"

	DefaultCurrencySymbol = "$"
	DefaultCurrencyLabel  = "USD"
)

// Category is a catalog grouping addressable by slug.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewCategory derives the routing slug from the category name.
func NewCategory(name string) Category {
	trimmed := strings.TrimSpace(name)
	return Category{Name: trimmed, Slug: strings.ToLower(trimmed)}
}

// Product is the canonical catalog entry. Prices are already normalized.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	InStock     bool        `json:"inStock"`
	Gallery     []string    `json:"gallery"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	Prices      []Price     `json:"prices"`
	Attributes  []Attribute `json:"attributes"`
}

// Price is a single amount in one currency.
type Price struct {
	Amount         decimal.Decimal `json:"amount"`
	CurrencyLabel  string          `json:"currencyLabel"`
	CurrencySymbol string          `json:"currencySymbol"`
}

// Attribute is a configurable product dimension such as size or color.
type Attribute struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Type  enums.AttributeType `json:"type"`
	Items []AttributeItem     `json:"items"`
}

type AttributeItem struct {
	ID           string `json:"id"`
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
}

// FirstPrice returns the authoritative price (the first entry).
func (p Product) FirstPrice() (Price, bool) {
	if len(p.Prices) == 0 {
		return Price{}, false
	}
	return p.Prices[0], true
}

// Thumbnail returns the first gallery image, if any.
func (p Product) Thumbnail() string {
	if len(p.Gallery) == 0 {
		return ""
	}
	return p.Gallery[0]
}

// Attribute looks up an attribute by id.
func (p Product) Attribute(id string) (Attribute, bool) {
	for _, attr := range p.Attributes {
		if attr.ID == id {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Item looks up an attribute item by id.
func (a Attribute) Item(id string) (AttributeItem, bool) {
	for _, item := range a.Items {
		if item.ID == id {
			return item, true
		}
	}
	return AttributeItem{}, false
}

// IsSwatch reports whether the attribute renders as color samples.
func (a Attribute) IsSwatch() bool {
	return a.Type == enums.AttributeTypeSwatch
}

// SelectedAttributes maps an attribute id to the chosen item id. A missing
// attribute id means the attribute is still unselected.
type SelectedAttributes map[string]string

// Clone returns an independent copy; a nil receiver yields an empty map.
func (s SelectedAttributes) Clone() SelectedAttributes {
	out := make(SelectedAttributes, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy so later catalog changes never leak into snapshots.
func (p Product) Clone() Product {
	out := p
	out.Gallery = append([]string{}, p.Gallery...)
	out.Prices = append([]Price{}, p.Prices...)
	out.Attributes = make([]Attribute, 0, len(p.Attributes))
	for _, attr := range p.Attributes {
		attr.Items = append([]AttributeItem{}, attr.Items...)
		out.Attributes = append(out.Attributes, attr)
	}
	return out
}
