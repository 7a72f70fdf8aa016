package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/enums"
)

// WireProduct is the product shape returned by the catalog API. Prices come in
// two historical layouts: a nested currency object, or a flat currencySymbol
// next to a plain currency label string.
type WireProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	InStock     bool            `json:"inStock"`
	Gallery     []string        `json:"gallery"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Prices      []WirePrice     `json:"prices"`
	Attributes  []WireAttribute `json:"attributes"`
}

type WirePrice struct {
	Amount         *decimal.Decimal `json:"amount"`
	Currency       json.RawMessage  `json:"currency"`
	CurrencySymbol string           `json:"currencySymbol"`
}

type WireAttribute struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Type  string              `json:"type"`
	Items []WireAttributeItem `json:"items"`
}

type WireAttributeItem struct {
	ID           string `json:"id"`
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
}

type wireCurrency struct {
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
}

// Normalize converts a wire product into the canonical Product. It is the only
// place that knows about the legacy price layouts.
func Normalize(raw WireProduct) Product {
	product := Product{
		ID:          strings.TrimSpace(raw.ID),
		Name:        raw.Name,
		Brand:       raw.Brand,
		InStock:     raw.InStock,
		Gallery:     append([]string{}, raw.Gallery...),
		Description: raw.Description,
		Category:    raw.Category,
		Prices:      make([]Price, 0, len(raw.Prices)),
		Attributes:  make([]Attribute, 0, len(raw.Attributes)),
	}

	for _, p := range raw.Prices {
		product.Prices = append(product.Prices, normalizePrice(p))
	}

	for _, a := range raw.Attributes {
		attrType, err := enums.ParseAttributeType(a.Type)
		if err != nil {
			attrType = enums.AttributeTypeText
		}
		attr := Attribute{
			ID:    a.ID,
			Name:  a.Name,
			Type:  attrType,
			Items: make([]AttributeItem, 0, len(a.Items)),
		}
		for _, item := range a.Items {
			attr.Items = append(attr.Items, AttributeItem{
				ID:           item.ID,
				Value:        item.Value,
				DisplayValue: item.DisplayValue,
			})
		}
		product.Attributes = append(product.Attributes, attr)
	}

	return product
}

// NormalizeAll normalizes a list of wire products preserving order.
func NormalizeAll(raw []WireProduct) []Product {
	products := make([]Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, Normalize(p))
	}
	return products
}

func normalizePrice(p WirePrice) Price {
	price := Price{Amount: decimal.Zero}
	if p.Amount != nil {
		price.Amount = *p.Amount
	}

	trimmed := bytes.TrimSpace(p.Currency)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
	case trimmed[0] == '{':
		var cur wireCurrency
		if err := json.Unmarshal(trimmed, &cur); err == nil {
			price.CurrencyLabel = cur.Label
			price.CurrencySymbol = cur.Symbol
		}
	case trimmed[0] == '"':
		var label string
		if err := json.Unmarshal(trimmed, &label); err == nil {
			price.CurrencyLabel = label
		}
	}

	if price.CurrencySymbol == "" {
		price.CurrencySymbol = p.CurrencySymbol
	}
	if price.CurrencySymbol == "" {
		price.CurrencySymbol = DefaultCurrencySymbol
	}
	if price.CurrencyLabel == "" {
		price.CurrencyLabel = DefaultCurrencyLabel
	}
	return price
}
