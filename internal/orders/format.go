package orders

import (
	"sort"

	"github.com/angelmondragon/storefront/internal/cart"
)

// OrderItemInput is one line of the createOrder mutation.
type OrderItemInput struct {
	ProductID          string              `json:"productId"`
	Quantity           int                 `json:"quantity"`
	SelectedAttributes []SelectedAttribute `json:"selectedAttributes"`
}

type SelectedAttribute struct {
	AttributeID     string `json:"attributeId"`
	AttributeItemID string `json:"attributeItemId"`
}

// FormatForOrder maps cart lines to order inputs in cart order. Attribute
// entries are sorted by attribute id and never nil, so a line without
// attributes still serializes an empty list.
func FormatForOrder(items []cart.LineItem) []OrderItemInput {
	out := make([]OrderItemInput, 0, len(items))
	for _, item := range items {
		attrs := make([]SelectedAttribute, 0, len(item.SelectedAttributes))
		for attributeID, itemID := range item.SelectedAttributes {
			attrs = append(attrs, SelectedAttribute{AttributeID: attributeID, AttributeItemID: itemID})
		}
		sort.Slice(attrs, func(i, j int) bool {
			return attrs[i].AttributeID < attrs[j].AttributeID
		})
		out = append(out, OrderItemInput{
			ProductID:          item.Product.ID,
			Quantity:           item.Quantity,
			SelectedAttributes: attrs,
		})
	}
	return out
}
