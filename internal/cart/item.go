package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/catalog"
)

// LineItem is one distinct (product, selection) entry of the cart. Product and
// SelectedAttributes are snapshots taken when the item was first added.
type LineItem struct {
	Key                string                     `json:"cartItemKey"`
	Product            catalog.Product            `json:"product"`
	SelectedAttributes catalog.SelectedAttributes `json:"selectedAttributes"`
	Quantity           int                        `json:"quantity"`
	AddedAt            time.Time                  `json:"addedAt"`
}

// UnitPrice is the first price of the product snapshot.
func (li LineItem) UnitPrice() (catalog.Price, bool) {
	return li.Product.FirstPrice()
}

// Subtotal is the unit amount times the quantity, zero when the snapshot has no price.
func (li LineItem) Subtotal() decimal.Decimal {
	price, ok := li.UnitPrice()
	if !ok {
		return decimal.Zero
	}
	return price.Amount.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) clone() LineItem {
	out := li
	out.Product = li.Product.Clone()
	out.SelectedAttributes = li.SelectedAttributes.Clone()
	return out
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.clone())
	}
	return out
}
