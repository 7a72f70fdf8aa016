package controllers

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
)

type productCard struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Brand     string         `json:"brand"`
	InStock   bool           `json:"inStock"`
	Thumbnail string         `json:"thumbnail"`
	Price     *catalog.Price `json:"price,omitempty"`
	// products with attributes open the detail page instead of a quick add
	HasAttributes bool `json:"hasAttributes"`
}

func newProductCard(product catalog.Product) productCard {
	card := productCard{
		ID:            product.ID,
		Name:          product.Name,
		Brand:         product.Brand,
		InStock:       product.InStock,
		Thumbnail:     product.Thumbnail(),
		HasAttributes: len(product.Attributes) > 0,
	}
	if price, ok := product.FirstPrice(); ok {
		card.Price = &price
	}
	return card
}

type categoryProductsResponse struct {
	Category string        `json:"category"`
	Products []productCard `json:"products"`
}

type attributeView struct {
	catalog.Attribute
	// swatch attributes render their item values as color samples
	Swatch bool `json:"swatch"`
}

type productDetail struct {
	catalog.Product
	Attributes []attributeView `json:"attributes"`
}

func newProductDetail(product catalog.Product) productDetail {
	attrs := make([]attributeView, 0, len(product.Attributes))
	for _, attr := range product.Attributes {
		attrs = append(attrs, attributeView{Attribute: attr, Swatch: attr.IsSwatch()})
	}
	return productDetail{Product: product, Attributes: attrs}
}

type productDetailResponse struct {
	Product   productDetail      `json:"product"`
	Selection checkout.ViewState `json:"selection"`
}

type selectionRequest struct {
	AttributeID string `json:"attributeId" validate:"required,max=128"`
	ItemID      string `json:"itemId" validate:"required,max=128"`
}

type cartItemResponse struct {
	cart.LineItem
	UnitPrice *catalog.Price  `json:"unitPrice,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	Items          []cartItemResponse `json:"items"`
	Count          int                `json:"count"`
	Total          decimal.Decimal    `json:"total"`
	CurrencySymbol string             `json:"currencySymbol"`
	CurrencyLabel  string             `json:"currencyLabel"`
	IsOpen         bool               `json:"isOpen"`
	IsEmpty        bool               `json:"isEmpty"`
	Checkout       checkout.State     `json:"checkout"`
}

func newCartResponse(snap cart.Snapshot, state checkout.State) cartResponse {
	items := make([]cartItemResponse, 0, len(snap.Items))
	for _, item := range snap.Items {
		resp := cartItemResponse{LineItem: item, Subtotal: item.Subtotal()}
		if price, ok := item.UnitPrice(); ok {
			resp.UnitPrice = &price
		}
		items = append(items, resp)
	}
	return cartResponse{
		Items:          items,
		Count:          snap.Count,
		Total:          snap.Total,
		CurrencySymbol: snap.CurrencySymbol,
		CurrencyLabel:  snap.CurrencyLabel,
		IsOpen:         snap.IsOpen,
		IsEmpty:        len(snap.Items) == 0,
		Checkout:       state,
	}
}

type addToCartResponse struct {
	Item cartItemResponse `json:"item"`
	Cart cartResponse     `json:"cart"`
}
