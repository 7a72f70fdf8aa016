// Package selection tracks the attribute choices made on a product page.
package selection

import (
	"github.com/angelmondragon/storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// State is an immutable attribute id to item id mapping. The zero value is the
// initial, empty selection.
type State struct {
	selected catalog.SelectedAttributes
}

// Initial returns the empty selection.
func Initial() State {
	return State{}
}

// Selected returns a copy of the chosen items.
func (s State) Selected() catalog.SelectedAttributes {
	return s.selected.Clone()
}

// Get returns the item chosen for an attribute.
func (s State) Get(attributeID string) (string, bool) {
	itemID, ok := s.selected[attributeID]
	return itemID, ok
}

func (s State) Len() int {
	return len(s.selected)
}

// Action is a selection transition. AttributeSelected is the only variant.
type Action interface {
	isAction()
}

// AttributeSelected assigns itemID to attributeID, replacing any prior choice.
type AttributeSelected struct {
	AttributeID string `json:"attributeId" validate:"required"`
	ItemID      string `json:"itemId" validate:"required"`
}

func (AttributeSelected) isAction() {}

// Reduce applies an action and returns the next state; s is left untouched.
// There is no transition that removes a choice.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case AttributeSelected:
		next := s.selected.Clone()
		next[a.AttributeID] = a.ItemID
		return State{selected: next}
	default:
		return s
	}
}

// IsComplete reports whether every attribute of the product has a choice. A
// product without attributes is always complete.
func IsComplete(product catalog.Product, s State) bool {
	for _, attr := range product.Attributes {
		if _, ok := s.selected[attr.ID]; !ok {
			return false
		}
	}
	return true
}

// Missing lists the attribute ids that still need a choice, in product order.
func Missing(product catalog.Product, s State) []string {
	missing := []string{}
	for _, attr := range product.Attributes {
		if _, ok := s.selected[attr.ID]; !ok {
			missing = append(missing, attr.ID)
		}
	}
	return missing
}

// Validate rejects actions that reference attributes or items the product
// does not offer.
func Validate(product catalog.Product, action Action) error {
	a, ok := action.(AttributeSelected)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported selection action")
	}
	attr, ok := product.Attribute(a.AttributeID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown attribute").WithDetails(map[string]any{
			"attributeId": a.AttributeID,
		})
	}
	if _, ok := attr.Item(a.ItemID); !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown attribute item").WithDetails(map[string]any{
			"attributeId": a.AttributeID,
			"itemId":      a.ItemID,
		})
	}
	return nil
}
