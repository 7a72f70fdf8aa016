package cart

import (
	"sort"
	"strings"

	"github.com/angelmondragon/storefront/internal/catalog"
)

// Keys are not escaped. Catalog product ids are slugs ("apple-imac-2021") and
// attribute and item ids are display tokens ("Size", "512G", "#44FF03"), none of
// which contain these separators. An id carrying "_", "|" or ":" can alias
// another selection's key.
const (
	keySeparator       = "_"
	selectionSeparator = "|"
	pairSeparator      = ":"
)

// ComputeCartItemKey derives the line item identity of a product under an
// attribute selection. Entries are sorted by attribute id so insertion order
// never matters; an empty selection leaves only the trailing separator.
func ComputeCartItemKey(productID string, selected catalog.SelectedAttributes) string {
	ids := make([]string, 0, len(selected))
	for id := range selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pairs := make([]string, 0, len(ids))
	for _, id := range ids {
		pairs = append(pairs, id+pairSeparator+selected[id])
	}
	return productID + keySeparator + strings.Join(pairs, selectionSeparator)
}
