package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// Encode serializes the ordered line items into the durable blob format.
func Encode(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodePersistence, err, "encode cart")
	}
	return string(payload), nil
}

// Decode parses a durable blob. Any structural problem is reported as a
// persistence error; callers fall back to an empty cart.
func Decode(raw string) ([]LineItem, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, pkgerrors.New(pkgerrors.CodePersistence, "cart blob is not a json array")
	}

	var items []LineItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decode cart")
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if err := validateDecoded(item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decode cart").WithDetails(map[string]any{"index": i})
		}
		if _, dup := seen[item.Key]; dup {
			return nil, pkgerrors.New(pkgerrors.CodePersistence, "duplicate cart item key").WithDetails(map[string]any{"cartItemKey": item.Key})
		}
		seen[item.Key] = struct{}{}
		if items[i].SelectedAttributes == nil {
			items[i].SelectedAttributes = map[string]string{}
		}
	}
	return items, nil
}

func validateDecoded(item LineItem) error {
	switch {
	case strings.TrimSpace(item.Key) == "":
		return fmt.Errorf("missing cartItemKey")
	case strings.TrimSpace(item.Product.ID) == "":
		return fmt.Errorf("item %q missing product id", item.Key)
	case item.Quantity < 1:
		return fmt.Errorf("item %q has quantity %d", item.Key, item.Quantity)
	}
	return nil
}
