package enums

import (
	"fmt"
	"strings"
)

// AttributeType controls how an attribute's items are rendered.
type AttributeType string

const (
	AttributeTypeSwatch AttributeType = "swatch"
	AttributeTypeText   AttributeType = "text"
)

var validAttributeTypes = []AttributeType{
	AttributeTypeSwatch,
	AttributeTypeText,
}

// String implements fmt.Stringer.
func (a AttributeType) String() string {
	return string(a)
}

// IsValid reports whether the attribute type is recognized.
func (a AttributeType) IsValid() bool {
	for _, candidate := range validAttributeTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttributeType converts catalog input into an AttributeType. Matching is
// case-insensitive because the catalog API is not strict about casing.
func ParseAttributeType(value string) (AttributeType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validAttributeTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attribute type %q", value)
}
