package domain

import (
	"fmt"
	"strings"
)

// Category is the closed set of semantic tags an approved item can carry.
type Category string

const (
	CategoryCommerce      Category = "COMMERCE"
	CategoryNature        Category = "NATURE"
	CategoryTech          Category = "TECH"
	CategorySystemFailure Category = "SYSTEM_FAILURE"
	CategoryGravity       Category = "GRAVITY"
	CategoryHumanBehavior Category = "HUMAN_BEHAVIOR"
)

// Categories lists every category in classifier precedence order.
var Categories = []Category{
	CategoryCommerce,
	CategoryNature,
	CategoryTech,
	CategorySystemFailure,
	CategoryGravity,
	CategoryHumanBehavior,
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryCommerce, CategoryNature, CategoryTech, CategorySystemFailure, CategoryGravity, CategoryHumanBehavior:
		return true
	default:
		return false
	}
}

// ParseCategory normalises s and rejects anything outside the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
