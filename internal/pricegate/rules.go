// Package pricegate bands commerce candidates by price and keeps the oddities
// pool from being dominated by borderline or unpriced items.
package pricegate

import "FeaturedSelector/internal/validation"

// Rules are the editorial price thresholds and quota ratios.
type Rules struct {
	CoreMin        float64 `yaml:"coreMin" validate:"gte=0"`
	CoreMax        float64 `yaml:"coreMax" validate:"gtefield=CoreMin"`
	Ceiling        float64 `yaml:"ceiling" validate:"gtefield=CoreMax"`
	ExceptionRatio float64 `yaml:"exceptionRatio" validate:"gte=0,lte=1"`
	UnknownRatio   float64 `yaml:"unknownRatio" validate:"gte=0,lte=1"`
	AllowUnknown   bool    `yaml:"allowUnknownPrice"`
	MinScore       float64 `yaml:"minShareScore"`
}

// DefaultRules: ideal 5–15 EUR, hard ceiling 25 EUR.
func DefaultRules() Rules {
	return Rules{
		CoreMin:        5,
		CoreMax:        15,
		Ceiling:        25,
		ExceptionRatio: 0.5,
		UnknownRatio:   0.5,
		AllowUnknown:   true,
		MinScore:       4,
	}
}

// Validate checks the thresholds are ordered and ratios are fractions.
func (r Rules) Validate() error {
	return validation.Struct("price rules", r)
}
