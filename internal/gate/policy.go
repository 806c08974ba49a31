package gate

import (
	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/validation"
)

// Policy holds the publication limits checked by the gate.
type Policy struct {
	MaxWords          int                   `yaml:"maxWords" validate:"gte=1"`
	Level2MaxWords    int                   `yaml:"level2MaxWords" validate:"gte=1,ltefield=MaxWords"`
	MinLevel          int                   `yaml:"minLevel" validate:"gte=1,lte=5"`
	MinHighImpact     int                   `yaml:"minHighImpact" validate:"gte=0"`
	MaxLevel2Ratio    float64               `yaml:"maxLevel2Ratio" validate:"gte=0,lte=1"`
	FallbackJudgments domain.FallbackPolicy `yaml:"-" validate:"omitempty,oneof=count ignore reject"`
}

// DefaultPolicy allows seven words per judgment, three at level 2, and at
// most 60% level-2 items. Fallback judgments do not count toward balance.
func DefaultPolicy() Policy {
	return Policy{
		MaxWords:          7,
		Level2MaxWords:    3,
		MinLevel:          2,
		MinHighImpact:     1,
		MaxLevel2Ratio:    0.6,
		FallbackJudgments: domain.FallbackIgnore,
	}
}

// Validate checks ranges and that the level-2 word cap stays within MaxWords.
func (p Policy) Validate() error {
	return validation.Struct("gate policy", p)
}
