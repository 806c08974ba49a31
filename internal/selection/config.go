package selection

import (
	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/validation"
)

const defaultPick = 4

// Config controls section sizes and degraded-mode policies.
type Config struct {
	Pick              int                   `yaml:"pick" validate:"gte=1,lte=50"`
	PreservePrevious  bool                  `yaml:"preservePrevious"`
	FallbackJudgments domain.FallbackPolicy `yaml:"fallbackJudgments" validate:"oneof=count ignore reject"`
}

// DefaultConfig picks four articles and four oddities.
func DefaultConfig() Config {
	return Config{
		Pick:              defaultPick,
		PreservePrevious:  true,
		FallbackJudgments: domain.FallbackIgnore,
	}
}

// Validate checks pick bounds and the fallback policy name.
func (c Config) Validate() error {
	return validation.Struct("selection config", c)
}
