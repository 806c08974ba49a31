package editorial

import (
	"fmt"
	"log/slog"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/prng"
	"FeaturedSelector/internal/vocabulary"
)

// DefaultFallbacks are the built-in phrases used when a category has no vocabulary entries.
var DefaultFallbacks = map[domain.Category][]string{
	domain.CategoryNature:        {"Nature remains undefeated.", "Probably fine."},
	domain.CategoryHumanBehavior: {"Humanity is trying.", "Someone approved this.", "And yet, here we are."},
	domain.CategoryTech:          {"Progress update.", "No one asked for this."},
	domain.CategoryCommerce:      {"This exists.", "Someone thought this through."},
	domain.CategorySystemFailure: {"Working as intended.", "This didn't need to happen."},
	domain.CategoryGravity:       {"This will not be the last time."},
}

// JudgmentSelector picks one approved phrase per item, deterministically per seed.
type JudgmentSelector struct {
	vocab     *vocabulary.Store
	fallbacks map[domain.Category][]string
	logger    *slog.Logger
}

// NewJudgmentSelector wires the vocabulary. A nil fallbacks map disables the fallback stage.
func NewJudgmentSelector(vocab *vocabulary.Store, fallbacks map[domain.Category][]string, logger *slog.Logger) *JudgmentSelector {
	return &JudgmentSelector{vocab: vocab, fallbacks: fallbacks, logger: logger}
}

// Select returns the judgment for item, or false when neither the vocabulary nor
// the fallback table has anything for the category.
func (s *JudgmentSelector) Select(category domain.Category, item domain.Item, seed uint32) (domain.Judgment, bool) {
	key := itemKey(item)

	if s.vocab != nil {
		if j, ok := prng.Pick(s.vocab.ByCategory(category), fmt.Sprintf("%d:%s", seed, key)); ok {
			return j, true
		}
	}

	phrase, ok := prng.Pick(s.fallbacks[category], fmt.Sprintf("%d:%s:%s", seed, category, key))
	if !ok {
		return domain.Judgment{}, false
	}

	if s.vocab != nil {
		if j, found := s.vocab.Lookup(phrase); found {
			return j, true
		}
	}

	if s.logger != nil {
		s.logger.Warn("degraded fallback judgment", "item", key, "category", category, "phrase", phrase)
	}
	return domain.Judgment{
		Primary:   phrase,
		Secondary: phrase,
		Category:  category,
		Fallback:  true,
	}, true
}

func itemKey(item domain.Item) string {
	if k := item.Key(); k != "" {
		return k
	}
	if item.Title != "" {
		return item.Title
	}
	return "x"
}
