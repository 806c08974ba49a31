package editorial

import (
	"unicode/utf8"

	"FeaturedSelector/internal/domain"
)

const (
	thumbnailWeight   = 3.0
	judgmentWeight    = 3.0
	commerceBonus     = 2.0
	natureBonus       = 2.0
	techBonus         = 1.0
	shortTitleBonus   = 1.0
	shortTitleMaxLen  = 90
	graphicPenalty    = 5.0
	shareabilityScale = 2.0
)

// levelBreakpoints map a minimum score to a level, highest first.
var levelBreakpoints = []struct {
	minScore float64
	level    int
}{
	{10, 5},
	{8, 4},
	{6, 3},
	{3, 2},
}

// Score is the additive shareability heuristic. It never fails.
func Score(c domain.Candidate) float64 {
	var s float64

	if c.HasThumbnail {
		s += thumbnailWeight
	}
	if c.Judgment.Primary != "" {
		s += judgmentWeight
		s += c.Judgment.Shareability * shareabilityScale
	}

	switch c.Category {
	case domain.CategoryCommerce:
		s += commerceBonus
	case domain.CategoryNature:
		s += natureBonus
	case domain.CategoryTech:
		s += techBonus
	}

	if utf8.RuneCountInString(c.Title) < shortTitleMaxLen {
		s += shortTitleBonus
	}
	if IsGraphic(c.Item) {
		s -= graphicPenalty
	}

	return s
}

// LevelOf returns the impact level in [1,5]: the judgment's explicit level when
// set, otherwise a level derived from the score.
func LevelOf(c domain.Candidate) int {
	if c.Judgment.Level > 0 {
		return clampLevel(c.Judgment.Level)
	}
	for _, bp := range levelBreakpoints {
		if c.Score >= bp.minScore {
			return bp.level
		}
	}
	return 1
}

func clampLevel(l int) int {
	switch {
	case l < 1:
		return 1
	case l > 5:
		return 5
	default:
		return l
	}
}
