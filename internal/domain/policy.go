package domain

// HighImpactLevel is the level a featured set needs at least once.
const HighImpactLevel = 4

// FallbackPolicy decides how degraded fallback judgments are treated downstream.
// The zero value behaves like FallbackIgnore.
type FallbackPolicy string

const (
	// FallbackCount treats fallback judgments like vocabulary ones.
	FallbackCount FallbackPolicy = "count"
	// FallbackIgnore keeps them publishable but excludes them from balance counts.
	FallbackIgnore FallbackPolicy = "ignore"
	// FallbackReject removes them from the approved pool.
	FallbackReject FallbackPolicy = "reject"
)

// CountsTowardBalance reports whether c contributes to level-distribution constraints.
func (p FallbackPolicy) CountsTowardBalance(c Candidate) bool {
	return !c.Judgment.Fallback || p == FallbackCount
}
