package pricegate

import (
	"math"
	"sort"

	"FeaturedSelector/internal/domain"
)

// FilterGadgets keeps admissible candidates above the score threshold, then caps
// acceptable items at ExceptionRatio×ideal and unknown items at
// UnknownRatio×(ideal+acceptable). Higher scores survive a cap; output keeps input order.
func (r Rules) FilterGadgets(candidates []domain.Candidate) []domain.Candidate {
	var ideal, acceptable, unknown []int
	for i, c := range candidates {
		if c.Score < r.MinScore || !r.Admissible(c) {
			continue
		}
		switch r.Band(c) {
		case domain.BandIdeal:
			ideal = append(ideal, i)
		case domain.BandAcceptable:
			acceptable = append(acceptable, i)
		case domain.BandUnknown:
			unknown = append(unknown, i)
		}
	}

	acceptable = best(candidates, acceptable, quota(r.ExceptionRatio, len(ideal)))
	unknown = best(candidates, unknown, quota(r.UnknownRatio, len(ideal)+len(acceptable)))

	keep := make([]int, 0, len(ideal)+len(acceptable)+len(unknown))
	keep = append(keep, ideal...)
	keep = append(keep, acceptable...)
	keep = append(keep, unknown...)
	sort.Ints(keep)

	out := make([]domain.Candidate, 0, len(keep))
	for _, i := range keep {
		out = append(out, candidates[i])
	}
	return out
}

// Admit returns the candidates passing the hard gate, ignoring score threshold and quotas.
func (r Rules) Admit(candidates []domain.Candidate) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if r.Admissible(c) {
			out = append(out, c)
		}
	}
	return out
}

func quota(ratio float64, base int) int {
	return int(math.Floor(ratio * float64(base)))
}

func best(candidates []domain.Candidate, idx []int, limit int) []int {
	if len(idx) <= limit {
		return idx
	}
	ranked := make([]int, len(idx))
	copy(ranked, idx)
	sort.SliceStable(ranked, func(a, b int) bool {
		ca, cb := candidates[ranked[a]], candidates[ranked[b]]
		if ca.Score != cb.Score {
			return ca.Score > cb.Score
		}
		return ca.Key() < cb.Key()
	})
	return ranked[:limit]
}
