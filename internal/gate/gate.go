// Package gate is the last check before publication. It never drops items:
// a featured set either passes whole or the build stops.
package gate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/vocabulary"
)

// Validator checks featured sets against a vocabulary and a policy.
type Validator struct {
	vocab     *vocabulary.Store
	policy    Policy
	forbidden []string
}

// New builds a validator. A zero MaxWords takes the vocabulary's limit.
func New(vocab *vocabulary.Store, policy Policy) *Validator {
	if policy.MaxWords <= 0 {
		policy.MaxWords = vocab.MaxWords()
	}
	if policy.FallbackJudgments == "" {
		policy.FallbackJudgments = domain.FallbackIgnore
	}

	v := &Validator{vocab: vocab, policy: policy}
	fold := cases.Fold()
	for _, f := range vocab.Forbidden() {
		if f = strings.TrimSpace(f); f != "" {
			v.forbidden = append(v.forbidden, fold.String(f))
		}
	}
	return v
}

// Validate returns the first violation as a *VocabularyViolation, or nil.
func (v *Validator) Validate(set domain.FeaturedSet) error {
	if found := v.Check(set); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Check collects every violation: per-item rules in placement order, then set-wide rules.
func (v *Validator) Check(set domain.FeaturedSet) []*VocabularyViolation {
	placements := set.Placements()
	if len(placements) == 0 {
		return []*VocabularyViolation{{Rule: RuleEmptySet, Detail: "featured set has no items"}}
	}

	var out []*VocabularyViolation
	for _, p := range placements {
		out = append(out, v.checkItem(p)...)
	}

	counted, highImpact, level2 := 0, 0, 0
	for _, p := range placements {
		if !v.policy.FallbackJudgments.CountsTowardBalance(p.Candidate) {
			continue
		}
		counted++
		if p.Candidate.Level >= domain.HighImpactLevel {
			highImpact++
		}
		if p.Candidate.Level == 2 {
			level2++
		}
	}

	if highImpact < v.policy.MinHighImpact {
		out = append(out, &VocabularyViolation{
			Rule:   RuleMinHighImpact,
			Detail: fmt.Sprintf("%d items at level >= %d, need %d", highImpact, domain.HighImpactLevel, v.policy.MinHighImpact),
		})
	}
	if counted > 0 {
		if ratio := float64(level2) / float64(counted); ratio > v.policy.MaxLevel2Ratio {
			out = append(out, &VocabularyViolation{
				Rule:   RuleLevel2Ratio,
				Detail: fmt.Sprintf("level-2 share %.2f exceeds %.2f (%d of %d)", ratio, v.policy.MaxLevel2Ratio, level2, counted),
			})
		}
	}
	return out
}

func (v *Validator) checkItem(p domain.Placement) []*VocabularyViolation {
	c := p.Candidate
	j := c.Judgment
	var out []*VocabularyViolation
	fail := func(rule Rule, format string, args ...any) {
		out = append(out, &VocabularyViolation{
			Where:  p.Where,
			ItemID: c.Key(),
			Rule:   rule,
			Detail: fmt.Sprintf(format, args...),
		})
	}

	primary := strings.TrimSpace(j.Primary)
	secondary := strings.TrimSpace(j.Secondary)
	if primary == "" || secondary == "" {
		fail(RuleMissingTranslation, "judgment needs both languages")
		return out
	}

	if j.Fallback {
		if v.policy.FallbackJudgments == domain.FallbackReject {
			fail(RuleFallbackRejected, "fallback judgment %q is not publishable", primary)
		}
	} else if _, ok := v.vocab.Lookup(primary); !ok {
		fail(RuleUnknownPhrase, "%q is not in the vocabulary", primary)
	}

	words := len(strings.Fields(primary))
	if words > v.policy.MaxWords {
		fail(RuleTooManyWords, "%d words, max %d", words, v.policy.MaxWords)
	}

	fold := cases.Fold()
	for _, text := range []string{fold.String(primary), fold.String(secondary)} {
		if phrase, hit := v.forbiddenIn(text); hit {
			fail(RuleForbiddenPhrase, "contains %q", phrase)
			break
		}
	}

	if c.Level < v.policy.MinLevel {
		fail(RuleLevelFloor, "level %d below floor %d", c.Level, v.policy.MinLevel)
	}
	if c.Level == 2 && words > v.policy.Level2MaxWords {
		fail(RuleLevel2Length, "level-2 judgment has %d words, max %d", words, v.policy.Level2MaxWords)
	}
	return out
}

func (v *Validator) forbiddenIn(folded string) (string, bool) {
	for _, f := range v.forbidden {
		if strings.Contains(folded, f) {
			return f, true
		}
	}
	return "", false
}
