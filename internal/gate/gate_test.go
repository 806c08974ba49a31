package gate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/vocabulary"
)

func judged(id, primary string, level int) domain.Candidate {
	j, ok := vocabulary.Default().Lookup(primary)
	if !ok {
		j = domain.Judgment{Primary: primary, Secondary: primary, Level: level}
	}
	return domain.Candidate{
		Item:     domain.Item{ID: id, Title: id, URL: "https://e.org/" + id},
		Category: j.Category,
		Judgment: j,
		Level:    level,
	}
}

func balancedSet() domain.FeaturedSet {
	hero := judged("hero", "Nature remains undefeated.", 4)
	return domain.FeaturedSet{
		Hero: &hero,
		Articles: []domain.Candidate{
			judged("a1", "Evolution had other plans.", 3),
			judged("a2", "Probably fine.", 2),
		},
		Oddities: []domain.Candidate{
			judged("o1", "This exists.", 2),
			judged("o2", "Someone thought this through.", 3),
		},
	}
}

func rulesOf(vs []*VocabularyViolation) []Rule {
	out := make([]Rule, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestValidatePassesBalancedSet(t *testing.T) {
	t.Parallel()

	v := New(vocabulary.Default(), DefaultPolicy())
	require.NoError(t, v.Validate(balancedSet()))
}

func TestValidateItemRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		item domain.Candidate
		rule Rule
	}{
		{
			name: "missing secondary",
			item: domain.Candidate{Item: domain.Item{ID: "x"}, Judgment: domain.Judgment{Primary: "Probably fine."}, Level: 3},
			rule: RuleMissingTranslation,
		},
		{
			name: "phrase outside vocabulary",
			item: domain.Candidate{Item: domain.Item{ID: "x"}, Judgment: domain.Judgment{Primary: "Invented.", Secondary: "Inventato."}, Level: 3},
			rule: RuleUnknownPhrase,
		},
		{
			name: "level one",
			item: judged("x", "Evolution had other plans.", 1),
			rule: RuleLevelFloor,
		},
		{
			name: "long level two",
			item: judged("x", "Evolution had other plans.", 2),
			rule: RuleLevel2Length,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			set := balancedSet()
			set.Articles[0] = tc.item
			found := New(vocabulary.Default(), DefaultPolicy()).Check(set)
			require.NotEmpty(t, found)
			assert.Equal(t, tc.rule, found[0].Rule)
			assert.Equal(t, "article#1", found[0].Where)
			assert.Equal(t, "x", found[0].ItemID)
		})
	}
}

func TestValidateWordLimitAndForbiddenPhrases(t *testing.T) {
	t.Parallel()

	lecture := domain.Judgment{
		Primary:   "You should really think about it, friends, today.",
		Secondary: "Dovresti pensarci.",
		Category:  domain.CategoryHumanBehavior,
		Level:     3,
	}
	store, err := vocabulary.New([]domain.Judgment{lecture}, []string{"you should"}, 7)
	require.NoError(t, err)

	set := domain.FeaturedSet{Articles: []domain.Candidate{{
		Item:     domain.Item{ID: "x"},
		Judgment: lecture,
		Level:    4,
	}}}

	rules := rulesOf(New(store, DefaultPolicy()).Check(set))
	assert.Contains(t, rules, RuleTooManyWords)
	assert.Contains(t, rules, RuleForbiddenPhrase)
}

func TestValidateAggregateRules(t *testing.T) {
	t.Parallel()

	v := New(vocabulary.Default(), DefaultPolicy())

	flat := balancedSet()
	flat.Hero.Level = 3
	err := v.Validate(flat)
	var violation *VocabularyViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, RuleMinHighImpact, violation.Rule)
	assert.Empty(t, violation.ItemID)

	mostlyLevel2 := balancedSet()
	mostlyLevel2.Articles[0] = judged("a1", "Probably fine.", 2)
	mostlyLevel2.Oddities[1] = judged("o2", "This exists.", 2)
	assert.Equal(t, []Rule{RuleLevel2Ratio}, rulesOf(v.Check(mostlyLevel2)))

	assert.Equal(t, []Rule{RuleEmptySet}, rulesOf(v.Check(domain.FeaturedSet{})))
}

func TestFallbackPolicies(t *testing.T) {
	t.Parallel()

	withFallbackHero := func() domain.FeaturedSet {
		set := balancedSet()
		hero := judged("hero", "Reality did its thing.", 4)
		hero.Judgment.Fallback = true
		set.Hero = &hero
		return set
	}

	assert.Equal(t, []Rule{RuleMinHighImpact}, rulesOf(New(vocabulary.Default(), DefaultPolicy()).Check(withFallbackHero())),
		"by default a fallback hero does not satisfy the high-impact rule")

	count := DefaultPolicy()
	count.FallbackJudgments = domain.FallbackCount
	assert.NoError(t, New(vocabulary.Default(), count).Validate(withFallbackHero()))

	ignore := DefaultPolicy()
	ignore.FallbackJudgments = domain.FallbackIgnore
	assert.Equal(t, []Rule{RuleMinHighImpact}, rulesOf(New(vocabulary.Default(), ignore).Check(withFallbackHero())))

	reject := DefaultPolicy()
	reject.FallbackJudgments = domain.FallbackReject
	rules := rulesOf(New(vocabulary.Default(), reject).Check(withFallbackHero()))
	assert.Contains(t, rules, RuleFallbackRejected)
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultPolicy().Validate())

	bad := DefaultPolicy()
	bad.Level2MaxWords = 9
	assert.Error(t, bad.Validate())

	bad = DefaultPolicy()
	bad.MaxLevel2Ratio = 1.5
	assert.Error(t, bad.Validate())
}
