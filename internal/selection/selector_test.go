package selection

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/editorial"
	"FeaturedSelector/internal/pricegate"
	"FeaturedSelector/internal/prng"
	"FeaturedSelector/internal/vocabulary"
)

var (
	fixedNow = time.Date(2026, time.October, 19, 6, 0, 0, 0, time.UTC)
	week     = prng.Period{Key: "2026-W43", Seed: 202643}
)

func newSelector(cfg Config, rules pricegate.Rules) *Selector {
	return New(editorial.NewApprover(vocabulary.Default(), nil), rules, cfg,
		WithClock(func() time.Time { return fixedNow }))
}

func article(id string, score float64, level int) domain.Candidate {
	return domain.Candidate{
		Item:     domain.Item{ID: id, Title: "Article " + id, URL: "https://e.org/" + id},
		Category: domain.CategoryHumanBehavior,
		Judgment: domain.Judgment{Primary: "Humanity is trying.", Secondary: "L'umanità ci sta provando.", Level: level},
		Score:    score,
		Level:    level,
	}
}

func oddity(id, priceTag string, score float64, level int) domain.Candidate {
	return domain.Candidate{
		Item:     domain.Item{ID: id, Title: "Gadget " + id + " " + priceTag, URL: "https://www.etsy.com/" + id},
		Category: domain.CategoryCommerce,
		Judgment: domain.Judgment{Primary: "This exists.", Secondary: "Questo esiste.", Level: level},
		Score:    score,
		Level:    level,
	}
}

func mixedPool() []domain.Candidate {
	var pool []domain.Candidate
	for i := 0; i < 9; i++ {
		pool = append(pool, article(fmt.Sprintf("a%d", i), float64(3+i%4), 2+i%3))
	}
	for i := 0; i < 7; i++ {
		pool = append(pool, oddity(fmt.Sprintf("o%d", i), fmt.Sprintf("€%d", 6+i), 5, 3))
	}
	return pool
}

func ids(cs []domain.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestSelectApprovedIsDeterministic(t *testing.T) {
	t.Parallel()

	s := newSelector(DefaultConfig(), pricegate.DefaultRules())

	first, err := s.SelectApproved(mixedPool(), week)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.SelectApproved(mixedPool(), week)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("selection drifted (-first +again):\n%s", diff)
		}
	}

	assert.Equal(t, uint32(202643), first.Seed)
	assert.Equal(t, "2026-W43", first.Period)
	assert.Equal(t, fixedNow, first.GeneratedAt)
	assert.Len(t, first.Articles, 4)
	assert.Len(t, first.Oddities, 4)
	require.NotNil(t, first.Note)
}

func TestSelectApprovedNoDuplicateIdentifiers(t *testing.T) {
	t.Parallel()

	s := newSelector(DefaultConfig(), pricegate.DefaultRules())
	for seed := uint32(1); seed < 40; seed++ {
		set, err := s.SelectApproved(mixedPool(), prng.Period{Key: "k", Seed: seed})
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, p := range set.Placements() {
			require.False(t, seen[p.Candidate.ID], "seed %d duplicated %s", seed, p.Candidate.ID)
			seen[p.Candidate.ID] = true
		}
	}
}

func TestHeroIsBestScoreWithTitleTieBreak(t *testing.T) {
	t.Parallel()

	a := article("b", 9, 4)
	a.Title = "Zebra crossing"
	b := article("c", 9, 4)
	b.Title = "Apple orchard"
	pool := []domain.Candidate{article("a", 3, 2), a, b}

	set, err := newSelector(DefaultConfig(), pricegate.DefaultRules()).SelectApproved(pool, week)
	require.NoError(t, err)
	require.NotNil(t, set.Hero)
	assert.Equal(t, "c", set.Hero.ID)
	assert.NotContains(t, ids(set.Articles), "c")
}

func TestHeroSkipsInadmissibleCommerce(t *testing.T) {
	t.Parallel()

	pool := []domain.Candidate{oddity("pricey", "€300", 20, 5), oddity("o1", "€9", 5, 2), article("a", 4, 4)}
	set, err := newSelector(DefaultConfig(), pricegate.DefaultRules()).SelectApproved(pool, week)
	require.NoError(t, err)
	assert.Equal(t, "a", set.Hero.ID)
	assert.Equal(t, []string{"o1"}, ids(set.Oddities))
}

func TestOdditiesReplenishFromAdmissibleCommerceOnly(t *testing.T) {
	t.Parallel()

	rules := pricegate.DefaultRules()
	rules.MinScore = 10 // nothing passes the soft gate
	pool := []domain.Candidate{
		article("hero", 12, 4),
		article("a1", 3, 2), article("a2", 3, 2), article("a3", 3, 2),
		oddity("o1", "€9", 5, 3),
		oddity("o2", "€30", 5, 3),
	}

	set, err := newSelector(DefaultConfig(), rules).SelectApproved(pool, week)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, ids(set.Oddities))
}

func TestGateMisconfigurationWhenCommerceExistsButNoneSurvive(t *testing.T) {
	t.Parallel()

	rules := pricegate.DefaultRules()
	rules.AllowUnknown = false
	pool := []domain.Candidate{article("hero", 12, 4), oddity("u1", "", 8, 3), oddity("u2", "", 8, 3)}

	_, err := newSelector(DefaultConfig(), rules).SelectApproved(pool, week)
	require.Error(t, err)

	var gateErr *GateMisconfigurationError
	require.True(t, errors.As(err, &gateErr))
	assert.Equal(t, 2, gateErr.PreGate)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageSample, stageErr.Stage)
}

func TestUnknownPriceNeverFeaturedWhenDisallowed(t *testing.T) {
	t.Parallel()

	rules := pricegate.DefaultRules()
	rules.AllowUnknown = false
	pool := []domain.Candidate{
		article("hero", 12, 4),
		oddity("priced", "€10", 5, 3),
		oddity("u1", "", 9, 4),
		oddity("u2", "", 9, 4),
	}

	for seed := uint32(1); seed < 20; seed++ {
		set, err := newSelector(DefaultConfig(), rules).SelectApproved(pool, prng.Period{Key: "k", Seed: seed})
		require.NoError(t, err)
		assert.Equal(t, []string{"priced"}, ids(set.Oddities))
	}
}

func TestNoCommerceMeansEmptyOddities(t *testing.T) {
	t.Parallel()

	pool := []domain.Candidate{article("a", 5, 4), article("b", 4, 3)}
	set, err := newSelector(DefaultConfig(), pricegate.DefaultRules()).SelectApproved(pool, week)
	require.NoError(t, err)
	assert.Empty(t, set.Oddities)
	assert.Equal(t, []string{"b"}, ids(set.Articles))
}

func TestBalanceSwapsInHighImpactArticle(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Pick = 1
	pool := []domain.Candidate{
		article("hero", 12, 3),
		article("flat", 6, 2),
		article("strong", 4, 4),
		oddity("o1", "€9", 5, 2),
	}

	for seed := uint32(1); seed < 20; seed++ {
		set, err := newSelector(cfg, pricegate.DefaultRules()).SelectApproved(pool, prng.Period{Key: "k", Seed: seed})
		require.NoError(t, err)
		assert.Equal(t, []string{"strong"}, ids(set.Articles), "seed %d", seed)
		assert.Equal(t, []string{"o1"}, ids(set.Oddities))
	}
}

func TestBalanceSwapsInHighImpactOddity(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Pick = 1
	pool := []domain.Candidate{
		article("hero", 12, 3),
		article("a1", 6, 2),
		oddity("o1", "€9", 5, 2),
		oddity("o2", "€12", 5, 4),
		oddity("bad", "€90", 9, 5),
	}

	for seed := uint32(1); seed < 20; seed++ {
		set, err := newSelector(cfg, pricegate.DefaultRules()).SelectApproved(pool, prng.Period{Key: "k", Seed: seed})
		require.NoError(t, err)
		assert.Equal(t, []string{"o2"}, ids(set.Oddities), "seed %d", seed)
		assert.Len(t, set.Articles, 1)
	}
}

func TestBalanceNeverReintroducesRejectedCommerce(t *testing.T) {
	t.Parallel()

	pool := []domain.Candidate{
		article("hero", 12, 3),
		article("a1", 6, 2),
		oddity("o1", "€9", 5, 2),
		oddity("bad", "€90", 9, 5),
	}

	set, err := newSelector(DefaultConfig(), pricegate.DefaultRules()).SelectApproved(pool, week)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, ids(set.Oddities))
	assert.Equal(t, []string{"a1"}, ids(set.Articles))
}

func TestIgnoredFallbacksDoNotSatisfyBalance(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Pick = 1
	require.Equal(t, domain.FallbackIgnore, cfg.FallbackJudgments)

	hero := article("hero", 12, 4)
	hero.Judgment.Fallback = true
	pool := []domain.Candidate{hero, article("flat", 6, 2), article("strong", 4, 4)}

	set, err := newSelector(cfg, pricegate.DefaultRules()).SelectApproved(pool, week)
	require.NoError(t, err)
	assert.Equal(t, []string{"strong"}, ids(set.Articles))
}

func TestSelectEmptyPools(t *testing.T) {
	t.Parallel()

	s := newSelector(DefaultConfig(), pricegate.DefaultRules())

	_, err := s.Select(nil, week)
	assert.ErrorIs(t, err, ErrEmptyRawPool)
	assert.True(t, IsEmptyPool(err))

	_, err = s.Select([]domain.Item{{ID: "x", Title: "Massacre reported", URL: "https://x"}}, week)
	assert.ErrorIs(t, err, ErrEmptyApprovedPool)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageGuard, stageErr.Stage)
}

func TestSelectScenarioCatAndKeychain(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{ID: "cat", Title: "Cat rescued from tree", URL: "https://i.redd.it/cat", HasThumbnail: true},
		{ID: "key", Title: "LED keychain €9.99", URL: "https://www.amazon.com/dp/key", Domain: "amazon.com"},
	}

	s := newSelector(DefaultConfig(), pricegate.DefaultRules())
	res, err := s.Select(items, week)
	require.NoError(t, err)
	require.Len(t, res.Approved, 2)

	byID := map[string]domain.Candidate{}
	for _, c := range res.Approved {
		byID[c.ID] = c
	}
	assert.Equal(t, domain.CategoryNature, byID["cat"].Category)
	assert.Equal(t, domain.BandIdeal, pricegate.DefaultRules().Band(byID["key"]))

	assert.NotContains(t, ids(res.Featured.Oddities), "cat")
	assert.Contains(t, ids(res.Featured.Oddities), "key")
	assert.Equal(t, "cat", res.Featured.Hero.ID)
}

func TestSelectSamePeriodTwice(t *testing.T) {
	t.Parallel()

	var items []domain.Item
	for i := 0; i < 12; i++ {
		items = append(items, domain.Item{ID: fmt.Sprintf("n%d", i), Title: fmt.Sprintf("Neighbour builds thing %d", i), URL: fmt.Sprintf("https://e.org/%d", i)})
		items = append(items, domain.Item{ID: fmt.Sprintf("g%d", i), Title: fmt.Sprintf("Odd gadget %d €%d", i, 5+i), URL: fmt.Sprintf("https://www.etsy.com/%d", i)})
	}

	s := newSelector(DefaultConfig(), pricegate.DefaultRules())
	first, err := s.Select(items, week)
	require.NoError(t, err)
	second, err := s.Select(items, week)
	require.NoError(t, err)

	assert.Equal(t, first.Featured.Hero.ID, second.Featured.Hero.ID)
	assert.Equal(t, ids(first.Featured.Articles), ids(second.Featured.Articles))
	assert.Equal(t, ids(first.Featured.Oddities), ids(second.Featured.Oddities))
}

func TestRejectPolicyDropsFallbackCandidates(t *testing.T) {
	t.Parallel()

	store, err := vocabulary.New(nil, nil, 0)
	require.NoError(t, err)
	approver := editorial.NewApprover(store, nil)

	cfg := DefaultConfig()
	cfg.FallbackJudgments = domain.FallbackReject
	s := New(approver, pricegate.DefaultRules(), cfg)

	_, err = s.Select([]domain.Item{{ID: "x", Title: "Man builds house from doors", URL: "https://x"}}, week)
	assert.ErrorIs(t, err, ErrEmptyApprovedPool)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.FallbackJudgments = "maybe"
	assert.Error(t, bad.Validate())
}

func TestNoteForIsStablePerSeed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, noteFor(DefaultNotes, 202643), noteFor(DefaultNotes, 202643))
	assert.Nil(t, noteFor(nil, 1))
}
