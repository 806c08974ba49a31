// Package selection builds the weekly featured set: one hero, a shuffled
// article section and a price-gated oddities section, all driven by the period seed.
package selection

import (
	"log/slog"
	"sort"
	"time"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/editorial"
	"FeaturedSelector/internal/pricegate"
	"FeaturedSelector/internal/prng"
)

// Result is a featured set plus the approved pool it was drawn from.
type Result struct {
	Featured domain.FeaturedSet
	Approved []domain.Candidate
	Stats    editorial.Stats
}

// Option customises a Selector.
type Option func(*Selector)

// WithClock replaces time.Now for the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// WithLogger attaches an audit logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotes replaces the editorial note rotation. An empty list disables notes.
func WithNotes(notes []domain.EditorialNote) Option {
	return func(s *Selector) { s.notes = notes }
}

// Selector orchestrates approval, sampling and balance correction.
type Selector struct {
	approver *editorial.Approver
	rules    pricegate.Rules
	cfg      Config
	notes    []domain.EditorialNote
	now      func() time.Time
	logger   *slog.Logger
}

// New wires a selector. A zero Pick falls back to the default of four.
func New(approver *editorial.Approver, rules pricegate.Rules, cfg Config, opts ...Option) *Selector {
	if cfg.Pick <= 0 {
		cfg.Pick = defaultPick
	}
	s := &Selector{
		approver: approver,
		rules:    rules,
		cfg:      cfg,
		notes:    DefaultNotes,
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select runs every stage over raw items for period.
func (s *Selector) Select(items []domain.Item, period prng.Period) (Result, error) {
	if len(items) == 0 {
		return Result{}, &StageError{Stage: StageGuard, Err: ErrEmptyRawPool}
	}

	pool, stats := s.approver.ApproveAll(items, period.Seed)
	if s.cfg.FallbackJudgments == domain.FallbackReject {
		pool = withoutFallbacks(pool)
	}
	s.logger.Info("approval finished",
		"period", period.Key,
		"raw", stats.Raw,
		"duplicates", stats.Duplicates,
		"invalid", stats.Invalid,
		"vetoed", stats.Vetoed,
		"unjudged", stats.Unjudged,
		"approved", len(pool),
		"fallback", stats.Fallback,
	)

	featured, err := s.SelectApproved(pool, period)
	if err != nil {
		return Result{Approved: pool, Stats: stats}, err
	}
	return Result{Featured: featured, Approved: pool, Stats: stats}, nil
}

// SelectApproved runs the stages after approval. Identical pools and periods
// give identical hero, article and oddity ordering.
func (s *Selector) SelectApproved(pool []domain.Candidate, period prng.Period) (domain.FeaturedSet, error) {
	if len(pool) == 0 {
		return domain.FeaturedSet{}, &StageError{Stage: StageGuard, Err: ErrEmptyApprovedPool}
	}

	hero, ok := s.pickHero(pool)
	taken := map[string]struct{}{}
	var heroPtr *domain.Candidate
	if ok {
		heroPtr = &hero
		taken[hero.Key()] = struct{}{}
	}

	var articlesPool, odditiesPool []domain.Candidate
	for _, c := range pool {
		if _, dup := taken[c.Key()]; dup {
			continue
		}
		if c.IsCommerce() {
			odditiesPool = append(odditiesPool, c)
		} else {
			articlesPool = append(articlesPool, c)
		}
	}

	rng := prng.New(period.Seed)
	articles := prng.PickN(rng, articlesPool, s.cfg.Pick)
	markTaken(taken, articles)

	oddities, err := s.sampleOddities(rng, odditiesPool, taken)
	if err != nil {
		return domain.FeaturedSet{}, &StageError{Stage: StageSample, Err: err}
	}
	markTaken(taken, oddities)

	articles, oddities = s.balance(heroPtr, articles, oddities, articlesPool, odditiesPool, taken)

	return domain.FeaturedSet{
		Period:      period.Key,
		Seed:        period.Seed,
		GeneratedAt: s.now().UTC(),
		Hero:        heroPtr,
		Articles:    articles,
		Oddities:    oddities,
		Note:        noteFor(s.notes, period.Seed),
	}, nil
}

// pickHero takes the best score, ties broken by title then key. Commerce
// candidates failing the hard price gate are never eligible.
func (s *Selector) pickHero(pool []domain.Candidate) (domain.Candidate, bool) {
	eligible := make([]domain.Candidate, 0, len(pool))
	for _, c := range pool {
		if c.IsCommerce() && !s.rules.Admissible(c) {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return domain.Candidate{}, false
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return ranksAbove(eligible[i], eligible[j], true)
	})
	return eligible[0], true
}

func (s *Selector) sampleOddities(rng *prng.Generator, pool []domain.Candidate, taken map[string]struct{}) ([]domain.Candidate, error) {
	gated := s.rules.FilterGadgets(pool)
	picked := prng.PickN(rng, gated, s.cfg.Pick)

	admissible := s.rules.Admit(pool)
	if need := s.cfg.Pick - len(picked); need > 0 {
		chosen := make(map[string]struct{}, len(picked))
		for _, c := range picked {
			chosen[c.Key()] = struct{}{}
		}
		var extra []domain.Candidate
		for _, c := range admissible {
			if _, ok := chosen[c.Key()]; ok {
				continue
			}
			if _, ok := taken[c.Key()]; ok {
				continue
			}
			extra = append(extra, c)
		}
		if len(extra) > 0 {
			s.logger.Debug("replenishing oddities", "gated", len(gated), "need", need, "available", len(extra))
			picked = append(picked, prng.PickN(rng, extra, need)...)
		}
	}

	if len(pool) > 0 && len(picked) == 0 {
		return nil, &GateMisconfigurationError{PreGate: len(pool), Gated: len(gated), Admissible: len(admissible)}
	}
	return picked, nil
}

// balance swaps in the best unused high-impact candidate when the set has none.
// Articles are searched before admissible oddities; a commerce candidate replaces
// the last oddity, anything else the last article, and an empty section is appended to.
func (s *Selector) balance(hero *domain.Candidate, articles, oddities, articlesPool, odditiesPool []domain.Candidate, taken map[string]struct{}) ([]domain.Candidate, []domain.Candidate) {
	current := append(append([]domain.Candidate{}, articles...), oddities...)
	if hero != nil {
		current = append(current, *hero)
	}
	for _, c := range current {
		if s.highImpact(c) {
			return articles, oddities
		}
	}

	replacement, ok := s.bestHighImpact(articlesPool, taken)
	if !ok {
		replacement, ok = s.bestHighImpact(s.rules.Admit(odditiesPool), taken)
	}
	if !ok {
		s.logger.Warn("no high-impact candidate available for balance correction")
		return articles, oddities
	}

	s.logger.Info("balance correction", "candidate", replacement.Key(), "level", replacement.Level, "category", replacement.Category)
	if replacement.IsCommerce() {
		return articles, swapLast(oddities, replacement)
	}
	return swapLast(articles, replacement), oddities
}

func (s *Selector) highImpact(c domain.Candidate) bool {
	return c.Level >= domain.HighImpactLevel && s.cfg.FallbackJudgments.CountsTowardBalance(c)
}

func (s *Selector) bestHighImpact(pool []domain.Candidate, taken map[string]struct{}) (domain.Candidate, bool) {
	var best domain.Candidate
	found := false
	for _, c := range pool {
		if _, ok := taken[c.Key()]; ok || !s.highImpact(c) {
			continue
		}
		if !found || ranksAbove(c, best, false) {
			best, found = c, true
		}
	}
	return best, found
}

// ranksAbove orders by score, then optionally title, then key.
func ranksAbove(a, b domain.Candidate, byTitle bool) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if byTitle && a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.Key() < b.Key()
}

func swapLast(section []domain.Candidate, c domain.Candidate) []domain.Candidate {
	out := append([]domain.Candidate{}, section...)
	if len(out) == 0 {
		return append(out, c)
	}
	out[len(out)-1] = c
	return out
}

func markTaken(taken map[string]struct{}, cs []domain.Candidate) {
	for _, c := range cs {
		taken[c.Key()] = struct{}{}
	}
}

func withoutFallbacks(pool []domain.Candidate) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(pool))
	for _, c := range pool {
		if !c.Judgment.Fallback {
			out = append(out, c)
		}
	}
	return out
}
