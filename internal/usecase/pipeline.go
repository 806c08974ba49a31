package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/gate"
	"FeaturedSelector/internal/ports"
	"FeaturedSelector/internal/prng"
	"FeaturedSelector/internal/selection"
)

// ErrNothingFetched means every feed came back empty; the previous item file is kept.
var ErrNothingFetched = errors.New("no items fetched")

// PipelineDeps wires all driven adapters into the build pipeline.
type PipelineDeps struct {
	Source   ports.ItemSource
	Items    ports.ItemStore
	Featured ports.FeaturedRepository
	Audit    ports.FeaturedRepository
	Notifier ports.Notifier
	Metrics  ports.MetricsSink

	Selector *selection.Selector
	Gate     *gate.Validator

	PreservePrevious bool
	Logger           *slog.Logger
	Clock            func() time.Time
	NewRunID         func() string
}

// Pipeline implements the fetch and build workflows.
type Pipeline struct {
	source   ports.ItemSource
	items    ports.ItemStore
	featured ports.FeaturedRepository
	audit    ports.FeaturedRepository
	notifier ports.Notifier
	metrics  ports.MetricsSink

	selector *selection.Selector
	gate     *gate.Validator

	preservePrevious bool
	logger           *slog.Logger
	now              func() time.Time
	newRunID         func() string
}

// BuildResult is what one build produced or kept.
type BuildResult struct {
	RunID    string
	Period   string
	Outcome  domain.BuildOutcome
	Featured domain.FeaturedSet
	Approved []domain.Candidate
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:           deps.Source,
		items:            deps.Items,
		featured:         deps.Featured,
		audit:            deps.Audit,
		notifier:         deps.Notifier,
		metrics:          deps.Metrics,
		selector:         deps.Selector,
		gate:             deps.Gate,
		preservePrevious: deps.PreservePrevious,
		logger:           deps.Logger,
		now:              deps.Clock,
		newRunID:         deps.NewRunID,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = func() string { return "" }
	}
	return p
}

// Fetch pulls items from every source, drops repeated URLs and replaces the
// item snapshot. An empty fetch fails and leaves the previous snapshot alone.
func (p *Pipeline) Fetch(ctx context.Context) (domain.ItemSnapshot, error) {
	if p.source == nil || p.items == nil {
		return domain.ItemSnapshot{}, fmt.Errorf("fetch: source and item store are required")
	}

	now := p.now().UTC()
	items, err := p.source.Fetch(ctx, now)
	if err != nil {
		return domain.ItemSnapshot{}, fmt.Errorf("fetch: %w", err)
	}

	items = uniqueByURL(items)
	if len(items) == 0 {
		previous, loadErr := p.items.LoadItems(ctx)
		if loadErr == nil && len(previous) > 0 {
			return domain.ItemSnapshot{}, fmt.Errorf("fetch: %w; keeping existing snapshot (%d items)", ErrNothingFetched, len(previous))
		}
		return domain.ItemSnapshot{}, fmt.Errorf("fetch: %w; snapshot would be empty", ErrNothingFetched)
	}

	snap := domain.ItemSnapshot{
		GeneratedAt: now,
		SourcesUsed: sourcesUsed(items),
		Items:       items,
	}
	if err := p.items.SaveItems(ctx, snap); err != nil {
		return domain.ItemSnapshot{}, fmt.Errorf("save items: %w", err)
	}

	p.logger.Info("items fetched", "items", len(items), "sources", len(snap.SourcesUsed))
	return snap, nil
}

// Build selects, validates and publishes the featured set for period. With
// PreservePrevious, an empty pool keeps the last published set instead of failing.
func (p *Pipeline) Build(ctx context.Context, period prng.Period) (BuildResult, error) {
	start := p.now()
	runID := p.newRunID()
	report := domain.BuildReport{RunID: runID, Period: period.Key}

	result, err := p.build(ctx, period, runID, &report)
	if err != nil && p.preservePrevious && selection.IsEmptyPool(err) {
		if previous, found, prevErr := p.latest(ctx); prevErr == nil && found {
			p.logger.Warn("empty pool, keeping previous featured set",
				"period", period.Key, "previous_period", previous.Period, "error", err)
			result = BuildResult{RunID: runID, Period: period.Key, Outcome: domain.OutcomePreserved, Featured: previous}
			err = nil
		}
	}

	switch {
	case err != nil:
		report.Outcome = domain.OutcomeFailed
		report.Stage = stageOf(err)
		result.Outcome = domain.OutcomeFailed
	default:
		report.Outcome = result.Outcome
		report.Featured = result.Featured.Size()
		report.Oddities = len(result.Featured.Oddities)
	}
	report.FinishedAt = p.now()
	report.Duration = report.FinishedAt.Sub(start)
	p.recordMetrics(report)

	return result, err
}

func (p *Pipeline) build(ctx context.Context, period prng.Period, runID string, report *domain.BuildReport) (BuildResult, error) {
	if p.items == nil || p.selector == nil {
		return BuildResult{}, fmt.Errorf("build: item store and selector are required")
	}

	items, err := p.items.LoadItems(ctx)
	if err != nil {
		return BuildResult{}, fmt.Errorf("load items: %w", err)
	}

	res, err := p.selector.Select(items, period)
	report.Raw = res.Stats.Raw
	report.Duplicates = res.Stats.Duplicates
	report.Invalid = res.Stats.Invalid
	report.Vetoed = res.Stats.Vetoed
	report.Unjudged = res.Stats.Unjudged
	report.Approved = len(res.Approved)
	report.Fallback = res.Stats.Fallback
	if err != nil {
		return BuildResult{}, err
	}

	set := res.Featured
	set.RunID = runID

	if p.gate != nil {
		if err := p.gate.Validate(set); err != nil {
			return BuildResult{}, &selection.StageError{Stage: selection.StageValidate, Err: err}
		}
	}

	if p.featured != nil {
		if err := p.featured.SaveFeatured(ctx, set, res.Approved); err != nil {
			return BuildResult{}, fmt.Errorf("persist featured set: %w", err)
		}
	}
	if p.audit != nil {
		if err := p.audit.SaveFeatured(ctx, set, res.Approved); err != nil {
			p.logger.Warn("audit store failed", "run_id", runID, "error", err)
		}
	}

	p.logger.Info("featured set published",
		"run_id", runID,
		"period", period.Key,
		"seed", period.Seed,
		"hero", set.Hero != nil,
		"articles", len(set.Articles),
		"oddities", len(set.Oddities),
		"approved", len(res.Approved),
	)

	if p.notifier != nil {
		if err := p.notifier.PublishSummary(ctx, buildSummaryMessage(set)); err != nil {
			p.logger.Warn("notification failed", "run_id", runID, "error", err)
		}
	}

	return BuildResult{
		RunID:    runID,
		Period:   period.Key,
		Outcome:  domain.OutcomePublished,
		Featured: set,
		Approved: res.Approved,
	}, nil
}

// Validate re-runs the vocabulary gate over the last published set.
func (p *Pipeline) Validate(ctx context.Context) (domain.FeaturedSet, []*gate.VocabularyViolation, error) {
	if p.gate == nil {
		return domain.FeaturedSet{}, nil, fmt.Errorf("validate: gate is not configured")
	}
	set, found, err := p.latest(ctx)
	if err != nil {
		return domain.FeaturedSet{}, nil, err
	}
	if !found {
		return domain.FeaturedSet{}, nil, fmt.Errorf("validate: no featured set has been published")
	}
	return set, p.gate.Check(set), nil
}

func (p *Pipeline) latest(ctx context.Context) (domain.FeaturedSet, bool, error) {
	if p.featured == nil {
		return domain.FeaturedSet{}, false, nil
	}
	set, found, err := p.featured.LatestFeatured(ctx)
	if err != nil {
		return domain.FeaturedSet{}, false, fmt.Errorf("load previous featured set: %w", err)
	}
	return set, found, nil
}

func (p *Pipeline) recordMetrics(report domain.BuildReport) {
	if p.metrics == nil {
		return
	}
	if err := p.metrics.RecordBuild(report); err != nil {
		p.logger.Warn("metrics export failed", "error", err)
	}
}

func stageOf(err error) string {
	var stageErr *selection.StageError
	if errors.As(err, &stageErr) {
		return string(stageErr.Stage)
	}
	return "io"
}

// uniqueByURL keeps the first item per URL, falling back to the item key.
func uniqueByURL(items []domain.Item) []domain.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		key := strings.TrimSpace(it.URL)
		if key == "" {
			key = it.Key()
		}
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

func sourcesUsed(items []domain.Item) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		if it.Origin == "" || seen[it.Origin] {
			continue
		}
		seen[it.Origin] = true
		out = append(out, it.Origin)
	}
	return out
}

func buildSummaryMessage(set domain.FeaturedSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Featured %s* (seed %d)\n", set.Period, set.Seed)
	if set.Note != nil {
		fmt.Fprintf(&b, "_%s_\n", set.Note.Primary)
	}
	b.WriteString("\n")

	for _, pl := range set.Placements() {
		c := pl.Candidate
		fmt.Fprintf(&b, "%s: [%s](%s)\n  %s / %s (L%d)\n",
			pl.Where, markdownEscaper.Replace(c.Title), c.URL, c.Judgment.Primary, c.Judgment.Secondary, c.Level)
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer("[", "(", "]", ")", "*", "", "_", " ", "`", "'")
