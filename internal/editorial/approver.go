package editorial

import (
	"log/slog"
	"strings"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/vocabulary"
)

// Outcome records why an item did or did not become a candidate.
type Outcome int

const (
	Approved Outcome = iota
	RejectedInvalid
	RejectedVeto
	RejectedNoJudgment
)

func (o Outcome) String() string {
	switch o {
	case Approved:
		return "approved"
	case RejectedInvalid:
		return "invalid"
	case RejectedVeto:
		return "vetoed"
	case RejectedNoJudgment:
		return "no_judgment"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome by name in JSON output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Stats summarises one approval pass.
type Stats struct {
	Raw        int
	Duplicates int
	Invalid    int
	Vetoed     int
	Unjudged   int
	Approved   int
	Fallback   int
}

// Approver turns raw items into candidates: veto, classify, judge, score.
type Approver struct {
	judgments *JudgmentSelector
	logger    *slog.Logger
}

// NewApprover builds an approver over vocab using the default fallback table.
func NewApprover(vocab *vocabulary.Store, logger *slog.Logger) *Approver {
	return NewApproverWithSelector(NewJudgmentSelector(vocab, DefaultFallbacks, logger), logger)
}

// NewApproverWithSelector lets tests swap the judgment stage.
func NewApproverWithSelector(sel *JudgmentSelector, logger *slog.Logger) *Approver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Approver{judgments: sel, logger: logger}
}

// Approve runs one item through the pipeline.
func (a *Approver) Approve(item domain.Item, seed uint32) (domain.Candidate, Outcome) {
	if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.URL) == "" {
		return domain.Candidate{}, RejectedInvalid
	}
	if IsVetoed(item) {
		return domain.Candidate{}, RejectedVeto
	}

	category := Classify(item)
	judgment, ok := a.judgments.Select(category, item, seed)
	if !ok || judgment.Primary == "" || judgment.Secondary == "" {
		return domain.Candidate{}, RejectedNoJudgment
	}

	c := domain.Candidate{Item: item, Category: category, Judgment: judgment}
	c.Score = Score(c)
	c.Level = LevelOf(c)
	return c, Approved
}

// ApproveAll dedupes items and returns the approved pool in input order.
func (a *Approver) ApproveAll(items []domain.Item, seed uint32) ([]domain.Candidate, Stats) {
	unique := domain.DedupeItems(items)
	stats := Stats{Raw: len(items), Duplicates: len(items) - len(unique)}

	pool := make([]domain.Candidate, 0, len(unique))
	for _, item := range unique {
		c, outcome := a.Approve(item, seed)
		switch outcome {
		case Approved:
			stats.Approved++
			if c.Judgment.Fallback {
				stats.Fallback++
			}
			pool = append(pool, c)
			continue
		case RejectedInvalid:
			stats.Invalid++
		case RejectedVeto:
			stats.Vetoed++
		case RejectedNoJudgment:
			stats.Unjudged++
		}
		a.logger.Debug("item excluded", "item", item.Key(), "reason", outcome.String())
	}

	return pool, stats
}
