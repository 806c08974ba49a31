package domain

import "time"

// ItemSnapshot is the normalized item pool written by a fetch and read by a build.
type ItemSnapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	SourcesUsed []string  `json:"sourcesUsed"`
	Subreddits  []string  `json:"subreddits,omitempty"`
	Items       []Item    `json:"posts"`
}

// BuildOutcome is the terminal state of one build.
type BuildOutcome string

const (
	OutcomePublished BuildOutcome = "published"
	OutcomePreserved BuildOutcome = "preserved"
	OutcomeFailed    BuildOutcome = "failed"
)

// BuildReport summarises a build for metrics and notifications.
type BuildReport struct {
	RunID      string
	Period     string
	Outcome    BuildOutcome
	Stage      string
	Raw        int
	Duplicates int
	Invalid    int
	Vetoed     int
	Unjudged   int
	Approved   int
	Fallback   int
	Featured   int
	Oddities   int
	Duration   time.Duration
	FinishedAt time.Time
}
