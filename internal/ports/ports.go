package ports

import (
	"context"
	"time"

	"FeaturedSelector/internal/domain"
)

// ItemSource pulls raw items from upstream feeds.
type ItemSource interface {
	Fetch(ctx context.Context, now time.Time) ([]domain.Item, error)
}

// ItemStore keeps the normalized item pool between fetch and build.
type ItemStore interface {
	LoadItems(ctx context.Context) ([]domain.Item, error)
	SaveItems(ctx context.Context, snapshot domain.ItemSnapshot) error
}

// FeaturedRepository persists featured sets and exposes the last published one.
type FeaturedRepository interface {
	SaveFeatured(ctx context.Context, set domain.FeaturedSet, approved []domain.Candidate) error
	LatestFeatured(ctx context.Context) (domain.FeaturedSet, bool, error)
}

// Notifier announces a published featured set.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}

// MetricsSink records the outcome of one build.
type MetricsSink interface {
	RecordBuild(report domain.BuildReport) error
}

// Scheduler controls when builds execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
