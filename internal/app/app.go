package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"FeaturedSelector/internal/config"
	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/editorial"
	"FeaturedSelector/internal/gate"
	"FeaturedSelector/internal/infrastructure/metrics"
	"FeaturedSelector/internal/infrastructure/parser"
	"FeaturedSelector/internal/infrastructure/scheduler"
	"FeaturedSelector/internal/infrastructure/storage"
	"FeaturedSelector/internal/infrastructure/telegram"
	"FeaturedSelector/internal/logging"
	"FeaturedSelector/internal/ports"
	"FeaturedSelector/internal/prng"
	"FeaturedSelector/internal/scanner"
	"FeaturedSelector/internal/selection"
	"FeaturedSelector/internal/usecase"
	"FeaturedSelector/internal/vocabulary"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	approver  *editorial.Approver
	items     ports.ItemStore
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
	now       func() time.Time
}

// Classification is one item's approval outcome, for the classify command.
type Classification struct {
	Item      domain.Item       `json:"item"`
	Outcome   editorial.Outcome `json:"outcome"`
	Candidate domain.Candidate  `json:"candidate,omitempty"`
	Band      domain.PriceBand  `json:"band,omitempty"`
}

// New builds the application. Optional adapters (Postgres audit, Telegram,
// metrics) are wired only when configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	vocab := vocabulary.Default()
	if cfg.Vocabulary.Path != "" {
		loaded, err := vocabulary.Load(cfg.Vocabulary.Path)
		if err != nil {
			return nil, err
		}
		vocab = loaded
	}

	approver := editorial.NewApprover(vocab, baseLogger.With("component", "editorial"))
	selector := selection.New(approver, cfg.Rules, cfg.Selection,
		selection.WithLogger(baseLogger.With("component", "selection")))
	validator := gate.New(vocab, cfg.Gate)

	registry := scanner.NewRegistry()
	registry.Register(parser.NewRedditScanner(nil, baseLogger.With("component", "scanner.reddit")))
	registry.Register(parser.NewJSONFileScanner())
	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))
	if err := source.Check(); err != nil {
		return nil, fmt.Errorf("sites: %w", err)
	}

	files := storage.NewFileRepository(cfg.Storage.ItemsPath, cfg.Storage.FeaturedPath, cfg.Storage.ApprovedPath)

	a := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		approver: approver,
		items:    files,
		now:      time.Now,
	}

	var audit ports.FeaturedRepository
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
		audit = repo
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	var sink ports.MetricsSink
	if cfg.Metrics.TextfilePath != "" {
		sink = metrics.NewTextfileSink(cfg.Metrics.TextfilePath)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:           source,
		Items:            files,
		Featured:         files,
		Audit:            audit,
		Notifier:         notifier,
		Metrics:          sink,
		Selector:         selector,
		Gate:             validator,
		PreservePrevious: cfg.Selection.PreservePrevious,
		Logger:           baseLogger.With("component", "pipeline"),
		NewRunID:         uuid.NewString,
	})
	a.scheduler = usecase.NewScheduler(
		scheduler.NewTickerScheduler(cfg.Scheduler.Interval),
		a.pipeline,
		cfg.Scheduler.Location(),
		baseLogger.With("component", "scheduler"),
	)
	return a, nil
}

// Period resolves key, or the current ISO week in the configured timezone when key is empty.
func (a *Application) Period(key string) (prng.Period, error) {
	if key == "" {
		return prng.PeriodOf(a.now().In(a.cfg.Scheduler.Location())), nil
	}
	return prng.ParsePeriod(key)
}

// Fetch refreshes the item snapshot from the configured sites.
func (a *Application) Fetch(ctx context.Context) (domain.ItemSnapshot, error) {
	return a.pipeline.Fetch(ctx)
}

// Build runs selection for the period named by key.
func (a *Application) Build(ctx context.Context, key string) (usecase.BuildResult, error) {
	period, err := a.Period(key)
	if err != nil {
		return usecase.BuildResult{}, err
	}
	return a.pipeline.Build(ctx, period)
}

// Validate re-checks the published featured set.
func (a *Application) Validate(ctx context.Context) (domain.FeaturedSet, []*gate.VocabularyViolation, error) {
	return a.pipeline.Validate(ctx)
}

// Classify runs approval over the stored items without selecting anything.
func (a *Application) Classify(ctx context.Context, key string) ([]Classification, error) {
	period, err := a.Period(key)
	if err != nil {
		return nil, err
	}
	items, err := a.items.LoadItems(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Classification, 0, len(items))
	for _, item := range domain.DedupeItems(items) {
		c, outcome := a.approver.Approve(item, period.Seed)
		row := Classification{Item: item, Outcome: outcome, Candidate: c}
		if outcome == editorial.Approved && c.IsCommerce() {
			row.Band = a.cfg.Rules.Band(c)
		}
		out = append(out, row)
	}
	return out, nil
}

// Serve runs fetch and build on the configured interval until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval.String())
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases the database handle, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
