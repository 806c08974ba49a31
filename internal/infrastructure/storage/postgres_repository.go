package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/lib/pq"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/ports"
)

// Schema creates the audit tables when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS featured_sets (
    run_id       TEXT PRIMARY KEY,
    period       TEXT NOT NULL,
    seed         BIGINT NOT NULL,
    generated_at TIMESTAMPTZ NOT NULL,
    item_ids     TEXT[] NOT NULL,
    approved     INTEGER NOT NULL,
    payload      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS featured_sets_generated_at ON featured_sets (generated_at DESC);
CREATE TABLE IF NOT EXISTS featured_placements (
    run_id      TEXT NOT NULL REFERENCES featured_sets (run_id) ON DELETE CASCADE,
    placement   TEXT NOT NULL,
    external_id TEXT NOT NULL,
    title       TEXT NOT NULL,
    url         TEXT NOT NULL,
    category    TEXT NOT NULL,
    score       DOUBLE PRECISION NOT NULL,
    level       INTEGER NOT NULL,
    judgment_en TEXT NOT NULL,
    judgment_it TEXT NOT NULL,
    fallback    BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (run_id, placement)
);`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository keeps an audit trail of published featured sets.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.FeaturedRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema applies Schema.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveFeatured inserts the set and one row per placement in a single transaction.
// Saving the same run twice is a no-op.
func (r *PostgresRepository) SaveFeatured(ctx context.Context, set domain.FeaturedSet, approved []domain.Candidate) error {
	if r.db == nil {
		return nil
	}

	setSQL, setArgs, err := insertSetQuery(set, len(approved))
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, setSQL, setArgs...)
	if err != nil {
		return fmt.Errorf("insert featured set: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	if set.Size() > 0 {
		placeSQL, placeArgs, err := insertPlacementsQuery(set)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, placeSQL, placeArgs...); err != nil {
			return fmt.Errorf("insert placements: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LatestFeatured returns the most recently generated set.
func (r *PostgresRepository) LatestFeatured(ctx context.Context) (domain.FeaturedSet, bool, error) {
	if r.db == nil {
		return domain.FeaturedSet{}, false, nil
	}

	query, args, err := latestQuery()
	if err != nil {
		return domain.FeaturedSet{}, false, err
	}

	var payload []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FeaturedSet{}, false, nil
	}
	if err != nil {
		return domain.FeaturedSet{}, false, fmt.Errorf("query latest: %w", err)
	}

	var set domain.FeaturedSet
	if err := json.Unmarshal(payload, &set); err != nil {
		return domain.FeaturedSet{}, false, fmt.Errorf("decode latest: %w", err)
	}
	return set, true, nil
}

func insertSetQuery(set domain.FeaturedSet, approved int) (string, []any, error) {
	if set.RunID == "" {
		return "", nil, fmt.Errorf("featured set has no run id")
	}
	payload, err := json.Marshal(set)
	if err != nil {
		return "", nil, fmt.Errorf("encode featured set: %w", err)
	}

	ids := make([]string, 0, set.Size())
	for _, p := range set.Placements() {
		ids = append(ids, p.Candidate.Key())
	}

	query, args, err := psql.Insert("featured_sets").
		Columns("run_id", "period", "seed", "generated_at", "item_ids", "approved", "payload").
		Values(set.RunID, set.Period, int64(set.Seed), set.GeneratedAt, pq.StringArray(ids), approved, payload).
		Suffix("ON CONFLICT (run_id) DO NOTHING").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return query, args, nil
}

func insertPlacementsQuery(set domain.FeaturedSet) (string, []any, error) {
	builder := psql.Insert("featured_placements").
		Columns("run_id", "placement", "external_id", "title", "url", "category", "score", "level", "judgment_en", "judgment_it", "fallback")
	for _, p := range set.Placements() {
		c := p.Candidate
		builder = builder.Values(set.RunID, p.Where, c.Key(), c.Title, c.URL, string(c.Category), c.Score, c.Level,
			c.Judgment.Primary, c.Judgment.Secondary, c.Judgment.Fallback)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build placements insert: %w", err)
	}
	return query, args, nil
}

func latestQuery() (string, []any, error) {
	query, args, err := psql.Select("payload").
		From("featured_sets").
		OrderBy("generated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}
	return query, args, nil
}
