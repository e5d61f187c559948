package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxPool is the subset of *pgxpool.Pool the store uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type PostgresStore struct {
	pool pgxPool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func newPostgresStoreWithPool(pool pgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS valuations (
	id             UUID PRIMARY KEY,
	created_at     TIMESTAMPTZ NOT NULL,
	category       TEXT NOT NULL,
	technology     TEXT NOT NULL,
	profile        JSONB NOT NULL DEFAULT '{}',
	answers        JSONB,
	value_min      DOUBLE PRECISION NOT NULL,
	value_average  DOUBLE PRECISION NOT NULL,
	value_max      DOUBLE PRECISION NOT NULL,
	confidence     DOUBLE PRECISION NOT NULL,
	breakdown      JSONB NOT NULL DEFAULT '{}',
	methodology    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_valuations_created_at ON valuations (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_valuations_technology ON valuations (technology);`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateValuation(ctx context.Context, v *Valuation) error {
	stamp(v)
	profileJSON, err := json.Marshal(v.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	answersJSON, err := json.Marshal(v.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	breakdownJSON, err := json.Marshal(v.Result.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO valuations (id, created_at, category, technology, profile, answers,
			value_min, value_average, value_max, confidence, breakdown, methodology)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		v.ID, v.CreatedAt, v.Category, v.Technology, profileJSON, answersJSON,
		v.Result.ValueMin, v.Result.ValueAverage, v.Result.ValueMax, v.Result.Confidence,
		breakdownJSON, v.Result.Methodology,
	)
	if err != nil {
		return fmt.Errorf("insert valuation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetValuation(ctx context.Context, id uuid.UUID) (*Valuation, error) {
	var (
		v                                 Valuation
		idText                            string
		low, avg, high, confidence        float64
		methodology                       string
		profileJSON, answersJSON, brkJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, created_at, category, technology, value_min, value_average, value_max,
			confidence, methodology, profile, answers, breakdown
		FROM valuations WHERE id = $1`, id,
	).Scan(&idText, &v.CreatedAt, &v.Category, &v.Technology, &low, &avg, &high,
		&confidence, &methodology, &profileJSON, &answersJSON, &brkJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if v.ID, err = uuid.Parse(idText); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	v.CreatedAt = v.CreatedAt.UTC()
	v.Result = valuationResult(low, avg, high, confidence, methodology)
	if err := decodeDocuments(&v, profileJSON, answersJSON, brkJSON); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PostgresStore) ListValuations(ctx context.Context, filter ValuationFilter) ([]*ValuationSummary, error) {
	query := `SELECT id::text, created_at, category, technology, value_min, value_average, value_max, confidence
		FROM valuations WHERE 1=1`
	args := []any{}
	n := 0

	if filter.Category != "" {
		n++
		query += fmt.Sprintf(" AND category = $%d", n)
		args = append(args, filter.Category)
	}
	if filter.Technology != "" {
		n++
		query += fmt.Sprintf(" AND technology = $%d", n)
		args = append(args, filter.Technology)
	}
	n++
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", n)
	args = append(args, filter.limit())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*ValuationSummary{}
	for rows.Next() {
		var (
			sum    ValuationSummary
			idText string
			at     time.Time
		)
		if err := rows.Scan(&idText, &at, &sum.Category, &sum.Technology,
			&sum.ValueMin, &sum.ValueAverage, &sum.ValueMax, &sum.Confidence); err != nil {
			return nil, err
		}
		if sum.ID, err = uuid.Parse(idText); err != nil {
			return nil, fmt.Errorf("parse id: %w", err)
		}
		sum.CreatedAt = at.UTC()
		out = append(out, &sum)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*ValuationStats, error) {
	stats := &ValuationStats{TopTechnology: NoTechnology, ByCategory: map[string]int{}}

	var avg *float64
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), AVG((value_min + value_max) / 2.0) FROM valuations`,
	).Scan(&stats.Total, &avg); err != nil {
		return nil, fmt.Errorf("aggregate valuations: %w", err)
	}
	if avg != nil {
		stats.AverageValue = *avg
	}

	var top string
	err := s.pool.QueryRow(ctx, `
		SELECT technology FROM valuations
		GROUP BY technology ORDER BY COUNT(*) DESC, technology LIMIT 1`).Scan(&top)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("top technology: %w", err)
	default:
		stats.TopTechnology = top
	}

	rows, err := s.pool.Query(ctx, `SELECT category, COUNT(*) FROM valuations GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		stats.ByCategory[cat] = n
	}
	return stats, rows.Err()
}
