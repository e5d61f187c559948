package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists valuations in a single-file SQLite database. Writes
// are serialized through one connection.
type SQLiteStore struct {
	db *sqlx.DB
	mu sync.Mutex
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS valuations (
	id             TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	category       TEXT NOT NULL,
	technology     TEXT NOT NULL,
	profile_json   TEXT NOT NULL DEFAULT '{}',
	answers_json   TEXT NOT NULL DEFAULT '{}',
	value_min      REAL NOT NULL,
	value_average  REAL NOT NULL,
	value_max      REAL NOT NULL,
	confidence     REAL NOT NULL,
	breakdown_json TEXT NOT NULL DEFAULT '{}',
	methodology    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_valuations_created_at ON valuations (created_at);
`

// sortableTime keeps TEXT timestamps in lexical order.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

type sqliteRow struct {
	ID            string  `db:"id"`
	CreatedAt     string  `db:"created_at"`
	Category      string  `db:"category"`
	Technology    string  `db:"technology"`
	ProfileJSON   string  `db:"profile_json"`
	AnswersJSON   string  `db:"answers_json"`
	ValueMin      float64 `db:"value_min"`
	ValueAverage  float64 `db:"value_average"`
	ValueMax      float64 `db:"value_max"`
	Confidence    float64 `db:"confidence"`
	BreakdownJSON string  `db:"breakdown_json"`
	Methodology   string  `db:"methodology"`
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateValuation(ctx context.Context, v *Valuation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

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

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO valuations (id, created_at, category, technology, profile_json, answers_json,
			value_min, value_average, value_max, confidence, breakdown_json, methodology)
		VALUES (:id, :created_at, :category, :technology, :profile_json, :answers_json,
			:value_min, :value_average, :value_max, :confidence, :breakdown_json, :methodology)`,
		sqliteRow{
			ID:            v.ID.String(),
			CreatedAt:     v.CreatedAt.Format(sortableTime),
			Category:      v.Category,
			Technology:    v.Technology,
			ProfileJSON:   string(profileJSON),
			AnswersJSON:   string(answersJSON),
			ValueMin:      v.Result.ValueMin,
			ValueAverage:  v.Result.ValueAverage,
			ValueMax:      v.Result.ValueMax,
			Confidence:    v.Result.Confidence,
			BreakdownJSON: string(breakdownJSON),
			Methodology:   v.Result.Methodology,
		})
	if err != nil {
		return fmt.Errorf("insert valuation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetValuation(ctx context.Context, id uuid.UUID) (*Valuation, error) {
	var row sqliteRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM valuations WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.valuation()
}

func (s *SQLiteStore) ListValuations(ctx context.Context, filter ValuationFilter) ([]*ValuationSummary, error) {
	query := `SELECT id, created_at, category, technology, value_min, value_average, value_max, confidence
		FROM valuations WHERE 1=1`
	args := []any{}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Technology != "" {
		query += " AND technology = ?"
		args = append(args, filter.Technology)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, filter.limit())

	var rows []sqliteRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]*ValuationSummary, 0, len(rows))
	for _, r := range rows {
		v, err := r.header()
		if err != nil {
			return nil, err
		}
		out = append(out, v.Summary())
	}
	return out, nil
}

func (s *SQLiteStore) GetStats(ctx context.Context) (*ValuationStats, error) {
	stats := &ValuationStats{TopTechnology: NoTechnology, ByCategory: map[string]int{}}

	var agg struct {
		Total   int             `db:"total"`
		Average sql.NullFloat64 `db:"average"`
	}
	if err := s.db.GetContext(ctx, &agg,
		`SELECT COUNT(*) AS total, AVG((value_min + value_max) / 2.0) AS average FROM valuations`); err != nil {
		return nil, fmt.Errorf("aggregate valuations: %w", err)
	}
	stats.Total = agg.Total
	stats.AverageValue = agg.Average.Float64

	var top []string
	if err := s.db.SelectContext(ctx, &top, `
		SELECT technology FROM valuations
		GROUP BY technology ORDER BY COUNT(*) DESC, technology LIMIT 1`); err != nil {
		return nil, fmt.Errorf("top technology: %w", err)
	}
	if len(top) > 0 {
		stats.TopTechnology = top[0]
	}

	var cats []struct {
		Category string `db:"category"`
		N        int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &cats,
		`SELECT category, COUNT(*) AS n FROM valuations GROUP BY category`); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	for _, c := range cats {
		stats.ByCategory[c.Category] = c.N
	}
	return stats, nil
}

func (r sqliteRow) header() (*Valuation, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse id %q: %w", r.ID, err)
	}
	created, err := time.Parse(sortableTime, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", r.CreatedAt, err)
	}
	return &Valuation{
		ID:         id,
		CreatedAt:  created,
		Category:   r.Category,
		Technology: r.Technology,
		Result:     valuationResult(r.ValueMin, r.ValueAverage, r.ValueMax, r.Confidence, r.Methodology),
	}, nil
}

func (r sqliteRow) valuation() (*Valuation, error) {
	v, err := r.header()
	if err != nil {
		return nil, err
	}
	if err := decodeDocuments(v, []byte(r.ProfileJSON), []byte(r.AnswersJSON), []byte(r.BreakdownJSON)); err != nil {
		return nil, err
	}
	return v, nil
}
