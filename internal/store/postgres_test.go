package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newPostgresStoreWithPool(mock), mock
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS valuations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateValuation(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO valuations").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	v := sampleValuation("crm", "php_laravel", 10, 20)
	require.NoError(t, s.CreateValuation(context.Background(), v))
	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.Equal(t, "crm", v.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetValuation(t *testing.T) {
	s, mock := newMockStore(t)
	want := sampleValuation("crm", "php_laravel", 10, 20)
	id := uuid.New()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	profileJSON, _ := json.Marshal(want.Profile)
	answersJSON, _ := json.Marshal(want.Answers)
	breakdownJSON, _ := json.Marshal(want.Result.Breakdown)

	rows := pgxmock.NewRows([]string{
		"id", "created_at", "category", "technology", "value_min", "value_average", "value_max",
		"confidence", "methodology", "profile", "answers", "breakdown",
	}).AddRow(id.String(), created, "crm", "php_laravel", 10.0, 15.0, 20.0,
		0.8, "test", profileJSON, answersJSON, breakdownJSON)
	mock.ExpectQuery("SELECT (.+) FROM valuations WHERE id").
		WithArgs(id).
		WillReturnRows(rows)

	got, err := s.GetValuation(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, want.Profile, got.Profile)
	assert.Equal(t, want.Result, got.Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetValuationNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM valuations WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetValuation(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListValuations(t *testing.T) {
	s, mock := newMockStore(t)
	id1, id2 := uuid.New(), uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "created_at", "category", "technology", "value_min", "value_average", "value_max", "confidence",
	}).
		AddRow(id2.String(), now, "crm", "java_spring", 2.0, 3.0, 4.0, 0.7).
		AddRow(id1.String(), now.Add(-time.Minute), "crm", "java_spring", 1.0, 2.0, 3.0, 0.9)
	mock.ExpectQuery(`FROM valuations WHERE 1=1 AND category = \$1 AND technology = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs("crm", "java_spring", DefaultListLimit).
		WillReturnRows(rows)

	got, err := s.ListValuations(context.Background(), ValuationFilter{Category: "crm", Technology: "java_spring"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, id2, got[0].ID)
	assert.Equal(t, 3.0, got[0].ValueAverage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetStats(t *testing.T) {
	s, mock := newMockStore(t)
	avg := 250.0
	mock.ExpectQuery("SELECT COUNT\\(\\*\\), AVG").
		WillReturnRows(pgxmock.NewRows([]string{"count", "avg"}).AddRow(4, &avg))
	mock.ExpectQuery("SELECT technology FROM valuations").
		WillReturnRows(pgxmock.NewRows([]string{"technology"}).AddRow("access_vba"))
	mock.ExpectQuery("SELECT category, COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"category", "count"}).
			AddRow("crm", 3).
			AddRow("audit_system", 1))

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 250.0, stats.AverageValue)
	assert.Equal(t, "access_vba", stats.TopTechnology)
	assert.Equal(t, map[string]int{"crm": 3, "audit_system": 1}, stats.ByCategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetStatsEmpty(t *testing.T) {
	s, mock := newMockStore(t)
	var none *float64
	mock.ExpectQuery("SELECT COUNT\\(\\*\\), AVG").
		WillReturnRows(pgxmock.NewRows([]string{"count", "avg"}).AddRow(0, none))
	mock.ExpectQuery("SELECT technology FROM valuations").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT category, COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"category", "count"}))

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, NoTechnology, stats.TopTechnology)
	assert.NoError(t, mock.ExpectationsWereMet())
}
