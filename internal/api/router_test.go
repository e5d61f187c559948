package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Valuation/internal/config"
	"github.com/MikeSquared-Agency/Valuation/internal/hermes"
	"github.com/MikeSquared-Agency/Valuation/internal/intake"
	"github.com/MikeSquared-Agency/Valuation/internal/report"
	"github.com/MikeSquared-Agency/Valuation/internal/store"
	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

// Mocks
type mockStore struct{ mock.Mock }

func (m *mockStore) CreateValuation(ctx context.Context, v *store.Valuation) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockStore) GetValuation(ctx context.Context, id uuid.UUID) (*store.Valuation, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*store.Valuation)
	return v, args.Error(1)
}

func (m *mockStore) ListValuations(ctx context.Context, f store.ValuationFilter) ([]*store.ValuationSummary, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]*store.ValuationSummary)
	return items, args.Error(1)
}

func (m *mockStore) GetStats(ctx context.Context) (*store.ValuationStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*store.ValuationStats)
	return stats, args.Error(1)
}

func (m *mockStore) Migrate(context.Context) error { return nil }
func (m *mockStore) Close() error                  { return nil }

type published struct {
	subject string
	data    interface{}
}

type mockHermes struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (m *mockHermes) Publish(subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, published{subject, data})
	return m.err
}
func (m *mockHermes) Close() {}

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, md string) ([]byte, error) {
	return []byte("%PDF-1.4 " + md[:10]), nil
}

func newTestRouter(t *testing.T, s store.Store, h hermes.Client, renderer report.Renderer, adminToken string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := valuation.NewEngine(valuation.DefaultReference(), valuation.DefaultPolicy())
	require.NoError(t, err)
	reports := report.NewService(s, renderer, report.NopCache{}, logger)
	cfg := config.ServerConfig{AdminToken: adminToken, CORSOrigins: []string{"*"}}
	return NewRouter(engine, s, reports, h, cfg, logger)
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func exampleBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(intake.ExampleAuditSystem())
	require.NoError(t, err)
	return body
}

func storedValuation(t *testing.T) *store.Valuation {
	t.Helper()
	engine, err := valuation.NewEngine(valuation.DefaultReference(), valuation.DefaultPolicy())
	require.NoError(t, err)
	p, err := intake.Parse(intake.ExampleAuditSystem())
	require.NoError(t, err)
	res, err := engine.Evaluate(p)
	require.NoError(t, err)
	return &store.Valuation{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC(),
		Category:   p.Category,
		Technology: p.Technology,
		Profile:    p,
		Result:     res,
	}
}

func TestCreateValuation(t *testing.T) {
	s := new(mockStore)
	h := &mockHermes{}
	id := uuid.New()
	s.On("CreateValuation", mock.Anything, mock.MatchedBy(func(v *store.Valuation) bool {
		return v.Profile.Category == "audit_system" && v.Profile.Technology == "access_vba" && v.Answers["sector"] == "public"
	})).Run(func(args mock.Arguments) {
		v := args.Get(1).(*store.Valuation)
		v.ID = id
		v.CreatedAt = time.Now().UTC()
		v.Category = v.Profile.Category
		v.Technology = v.Profile.Technology
	}).Return(nil)

	w := do(t, newTestRouter(t, s, h, nil, ""), "POST", "/api/v1/valuations", exampleBody(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["timestamp"])
	v := resp["valuation"].(map[string]interface{})
	assert.Equal(t, id.String(), v["id"])
	result := v["result"].(map[string]interface{})
	assert.LessOrEqual(t, result["value_min"].(float64), result["value_average"].(float64))
	assert.LessOrEqual(t, result["value_average"].(float64), result["value_max"].(float64))

	s.AssertExpectations(t)
	require.Len(t, h.msgs, 1)
	assert.Equal(t, "valuation."+id.String()+".created", h.msgs[0].subject)
	event := h.msgs[0].data.(hermes.ValuationCreatedEvent)
	assert.Equal(t, "access_vba", event.Technology)
}

func TestCreateValuationPublishFailureStillSucceeds(t *testing.T) {
	s := new(mockStore)
	s.On("CreateValuation", mock.Anything, mock.Anything).Return(nil)
	h := &mockHermes{err: errors.New("nats down")}

	w := do(t, newTestRouter(t, s, h, nil, ""), "POST", "/api/v1/valuations", exampleBody(t))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateValuationWithoutHermes(t *testing.T) {
	s := new(mockStore)
	s.On("CreateValuation", mock.Anything, mock.Anything).Return(nil)

	w := do(t, newTestRouter(t, s, nil, nil, ""), "POST", "/api/v1/valuations",
		[]byte(`{"category":"crm","technology":"php_laravel","concurrent_users":"25"}`))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateValuationRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `{"category":`, "invalid valuation request"},
		{"array root", `[1,2,3]`, "invalid valuation request"},
		{"tag wrong type", `{"category":"crm","technology":"php_basic","architecture":7}`, "invalid valuation request"},
		{"missing category", `{"technology":"php_basic"}`, intake.ErrMissingCategory.Error()},
		{"missing technology", `{"category":"crm"}`, intake.ErrMissingTechnology.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(mockStore)
			w := do(t, newTestRouter(t, s, nil, nil, ""), "POST", "/api/v1/valuations", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode(t, w)
			assert.Equal(t, false, resp["success"])
			assert.Contains(t, resp["error"], tt.want)
			s.AssertNotCalled(t, "CreateValuation", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateValuationOutOfRangeAnswersFallBackToDefaults(t *testing.T) {
	s := new(mockStore)
	s.On("CreateValuation", mock.Anything, mock.MatchedBy(func(v *store.Valuation) bool {
		return v.Profile.DevelopmentMonths == 0 && v.Profile.ConcurrentUsers == intake.DefaultConcurrentUsers
	})).Return(nil)

	w := do(t, newTestRouter(t, s, nil, nil, ""), "POST", "/api/v1/valuations",
		[]byte(`{"category":"management_app","technology":"php_laravel","development_months":1e308,"concurrent_users":1e30}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	result := decode(t, w)["valuation"].(map[string]interface{})["result"].(map[string]interface{})
	assert.Greater(t, result["value_average"].(float64), 0.0)
	s.AssertExpectations(t)
}

func TestCreateValuationStoreFailure(t *testing.T) {
	s := new(mockStore)
	s.On("CreateValuation", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	h := &mockHermes{}

	w := do(t, newTestRouter(t, s, h, nil, ""), "POST", "/api/v1/valuations", exampleBody(t))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, h.msgs)
}

func TestListValuations(t *testing.T) {
	s := new(mockStore)
	items := []*store.ValuationSummary{{ID: uuid.New(), Category: "crm", Technology: "python_django", ValueAverage: 1000}}
	s.On("ListValuations", mock.Anything, store.ValuationFilter{Category: "crm", Technology: "python_django", Limit: maxListLimit}).
		Return(items, nil)
	s.On("ListValuations", mock.Anything, store.ValuationFilter{}).Return(nil, nil)

	router := newTestRouter(t, s, nil, nil, "")

	w := do(t, router, "GET", "/api/v1/valuations?category=CRM&technology=Python%20Django&limit=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["count"])

	w = do(t, router, "GET", "/api/v1/valuations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(string(mustField(t, w, "valuations"))))

	w = do(t, router, "GET", "/api/v1/valuations?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.AssertExpectations(t)
}

func mustField(t *testing.T, w *httptest.ResponseRecorder, key string) json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out[key]
}

func TestGetValuation(t *testing.T) {
	v := storedValuation(t)
	missing := uuid.New()
	s := new(mockStore)
	s.On("GetValuation", mock.Anything, v.ID).Return(v, nil)
	s.On("GetValuation", mock.Anything, missing).Return(nil, nil)
	router := newTestRouter(t, s, nil, nil, "")

	w := do(t, router, "GET", "/api/v1/valuations/"+v.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, v.ID.String(), decode(t, w)["id"])

	w = do(t, router, "GET", "/api/v1/valuations/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, "GET", "/api/v1/valuations/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExplainValuation(t *testing.T) {
	v := storedValuation(t)
	s := new(mockStore)
	s.On("GetValuation", mock.Anything, v.ID).Return(v, nil)

	w := do(t, newTestRouter(t, s, nil, nil, ""), "GET", "/api/v1/valuations/"+v.ID.String()+"/explain", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, v.Result.Methodology, resp["methodology"])

	factors := resp["factors"].([]interface{})
	require.Len(t, factors, len(v.Result.Breakdown.Factors))
	first := factors[0].(map[string]interface{})
	assert.Equal(t, "quality", first["name"])
	assert.Contains(t, []interface{}{"premium", "penalty", "neutral"}, first["direction"])
	assert.NotEmpty(t, resp["effort_log"])
	assert.Contains(t, resp["compliance_items"], "sector_public")
}

func TestReports(t *testing.T) {
	v := storedValuation(t)
	missing := uuid.New()
	s := new(mockStore)
	s.On("GetValuation", mock.Anything, v.ID).Return(v, nil)
	s.On("GetValuation", mock.Anything, missing).Return(nil, nil)
	h := &mockHermes{}
	router := newTestRouter(t, s, h, stubRenderer{}, "")

	w := do(t, router, "GET", "/api/v1/valuations/"+v.ID.String()+"/report.md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "# Software Technical Valuation Report")

	w = do(t, router, "GET", "/api/v1/valuations/"+v.ID.String()+"/report.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="valuation_`+v.ID.String()[:8]+`.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	require.Len(t, h.msgs, 2)
	assert.Equal(t, hermes.SubjectReportRendered(v.ID.String()), h.msgs[1].subject)

	w = do(t, router, "GET", "/api/v1/valuations/"+missing.String()+"/report.pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPDFReportWithoutRenderer(t *testing.T) {
	s := new(mockStore)
	w := do(t, newTestRouter(t, s, nil, nil, ""), "GET", "/api/v1/valuations/"+uuid.NewString()+"/report.pdf", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTechnologiesAndExample(t *testing.T) {
	router := newTestRouter(t, new(mockStore), nil, nil, "")

	w := do(t, router, "GET", "/api/v1/technologies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(len(valuation.DefaultReference().Technologies)), resp["count"])
	first := resp["technologies"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "access_vba", first["tag"])
	assert.Equal(t, true, first["entry_level"])

	w = do(t, router, "GET", "/api/v1/examples/audit-system", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audit_system", decode(t, w)["category"])
}

func TestStatsRequiresAdminToken(t *testing.T) {
	s := new(mockStore)
	s.On("GetStats", mock.Anything).Return(&store.ValuationStats{
		Total: 3, AverageValue: 2_500_000, TopTechnology: "php_basic", ByCategory: map[string]int{"crm": 3},
	}, nil)
	router := newTestRouter(t, s, nil, nil, "secret")

	w := do(t, router, "GET", "/api/v1/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	assert.Equal(t, float64(3), resp["total"])
	assert.Equal(t, "php_basic", resp["top_technology"])
	assert.Equal(t, float64(len(valuation.DefaultReference().Technologies)), resp["technologies_supported"])
	assert.Equal(t, Version, resp["version"])
}

func TestMetricsRouter(t *testing.T) {
	router := NewMetricsRouter()

	w := do(t, router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "valuation_evaluation_seconds")
}
