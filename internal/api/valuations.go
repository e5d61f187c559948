package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Valuation/internal/hermes"
	"github.com/MikeSquared-Agency/Valuation/internal/intake"
	"github.com/MikeSquared-Agency/Valuation/internal/store"
	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

const (
	maxRequestBytes = 1 << 20
	maxListLimit    = 200
)

type ValuationsHandler struct {
	engine *valuation.Engine
	store  store.Store
	hermes hermes.Client
	logger *slog.Logger
}

func NewValuationsHandler(e *valuation.Engine, s store.Store, h hermes.Client, logger *slog.Logger) *ValuationsHandler {
	return &ValuationsHandler{engine: e, store: s, hermes: h, logger: logger}
}

type CreateValuationResponse struct {
	Success   bool             `json:"success"`
	Valuation *store.Valuation `json:"valuation"`
	Timestamp time.Time        `json:"timestamp"`
}

// Create evaluates a questionnaire and persists the result.
// POST /api/v1/valuations
func (h *ValuationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		valuationRequests.WithLabelValues(outcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := intake.ValidateDocument(body); err != nil {
		valuationRequests.WithLabelValues(outcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var answers map[string]any
	if err := dec.Decode(&answers); err != nil {
		valuationRequests.WithLabelValues(outcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := intake.Parse(answers)
	if err != nil {
		valuationRequests.WithLabelValues(outcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	result, err := h.engine.Evaluate(profile)
	evaluationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		valuationRequests.WithLabelValues(outcomeComputation).Inc()
		h.logger.Error("valuation computation failed", "category", profile.Category, "technology", profile.Technology, "error", err)
		status := http.StatusInternalServerError
		if !errors.Is(err, valuation.ErrComputation) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	v := &store.Valuation{Profile: profile, Answers: answers, Result: result}
	if err := h.store.CreateValuation(r.Context(), v); err != nil {
		valuationRequests.WithLabelValues(outcomeStore).Inc()
		h.logger.Error("failed to persist valuation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to persist valuation")
		return
	}
	valuationRequests.WithLabelValues(outcomeCreated).Inc()
	valuationValue.Observe(result.ValueAverage)

	h.logger.Info("valuation created",
		"valuation_id", v.ID,
		"category", v.Category,
		"technology", v.Technology,
		"value_average", result.ValueAverage,
		"confidence", result.Confidence,
	)
	h.publishCreated(v)

	writeJSON(w, http.StatusCreated, CreateValuationResponse{Success: true, Valuation: v, Timestamp: time.Now().UTC()})
}

func (h *ValuationsHandler) publishCreated(v *store.Valuation) {
	if h.hermes == nil {
		return
	}
	id := v.ID.String()
	err := h.hermes.Publish(hermes.SubjectValuationCreated(id), hermes.ValuationCreatedEvent{
		ID:           id,
		Category:     v.Category,
		Technology:   v.Technology,
		ValueMin:     v.Result.ValueMin,
		ValueAverage: v.Result.ValueAverage,
		ValueMax:     v.Result.ValueMax,
		Confidence:   v.Result.Confidence,
		CreatedAt:    v.CreatedAt,
	})
	if err != nil {
		h.logger.Warn("failed to publish valuation event", "valuation_id", id, "error", err)
	}
}

// List returns recent valuations, newest first.
// GET /api/v1/valuations?category=&technology=&limit=
func (h *ValuationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ValuationFilter{
		Category:   normalizeTag(q.Get("category")),
		Technology: normalizeTag(q.Get("technology")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = min(n, maxListLimit)
	}

	items, err := h.store.ListValuations(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []*store.ValuationSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"valuations": items, "count": len(items)})
}

// Get returns one stored valuation.
// GET /api/v1/valuations/{id}
func (h *ValuationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := h.store.GetValuation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "valuation not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
