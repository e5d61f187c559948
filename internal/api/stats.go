package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Valuation/internal/store"
	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

type StatsHandler struct {
	store  store.Store
	engine *valuation.Engine
}

func NewStatsHandler(s store.Store, e *valuation.Engine) *StatsHandler {
	return &StatsHandler{store: s, engine: e}
}

type StatsResponse struct {
	*store.ValuationStats
	TechnologiesSupported int    `json:"technologies_supported"`
	Methodology           string `json:"methodology"`
	Version               string `json:"version"`
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		ValuationStats:        stats,
		TechnologiesSupported: len(h.engine.Technologies()),
		Methodology:           h.engine.Policy().Methodology,
		Version:               Version,
	})
}
