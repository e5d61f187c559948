package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Valuation/internal/store"
)

type ExplainHandler struct {
	store store.Store
}

func NewExplainHandler(s store.Store) *ExplainHandler {
	return &ExplainHandler{store: s}
}

// Explain returns the factor breakdown behind a stored valuation.
// GET /api/v1/valuations/{id}/explain
func (h *ExplainHandler) Explain(w http.ResponseWriter, r *http.Request) {
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

	bd := v.Result.Breakdown
	resp := map[string]interface{}{
		"valuation_id":       v.ID,
		"methodology":        v.Result.Methodology,
		"hours":              bd.Hours,
		"hourly_cost":        bd.HourlyCost,
		"base_value":         bd.BaseValue,
		"uncertainty_margin": bd.UncertaintyMargin,
		"value_min":          v.Result.ValueMin,
		"value_average":      v.Result.ValueAverage,
		"value_max":          v.Result.ValueMax,
		"confidence":         v.Result.Confidence,
	}

	if len(bd.Factors) > 0 {
		factors := make([]map[string]interface{}, 0, len(bd.Factors))
		for _, f := range bd.Factors {
			factors = append(factors, map[string]interface{}{
				"name":        f.Name,
				"value":       f.Value,
				"direction":   f.Direction(),
				"reason":      f.Reason,
				"adjustments": f.Adjustments,
			})
		}
		resp["factors"] = factors
	}
	if len(bd.EffortLog) > 0 {
		resp["effort_log"] = bd.EffortLog
	}
	if len(bd.ComplianceItems) > 0 {
		resp["compliance_items"] = bd.ComplianceItems
	}
	if len(v.Profile.Unanswered) > 0 {
		resp["unanswered"] = v.Profile.Unanswered
	}

	writeJSON(w, http.StatusOK, resp)
}
