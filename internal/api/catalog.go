package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Valuation/internal/intake"
	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

type CatalogHandler struct {
	engine *valuation.Engine
}

func NewCatalogHandler(e *valuation.Engine) *CatalogHandler {
	return &CatalogHandler{engine: e}
}

// Technologies lists the supported technology tags.
// GET /api/v1/technologies
func (h *CatalogHandler) Technologies(w http.ResponseWriter, r *http.Request) {
	techs := h.engine.Technologies()
	writeJSON(w, http.StatusOK, map[string]interface{}{"technologies": techs, "count": len(techs)})
}

// AuditSystemExample returns a complete sample questionnaire.
// GET /api/v1/examples/audit-system
func (h *CatalogHandler) AuditSystemExample(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, intake.ExampleAuditSystem())
}
