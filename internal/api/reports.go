package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Valuation/internal/hermes"
	"github.com/MikeSquared-Agency/Valuation/internal/report"
)

type ReportsHandler struct {
	reports *report.Service
	hermes  hermes.Client
	logger  *slog.Logger
}

func NewReportsHandler(reports *report.Service, h hermes.Client, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, hermes: h, logger: logger}
}

// Markdown serves the report as markdown.
// GET /api/v1/valuations/{id}/report.md
func (h *ReportsHandler) Markdown(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, report.FormatMarkdown, "text/markdown; charset=utf-8", "inline")
}

// PDF serves the report as a PDF download.
// GET /api/v1/valuations/{id}/report.pdf
func (h *ReportsHandler) PDF(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, report.FormatPDF, "application/pdf", "attachment")
}

func (h *ReportsHandler) serve(w http.ResponseWriter, r *http.Request, f report.Format, contentType, disposition string) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var (
		doc    []byte
		cached bool
		err    error
	)
	if f == report.FormatPDF {
		doc, cached, err = h.reports.PDF(r.Context(), id)
	} else {
		doc, cached, err = h.reports.Markdown(r.Context(), id)
	}
	switch {
	case errors.Is(err, report.ErrNotFound):
		writeError(w, http.StatusNotFound, "valuation not found")
		return
	case errors.Is(err, report.ErrRendererUnavailable):
		writeError(w, http.StatusServiceUnavailable, "pdf rendering is not available")
		return
	case err != nil:
		h.logger.Error("report generation failed", "valuation_id", id, "format", f, "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	cache := "miss"
	if cached {
		cache = "hit"
	} else if h.hermes != nil {
		event := hermes.ReportRenderedEvent{ID: id.String(), Format: string(f), Bytes: len(doc)}
		if err := h.hermes.Publish(hermes.SubjectReportRendered(id.String()), event); err != nil {
			h.logger.Warn("failed to publish report event", "valuation_id", id, "error", err)
		}
	}
	reportRenders.WithLabelValues(string(f), cache).Inc()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, report.Filename(id, f)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
