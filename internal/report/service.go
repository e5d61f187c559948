package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Valuation/internal/store"
)

// ErrNotFound is returned when the valuation does not exist.
var ErrNotFound = errors.New("valuation not found")

// Format names a rendered report variant.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

// Renderer converts report markdown into a document.
type Renderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

// Service builds reports for stored valuations and caches the output.
type Service struct {
	store    store.Store
	renderer Renderer
	cache    Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires a report service. A nil cache disables caching and a nil
// renderer makes PDF requests fail with ErrRendererUnavailable.
func NewService(s store.Store, renderer Renderer, cache Cache, logger *slog.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, renderer: renderer, cache: cache, logger: logger, now: time.Now}
}

// Filename is the download name for a valuation's report.
func Filename(id uuid.UUID, f Format) string {
	return fmt.Sprintf("valuation_%s.%s", id.String()[:8], f)
}

// Markdown returns the markdown report. cached is true when served from cache.
func (s *Service) Markdown(ctx context.Context, id uuid.UUID) (doc []byte, cached bool, err error) {
	return s.render(ctx, id, FormatMarkdown, func(md string) ([]byte, error) {
		return []byte(md), nil
	})
}

// PDF returns the PDF report. cached is true when served from cache.
func (s *Service) PDF(ctx context.Context, id uuid.UUID) (doc []byte, cached bool, err error) {
	if s.renderer == nil {
		return nil, false, ErrRendererUnavailable
	}
	return s.render(ctx, id, FormatPDF, func(md string) ([]byte, error) {
		return s.renderer.Render(ctx, md)
	})
}

func (s *Service) render(ctx context.Context, id uuid.UUID, f Format, convert func(string) ([]byte, error)) ([]byte, bool, error) {
	key := cacheKey(id, f)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("report cache read failed", "key", key, "error", err)
	} else if ok {
		return data, true, nil
	}

	v, err := s.store.GetValuation(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("load valuation: %w", err)
	}
	if v == nil {
		return nil, false, ErrNotFound
	}

	data, err := convert(BuildMarkdown(v, s.now()))
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn("report cache write failed", "key", key, "error", err)
	}
	s.logger.Info("report rendered", "valuation_id", id, "format", f, "bytes", len(data))
	return data, false, nil
}

func cacheKey(id uuid.UUID, f Format) string {
	return "valuation:report:" + id.String() + ":" + string(f)
}
