package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

// DefaultListLimit caps history queries that do not set a limit.
const DefaultListLimit = 50

// Valuation is one persisted evaluation. Records are append-only.
type Valuation struct {
	ID         uuid.UUID         `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Category   string            `json:"category"`
	Technology string            `json:"technology"`
	Profile    valuation.Profile `json:"profile"`
	Answers    map[string]any    `json:"answers,omitempty"`
	Result     valuation.Result  `json:"result"`
}

// Summary projects a Valuation for history listings.
func (v *Valuation) Summary() *ValuationSummary {
	return &ValuationSummary{
		ID:           v.ID,
		CreatedAt:    v.CreatedAt,
		Category:     v.Category,
		Technology:   v.Technology,
		ValueMin:     v.Result.ValueMin,
		ValueAverage: v.Result.ValueAverage,
		ValueMax:     v.Result.ValueMax,
		Confidence:   v.Result.Confidence,
	}
}

type ValuationSummary struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Category     string    `json:"category"`
	Technology   string    `json:"technology"`
	ValueMin     float64   `json:"value_min"`
	ValueAverage float64   `json:"value_average"`
	ValueMax     float64   `json:"value_max"`
	Confidence   float64   `json:"confidence"`
}

type ValuationFilter struct {
	Category   string
	Technology string
	Limit      int
}

func (f ValuationFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

type ValuationStats struct {
	Total         int            `json:"total"`
	AverageValue  float64        `json:"average_value"`
	TopTechnology string         `json:"top_technology"`
	ByCategory    map[string]int `json:"by_category"`
}

// NoTechnology is reported as the most frequent technology of an empty store.
const NoTechnology = "N/A"

// Store is the persistence port. Implementations assign the identifier and
// creation time; there are no update or delete operations.
type Store interface {
	CreateValuation(ctx context.Context, v *Valuation) error
	GetValuation(ctx context.Context, id uuid.UUID) (*Valuation, error)
	ListValuations(ctx context.Context, filter ValuationFilter) ([]*ValuationSummary, error)
	GetStats(ctx context.Context) (*ValuationStats, error)

	Migrate(ctx context.Context) error
	Close() error
}

func stamp(v *Valuation) {
	v.ID = uuid.New()
	v.CreatedAt = time.Now().UTC()
	v.Category = v.Profile.Category
	v.Technology = v.Profile.Technology
}
