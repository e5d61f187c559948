package valuation

import (
	"errors"
	"fmt"
	"math"
)

// ErrComputation is returned when evaluation produces a non-finite or
// non-positive intermediate value.
var ErrComputation = errors.New("valuation computation failed")

// Breakdown carries every intermediate value behind a Result so a report can
// explain each factor without re-deriving it.
type Breakdown struct {
	Hours             float64      `json:"hours"`
	HourlyCost        float64      `json:"hourly_cost"`
	BaseValue         float64      `json:"base_value"`
	QualityFactor     float64      `json:"quality_factor"`
	ComplexityFactor  float64      `json:"complexity_factor"`
	BusinessFactor    float64      `json:"business_factor"`
	ComplianceFactor  float64      `json:"compliance_factor"`
	CalibrationFactor float64      `json:"calibration_factor"`
	UncertaintyMargin float64      `json:"uncertainty_margin"`
	EffortLog         []Adjustment `json:"effort_log"`
	ComplianceItems   []string     `json:"compliance_items"`
	// QualityWeights holds the rubric weight applied to each scored characteristic.
	QualityWeights map[string]float64 `json:"quality_weights,omitempty"`
	Factors        []FactorResult     `json:"factors"`
}

// Result is the output of one evaluation.
type Result struct {
	ValueMin     float64   `json:"value_min"`
	ValueAverage float64   `json:"value_average"`
	ValueMax     float64   `json:"value_max"`
	Confidence   float64   `json:"confidence"`
	Breakdown    Breakdown `json:"breakdown"`
	Methodology  string    `json:"methodology"`
}

// Engine evaluates profiles against fixed reference tables and policy. It
// holds no mutable state and is safe for concurrent use.
type Engine struct {
	ref    Reference
	policy Policy
}

// NewEngine validates the tables and returns an Engine.
func NewEngine(ref Reference, policy Policy) (*Engine, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reference: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return &Engine{ref: ref, policy: policy}, nil
}

// Policy returns the engine's rule set.
func (e *Engine) Policy() Policy { return e.policy }

// Reference returns the engine's reference tables.
func (e *Engine) Reference() Reference { return e.ref }

// Technologies lists the known technologies sorted by tag.
func (e *Engine) Technologies() []TechnologyInfo { return e.ref.technologyInfos() }

// Evaluate runs the full pipeline for one profile.
func (e *Engine) Evaluate(p Profile) (Result, error) {
	effort := e.EstimateEffort(p)
	rate := e.HourlyCost(p.Technology)
	quality := e.QualityFactor(p.Quality)
	complexity := e.ComplexityFactor(p)
	business := e.BusinessFactor(p)
	compliance, items := e.ComplianceFactor(p)
	calibration := e.CalibrationFactor(p)
	confidence := e.Confidence(p)
	margin := e.UncertaintyMargin(p)

	base := effort.Hours * rate
	average := base * quality.Value * complexity.Value * business.Value * compliance.Value * calibration.Value

	for name, v := range map[string]float64{
		"hours":       effort.Hours,
		"hourly cost": rate,
		"base value":  base,
		"average":     average,
	} {
		if !finitePositive(v) {
			return Result{}, fmt.Errorf("%w: %s is %v", ErrComputation, name, v)
		}
	}
	if math.IsNaN(confidence.Value) || math.IsNaN(margin.Value) {
		return Result{}, fmt.Errorf("%w: confidence or margin is NaN", ErrComputation)
	}

	m := margin.Value
	return Result{
		ValueMin:     math.Round(average * (1 - m)),
		ValueAverage: math.Round(average),
		ValueMax:     math.Round(average * (1 + m)),
		Confidence:   confidence.Value,
		Methodology:  e.policy.Methodology,
		Breakdown: Breakdown{
			Hours:             effort.Hours,
			HourlyCost:        rate,
			BaseValue:         base,
			QualityFactor:     quality.Value,
			ComplexityFactor:  complexity.Value,
			BusinessFactor:    business.Value,
			ComplianceFactor:  compliance.Value,
			CalibrationFactor: calibration.Value,
			UncertaintyMargin: m,
			EffortLog:         effort.Log,
			ComplianceItems:   items,
			QualityWeights:    e.qualityWeights(p.Quality),
			Factors:           []FactorResult{quality, complexity, business, compliance, calibration, confidence, margin},
		},
	}, nil
}
