package valuation

import (
	"fmt"
	"math"
)

// Tier is one bucket of a threshold table. A value falls in the tier when it
// exceeds Above (or equals it when AtLeast is set).
type Tier struct {
	Label   string  `json:"label" yaml:"label"`
	Above   float64 `json:"above" yaml:"above"`
	AtLeast bool    `json:"at_least,omitempty" yaml:"at_least"`
	Factor  float64 `json:"factor" yaml:"factor"`
}

func (t Tier) matches(v float64) bool {
	if t.AtLeast {
		return v >= t.Above
	}
	return v > t.Above
}

// Tiers is ordered from the highest threshold down. The first tier a value
// passes wins.
type Tiers []Tier

// Match returns the first tier the value passes, or false when the value is
// below every threshold.
func (ts Tiers) Match(v float64) (Tier, bool) {
	for _, t := range ts {
		if t.matches(v) {
			return t, true
		}
	}
	return Tier{}, false
}

// FactorOf returns the matched tier's factor, or 1.0 when no tier matches.
func (ts Tiers) FactorOf(v float64) float64 {
	if t, ok := ts.Match(v); ok {
		return t.Factor
	}
	return 1.0
}

// Named pairs a flag with its numeric effect. Slices of Named keep the order
// in which adjustments are applied and reported.
type Named struct {
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// EffortPolicy holds the tables behind the effort estimate.
type EffortPolicy struct {
	CategoryHours      map[string]float64 `json:"category_hours"`
	OtherCategoryHours float64            `json:"other_category_hours"`
	FeatureHours       []Named            `json:"feature_hours"`
	EntryLevelFactor   float64            `json:"entry_level_factor"`
	Concurrency        Tiers              `json:"concurrency"`
	HoursPerMonth      float64            `json:"hours_per_month"`
	ModelWeight        float64            `json:"model_weight"`
	Legacy             Tiers              `json:"legacy"`
	MinHours           float64            `json:"min_hours"`
}

// QualityPolicy maps 1-5 scores onto factors.
type QualityPolicy struct {
	Low               float64 `json:"low"`
	Step              float64 `json:"step"`
	SecurityPenaltyAt int     `json:"security_penalty_at"`
	SecurityPenalty   float64 `json:"security_penalty"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
}

// ComplexityPolicy holds the technical complexity tiers.
type ComplexityPolicy struct {
	Database     map[string]float64 `json:"database"`
	Concurrency  Tiers              `json:"concurrency"`
	Integrations Tiers              `json:"integrations"`
	Features     []Named            `json:"features"`
	Ceiling      float64            `json:"ceiling"`
}

// BusinessPolicy holds the business value tables.
type BusinessPolicy struct {
	Criticality        map[int]float64    `json:"criticality"`
	Savings            Tiers              `json:"savings"`
	Users              Tiers              `json:"users"`
	ROI                Tiers              `json:"roi"`
	Sector             map[string]float64 `json:"sector"`
	FastMonths         float64            `json:"fast_months"`
	FastValueThreshold float64            `json:"fast_value_threshold"`
	FastBonus          float64            `json:"fast_bonus"`
	SlowMonths         float64            `json:"slow_months"`
	SlowPenalty        float64            `json:"slow_penalty"`
	Ceiling            float64            `json:"ceiling"`
}

// CompliancePolicy holds regulatory bumps.
type CompliancePolicy struct {
	Flags      []Named            `json:"flags"`
	Sector     map[string]float64 `json:"sector"`
	Multi      Tiers              `json:"multi"`
	MarketBase float64            `json:"market_base"`
	Ceiling    float64            `json:"ceiling"`
}

// CalibrationPolicy corrects the model for respondent stance and how the
// system was actually built.
type CalibrationPolicy struct {
	Stance            map[Stance]float64 `json:"stance"`
	Context           []Named            `json:"context"`
	UnknownTime       float64            `json:"unknown_time"`
	UnknownInvestment float64            `json:"unknown_investment"`
	Floor             float64            `json:"floor"`
}

// ConfidencePolicy drives the confidence score.
type ConfidencePolicy struct {
	CriticalFields      []string              `json:"critical_fields"`
	Certainty           map[Certainty]float64 `json:"certainty"`
	UnknownTime         float64               `json:"unknown_time"`
	TimeFromDates       float64               `json:"time_from_dates"`
	UnknownInvestment   float64               `json:"unknown_investment"`
	EstimatedInvestment float64               `json:"estimated_investment"`
	UnknownSavings      float64               `json:"unknown_savings"`
	EstimatedSavings    float64               `json:"estimated_savings"`
	Context             []Named               `json:"context"`
	Stance              map[Stance]float64    `json:"stance"`
	QualityBonusMax     float64               `json:"quality_bonus_max"`
}

// UncertaintyPolicy drives the width of the value band.
type UncertaintyPolicy struct {
	Base              float64 `json:"base"`
	UnknownTime       float64 `json:"unknown_time"`
	UnknownInvestment float64 `json:"unknown_investment"`
	LowCertainty      float64 `json:"low_certainty"`
	HighCertainty     float64 `json:"high_certainty"`
	Predictable       float64 `json:"predictable"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
}

// Policy is the complete, inspectable rule set of the engine. Shared tables
// (architecture, data volume) feed both effort and complexity.
type Policy struct {
	Architecture map[string]float64 `json:"architecture"`
	DataVolume   map[string]float64 `json:"data_volume"`

	Effort      EffortPolicy      `json:"effort"`
	Quality     QualityPolicy     `json:"quality"`
	Complexity  ComplexityPolicy  `json:"complexity"`
	Business    BusinessPolicy    `json:"business"`
	Compliance  CompliancePolicy  `json:"compliance"`
	Calibration CalibrationPolicy `json:"calibration"`
	Confidence  ConfidencePolicy  `json:"confidence"`
	Uncertainty UncertaintyPolicy `json:"uncertainty"`

	Methodology string `json:"methodology"`
}

// DefaultPolicy returns the calibrated rule set.
func DefaultPolicy() Policy {
	return Policy{
		Architecture: map[string]float64{
			"monolithic":    1.0,
			"layered":       1.15,
			"client_server": 1.20,
			"multitier_web": 1.30,
			"soa":           1.45,
			"microservices": 1.70,
		},
		DataVolume: map[string]float64{
			"small":      1.0,
			"medium":     1.12,
			"large":      1.25,
			"very_large": 1.40,
		},
		Effort: EffortPolicy{
			CategoryHours: map[string]float64{
				"audit_system":        140,
				"management_app":      100,
				"reporting_system":    80,
				"basic_erp":           160,
				"crm":                 120,
				"inventory_app":       90,
				"document_management": 110,
				"accounting_system":   130,
				"other":               100,
			},
			OtherCategoryHours: 100,
			FeatureHours: []Named{
				{FeatureAdvancedAuth, 35},
				{FeatureComplexReports, 45},
				{FeatureExternalIntegration, 60},
				{FeatureApprovalWorkflows, 70},
				{FeatureExecutiveDashboard, 40},
				{FeatureRESTAPI, 55},
				{FeatureNotifications, 25},
				{FeatureAutomaticBackup, 20},
				{FeatureAuditLogging, 30},
			},
			EntryLevelFactor: 0.85,
			Concurrency: Tiers{
				{Label: "more than 20 concurrent users", Above: 20, Factor: 1.15},
				{Label: "more than 5 concurrent users", Above: 5, Factor: 1.08},
			},
			HoursPerMonth: 160,
			ModelWeight:   0.7,
			Legacy: Tiers{
				{Label: "legacy system older than 15 years", Above: 15, Factor: 1.25},
				{Label: "legacy system older than 8 years", Above: 8, Factor: 1.15},
			},
			MinHours: 1,
		},
		Quality: QualityPolicy{
			Low:               0.3,
			Step:              0.25,
			SecurityPenaltyAt: 2,
			SecurityPenalty:   0.8,
			Min:               0.3,
			Max:               1.5,
		},
		Complexity: ComplexityPolicy{
			Database: map[string]float64{
				"local":              1.0,
				"sql_server_express": 1.15,
				"mysql":              1.20,
				"postgresql":         1.25,
				"sql_server":         1.35,
				"oracle":             1.50,
				"nosql":              1.30,
			},
			Concurrency: Tiers{
				{Label: "200+ concurrent users", Above: 200, AtLeast: true, Factor: 1.5},
				{Label: "50+ concurrent users", Above: 50, AtLeast: true, Factor: 1.35},
				{Label: "20+ concurrent users", Above: 20, AtLeast: true, Factor: 1.2},
				{Label: "10+ concurrent users", Above: 10, AtLeast: true, Factor: 1.1},
				{Label: "more than 5 concurrent users", Above: 5, Factor: 1.05},
			},
			Integrations: Tiers{
				{Label: "more than 10 integrations", Above: 10, Factor: 1.6},
				{Label: "more than 5 integrations", Above: 5, Factor: 1.4},
				{Label: "more than 2 integrations", Above: 2, Factor: 1.25},
				{Label: "at least one integration", Above: 0, Factor: 1.15},
			},
			Features: []Named{
				{FeatureRESTAPI, 1.12},
				{FeatureApprovalWorkflows, 1.08},
				{FeatureNotifications, 1.05},
				{FeatureExecutiveDashboard, 1.06},
			},
			Ceiling: 2.8,
		},
		Business: BusinessPolicy{
			Criticality: map[int]float64{1: 0.75, 2: 0.90, 3: 1.0, 4: 1.25, 5: 1.5},
			Savings: Tiers{
				{Label: "savings above 50M", Above: 50_000_000, Factor: 1.4},
				{Label: "savings above 20M", Above: 20_000_000, Factor: 1.3},
				{Label: "savings above 10M", Above: 10_000_000, Factor: 1.2},
				{Label: "savings above 5M", Above: 5_000_000, Factor: 1.15},
				{Label: "savings above 1M", Above: 1_000_000, Factor: 1.08},
			},
			Users: Tiers{
				{Label: "more than 500 users", Above: 500, Factor: 1.25},
				{Label: "more than 100 users", Above: 100, Factor: 1.15},
				{Label: "more than 50 users", Above: 50, Factor: 1.08},
				{Label: "more than 20 users", Above: 20, Factor: 1.04},
			},
			ROI: Tiers{
				{Label: "ROI above 200%", Above: 2, Factor: 1.3},
				{Label: "ROI above 100%", Above: 1, Factor: 1.2},
				{Label: "ROI above 50%", Above: 0.5, Factor: 1.1},
			},
			Sector: map[string]float64{
				"public":    1.12,
				"financial": 1.18,
				"health":    1.15,
			},
			FastMonths:         3,
			FastValueThreshold: 1.2,
			FastBonus:          1.05,
			SlowMonths:         24,
			SlowPenalty:        0.95,
			Ceiling:            3.5,
		},
		Compliance: CompliancePolicy{
			Flags: []Named{
				{ComplianceOfficialReports, 1.18},
				{ComplianceAuditTrail, 1.12},
				{ComplianceGovCoInteroperability, 1.10},
				{CompliancePersonalData, 1.08},
				{ComplianceDecree648, 1.15},
				{ComplianceISO27001, 1.12},
				{ComplianceSARLAFT, 1.20},
				{ComplianceComptrollerReports, 1.10},
			},
			Sector: map[string]float64{
				"public":    1.15,
				"financial": 1.25,
			},
			Multi: Tiers{
				{Label: "5+ concurrent regulatory requirements", Above: 5, AtLeast: true, Factor: 1.08},
				{Label: "3+ concurrent regulatory requirements", Above: 3, AtLeast: true, Factor: 1.05},
			},
			MarketBase: 1.05,
			Ceiling:    2.2,
		},
		Calibration: CalibrationPolicy{
			Stance: map[Stance]float64{
				StanceConservative: 0.85,
				StanceBalanced:     1.0,
				StanceOptimistic:   1.15,
			},
			Context: []Named{
				{ContextInHouse, 0.9},
				{ContextPartTime, 0.85},
				{ContextLearningCurve, 1.2},
				{ContextNoMethodology, 0.8},
				{ContextRushed, 1.1},
				{ContextIterativePrototype, 0.95},
			},
			UnknownTime:       0.9,
			UnknownInvestment: 0.9,
			Floor:             0.4,
		},
		Confidence: ConfidencePolicy{
			CriticalFields: []string{
				FieldCategory, FieldTechnology, FieldAgeYears, FieldConcurrentUsers, FieldCriticality,
			},
			Certainty: map[Certainty]float64{
				CertaintyLow:    0.8,
				CertaintyMedium: 1.0,
				CertaintyHigh:   1.1,
			},
			UnknownTime:         0.9,
			TimeFromDates:       0.95,
			UnknownInvestment:   0.85,
			EstimatedInvestment: 0.9,
			UnknownSavings:      0.9,
			EstimatedSavings:    0.95,
			Context: []Named{
				{ContextInHouse, 1.05},
				{ContextNoMethodology, 0.85},
				{ContextRushed, 0.9},
				{ContextPartTime, 0.95},
			},
			Stance: map[Stance]float64{
				StanceConservative: 1.05,
				StanceBalanced:     1.0,
				StanceOptimistic:   0.9,
			},
			QualityBonusMax: 0.2,
		},
		Uncertainty: UncertaintyPolicy{
			Base:              0.20,
			UnknownTime:       0.10,
			UnknownInvestment: 0.08,
			LowCertainty:      0.12,
			HighCertainty:     0.05,
			Predictable:       0.8,
			Min:               0.10,
			Max:               0.45,
		},
		Methodology: "ISO 25010:2023 + COCOMO adapted + Colombia market 2025",
	}
}

// Validate rejects policies that would produce non-positive values.
func (p Policy) Validate() error {
	if p.Effort.OtherCategoryHours <= 0 {
		return fmt.Errorf("effort: other category hours must be positive")
	}
	for cat, h := range p.Effort.CategoryHours {
		if h <= 0 {
			return fmt.Errorf("effort: category %q hours must be positive", cat)
		}
	}
	if p.Effort.MinHours < 1 {
		return fmt.Errorf("effort: min hours must be at least 1")
	}
	if p.Effort.ModelWeight < 0 || p.Effort.ModelWeight > 1 {
		return fmt.Errorf("effort: model weight %.2f outside [0,1]", p.Effort.ModelWeight)
	}
	if p.Effort.EntryLevelFactor <= 0 {
		return fmt.Errorf("effort: entry level factor must be positive")
	}
	if p.Quality.Min <= 0 || p.Quality.Min > p.Quality.Max {
		return fmt.Errorf("quality: invalid clamp [%.2f, %.2f]", p.Quality.Min, p.Quality.Max)
	}
	if p.Uncertainty.Min < 0 || p.Uncertainty.Max >= 1 || p.Uncertainty.Min > p.Uncertainty.Max {
		return fmt.Errorf("uncertainty: invalid clamp [%.2f, %.2f]", p.Uncertainty.Min, p.Uncertainty.Max)
	}
	for name, v := range map[string]float64{
		"complexity ceiling": p.Complexity.Ceiling,
		"business ceiling":   p.Business.Ceiling,
		"compliance ceiling": p.Compliance.Ceiling,
		"compliance base":    p.Compliance.MarketBase,
		"calibration floor":  p.Calibration.Floor,
		"hours per month":    p.Effort.HoursPerMonth,
	} {
		if v <= 0 || math.IsNaN(v) {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
