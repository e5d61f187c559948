package valuation

import (
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Cost tiers map to a base hourly rate in COP.
const (
	TierVeryLow  = "very_low"
	TierLow      = "low"
	TierMedium   = "medium"
	TierHigh     = "high"
	TierVeryHigh = "very_high"
)

// TechnologyProfile describes how a technology prices and behaves.
type TechnologyProfile struct {
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	Tier       string  `yaml:"tier" json:"tier"`
	// EntryLevel marks desktop tooling that is quick to build in but does not
	// scale; effort uses the policy's entry-level factor instead of Multiplier.
	EntryLevel bool `yaml:"entry_level" json:"entry_level"`
	// Predictable marks simple stacks whose estimates carry less uncertainty.
	Predictable bool `yaml:"predictable" json:"predictable"`
}

// Reference holds the static lookup tables the engine reads. It is supplied
// at construction and never changes afterwards.
type Reference struct {
	Technologies  map[string]TechnologyProfile `yaml:"technologies"`
	TierRates     map[string]float64           `yaml:"tier_rates"`
	DefaultTier   string                       `yaml:"default_tier"`
	QualityRubric map[string]float64           `yaml:"quality_rubric"`
}

// TechnologyInfo is the read-only view of one technology for listings.
type TechnologyInfo struct {
	Tag        string  `json:"tag"`
	Multiplier float64 `json:"multiplier"`
	Tier       string  `json:"tier"`
	HourlyRate float64 `json:"hourly_rate"`
	EntryLevel bool    `json:"entry_level"`
}

// DefaultReference returns the Colombian market tables (2024-2025 rates).
func DefaultReference() Reference {
	return Reference{
		Technologies: map[string]TechnologyProfile{
			// Legacy / desktop
			"access_vba": {Multiplier: 0.7, Tier: TierLow, EntryLevel: true, Predictable: true},
			"vb_net":     {Multiplier: 0.8, Tier: TierLow},
			"excel_vba":  {Multiplier: 0.6, Tier: TierVeryLow, Predictable: true},

			// Traditional web
			"php_basic":        {Multiplier: 1.0, Tier: TierMedium},
			"asp_net_webforms": {Multiplier: 1.1, Tier: TierMedium},
			"jsp_servlet":      {Multiplier: 1.2, Tier: TierMedium},

			// Modern
			"php_laravel":        {Multiplier: 1.1, Tier: TierMedium},
			"javascript_react":   {Multiplier: 1.2, Tier: TierHigh},
			"javascript_angular": {Multiplier: 1.3, Tier: TierHigh},
			"python_django":      {Multiplier: 1.2, Tier: TierHigh},
			"python_flask":       {Multiplier: 1.1, Tier: TierMedium},
			"asp_net_core":       {Multiplier: 1.3, Tier: TierHigh},
			"java_spring":        {Multiplier: 1.4, Tier: TierHigh},

			// Enterprise
			"microservices":            {Multiplier: 1.8, Tier: TierVeryHigh},
			"distributed_architecture": {Multiplier: 1.9, Tier: TierVeryHigh},
			"cloud_native":             {Multiplier: 1.6, Tier: TierVeryHigh},
		},
		TierRates: map[string]float64{
			TierVeryLow:  20000,
			TierLow:      30000,
			TierMedium:   45000,
			TierHigh:     65000,
			TierVeryHigh: 90000,
		},
		DefaultTier: TierMedium,
		QualityRubric: map[string]float64{
			QualitySecurity:              0.20,
			QualityFunctionalSuitability: 0.18,
			QualityReliability:           0.15,
			QualityMaintainability:       0.12,
			QualityPerformanceEfficiency: 0.10,
			QualityUsability:             0.10,
			QualityCompatibility:         0.08,
			QualityPortability:           0.04,
			QualityFlexibility:           0.03,
		},
	}
}

// LoadReference reads reference tables from a YAML file. Sections missing
// from the file keep their default values.
func LoadReference(path string) (Reference, error) {
	ref := DefaultReference()
	data, err := os.ReadFile(path)
	if err != nil {
		return Reference{}, fmt.Errorf("read reference: %w", err)
	}
	var override Reference
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Reference{}, fmt.Errorf("parse reference: %w", err)
	}
	if len(override.Technologies) > 0 {
		ref.Technologies = override.Technologies
	}
	if len(override.TierRates) > 0 {
		ref.TierRates = override.TierRates
	}
	if override.DefaultTier != "" {
		ref.DefaultTier = override.DefaultTier
	}
	if len(override.QualityRubric) > 0 {
		ref.QualityRubric = override.QualityRubric
	}
	return ref, ref.Validate()
}

// Validate checks that every technology resolves to a priced tier.
func (r Reference) Validate() error {
	if _, ok := r.TierRates[r.DefaultTier]; !ok {
		return fmt.Errorf("default tier %q has no rate", r.DefaultTier)
	}
	for tier, rate := range r.TierRates {
		if rate <= 0 {
			return fmt.Errorf("tier %q: rate must be positive, got %f", tier, rate)
		}
	}
	for tag, tech := range r.Technologies {
		if tech.Multiplier <= 0 {
			return fmt.Errorf("technology %q: multiplier must be positive", tag)
		}
		if _, ok := r.TierRates[tech.Tier]; !ok {
			return fmt.Errorf("technology %q: unknown tier %q", tag, tech.Tier)
		}
	}
	for name, w := range r.QualityRubric {
		if w <= 0 {
			return fmt.Errorf("quality characteristic %q: weight must be positive", name)
		}
	}
	return nil
}

func (r Reference) technologyInfos() []TechnologyInfo {
	tags := lo.Keys(r.Technologies)
	sort.Strings(tags)
	return lo.Map(tags, func(tag string, _ int) TechnologyInfo {
		t := r.Technologies[tag]
		return TechnologyInfo{
			Tag:        tag,
			Multiplier: t.Multiplier,
			Tier:       t.Tier,
			HourlyRate: r.TierRates[t.Tier] * t.Multiplier,
			EntryLevel: t.EntryLevel,
		}
	})
}
