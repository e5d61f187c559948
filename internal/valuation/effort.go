package valuation

import (
	"fmt"
	"math"
)

// Effort is the estimated development effort with the ordered log of every
// adjustment that fired.
type Effort struct {
	Hours float64      `json:"hours"`
	Log   []Adjustment `json:"log"`
}

// EstimateEffort computes development hours. Steps run in a fixed order, each
// operating on the running total of the previous one.
func (e *Engine) EstimateEffort(p Profile) Effort {
	pol := e.policy.Effort
	c := newChain("effort", 0)

	// 1. Category baseline.
	base, ok := pol.CategoryHours[p.Category]
	label := "category " + p.Category
	if !ok {
		base = pol.OtherCategoryHours
		label = fmt.Sprintf("category %q unknown, other baseline", p.Category)
	}
	c.value = base
	c.log = append(c.log, Adjustment{Step: "category", Label: label, Kind: KindBase, Amount: base, Running: base})

	// 2. Feature increments.
	c.step = "features"
	for _, f := range pol.FeatureHours {
		if p.HasFeature(f.Name) {
			c.add(f.Name, f.Amount)
		}
	}

	// 3. Technology.
	c.step = "technology"
	factor, techLabel := e.effortTechnologyFactor(p.Technology)
	c.mul(techLabel, factor)

	// 4. Concurrency.
	c.step = "concurrency"
	if t, ok := pol.Concurrency.Match(float64(p.ConcurrentUsers)); ok {
		c.mul(t.Label, t.Factor)
	}

	// 5. Data volume.
	c.step = "data_volume"
	if f, ok := e.policy.DataVolume[p.DataVolume]; ok {
		c.mul("data volume "+p.DataVolume, f)
	}

	// 6. Architecture.
	c.step = "architecture"
	if f, ok := e.policy.Architecture[p.Architecture]; ok {
		c.mul("architecture "+p.Architecture, f)
	}

	// 7. Blend with the reported development duration.
	if p.DevelopmentMonths > 0 {
		reported := p.DevelopmentMonths * pol.HoursPerMonth
		c.value = c.value*pol.ModelWeight + reported*(1-pol.ModelWeight)
		c.log = append(c.log, Adjustment{
			Step:    "duration",
			Label:   fmt.Sprintf("blended with %.1f reported months (%.0f h)", p.DevelopmentMonths, reported),
			Kind:    KindBlend,
			Amount:  reported,
			Running: c.value,
		})
	}

	// 8. Legacy maintenance, only while the system is still in use.
	c.step = "legacy"
	if p.InActiveUse {
		if t, ok := pol.Legacy.Match(p.AgeYears); ok {
			c.mul(t.Label, t.Factor)
		}
	}

	hours := math.Max(pol.MinHours, math.Round(c.value))
	return Effort{Hours: hours, Log: c.log}
}

func (e *Engine) effortTechnologyFactor(tag string) (float64, string) {
	tech, ok := e.ref.Technologies[tag]
	switch {
	case !ok:
		return 1.0, fmt.Sprintf("technology %q unknown", tag)
	case tech.EntryLevel:
		return e.policy.Effort.EntryLevelFactor, "entry-level desktop tooling " + tag
	default:
		return tech.Multiplier, "technology " + tag
	}
}

// HourlyCost resolves the blended hourly rate for a technology. Unknown tags
// use the default tier's rate with a multiplier of 1.0.
func (e *Engine) HourlyCost(tag string) float64 {
	tech, ok := e.ref.Technologies[tag]
	if !ok {
		return e.ref.TierRates[e.ref.DefaultTier]
	}
	rate, ok := e.ref.TierRates[tech.Tier]
	if !ok {
		rate = e.ref.TierRates[e.ref.DefaultTier]
	}
	return rate * tech.Multiplier
}
