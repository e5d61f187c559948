package valuation

// ComplexityFactor multiplies the architecture, data volume, database,
// concurrency, integration, and advanced feature tiers, capped at the policy
// ceiling.
func (e *Engine) ComplexityFactor(p Profile) FactorResult {
	pol := e.policy.Complexity
	c := newChain("complexity", 1.0)

	if f, ok := e.policy.Architecture[p.Architecture]; ok {
		c.mul("architecture "+p.Architecture, f)
	}
	if f, ok := e.policy.DataVolume[p.DataVolume]; ok {
		c.mul("data volume "+p.DataVolume, f)
	}
	if f, ok := pol.Database[p.Database]; ok {
		c.mul("database "+p.Database, f)
	}
	if t, ok := pol.Concurrency.Match(float64(p.ConcurrentUsers)); ok {
		c.mul(t.Label, t.Factor)
	}
	if t, ok := pol.Integrations.Match(float64(p.Integrations)); ok {
		c.mul(t.Label, t.Factor)
	}
	for _, f := range pol.Features {
		if p.HasFeature(f.Name) {
			c.mul(f.Name, f.Amount)
		}
	}

	c.ceil(pol.Ceiling)
	return c.result("complexity")
}
