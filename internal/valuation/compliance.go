package valuation

// ComplianceFactor applies regulatory bumps and returns the items that
// contributed. The base market multiplier always applies.
func (e *Engine) ComplianceFactor(p Profile) (FactorResult, []string) {
	pol := e.policy.Compliance
	c := newChain("compliance", 1.0)
	items := []string{}

	for _, f := range pol.Flags {
		if p.Compliance[f.Name] {
			c.mul(f.Name, f.Amount)
			items = append(items, f.Name)
		}
	}
	if f, ok := pol.Sector[p.Sector]; ok {
		c.mul(p.Sector+" sector regulation", f)
		items = append(items, "sector_"+p.Sector)
	}
	if t, ok := pol.Multi.Match(float64(len(items))); ok {
		c.mul(t.Label, t.Factor)
	}
	c.mul("Colombian market base", pol.MarketBase)

	c.ceil(pol.Ceiling)
	return c.result("compliance"), items
}
