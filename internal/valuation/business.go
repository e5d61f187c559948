package valuation

import "fmt"

// BusinessFactor combines criticality, savings, user reach, ROI, sector, and
// the delivery speed interaction, capped at the policy ceiling.
func (e *Engine) BusinessFactor(p Profile) FactorResult {
	pol := e.policy.Business
	c := newChain("business", 1.0)

	crit, ok := pol.Criticality[p.Criticality]
	if !ok {
		crit = pol.Criticality[3]
	}
	if crit > 0 {
		c.mul(fmt.Sprintf("criticality %d/5", p.Criticality), crit)
	}
	if t, ok := pol.Savings.Match(p.AnnualSavings); ok {
		c.mul(t.Label, t.Factor)
	}
	if t, ok := pol.Users.Match(float64(p.TotalUsers)); ok {
		c.mul(t.Label, t.Factor)
	}
	if p.AnnualSavings > 0 && p.OriginalInvestment > 0 {
		if t, ok := pol.ROI.Match(p.AnnualSavings / p.OriginalInvestment); ok {
			c.mul(t.Label, t.Factor)
		}
	}
	if f, ok := pol.Sector[p.Sector]; ok {
		c.mul(p.Sector+" sector", f)
	}

	if p.DevelopmentMonths > 0 {
		switch {
		case p.DevelopmentMonths < pol.FastMonths && c.value > pol.FastValueThreshold:
			c.mul("fast delivery of high value", pol.FastBonus)
		case p.DevelopmentMonths > pol.SlowMonths:
			c.mul("slow delivery", pol.SlowPenalty)
		}
	}

	c.ceil(pol.Ceiling)
	return c.result("business")
}
