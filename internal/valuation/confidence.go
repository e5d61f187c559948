package valuation

import (
	"fmt"
	"math"
)

// Confidence scores how much the estimate can be trusted, in [0, 1]. It
// starts from the share of critical fields answered and is adjusted by
// self-reported certainty, "don't know" answers, development context, stance,
// and the amount of quality data supplied.
func (e *Engine) Confidence(p Profile) FactorResult {
	pol := e.policy.Confidence

	answered := 0
	for _, field := range pol.CriticalFields {
		if p.answered(field) {
			answered++
		}
	}
	completeness := 1.0
	if n := len(pol.CriticalFields); n > 0 {
		completeness = float64(answered) / float64(n)
	}

	c := newChain("confidence", completeness)
	c.log = append(c.log, Adjustment{
		Step:    "confidence",
		Label:   fmt.Sprintf("%d of %d critical fields answered", answered, len(pol.CriticalFields)),
		Kind:    KindBase,
		Amount:  completeness,
		Running: completeness,
	})

	if f, ok := pol.Certainty[p.Certainty]; ok {
		c.mul(string(p.Certainty)+" certainty", f)
	}

	switch p.Knows.DevelopmentTime {
	case AnswerNo:
		c.mul("development time unknown", pol.UnknownTime)
	case AnswerYes:
		if p.Knows.TimeFromDates {
			c.mul("development time derived from dates", pol.TimeFromDates)
		}
	}
	switch p.Knows.Investment {
	case AnswerNo:
		c.mul("investment unknown", pol.UnknownInvestment)
	case AnswerYes:
		if p.Knows.InvestmentEstimated {
			c.mul("investment estimated", pol.EstimatedInvestment)
		}
	}
	switch p.Knows.Savings {
	case AnswerNo:
		c.mul("savings unknown", pol.UnknownSavings)
	case AnswerYes:
		if p.Knows.SavingsEstimated {
			c.mul("savings estimated", pol.EstimatedSavings)
		}
	}

	for _, f := range pol.Context {
		if p.HasContext(f.Name) {
			c.mul(f.Name, f.Amount)
		}
	}
	if f, ok := pol.Stance[p.Stance]; ok {
		c.mul(string(p.Stance)+" stance", f)
	}

	if rubric := len(e.ref.QualityRubric); rubric > 0 {
		n := 0
		for name := range p.Quality {
			if _, ok := e.ref.QualityRubric[name]; ok {
				n++
			}
		}
		if n > 0 {
			bonus := math.Min(pol.QualityBonusMax, float64(n)/float64(rubric)*pol.QualityBonusMax)
			c.add(fmt.Sprintf("%d quality characteristics scored", n), bonus)
		}
	}

	c.clamp(0, 1)
	return c.result("confidence")
}

// UncertaintyMargin returns the half-width of the value band as a fraction of
// the point estimate.
func (e *Engine) UncertaintyMargin(p Profile) FactorResult {
	pol := e.policy.Uncertainty
	c := newChain("uncertainty", pol.Base)
	c.log = append(c.log, Adjustment{Step: "uncertainty", Label: "base margin", Kind: KindBase, Amount: pol.Base, Running: pol.Base})

	if p.Knows.DevelopmentTime == AnswerNo {
		c.add("development time unknown", pol.UnknownTime)
	}
	if p.Knows.Investment == AnswerNo {
		c.add("investment unknown", pol.UnknownInvestment)
	}
	switch p.Certainty {
	case CertaintyLow:
		c.add("low certainty", pol.LowCertainty)
	case CertaintyHigh:
		c.add("high certainty", -pol.HighCertainty)
	}
	if tech, ok := e.ref.Technologies[p.Technology]; ok && tech.Predictable {
		c.mul("predictable technology "+p.Technology, pol.Predictable)
	}

	c.clamp(pol.Min, pol.Max)
	return c.result("uncertainty")
}
