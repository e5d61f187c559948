package valuation

// CalibrationFactor corrects the estimate for the respondent's stance, the
// way the system was actually built, and missing cost history.
func (e *Engine) CalibrationFactor(p Profile) FactorResult {
	pol := e.policy.Calibration
	c := newChain("calibration", 1.0)

	if f, ok := pol.Stance[p.Stance]; ok {
		c.mul(string(p.Stance)+" stance", f)
	}
	for _, f := range pol.Context {
		if p.HasContext(f.Name) {
			c.mul(f.Name, f.Amount)
		}
	}
	if p.Knows.DevelopmentTime == AnswerNo {
		c.mul("development time unknown", pol.UnknownTime)
	}
	if p.Knows.Investment == AnswerNo {
		c.mul("investment unknown", pol.UnknownInvestment)
	}

	c.floor(pol.Floor)
	return c.result("calibration")
}
