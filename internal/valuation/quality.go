package valuation

import "fmt"

// QualityFactor maps ISO 25010 scores (1-5) onto a weight-normalized factor.
// Only characteristics present in both the scores and the rubric count. An
// empty map is neutral.
func (e *Engine) QualityFactor(scores map[string]int) FactorResult {
	pol := e.policy.Quality
	var sum, weights float64
	var log []Adjustment
	for _, name := range sortedKeys(scores) {
		w, ok := e.ref.QualityRubric[name]
		if !ok {
			continue
		}
		s := scores[name]
		if s < 1 {
			s = 1
		}
		if s > 5 {
			s = 5
		}
		f := pol.Low + float64(s-1)*pol.Step
		label := fmt.Sprintf("%s %d/5", name, s)
		if name == QualitySecurity && s <= pol.SecurityPenaltyAt {
			f *= pol.SecurityPenalty
			label += " (security deficiency penalty)"
		}
		sum += f * w
		weights += w
		log = append(log, Adjustment{Step: "quality", Label: label, Kind: KindMultiply, Amount: f, Running: sum / weights})
	}
	if weights == 0 {
		return FactorResult{Name: "quality", Value: 1.0, Reason: "no quality data, neutral"}
	}

	c := &chain{step: "quality", value: sum / weights, log: log}
	c.clamp(pol.Min, pol.Max)
	r := c.result("quality")
	r.Reason = fmt.Sprintf("weighted average of %d characteristics: %s", len(log), r.Reason)
	return r
}

func (e *Engine) qualityWeights(scores map[string]int) map[string]float64 {
	var out map[string]float64
	for name := range scores {
		if w, ok := e.ref.QualityRubric[name]; ok {
			if out == nil {
				out = make(map[string]float64, len(scores))
			}
			out[name] = w
		}
	}
	return out
}
