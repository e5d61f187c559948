package store

import (
	"encoding/json"
	"fmt"

	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

func valuationResult(low, avg, high, confidence float64, methodology string) valuation.Result {
	return valuation.Result{
		ValueMin:     low,
		ValueAverage: avg,
		ValueMax:     high,
		Confidence:   confidence,
		Methodology:  methodology,
	}
}

// decodeDocuments fills the JSON columns of a stored valuation.
func decodeDocuments(v *Valuation, profile, answers, breakdown []byte) error {
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &v.Profile); err != nil {
			return fmt.Errorf("decode profile: %w", err)
		}
	}
	if len(answers) > 0 && string(answers) != "null" {
		if err := json.Unmarshal(answers, &v.Answers); err != nil {
			return fmt.Errorf("decode answers: %w", err)
		}
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &v.Result.Breakdown); err != nil {
			return fmt.Errorf("decode breakdown: %w", err)
		}
	}
	return nil
}
