// Package intake turns loosely typed questionnaire answers into a
// valuation.Profile. Every field except category and technology falls back
// to a documented default.
package intake

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

var (
	ErrMissingCategory   = errors.New("category is required")
	ErrMissingTechnology = errors.New("technology is required")
)

// Defaults applied when an answer is missing or malformed.
const (
	DefaultConcurrentUsers = 1
	DefaultTotalUsers      = 1
	DefaultCriticality     = 3
	DefaultArchitecture    = "monolithic"
	DefaultDataVolume      = "small"
	DefaultDatabase        = "local"
	DefaultSector          = "private"
)

// Upper bounds for numeric answers. Larger values are treated as malformed
// and fall back to the default; for critical fields they also count as
// unanswered.
const (
	MaxUsers             = 10_000_000
	MaxIntegrations      = 1_000
	MaxAgeYears          = 100
	MaxDevelopmentMonths = 600
	MaxAmountCOP         = 1e15
)

var criticalLimits = map[string]float64{
	valuation.FieldAgeYears:        MaxAgeYears,
	valuation.FieldConcurrentUsers: MaxUsers,
}

// Parse sanitizes a decoded JSON request into a Profile.
func Parse(raw map[string]any) (valuation.Profile, error) {
	category := tag(raw[valuation.FieldCategory])
	if category == "" {
		return valuation.Profile{}, ErrMissingCategory
	}
	technology := tag(raw[valuation.FieldTechnology])
	if technology == "" {
		return valuation.Profile{}, ErrMissingTechnology
	}

	p := valuation.Profile{
		Category:     category,
		Technology:   technology,
		Features:     flags(raw["features"]),
		Architecture: tagOr(raw["architecture"], DefaultArchitecture),
		DataVolume:   tagOr(raw["data_volume"], DefaultDataVolume),
		Database:     tagOr(raw["database"], DefaultDatabase),

		ConcurrentUsers: intUpTo(raw[valuation.FieldConcurrentUsers], MaxUsers, DefaultConcurrentUsers),
		TotalUsers:      intUpTo(raw["total_users"], MaxUsers, DefaultTotalUsers),
		Integrations:    intUpTo(raw["integrations"], MaxIntegrations, 0),

		AgeYears:    floatUpTo(raw[valuation.FieldAgeYears], MaxAgeYears, 0),
		InActiveUse: toBool(raw["in_active_use"]),

		Criticality: intUpTo(raw[valuation.FieldCriticality], 5, DefaultCriticality),
		Sector:      tagOr(raw["sector"], DefaultSector),
		Compliance:  flags(raw["compliance"]),

		AnnualSavings:      floatUpTo(raw["annual_savings"], MaxAmountCOP, 0),
		OriginalInvestment: floatUpTo(raw["original_investment"], MaxAmountCOP, 0),
		DevelopmentMonths:  floatUpTo(raw["development_months"], MaxDevelopmentMonths, 0),

		Certainty: certainty(raw["certainty"]),
		Stance:    stance(raw["stance"]),
		Context:   flags(raw["context"]),
		Knows: valuation.Knowledge{
			DevelopmentTime:     answer(raw["knows_development_time"]),
			Investment:          answer(raw["knows_investment"]),
			Savings:             answer(raw["knows_savings"]),
			TimeFromDates:       toBool(raw["time_from_dates"]),
			InvestmentEstimated: toBool(raw["investment_estimated"]),
			SavingsEstimated:    toBool(raw["savings_estimated"]),
		},

		Quality: scores(raw["quality"]),

		Description: text(raw["description"]),
		Notes:       text(raw["notes"]),
	}

	if p.ConcurrentUsers < 1 {
		p.ConcurrentUsers = DefaultConcurrentUsers
	}
	if p.TotalUsers < 0 {
		p.TotalUsers = DefaultTotalUsers
	}
	if p.Integrations < 0 {
		p.Integrations = 0
	}
	if p.Criticality < 1 || p.Criticality > 5 {
		p.Criticality = DefaultCriticality
	}
	for _, v := range []*float64{&p.AgeYears, &p.AnnualSavings, &p.OriginalInvestment, &p.DevelopmentMonths} {
		if *v < 0 {
			*v = 0
		}
	}

	for _, field := range []string{valuation.FieldAgeYears, valuation.FieldConcurrentUsers, valuation.FieldCriticality} {
		f, ok := toFloat(raw[field])
		if limit, capped := criticalLimits[field]; !ok || (capped && f > limit) {
			p.Unanswered = append(p.Unanswered, field)
		}
	}
	return p, nil
}

func tagOr(v any, def string) string {
	if s := tag(v); s != "" {
		return s
	}
	return def
}

func certainty(v any) valuation.Certainty {
	switch c := valuation.Certainty(tag(v)); c {
	case valuation.CertaintyLow, valuation.CertaintyHigh:
		return c
	}
	return valuation.CertaintyMedium
}

func stance(v any) valuation.Stance {
	switch s := valuation.Stance(tag(v)); s {
	case valuation.StanceConservative, valuation.StanceOptimistic:
		return s
	}
	return valuation.StanceBalanced
}

func answer(v any) valuation.Answer {
	if blank(v) {
		return valuation.AnswerUnset
	}
	if toBool(v) {
		return valuation.AnswerYes
	}
	switch x := v.(type) {
	case bool:
		return valuation.AnswerNo
	case float64:
		if x == 0 {
			return valuation.AnswerNo
		}
	case json.Number:
		if f, err := x.Float64(); err == nil && f == 0 {
			return valuation.AnswerNo
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "no", "false", "0", "0.0", "off":
			return valuation.AnswerNo
		}
	}
	return valuation.AnswerUnset
}
