package intake

// ExampleAuditSystem returns a reference questionnaire: an internal audit
// tool built in Access/VBA for small Colombian municipalities.
func ExampleAuditSystem() map[string]any {
	return map[string]any{
		"category":         "audit_system",
		"technology":       "access_vba",
		"age_years":        2,
		"in_active_use":    true,
		"sector":           "public",
		"description":      "Internal audit tool for sixth category municipalities in Colombia",
		"concurrent_users": 3,
		"total_users":      2,
		"database":         "local",
		"integrations":     0,
		"data_volume":      "small",
		"architecture":     "monolithic",
		"features": map[string]any{
			"advanced_auth":       true,
			"complex_reports":     true,
			"approval_workflows":  true,
			"executive_dashboard": true,
			"audit_logging":       true,
		},
		"quality": map[string]any{
			"security":               2,
			"functional_suitability": 3,
			"reliability":            3,
			"maintainability":        4,
			"performance_efficiency": 3,
			"usability":              4,
			"compatibility":          4,
			"portability":            5,
			"flexibility":            4,
		},
		"stance":    "conservative",
		"certainty": "medium",
		"context": map[string]any{
			"in_house":            true,
			"part_time":           true,
			"learning_curve":      true,
			"iterative_prototype": true,
			"no_methodology":      true,
		},
		"criticality":            2,
		"knows_development_time": "no",
		"knows_investment":       "no",
		"knows_savings":          "no",
		"compliance": map[string]any{
			"official_reports": true,
			"audit_trail":      true,
			"personal_data":    true,
			"decree_648":       true,
		},
		"notes": "Operational structure is well organized and aligned with Decree 648 of 2017. " +
			"The VBA code is modular and maintainable with little tangled logic.",
	}
}
