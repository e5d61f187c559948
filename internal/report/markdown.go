package report

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/MikeSquared-Agency/Valuation/internal/store"
	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

const (
	systemName     = "Software Valuation System v2.0 - Colombia"
	maxDescription = 150
)

var featureLabels = []struct{ name, label string }{
	{valuation.FeatureAdvancedAuth, "Advanced authentication"},
	{valuation.FeatureComplexReports, "Complex reports"},
	{valuation.FeatureExternalIntegration, "External integration"},
	{valuation.FeatureApprovalWorkflows, "Approval workflows"},
	{valuation.FeatureExecutiveDashboard, "Executive dashboard"},
	{valuation.FeatureRESTAPI, "REST API"},
	{valuation.FeatureNotifications, "Notifications"},
	{valuation.FeatureAutomaticBackup, "Automatic backup"},
	{valuation.FeatureAuditLogging, "Audit logging"},
}

var qualityLabels = []struct{ name, label, description string }{
	{valuation.QualitySecurity, "Security", "Protection of information, authentication, authorization"},
	{valuation.QualityFunctionalSuitability, "Functional suitability", "Functions meet stated needs"},
	{valuation.QualityReliability, "Reliability", "Performs under stated conditions"},
	{valuation.QualityMaintainability, "Maintainability", "Ease of modification and correction"},
	{valuation.QualityPerformanceEfficiency, "Performance efficiency", "Performance relative to resources used"},
	{valuation.QualityUsability, "Usability", "Ease of understanding and use"},
	{valuation.QualityCompatibility, "Compatibility", "Exchanges information with other products"},
	{valuation.QualityPortability, "Portability", "Ease of transfer between environments"},
	{valuation.QualityFlexibility, "Flexibility", "Adapts to changing requirements"},
}

var scoreNames = map[int]string{1: "Very poor", 2: "Poor", 3: "Acceptable", 4: "Good", 5: "Excellent"}

var complianceLabels = map[string]string{
	valuation.ComplianceOfficialReports:       "Official reports for oversight bodies",
	valuation.ComplianceAuditTrail:            "Detailed audit logs",
	valuation.ComplianceGovCoInteroperability: "Gov.co interoperability",
	valuation.CompliancePersonalData:          "Personal data protection (Habeas Data)",
	valuation.ComplianceDecree648:             "Decree 648/2017",
	valuation.ComplianceISO27001:              "ISO 27001",
	valuation.ComplianceSARLAFT:               "SARLAFT",
	valuation.ComplianceComptrollerReports:    "Comptroller reports",
	"sector_public":                           "Public sector regulation",
	"sector_financial":                        "Financial sector regulation",
}

// BuildMarkdown renders the valuation report. now stamps the footer.
func BuildMarkdown(v *store.Valuation, now time.Time) string {
	var b strings.Builder
	p := v.Profile
	r := v.Result
	bd := r.Breakdown
	id := v.ID.String()

	b.WriteString("# Software Technical Valuation Report\n\n")
	b.WriteString("_Professional assessment system, Colombia 2025_\n\n")
	b.WriteString("> **Professional technical certification**  \n")
	b.WriteString("> Based on ISO/IEC 25010:2023  \n")
	b.WriteString("> Adapted COCOMO methodology  \n")
	b.WriteString("> Colombian market analysis 2025  \n")
	fmt.Fprintf(&b, "> Certification ID: `%s`\n\n", id[:12])

	b.WriteString("## General information\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "Valuation date", v.CreatedAt.Format("2006-01-02"))
	row(&b, "Software type", titleCase(v.Category))
	row(&b, "Primary technology", titleCase(v.Technology))
	row(&b, "Description", orDefault(truncate(p.Description, maxDescription), "Not specified"))
	row(&b, "Sector", orDefault(titleCase(p.Sector), "Not specified"))
	row(&b, "Total users", fmt.Sprint(p.TotalUsers))
	row(&b, "Concurrent users", fmt.Sprint(p.ConcurrentUsers))
	row(&b, "Architecture", orDefault(titleCase(p.Architecture), "Not specified"))
	b.WriteString("\n")

	b.WriteString("## Economic results\n\n")
	b.WriteString("| Concept | Value |\n|---|---|\n")
	row(&b, "Minimum value", Currency(r.ValueMin))
	row(&b, "Maximum value", Currency(r.ValueMax))
	row(&b, "**Average value**", "**"+Currency(r.ValueAverage)+"**")
	row(&b, "Confidence", fmt.Sprintf("%.1f%%", r.Confidence*100))
	row(&b, "Methodology", r.Methodology)
	b.WriteString("\n")

	b.WriteString("## Detailed technical analysis\n\n")
	b.WriteString("| Concept | Value | Explanation |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Development hours | %s | Estimated effort to rebuild the system |\n", humanize.Comma(int64(bd.Hours)))
	fmt.Fprintf(&b, "| Hourly cost | %s | Colombian market rate for the technology |\n", Currency(bd.HourlyCost))
	fmt.Fprintf(&b, "| Base value | %s | Hours x hourly cost |\n", Currency(bd.BaseValue))
	fmt.Fprintf(&b, "| Quality factor | %.2fx | ISO/IEC 25010 assessment |\n", bd.QualityFactor)
	fmt.Fprintf(&b, "| Complexity factor | %.2fx | Architecture, data and concurrency |\n", bd.ComplexityFactor)
	fmt.Fprintf(&b, "| Business factor | %.2fx | Criticality, savings and reach |\n", bd.BusinessFactor)
	fmt.Fprintf(&b, "| Compliance factor | %.2fx | Colombian regulation and market |\n", bd.ComplianceFactor)
	fmt.Fprintf(&b, "| Calibration factor | %.2fx | Valuation stance and development context |\n", bd.CalibrationFactor)
	fmt.Fprintf(&b, "| Uncertainty margin | +/-%.0f%% | Width of the value band |\n", bd.UncertaintyMargin*100)
	b.WriteString("\n")

	b.WriteString("## Adjustment factor explanations\n\n")
	for _, line := range explanations(v) {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\n")

	if len(bd.EffortLog) > 0 {
		b.WriteString("## Effort adjustments\n\n")
		for i, a := range bd.EffortLog {
			fmt.Fprintf(&b, "%d. %s: %s (%s h)\n", i+1, a.Step, a.Label, humanize.Commaf(math.Round(a.Running)))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Implemented features\n\n")
	b.WriteString("| Feature | Implemented |\n|---|---|\n")
	for _, f := range featureLabels {
		mark := "No"
		if p.HasFeature(f.name) {
			mark = "Yes"
		}
		row(&b, f.label, mark)
	}
	b.WriteString("\n")

	if len(p.Quality) > 0 {
		b.WriteString("## ISO/IEC 25010:2023 quality assessment\n\n")
		b.WriteString("International standard for software product quality.\n\n")
		b.WriteString("| Characteristic | Score | Weight | Description |\n|---|---|---|---|\n")
		for _, q := range qualityLabels {
			score, ok := p.Quality[q.name]
			if !ok {
				continue
			}
			weight := "N/A"
			if w, ok := bd.QualityWeights[q.name]; ok {
				weight = fmt.Sprintf("%.0f%%", w*100)
			}
			fmt.Fprintf(&b, "| %s | %d/5 - %s | %s | %s |\n",
				q.label, score, orDefault(scoreNames[score], "N/A"), weight, q.description)
		}
		b.WriteString("\n")
	}

	if len(bd.ComplianceItems) > 0 {
		b.WriteString("## Colombian regulatory compliance\n\n")
		b.WriteString("Regulations and standards implemented or considered:\n\n")
		for _, item := range bd.ComplianceItems {
			b.WriteString("- " + orDefault(complianceLabels[item], titleCase(item)) + "\n")
		}
		b.WriteString("\n")
	}

	if p.Notes != "" {
		b.WriteString("## Additional technical notes\n\n")
		b.WriteString(escapeCell(p.Notes) + "\n\n")
	}

	b.WriteString("## Methodology\n\n")
	b.WriteString("- **ISO/IEC 25010:2023:** international software quality standard defining nine quality characteristics.\n")
	b.WriteString("- **Adapted COCOMO:** constructive cost model adapted to the Colombian context and the assessed technologies.\n")
	b.WriteString("- **Colombian market analysis 2025:** development rates from local market research.\n")
	b.WriteString("- **Specific adjustment factors:** sector, Colombian regulation, technical complexity and business value.\n")
	fmt.Fprintf(&b, "- **Uncertainty band (+/-%.0f%%):** derived from the completeness and certainty of the answers.\n", bd.UncertaintyMargin*100)
	b.WriteString("\n**Confidence** reflects how complete the supplied information is.\n\n")

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "_Report generated on %s_  \n", now.Format("02/01/2006 15:04:05"))
	b.WriteString("_" + systemName + "_  \n")
	fmt.Fprintf(&b, "_Certification ID: %s_\n", id)
	return b.String()
}

func explanations(v *store.Valuation) []string {
	p := v.Profile
	bd := v.Result.Breakdown
	var out []string

	q := bd.QualityFactor
	switch direction(q) {
	case "premium":
		out = append(out, fmt.Sprintf("**Quality factor (%.2fx):** premium for good practice under ISO/IEC 25010:2023.", q))
	case "penalty":
		out = append(out, fmt.Sprintf("**Quality factor (%.2fx):** penalty for quality deficiencies, notably in security or maintainability.", q))
	default:
		out = append(out, fmt.Sprintf("**Quality factor (%.2fx):** neutral. Meets basic quality standards without exceptional strengths or gaps.", q))
	}

	c := bd.ComplexityFactor
	if direction(c) == "premium" {
		out = append(out, fmt.Sprintf("**Complexity factor (%.2fx):** elevated technical complexity. %d concurrent users on a %s architecture.",
			c, p.ConcurrentUsers, strings.ReplaceAll(p.Architecture, "_", " ")))
	} else {
		out = append(out, fmt.Sprintf("**Complexity factor (%.2fx):** standard complexity. Simple architecture without special scalability needs.", c))
	}

	bf := bd.BusinessFactor
	switch direction(bf) {
	case "premium":
		line := fmt.Sprintf("**Business factor (%.2fx):** high strategic value with criticality %d/5.", bf, p.Criticality)
		if p.AnnualSavings > 0 {
			line += " Estimated annual savings of " + Currency(p.AnnualSavings) + "."
		}
		out = append(out, line)
	case "penalty":
		out = append(out, fmt.Sprintf("**Business factor (%.2fx):** limited business impact (criticality %d/5).", bf, p.Criticality))
	default:
		out = append(out, fmt.Sprintf("**Business factor (%.2fx):** standard business impact for an operational support system.", bf))
	}

	cf := bd.ComplianceFactor
	if len(bd.ComplianceItems) > 0 && direction(cf) == "premium" {
		labels := make([]string, 0, len(bd.ComplianceItems))
		for _, item := range bd.ComplianceItems {
			labels = append(labels, orDefault(complianceLabels[item], item))
		}
		out = append(out, fmt.Sprintf("**Compliance factor (%.2fx):** premium for Colombian regulatory requirements: %s.", cf, strings.Join(labels, ", ")))
	} else {
		out = append(out, fmt.Sprintf("**Compliance factor (%.2fx):** no special regulatory requirements beyond the market base.", cf))
	}

	cal := bd.CalibrationFactor
	switch direction(cal) {
	case "premium":
		out = append(out, fmt.Sprintf("**Calibration factor (%.2fx):** raised for the valuation stance or a costly development context.", cal))
	case "penalty":
		out = append(out, fmt.Sprintf("**Calibration factor (%.2fx):** lowered for the valuation stance, development context or missing cost history.", cal))
	default:
		out = append(out, fmt.Sprintf("**Calibration factor (%.2fx):** neutral.", cal))
	}
	return out
}

func direction(f float64) string {
	return valuation.FactorResult{Value: f}.Direction()
}

// Currency formats a COP amount, e.g. "$1,874,250 COP".
func Currency(v float64) string {
	return "$" + humanize.Comma(int64(math.Round(v))) + " COP"
}

func row(b *strings.Builder, k, v string) {
	fmt.Fprintf(b, "| %s | %s |\n", k, escapeCell(v))
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func titleCase(tag string) string {
	words := strings.Fields(strings.ReplaceAll(tag, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
