package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Valuation/internal/intake"
	"github.com/MikeSquared-Agency/Valuation/internal/store"
	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

func exampleValuation(t *testing.T) *store.Valuation {
	t.Helper()
	engine, err := valuation.NewEngine(valuation.DefaultReference(), valuation.DefaultPolicy())
	require.NoError(t, err)
	profile, err := intake.Parse(intake.ExampleAuditSystem())
	require.NoError(t, err)
	result, err := engine.Evaluate(profile)
	require.NoError(t, err)
	return &store.Valuation{
		ID:         uuid.MustParse("0f8e2c4a-1b3d-4e5f-8a9b-c0d1e2f3a4b5"),
		CreatedAt:  time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		Category:   profile.Category,
		Technology: profile.Technology,
		Profile:    profile,
		Result:     result,
	}
}

func TestBuildMarkdownSections(t *testing.T) {
	v := exampleValuation(t)
	md := BuildMarkdown(v, time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC))

	for _, want := range []string{
		"# Software Technical Valuation Report",
		"Certification ID: `0f8e2c4a-1b3`",
		"| Software type | Audit System |",
		"| Primary technology | Access Vba |",
		"| Sector | Public |",
		"## Economic results",
		"**" + Currency(v.Result.ValueAverage) + "**",
		"## Detailed technical analysis",
		"## Adjustment factor explanations",
		"## Effort adjustments",
		"| Advanced authentication | Yes |",
		"| REST API | No |",
		"| Security | 2/5 - Poor | 20% |",
		"| Portability | 5/5 - Excellent | 4% |",
		"- Decree 648/2017",
		"- Public sector regulation",
		"## Additional technical notes",
		"## Methodology",
		"_Report generated on 15/03/2025 09:30:00_",
		"_Certification ID: 0f8e2c4a-1b3d-4e5f-8a9b-c0d1e2f3a4b5_",
	} {
		assert.Contains(t, md, want)
	}
}

func TestBuildMarkdownOmitsEmptySections(t *testing.T) {
	v := exampleValuation(t)
	v.Profile.Quality = nil
	v.Profile.Notes = ""
	v.Result.Breakdown.ComplianceItems = nil

	md := BuildMarkdown(v, time.Now())
	assert.NotContains(t, md, "ISO/IEC 25010:2023 quality assessment")
	assert.NotContains(t, md, "## Additional technical notes")
	assert.NotContains(t, md, "## Colombian regulatory compliance")
	assert.Contains(t, md, "no special regulatory requirements")
}

func TestExplanationsFollowFactorDirection(t *testing.T) {
	v := exampleValuation(t)
	v.Result.Breakdown.QualityFactor = 0.8
	v.Result.Breakdown.BusinessFactor = 1.6
	v.Profile.AnnualSavings = 12_000_000

	lines := strings.Join(explanations(v), "\n")
	assert.Contains(t, lines, "**Quality factor (0.80x):** penalty")
	assert.Contains(t, lines, "high strategic value with criticality 2/5")
	assert.Contains(t, lines, "$12,000,000 COP")
}

func TestFormattingHelpers(t *testing.T) {
	assert.Equal(t, "$1,874,250 COP", Currency(1874249.6))
	assert.Equal(t, "$0 COP", Currency(0))
	assert.Equal(t, "Python Django", titleCase("python_django"))
	assert.Equal(t, "", titleCase(""))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, "añoñ", truncate("añoñ", 4))
	assert.Equal(t, `a\|b c`, escapeCell("a|b\nc"))
	assert.Equal(t, "valuation_0f8e2c4a.pdf", Filename(uuid.MustParse("0f8e2c4a-1b3d-4e5f-8a9b-c0d1e2f3a4b5"), FormatPDF))
}

func TestBuildHTMLRendersTables(t *testing.T) {
	html, err := buildHTML("# Title\n\n| A | B |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>2</td>")
	assert.Contains(t, html, "<h1>Title</h1>")
}

func TestPDFRendererUnavailable(t *testing.T) {
	r := &PDFRenderer{}
	assert.False(t, r.Available())
	_, err := r.Render(t.Context(), "# x")
	assert.ErrorIs(t, err, ErrRendererUnavailable)
}

func TestBuildMarkdownUsesAppliedQualityWeights(t *testing.T) {
	ref := valuation.DefaultReference()
	ref.QualityRubric = map[string]float64{
		valuation.QualitySecurity:  0.9,
		valuation.QualityUsability: 0.1,
	}
	engine, err := valuation.NewEngine(ref, valuation.DefaultPolicy())
	require.NoError(t, err)

	profile, err := intake.Parse(map[string]any{
		"category":   "crm",
		"technology": "php_laravel",
		"quality":    map[string]any{"security": 5, "usability": 3, "portability": 4},
	})
	require.NoError(t, err)
	result, err := engine.Evaluate(profile)
	require.NoError(t, err)

	v := &store.Valuation{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC(),
		Category:   profile.Category,
		Technology: profile.Technology,
		Profile:    profile,
		Result:     result,
	}
	md := BuildMarkdown(v, time.Now())

	assert.Contains(t, md, "| Security | 5/5 - Excellent | 90% |")
	assert.Contains(t, md, "| Usability | 3/5 - Acceptable | 10% |")
	assert.Contains(t, md, "| Portability | 4/5 - Good | N/A |")
}
