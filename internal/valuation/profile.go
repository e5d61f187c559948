package valuation

// Feature flag names recognised by the effort and complexity tables.
const (
	FeatureAdvancedAuth        = "advanced_auth"
	FeatureComplexReports      = "complex_reports"
	FeatureExternalIntegration = "external_integration"
	FeatureApprovalWorkflows   = "approval_workflows"
	FeatureExecutiveDashboard  = "executive_dashboard"
	FeatureRESTAPI             = "rest_api"
	FeatureNotifications       = "notifications"
	FeatureAutomaticBackup     = "automatic_backup"
	FeatureAuditLogging        = "audit_logging"
)

// Compliance flag names recognised by the jurisdiction factor.
const (
	ComplianceOfficialReports       = "official_reports"
	ComplianceAuditTrail            = "audit_trail"
	ComplianceGovCoInteroperability = "govco_interoperability"
	CompliancePersonalData          = "personal_data"
	ComplianceDecree648             = "decree_648"
	ComplianceISO27001              = "iso_27001"
	ComplianceSARLAFT               = "sarlaft"
	ComplianceComptrollerReports    = "comptroller_reports"
)

// Development context flags.
const (
	ContextInHouse            = "in_house"
	ContextPartTime           = "part_time"
	ContextLearningCurve      = "learning_curve"
	ContextNoMethodology      = "no_methodology"
	ContextRushed             = "rushed"
	ContextIterativePrototype = "iterative_prototype"
)

// Quality characteristics (ISO/IEC 25010:2023).
const (
	QualitySecurity              = "security"
	QualityFunctionalSuitability = "functional_suitability"
	QualityReliability           = "reliability"
	QualityMaintainability       = "maintainability"
	QualityPerformanceEfficiency = "performance_efficiency"
	QualityUsability             = "usability"
	QualityCompatibility         = "compatibility"
	QualityPortability           = "portability"
	QualityFlexibility           = "flexibility"
)

// Critical questionnaire fields used for confidence completeness.
const (
	FieldCategory        = "category"
	FieldTechnology      = "technology"
	FieldAgeYears        = "age_years"
	FieldConcurrentUsers = "concurrent_users"
	FieldCriticality     = "criticality"
)

type Certainty string

const (
	CertaintyLow    Certainty = "low"
	CertaintyMedium Certainty = "medium"
	CertaintyHigh   Certainty = "high"
)

type Stance string

const (
	StanceConservative Stance = "conservative"
	StanceBalanced     Stance = "balanced"
	StanceOptimistic   Stance = "optimistic"
)

// Answer is a tri-state reply to a "do you know X" question.
type Answer string

const (
	AnswerUnset Answer = ""
	AnswerYes   Answer = "yes"
	AnswerNo    Answer = "no"
)

// Knowledge captures what the respondent said they know about cost history.
type Knowledge struct {
	DevelopmentTime     Answer `json:"development_time,omitempty"`
	Investment          Answer `json:"investment,omitempty"`
	Savings             Answer `json:"savings,omitempty"`
	TimeFromDates       bool   `json:"time_from_dates,omitempty"`
	InvestmentEstimated bool   `json:"investment_estimated,omitempty"`
	SavingsEstimated    bool   `json:"savings_estimated,omitempty"`
}

// Profile is the questionnaire describing one piece of software. It is built
// once by the intake layer, read by the engine, and never modified.
type Profile struct {
	Category     string          `json:"category"`
	Technology   string          `json:"technology"`
	Features     map[string]bool `json:"features,omitempty"`
	Architecture string          `json:"architecture"`
	DataVolume   string          `json:"data_volume"`
	Database     string          `json:"database"`

	ConcurrentUsers int `json:"concurrent_users"`
	TotalUsers      int `json:"total_users"`
	Integrations    int `json:"integrations"`

	AgeYears    float64 `json:"age_years"`
	InActiveUse bool    `json:"in_active_use"`

	Criticality int             `json:"criticality"`
	Sector      string          `json:"sector"`
	Compliance  map[string]bool `json:"compliance,omitempty"`

	AnnualSavings      float64 `json:"annual_savings"`
	OriginalInvestment float64 `json:"original_investment"`
	DevelopmentMonths  float64 `json:"development_months"`

	Certainty Certainty       `json:"certainty"`
	Knows     Knowledge       `json:"knows"`
	Stance    Stance          `json:"stance"`
	Context   map[string]bool `json:"context,omitempty"`

	Quality map[string]int `json:"quality,omitempty"`

	// Unanswered lists critical fields the respondent left blank. The zero
	// value means the questionnaire was complete.
	Unanswered []string `json:"unanswered,omitempty"`

	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// HasFeature reports whether the named feature flag is set.
func (p Profile) HasFeature(name string) bool { return p.Features[name] }

// HasContext reports whether the named development context flag is set.
func (p Profile) HasContext(name string) bool { return p.Context[name] }

func (p Profile) answered(field string) bool {
	for _, f := range p.Unanswered {
		if f == field {
			return false
		}
	}
	return true
}
