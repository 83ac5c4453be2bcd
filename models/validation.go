package models

// CheckCategory represents which verification rule produced a check
type CheckCategory string

const (
	CheckCitation             CheckCategory = "citation"
	CheckRuleMapping          CheckCategory = "rule_mapping"
	CheckConstraintCompliance CheckCategory = "constraint_compliance"
)

// CheckStatus represents the outcome of a single verification rule
type CheckStatus string

const (
	CheckPass    CheckStatus = "pass"
	CheckFail    CheckStatus = "fail"
	CheckWarning CheckStatus = "warning"
)

// Severity represents the tier of a validation failure
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
)

// Action represents the recommended response to a validation outcome
type Action string

const (
	ActionReject     Action = "REJECT"
	ActionRegenerate Action = "REGENERATE"
	ActionCorrect    Action = "CORRECT"
)

// ReportStatus represents the overall outcome of a validation pass
type ReportStatus string

const (
	ReportPassed ReportStatus = "passed"
	ReportFailed ReportStatus = "failed"
)

// ValidationCheck represents the result of one verification rule
type ValidationCheck struct {
	Category   CheckCategory `json:"category"`
	Status     CheckStatus   `json:"status"`
	Detail     string        `json:"detail"`
	Excerpt    string        `json:"excerpt,omitempty"`    // failing citation or sentence
	Similarity *float64      `json:"similarity,omitempty"` // best score observed, rule-mapping only
	Threshold  *float64      `json:"threshold,omitempty"`
}

// ValidationReport represents the aggregate of all checks run against one draft
type ValidationReport struct {
	Checks   []ValidationCheck `json:"checks"`
	Status   ReportStatus      `json:"status"`
	Severity Severity          `json:"severity,omitempty"` // empty when passed
	Action   Action            `json:"recommendedAction,omitempty"`
}

// Failed reports whether any check in the report failed
func (r ValidationReport) Failed() bool {
	for _, check := range r.Checks {
		if check.Status == CheckFail {
			return true
		}
	}
	return false
}

// HasWarning reports whether any check in the report carries a warning
func (r ValidationReport) HasWarning() bool {
	for _, check := range r.Checks {
		if check.Status == CheckWarning {
			return true
		}
	}
	return false
}
