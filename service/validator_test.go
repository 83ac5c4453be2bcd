package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexguard-backend/models"
)

func validatorContext() models.AuthorizedContext {
	return models.AuthorizedContext{
		TargetNode: models.TaxonomyNode{ID: "search", Title: "Search and Seizure", ParentID: "root"},
		Path:       []string{"root", "search"},
		Items: []models.KnowledgeItem{
			{
				ID:                 "katz",
				Kind:               models.ItemKindCase,
				Name:               "Katz v. United States",
				Citation:           "389 U.S. 347",
				RuleOfLaw:          "Evidence obtained in violation of a reasonable expectation of privacy must be excluded from trial.",
				Holding:            "The Fourth Amendment protects people, not places.",
				ClassificationPath: []string{"root", "search"},
			},
		},
	}
}

func findCheck(t *testing.T, report models.ValidationReport, category models.CheckCategory) models.ValidationCheck {
	t.Helper()
	for _, c := range report.Checks {
		if c.Category == category {
			return c
		}
	}
	t.Fatalf("report has no %s check", category)
	return models.ValidationCheck{}
}

func TestValidateUnauthorizedCitationIsCritical(t *testing.T) {
	v := NewValidator(nil)
	text := "As held in Smith v. Jones, the evidence was inadmissible."

	report := v.Validate(text, validatorContext())

	check := findCheck(t, report, models.CheckCitation)
	assert.Equal(t, models.CheckFail, check.Status)
	assert.Contains(t, check.Excerpt, "Smith v. Jones")

	assert.Equal(t, models.ReportFailed, report.Status)
	assert.Equal(t, models.SeverityCritical, report.Severity)
	assert.Equal(t, models.ActionReject, report.Action)
}

func TestValidateAuthorizedCitationsPass(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name string
		text string
	}{
		{"exact case name", "Katz v. United States controls here."},
		{"reporter citation", "See 389 U.S. 347 for the controlling rule."},
		{"over-captured case name", "In Katz v. United States the Court addressed wiretaps."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report := v.Validate(tc.text, validatorContext())
			check := findCheck(t, report, models.CheckCitation)
			assert.Equal(t, models.CheckPass, check.Status)
		})
	}
}

func TestValidateNoCitationsPasses(t *testing.T) {
	v := NewValidator(nil)
	report := v.Validate("The analysis depends on the expectation of privacy.", validatorContext())

	check := findCheck(t, report, models.CheckCitation)
	assert.Equal(t, models.CheckPass, check.Status)
	assert.Equal(t, "no citations detected", check.Detail)
}

func TestValidateUnmappedRuleAssertionIsMajor(t *testing.T) {
	v := NewValidator(nil)
	// Normative sentence with low overlap against the authorized rule.
	text := "The court held that officers always need judicial approval before acting."

	ctx := validatorContext()
	report := v.Validate(text, ctx)

	check := findCheck(t, report, models.CheckRuleMapping)
	require.Equal(t, models.CheckFail, check.Status)
	require.NotNil(t, check.Similarity)
	require.NotNil(t, check.Threshold)
	assert.Equal(t, 0.65, *check.Threshold)
	assert.Less(t, *check.Similarity, 0.65)
	assert.Contains(t, check.Excerpt, "court held")

	// The reported score is the real best match against the authorized fields.
	best := 0.0
	for _, field := range []string{ctx.Items[0].RuleOfLaw, ctx.Items[0].Holding} {
		if s := Similarity(check.Excerpt, field); s > best {
			best = s
		}
	}
	assert.Equal(t, best, *check.Similarity)

	assert.Equal(t, models.ReportFailed, report.Status)
	assert.Equal(t, models.SeverityMajor, report.Severity)
	assert.Equal(t, models.ActionRegenerate, report.Action)
}

func TestValidateGroundedRuleAssertionPasses(t *testing.T) {
	v := NewValidator(nil)
	// Verbatim restatement of the authorized rule maps at similarity 1.0.
	text := "Evidence obtained in violation of a reasonable expectation of privacy must be excluded from trial."

	report := v.Validate(text, validatorContext())
	check := findCheck(t, report, models.CheckRuleMapping)
	assert.Equal(t, models.CheckPass, check.Status)
}

func TestValidateNonNormativeSentencesIgnored(t *testing.T) {
	v := NewValidator(nil)
	report := v.Validate("The parties disagreed about the facts of the stop.", validatorContext())

	check := findCheck(t, report, models.CheckRuleMapping)
	assert.Equal(t, models.CheckPass, check.Status)
	assert.Equal(t, "no rule assertions detected", check.Detail)
}

func TestValidateMissingRequiredElementFails(t *testing.T) {
	v := NewValidator(nil)
	ctx := validatorContext()
	ctx.Constraints = []models.ConstraintRecord{
		{OwnerPath: ctx.Path, Kind: models.ConstraintRequiredElement, Text: "A subjective expectation of privacy."},
		{OwnerPath: ctx.Path, Kind: models.ConstraintRequiredElement, Text: "Warrantless entry into the home."},
	}

	// Addresses the first element, never the second.
	report := v.Validate("The defendant had an expectation society accepts.", ctx)

	check := findCheck(t, report, models.CheckConstraintCompliance)
	require.Equal(t, models.CheckFail, check.Status)
	assert.Equal(t, "Warrantless entry into the home.", check.Excerpt)

	assert.Equal(t, models.SeverityMajor, report.Severity)
	assert.Equal(t, models.ActionRegenerate, report.Action)
}

func TestValidateMissingRequiredTestIsWarning(t *testing.T) {
	v := NewValidator(nil)
	ctx := validatorContext()
	ctx.Constraints = []models.ConstraintRecord{
		{OwnerPath: ctx.Path, Kind: models.ConstraintRequiredTest, Text: "Totality of circumstances balancing."},
	}

	// No citations, no normative phrases, no test vocabulary.
	report := v.Validate("The parties stipulated to the timeline of events.", ctx)

	check := findCheck(t, report, models.CheckConstraintCompliance)
	assert.Equal(t, models.CheckWarning, check.Status)

	// A warning alone never fails the report.
	assert.Equal(t, models.ReportPassed, report.Status)
	assert.Equal(t, models.SeverityMinor, report.Severity)
	assert.Equal(t, models.ActionCorrect, report.Action)
}

func TestValidateElementFailureReportedBeforeTestWarning(t *testing.T) {
	v := NewValidator(nil)
	ctx := validatorContext()
	ctx.Constraints = []models.ConstraintRecord{
		{OwnerPath: ctx.Path, Kind: models.ConstraintRequiredTest, Text: "Totality of circumstances balancing."},
		{OwnerPath: ctx.Path, Kind: models.ConstraintRequiredElement, Text: "Probable cause determination."},
	}

	report := v.Validate("Nothing relevant here.", ctx)

	check := findCheck(t, report, models.CheckConstraintCompliance)
	assert.Equal(t, models.CheckFail, check.Status)
	assert.Equal(t, "Probable cause determination.", check.Excerpt)
}

func TestValidateAllChecksPass(t *testing.T) {
	v := NewValidator(nil)
	ctx := validatorContext()
	ctx.Constraints = []models.ConstraintRecord{
		{OwnerPath: ctx.Path, Kind: models.ConstraintRequiredElement, Text: "A reasonable expectation of privacy."},
	}

	text := "Under Katz v. United States, 389 U.S. 347, evidence obtained in violation of a " +
		"reasonable expectation of privacy must be excluded from trial."

	report := v.Validate(text, ctx)

	for _, check := range report.Checks {
		assert.Equal(t, models.CheckPass, check.Status, "check %s", check.Category)
	}
	assert.Equal(t, models.ReportPassed, report.Status)
	assert.Empty(t, report.Severity)
	assert.Empty(t, report.Action)
}
