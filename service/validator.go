package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"lexguard-backend/models"
	"lexguard-backend/policy"
)

// Citation patterns: "Name v. Name" case names and numeric U.S. reporter
// citations. Sentence-initial capitalized words can bleed into a case-name
// match; the contains/contained-by authorization rule absorbs that.
var (
	caseCitationRe     = regexp.MustCompile(`[A-Z][A-Za-z'.]*(?:\s+[A-Z][A-Za-z'.]*)*\s+v\.\s+[A-Z][A-Za-z'.]*(?:\s+[A-Z][A-Za-z'.]*)*`)
	reporterCitationRe = regexp.MustCompile(`\d+\s+U\.S\.\s+\d+`)
	sentenceSplitRe    = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
	nonAlnumRe         = regexp.MustCompile(`[^a-z0-9\s]+`)
)

// Validator checks generated text against an authorized context
type Validator struct {
	pol *policy.Policy
}

// NewValidator creates a validator; a nil policy means the defaults
func NewValidator(pol *policy.Policy) *Validator {
	if pol == nil {
		pol = policy.Default()
	}
	return &Validator{pol: pol}
}

// Validate runs the citation, rule-mapping, and constraint-compliance checks
// and aggregates them into a report. Aggregation is order-independent: a
// citation failure is always critical, any other failure is major, and a
// warning alone is minor.
func (v *Validator) Validate(text string, ctx models.AuthorizedContext) models.ValidationReport {
	checks := []models.ValidationCheck{
		v.checkCitations(text, ctx.Items),
		v.checkRuleMapping(text, ctx.Items),
		v.checkConstraints(text, ctx.Constraints),
	}

	var citationFailed, anyFailed, anyWarning bool
	for _, c := range checks {
		switch c.Status {
		case models.CheckFail:
			anyFailed = true
			if c.Category == models.CheckCitation {
				citationFailed = true
			}
		case models.CheckWarning:
			anyWarning = true
		}
	}

	report := models.ValidationReport{Checks: checks}
	switch {
	case citationFailed:
		report.Status = models.ReportFailed
		report.Severity = models.SeverityCritical
		report.Action = models.ActionReject
	case anyFailed:
		report.Status = models.ReportFailed
		report.Severity = models.SeverityMajor
		report.Action = models.ActionRegenerate
	case anyWarning:
		// Warnings do not fail the report.
		report.Status = models.ReportPassed
		report.Severity = models.SeverityMinor
		report.Action = models.ActionCorrect
	default:
		report.Status = models.ReportPassed
	}
	return report
}

// checkCitations extracts candidate citations from the text and verifies each
// against the authorized items' names and citation fields
func (v *Validator) checkCitations(text string, items []models.KnowledgeItem) models.ValidationCheck {
	check := models.ValidationCheck{Category: models.CheckCitation, Status: models.CheckPass}

	candidates := caseCitationRe.FindAllString(text, -1)
	candidates = append(candidates, reporterCitationRe.FindAllString(text, -1)...)
	if len(candidates) == 0 {
		check.Detail = "no citations detected"
		return check
	}

	var unauthorized []string
	for _, candidate := range candidates {
		if !citationAuthorized(candidate, items) {
			unauthorized = append(unauthorized, candidate)
		}
	}
	if len(unauthorized) > 0 {
		check.Status = models.CheckFail
		check.Detail = fmt.Sprintf("%d citation(s) do not match any authorized authority; first: %q", len(unauthorized), unauthorized[0])
		check.Excerpt = unauthorized[0]
		return check
	}

	check.Detail = fmt.Sprintf("all %d citation(s) trace to authorized authorities", len(candidates))
	return check
}

// citationAuthorized reports whether a candidate citation matches some
// authorized item's name or citation after normalization. A match is by
// equality or containment in either direction, so truncated or over-captured
// case names still resolve.
func citationAuthorized(candidate string, items []models.KnowledgeItem) bool {
	norm := normalizeCitation(candidate)
	if norm == "" {
		return true
	}
	for _, item := range items {
		for _, field := range []string{item.Name, item.Citation} {
			ref := normalizeCitation(field)
			if ref == "" {
				continue
			}
			if norm == ref || strings.Contains(norm, ref) || strings.Contains(ref, norm) {
				return true
			}
		}
	}
	return false
}

// normalizeCitation case-folds, strips punctuation, and collapses whitespace
func normalizeCitation(s string) string {
	stripped := nonAlnumRe.ReplaceAllString(strings.ToLower(s), "")
	return strings.Join(strings.Fields(stripped), " ")
}

// checkRuleMapping finds sentences asserting a rule of law and verifies each
// maps to some authorized rule or holding above the similarity threshold. The
// reported score is the worst best-match among the unmapped sentences.
func (v *Validator) checkRuleMapping(text string, items []models.KnowledgeItem) models.ValidationCheck {
	check := models.ValidationCheck{Category: models.CheckRuleMapping, Status: models.CheckPass}
	threshold := v.pol.RuleMappingThreshold

	normative := 0
	worst := -1.0
	var worstSentence string
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		if !containsAnyPhrase(lower, v.pol.NormativePhrases) {
			continue
		}
		normative++

		best := 0.0
		for _, item := range items {
			for _, field := range []string{item.RuleOfLaw, item.Holding} {
				if score := Similarity(sentence, field); score > best {
					best = score
				}
			}
		}
		if best < threshold && (worst < 0 || best < worst) {
			worst = best
			worstSentence = sentence
		}
	}

	if worst >= 0 {
		check.Status = models.CheckFail
		check.Detail = fmt.Sprintf("rule assertion does not map to any authorized rule (best similarity %.2f, threshold %.2f): %q", worst, threshold, worstSentence)
		check.Excerpt = worstSentence
		check.Similarity = &worst
		check.Threshold = &threshold
		return check
	}

	if normative == 0 {
		check.Detail = "no rule assertions detected"
	} else {
		check.Detail = fmt.Sprintf("all %d rule assertion(s) map to authorized rules", normative)
	}
	return check
}

// checkConstraints verifies required elements appear in the text and required
// tests are at least touched. A missing element fails; a missing test only
// downgrades the check to a warning.
func (v *Validator) checkConstraints(text string, constraints []models.ConstraintRecord) models.ValidationCheck {
	check := models.ValidationCheck{Category: models.CheckConstraintCompliance, Status: models.CheckPass}
	lowerText := strings.ToLower(text)

	for _, c := range constraints {
		if c.Kind != models.ConstraintRequiredElement {
			continue
		}
		words := contentWords(c.Text, 3)
		if len(words) == 0 {
			continue
		}
		if !anyWordPresent(lowerText, words) {
			check.Status = models.CheckFail
			check.Detail = fmt.Sprintf("required element not addressed in the draft: %q", c.Text)
			check.Excerpt = c.Text
			return check
		}
	}

	for _, c := range constraints {
		if c.Kind != models.ConstraintRequiredTest {
			continue
		}
		words := contentWords(c.Text, 3)
		if len(words) > 3 {
			words = words[:3]
		}
		if len(words) == 0 {
			continue
		}
		if !anyWordPresent(lowerText, words) {
			check.Status = models.CheckWarning
			check.Detail = fmt.Sprintf("required test not clearly invoked in the draft: %q", c.Text)
			check.Excerpt = c.Text
			return check
		}
	}

	check.Detail = "required constraints addressed"
	return check
}

// splitSentences breaks text on terminal punctuation, dropping blanks
func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// containsAnyPhrase reports whether the lower-cased text contains any phrase
func containsAnyPhrase(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// contentWords returns the lower-cased words of s longer than minLen after
// trimming surrounding punctuation
func contentWords(s string, minLen int) []string {
	var words []string
	for _, token := range strings.Fields(strings.ToLower(s)) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(token) > minLen {
			words = append(words, token)
		}
	}
	return words
}

// anyWordPresent reports whether any word occurs in the lower-cased text
func anyWordPresent(lowerText string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lowerText, w) {
			return true
		}
	}
	return false
}
