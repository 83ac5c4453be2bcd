package service

import (
	"regexp"
	"strings"

	"lexguard-backend/models"
)

// Directive markers recognized in an item's notes. Markers are line-anchored;
// a marker's content span runs to the next blank line that is followed by a
// capitalized line, or to the end of the notes.
var (
	testMarkerRe    = regexp.MustCompile(`(?m)^[ \t]*TEST:[ \t]*`)
	elementMarkerRe = regexp.MustCompile(`(?m)^[ \t]*ELEMENT[ \t]+\d+[.:][ \t]*`)
	branchMarkerRe  = regexp.MustCompile(`(?m)^[ \t]*BRANCH[ \t]+[A-Z][.:][ \t]*`)
	noteMarkerRe    = regexp.MustCompile(`(?m)^[ \t]*NOTE:[ \t]*`)
	spanBoundaryRe  = regexp.MustCompile(`\n[ \t]*\n[ \t]*[A-Z]`)
)

// ExtractConstraints mines the directive markers embedded in an item's notes
// into structured records tagged with the item's classification path. Notes
// without markers yield no records; that is not an error.
func ExtractConstraints(item models.KnowledgeItem) []models.ConstraintRecord {
	if strings.TrimSpace(item.Notes) == "" {
		return nil
	}

	kinds := []struct {
		re   *regexp.Regexp
		kind models.ConstraintKind
	}{
		{testMarkerRe, models.ConstraintRequiredTest},
		{elementMarkerRe, models.ConstraintRequiredElement},
		{branchMarkerRe, models.ConstraintAlternativeBranch},
		{noteMarkerRe, models.ConstraintInformational},
	}

	var records []models.ConstraintRecord
	for _, k := range kinds {
		for _, span := range markerSpans(item.Notes, k.re) {
			records = append(records, models.ConstraintRecord{
				OwnerPath: item.ClassificationPath,
				Kind:      k.kind,
				Text:      span,
			})
		}
	}
	return records
}

// markerSpans returns the trimmed content span following each marker match
func markerSpans(text string, marker *regexp.Regexp) []string {
	matches := marker.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	boundaries := spanBoundaryRe.FindAllStringIndex(text, -1)

	var spans []string
	for _, m := range matches {
		start := m[1]
		end := len(text)
		for _, b := range boundaries {
			if b[0] >= start {
				end = b[0]
				break
			}
		}
		if span := strings.TrimSpace(text[start:end]); span != "" {
			spans = append(spans, span)
		}
	}
	return spans
}
