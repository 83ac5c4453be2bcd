package service

import (
	"fmt"
	"strings"

	"lexguard-backend/models"
)

// CompileInstructions renders the authorized context and the user's query
// into the instruction prompt sent to the completion service. Sections appear
// in a fixed order and items keep their retrieval numbering, so identical
// inputs always produce identical output ("item 3" stays item 3).
func CompileInstructions(ctx models.AuthorizedContext, query string) string {
	var b strings.Builder

	b.WriteString("You are a legal analyst. You answer questions using only the authorities this prompt authorizes.\n\n")

	b.WriteString("ANALYTICAL DOMAIN: ")
	b.WriteString(ctx.TargetNode.Title)
	b.WriteString("\n\nQUESTION:\n")
	b.WriteString(query)
	b.WriteString("\n\n")

	b.WriteString("HARD CONSTRAINTS:\n")
	b.WriteString("1. Cite only the authorized authorities listed below.\n")
	b.WriteString("2. Every rule of law you assert must trace to the rule stated by an authorized authority.\n")
	b.WriteString("3. Use formal citation form when referring to an authority.\n")
	b.WriteString("4. If the authorized authorities cannot support an answer, state that insufficiency instead of inventing authority.\n\n")

	if tests := constraintsOfKind(ctx.Constraints, models.ConstraintRequiredTest); len(tests) > 0 {
		b.WriteString("REQUIRED TESTS:\n")
		for _, c := range tests {
			b.WriteString("- ")
			b.WriteString(c.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if elements := constraintsOfKind(ctx.Constraints, models.ConstraintRequiredElement); len(elements) > 0 {
		b.WriteString("REQUIRED ELEMENTS:\n")
		for _, c := range elements {
			b.WriteString("- ")
			b.WriteString(c.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("AUTHORIZED AUTHORITIES:\n")
	for i, item := range ctx.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Name)
		writeItemField(&b, "Kind", string(item.Kind))
		writeItemField(&b, "Citation", item.Citation)
		writeItemField(&b, "Facts", item.Facts)
		writeItemField(&b, "Question", item.Question)
		writeItemField(&b, "Holding", item.Holding)
		writeItemField(&b, "Rule of Law", item.RuleOfLaw)
		writeItemField(&b, "Notes", item.Notes)
	}

	b.WriteString("\nAnswer the question using only the authorities listed above.\n")

	return b.String()
}

// writeItemField writes one labeled line, skipping absent fields
func writeItemField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString("   ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

// constraintsOfKind filters constraint records by category, preserving order
func constraintsOfKind(records []models.ConstraintRecord, kind models.ConstraintKind) []models.ConstraintRecord {
	var out []models.ConstraintRecord
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
