package models

// ConstraintKind represents the category of a directive mined from an item's notes
type ConstraintKind string

const (
	ConstraintRequiredTest      ConstraintKind = "requiredTest"
	ConstraintRequiredElement   ConstraintKind = "requiredElement"
	ConstraintAlternativeBranch ConstraintKind = "alternativeBranch"
	ConstraintInformational     ConstraintKind = "informational"
)

// ConstraintRecord represents one directive extracted from a knowledge item.
// Records are ephemeral: rebuilt per request, identified by position, never stored.
type ConstraintRecord struct {
	OwnerPath []string       `json:"ownerPath"` // classification path of the owning item
	Kind      ConstraintKind `json:"kind"`
	Text      string         `json:"text"`
}

// AuthorizedContext represents the bounded set of authorities and constraints
// a single query is permitted to draw upon. Every item and constraint in it
// has a classification path equal to or extending Path.
type AuthorizedContext struct {
	TargetNode  TaxonomyNode       `json:"targetNode"`
	Path        []string           `json:"path"` // root-to-target node ids
	Items       []KnowledgeItem    `json:"items"`
	Constraints []ConstraintRecord `json:"constraints"`
}
