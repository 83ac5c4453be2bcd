package service

import "lexguard-backend/models"

// BuildAuthorizedContext packages the navigator, retriever, and extractor
// outputs into the single authorization snapshot a query runs under. Pure
// aggregation; downstream consumers treat the result as immutable.
func BuildAuthorizedContext(
	target models.TaxonomyNode,
	path []string,
	items []models.KnowledgeItem,
	constraints []models.ConstraintRecord,
) models.AuthorizedContext {
	return models.AuthorizedContext{
		TargetNode:  target,
		Path:        path,
		Items:       items,
		Constraints: constraints,
	}
}
