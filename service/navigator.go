package service

import (
	"fmt"
	"strings"

	"lexguard-backend/models"
)

// SelectTargetNode picks the taxonomy node a query should be analyzed under.
// The query is tokenized with short tokens and stop words stripped; if nothing
// survives, a root node is returned as the fallback. Otherwise every node's
// title is scored against the filtered query and the first node whose score
// strictly exceeds threshold at the maximum wins. Nodes must not be empty;
// callers validate the knowledge base first.
func SelectTargetNode(query string, nodes []models.TaxonomyNode, threshold float64, stopWords map[string]bool) models.TaxonomyNode {
	if len(nodes) == 0 {
		return models.TaxonomyNode{}
	}

	var kept []string
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if len(token) <= 2 || stopWords[token] {
			continue
		}
		kept = append(kept, token)
	}
	if len(kept) == 0 {
		return rootFallback(nodes)
	}
	filtered := strings.Join(kept, " ")

	best := -1
	bestScore := threshold
	for i, node := range nodes {
		score := Similarity(filtered, node.Title)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return rootFallback(nodes)
	}
	return nodes[best]
}

// rootFallback returns the first parentless node, or the first node overall
// when no node is parentless
func rootFallback(nodes []models.TaxonomyNode) models.TaxonomyNode {
	for _, node := range nodes {
		if node.IsRoot() {
			return node
		}
	}
	return nodes[0]
}

// ComputePath walks parent links from target up to a root and returns the
// node ids ordered root to target. A parent id that resolves to no node is an
// error: a silently truncated path would wrongly exclude valid authorities.
func ComputePath(target models.TaxonomyNode, nodes []models.TaxonomyNode) ([]string, error) {
	index := make(map[string]models.TaxonomyNode, len(nodes))
	for _, node := range nodes {
		index[node.ID] = node
	}

	path := []string{target.ID}
	seen := map[string]bool{target.ID: true}
	current := target
	for current.ParentID != "" {
		parent, ok := index[current.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: node %q references missing parent %q", ErrBrokenTaxonomy, current.ID, current.ParentID)
		}
		if seen[parent.ID] {
			return nil, fmt.Errorf("%w: parent chain through %q does not terminate", ErrBrokenTaxonomy, parent.ID)
		}
		seen[parent.ID] = true
		path = append(path, parent.ID)
		current = parent
	}

	// Collected target-to-root; the contract is root-to-target.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
