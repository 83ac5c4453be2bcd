package models

import (
	"encoding/json"
	"fmt"
)

// ItemKind represents the kind of legal authority an item holds
type ItemKind string

const (
	ItemKindCase    ItemKind = "case"
	ItemKindStatute ItemKind = "statute"
	ItemKindOther   ItemKind = "other"
)

// KnowledgeItem represents one authority (case, statute, or other) in the knowledge base
type KnowledgeItem struct {
	ID                 string   `json:"id"`
	Kind               ItemKind `json:"kind"`
	Name               string   `json:"name"`
	Citation           string   `json:"citation,omitempty"`
	Facts              string   `json:"facts,omitempty"`
	Question           string   `json:"question,omitempty"`
	Holding            string   `json:"holding,omitempty"`
	RuleOfLaw          string   `json:"ruleOfLaw,omitempty"`
	Notes              string   `json:"notes,omitempty"`
	ClassificationPath []string `json:"classificationPath"` // root-to-node ids, never empty
}

// TaxonomyNode represents one node of the rooted classification tree
type TaxonomyNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ParentID string `json:"parentId,omitempty"` // empty for a root node
}

// IsRoot reports whether the node has no parent
func (n TaxonomyNode) IsRoot() bool {
	return n.ParentID == ""
}

// KnowledgeBase represents the items and taxonomy supplied with a query
type KnowledgeBase struct {
	Name     string          `json:"name,omitempty"`
	Items    []KnowledgeItem `json:"items"`
	Taxonomy []TaxonomyNode  `json:"taxonomy"`
}

// ParseKnowledgeBase decodes a knowledge-base document and validates its integrity
func ParseKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge base document: %w", err)
	}
	if err := kb.Validate(); err != nil {
		return nil, err
	}
	return &kb, nil
}

// Validate checks the structural integrity of the knowledge base:
// unique ids, resolvable classification paths, and intact parent chains.
func (kb *KnowledgeBase) Validate() error {
	if len(kb.Taxonomy) == 0 {
		return fmt.Errorf("knowledge base has no taxonomy nodes")
	}
	if len(kb.Items) == 0 {
		return fmt.Errorf("knowledge base has no items")
	}

	nodes := make(map[string]TaxonomyNode, len(kb.Taxonomy))
	for _, node := range kb.Taxonomy {
		if node.ID == "" {
			return fmt.Errorf("taxonomy node with empty id")
		}
		if _, exists := nodes[node.ID]; exists {
			return fmt.Errorf("duplicate taxonomy node id %q", node.ID)
		}
		nodes[node.ID] = node
	}

	// Every parent chain must terminate at a parentless node.
	for _, node := range kb.Taxonomy {
		seen := map[string]bool{node.ID: true}
		current := node
		for current.ParentID != "" {
			parent, ok := nodes[current.ParentID]
			if !ok {
				return fmt.Errorf("taxonomy node %q references unknown parent %q", current.ID, current.ParentID)
			}
			if seen[parent.ID] {
				return fmt.Errorf("taxonomy parent chain at node %q does not terminate", node.ID)
			}
			seen[parent.ID] = true
			current = parent
		}
	}

	itemIDs := make(map[string]bool, len(kb.Items))
	for _, item := range kb.Items {
		if item.ID == "" {
			return fmt.Errorf("knowledge item with empty id")
		}
		if itemIDs[item.ID] {
			return fmt.Errorf("duplicate knowledge item id %q", item.ID)
		}
		itemIDs[item.ID] = true

		if len(item.ClassificationPath) == 0 {
			return fmt.Errorf("knowledge item %q has an empty classification path", item.ID)
		}
		for _, nodeID := range item.ClassificationPath {
			if _, ok := nodes[nodeID]; !ok {
				return fmt.Errorf("knowledge item %q references unknown taxonomy node %q", item.ID, nodeID)
			}
		}
	}

	return nil
}

// NodeByID returns the taxonomy node with the given id, if present
func (kb *KnowledgeBase) NodeByID(id string) (TaxonomyNode, bool) {
	for _, node := range kb.Taxonomy {
		if node.ID == id {
			return node, true
		}
	}
	return TaxonomyNode{}, false
}
