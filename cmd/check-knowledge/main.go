package main

import (
	"fmt"
	"log"
	"os"

	"lexguard-backend/models"
	"lexguard-backend/repository"
	"lexguard-backend/service"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: check-knowledge <knowledge-base.json>")
	}
	path := os.Args[1]

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	kb, err := models.ParseKnowledgeBase(raw)
	if err != nil {
		log.Fatalf("Invalid knowledge base: %v", err)
	}

	var root models.TaxonomyNode
	for _, node := range kb.Taxonomy {
		if node.IsRoot() {
			root = node
			break
		}
	}

	kindCounts := make(map[models.ItemKind]int)
	constraintCount := 0
	for _, item := range kb.Items {
		kindCounts[item.Kind]++
		constraintCount += len(service.ExtractConstraints(item))
	}

	fmt.Printf("✅ Knowledge base is valid!\n")
	fmt.Printf("   ID: %s\n", repository.ContentID(raw))
	if kb.Name != "" {
		fmt.Printf("   Name: %s\n", kb.Name)
	}
	fmt.Printf("   Root: %s (%s)\n", root.Title, root.ID)
	fmt.Printf("   Nodes: %d\n", len(kb.Taxonomy))
	fmt.Printf("   Items: %d\n", len(kb.Items))
	for kind, count := range kindCounts {
		fmt.Printf("     %s: %d\n", kind, count)
	}
	fmt.Printf("   Constraints: %d\n", constraintCount)
}
