package service

import "lexguard-backend/models"

// RetrieveAuthorities selects the knowledge items authorized for a target
// path. An item is an exact match when its classification path equals the
// target path, and an inherited match when the target path is a prefix of the
// item's path (the item lives at or below the target node). Exact matches
// come first, each group in source order; downstream numbering depends on
// this ordering.
func RetrieveAuthorities(path []string, items []models.KnowledgeItem) []models.KnowledgeItem {
	var exact, inherited []models.KnowledgeItem
	for _, item := range items {
		switch {
		case pathsEqual(item.ClassificationPath, path):
			exact = append(exact, item)
		case pathExtends(item.ClassificationPath, path):
			inherited = append(inherited, item)
		}
	}
	return append(exact, inherited...)
}

// pathsEqual reports whether two classification paths match element for element
func pathsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// pathExtends reports whether prefix is a leading segment of path
func pathExtends(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}
