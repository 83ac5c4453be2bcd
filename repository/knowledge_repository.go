// Package repository keeps parsed knowledge bases in an in-memory registry
// keyed by the BLAKE2b-256 hash of the raw document. Content addressing makes
// uploads idempotent: re-uploading the same document yields the same id.
package repository

import (
	"context"
	"encoding/hex"
	"errors"
	"sort"
	"sync"
	"time"

	"lexguard-backend/models"

	"golang.org/x/crypto/blake2b"
)

var ErrKnowledgeBaseNotFound = errors.New("knowledge base not found")

// KnowledgeRecord is the registry metadata for a stored knowledge base
type KnowledgeRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Items      int       `json:"items"`
	Nodes      int       `json:"nodes"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// KnowledgeRepository is an in-memory registry of parsed knowledge bases.
// Stored knowledge bases are treated as read-only by all callers.
type KnowledgeRepository struct {
	mu      sync.RWMutex
	entries map[string]knowledgeEntry
}

type knowledgeEntry struct {
	kb     *models.KnowledgeBase
	record KnowledgeRecord
}

// NewKnowledgeRepository creates an empty registry
func NewKnowledgeRepository() *KnowledgeRepository {
	return &KnowledgeRepository{entries: make(map[string]knowledgeEntry)}
}

// ContentID returns the hex BLAKE2b-256 hash of a raw knowledge-base document
func ContentID(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Store registers a parsed knowledge base under the content id of its raw
// document. Storing the same document again returns the existing record.
func (r *KnowledgeRepository) Store(ctx context.Context, raw []byte, kb *models.KnowledgeBase) (KnowledgeRecord, error) {
	if kb == nil {
		return KnowledgeRecord{}, errors.New("knowledge base is nil")
	}
	id := ContentID(raw)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[id]; ok {
		return existing.record, nil
	}

	record := KnowledgeRecord{
		ID:         id,
		Name:       kb.Name,
		Items:      len(kb.Items),
		Nodes:      len(kb.Taxonomy),
		Size:       int64(len(raw)),
		UploadedAt: time.Now().UTC(),
	}
	r.entries[id] = knowledgeEntry{kb: kb, record: record}
	return record, nil
}

// Get retrieves a stored knowledge base by content id
func (r *KnowledgeRepository) Get(ctx context.Context, id string) (*models.KnowledgeBase, KnowledgeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, KnowledgeRecord{}, ErrKnowledgeBaseNotFound
	}
	return entry.kb, entry.record, nil
}

// List returns the registry records, newest first
func (r *KnowledgeRepository) List(ctx context.Context) []KnowledgeRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]KnowledgeRecord, 0, len(r.entries))
	for _, entry := range r.entries {
		records = append(records, entry.record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].UploadedAt.Equal(records[j].UploadedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})
	return records
}

// Delete removes a stored knowledge base
func (r *KnowledgeRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return ErrKnowledgeBaseNotFound
	}
	delete(r.entries, id)
	return nil
}
