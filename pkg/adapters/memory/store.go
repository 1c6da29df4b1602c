// Package memory provides in-memory implementations of the engine's
// ports, used in tests, examples and single-process deployments.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/acopio/formflow/pkg/domain"
)

// Store implements ports.SchemaStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStore creates an empty in-memory schema store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// SaveSchema validates and persists a document. Documents are stored as
// serialized bytes so callers cannot mutate stored state through shared
// pointers.
func (s *Store) SaveSchema(ctx context.Context, formID string, doc *domain.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("refusing to save invalid schema: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[formID] = raw
	return formID, nil
}

// LoadSchema retrieves a document by form id.
func (s *Store) LoadSchema(ctx context.Context, formID string) (*domain.Document, error) {
	s.mu.RLock()
	raw, ok := s.data[formID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSchemaNotFound
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return &doc, nil
}

// DeleteSchema removes a document.
func (s *Store) DeleteSchema(ctx context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, formID)
	return nil
}

// List returns the known form ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
