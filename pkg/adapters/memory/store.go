package memory

import (
	"context"
	"sync"

	"github.com/arborui/arbor/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	docs map[string]*domain.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory document store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]*domain.Document),
	}
}

// Save persists a deep copy of the document so the caller keeps no aliases
// into stored state.
func (s *Store) Save(ctx context.Context, name string, doc *domain.Document) error {
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = copied
	return nil
}

// Load retrieves a copy of the stored document.
func (s *Store) Load(ctx context.Context, name string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[name]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

// Delete removes the stored document.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, name)
	return nil
}

// List returns stored document names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	return names, nil
}
