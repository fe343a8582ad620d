package ports

import (
	"context"

	"github.com/arborui/arbor/pkg/domain"
)

// DocumentStore defines the interface for persisting named page documents.
// This backs the save/load surface of the serve adapters, keeping the core
// free of persistence concerns.
type DocumentStore interface {
	// Save persists the document under the given name, replacing any prior
	// version.
	Save(ctx context.Context, name string, doc *domain.Document) error

	// Load retrieves the document stored under name.
	// Returns domain.ErrDocumentNotFound if it does not exist.
	Load(ctx context.Context, name string) (*domain.Document, error)

	// Delete removes the document stored under name.
	Delete(ctx context.Context, name string) error

	// List returns the names of stored documents.
	List(ctx context.Context) ([]string, error)
}
