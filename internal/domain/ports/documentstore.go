package ports

import (
	"context"

	"github.com/ersonp/osl-core/internal/domain/entities"
)

// DocumentStore defines the interface for persisting encoded documents.
type DocumentStore interface {
	// EnsureSchema creates the storage schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// SaveDocument saves or replaces a document keyed by its id.
	SaveDocument(ctx context.Context, doc *entities.StoredDocument) error

	// FindDocument finds a document by id. Returns nil, nil when absent.
	FindDocument(ctx context.Context, id string) (*entities.StoredDocument, error)

	// ListDocuments lists documents of the given full type key, or all
	// documents when docType is empty, ordered by type then name.
	ListDocuments(ctx context.Context, docType string) ([]*entities.StoredDocument, error)

	// DeleteDocument deletes a document by id.
	DeleteDocument(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
