package mocks

import (
	"context"
	"sort"

	"github.com/ersonp/osl-core/internal/domain/entities"
)

// DocumentStore is a mock implementation of ports.DocumentStore.
type DocumentStore struct {
	Docs   map[string]*entities.StoredDocument
	Err    error
	Closed bool
}

// NewDocumentStore creates a new mock DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		Docs: make(map[string]*entities.StoredDocument),
	}
}

// EnsureSchema creates the storage schema if it doesn't exist.
func (m *DocumentStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// SaveDocument saves or replaces a document keyed by its id.
func (m *DocumentStore) SaveDocument(_ context.Context, doc *entities.StoredDocument) error {
	if m.Err != nil {
		return m.Err
	}
	stored := *doc
	m.Docs[doc.ID] = &stored
	return nil
}

// FindDocument finds a document by id.
func (m *DocumentStore) FindDocument(_ context.Context, id string) (*entities.StoredDocument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Docs[id], nil
}

// ListDocuments lists documents of the given type, or all documents.
func (m *DocumentStore) ListDocuments(_ context.Context, docType string) ([]*entities.StoredDocument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*entities.StoredDocument, 0, len(m.Docs))
	for _, d := range m.Docs {
		if docType == "" || d.Type == docType {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type < result[j].Type
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// DeleteDocument deletes a document by id.
func (m *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Docs, id)
	return nil
}

// Close marks the store closed.
func (m *DocumentStore) Close() error {
	m.Closed = true
	return nil
}
