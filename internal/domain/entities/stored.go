package entities

import "time"

// StoredDocument is one encoded document as held by a document store.
// Body is the native-dialect JSON of the document with its inner documents
// replaced by references.
type StoredDocument struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name,omitempty"`
	Version   int       `json:"version"`
	Body      []byte    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditAction names a change made to a stored document.
type AuditAction string

const (
	AuditSave   AuditAction = "save"
	AuditDelete AuditAction = "delete"
)

// AuditEntry records one change made to the document store.
type AuditEntry struct {
	ID         string      `json:"id"`
	Action     AuditAction `json:"action"`
	DocumentID string      `json:"document_id"`
	Version    int         `json:"version,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
