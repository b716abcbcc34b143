package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/infrastructure/config"
)

// setupTestRepo creates an in-memory SQLite repository for testing.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(config.StoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.EnsureSchema(context.Background())
	require.NoError(t, err)

	return repo
}

// freezeTime pins timeNow for the duration of a test.
func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}

func newDoc(id, docType, name string) *entities.StoredDocument {
	return &entities.StoredDocument{
		ID:      id,
		Type:    docType,
		Name:    name,
		Version: 1,
		Body:    []byte(`{"_meta": {"uid": "` + id + `"}, "name": "` + name + `"}`),
	}
}

func TestNewRepository(t *testing.T) {
	t.Run("success with memory database", func(t *testing.T) {
		repo, err := NewRepository(config.StoreConfig{Path: ":memory:"})
		require.NoError(t, err)
		defer repo.Close()
		assert.Equal(t, ":memory:", repo.Path())
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewRepository(config.StoreConfig{Path: ""})
		require.Error(t, err)
	})
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo := setupTestRepo(t)

	// Verify tables exist
	tables := []string{"documents", "audit_log"}
	for _, table := range tables {
		var count int
		err := repo.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestRepository_EnsureSchema_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)

	// Should not error when called again
	err := repo.EnsureSchema(context.Background())
	require.NoError(t, err)
}

func TestRepository_SaveAndFind(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, created)

	doc := newDoc("doc-1", "cim.2.designing.project", "CMIP6")
	require.NoError(t, repo.SaveDocument(ctx, doc))

	found, err := repo.FindDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, "cim.2.designing.project", found.Type)
	assert.Equal(t, "CMIP6", found.Name)
	assert.Equal(t, 1, found.Version)
	assert.JSONEq(t, string(doc.Body), string(found.Body))
	assert.True(t, created.Equal(found.CreatedAt))
}

func TestRepository_FindDocument_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	found, err := repo.FindDocument(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepository_SaveDocument_Replace(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, created)

	require.NoError(t, repo.SaveDocument(ctx, newDoc("doc-1", "cim.2.designing.project", "CMIP5")))

	updated := created.Add(time.Hour)
	freezeTime(t, updated)
	replacement := newDoc("doc-1", "cim.2.designing.project", "CMIP6")
	replacement.Version = 2
	require.NoError(t, repo.SaveDocument(ctx, replacement))

	found, err := repo.FindDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "CMIP6", found.Name)
	assert.Equal(t, 2, found.Version)
	assert.True(t, created.Equal(found.CreatedAt), "creation time survives replacement")
	assert.True(t, updated.Equal(found.UpdatedAt))

	count, err := repo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepository_SaveDocument_RequiresID(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.SaveDocument(context.Background(), newDoc("", "cim.2.shared.party", "x"))

	assert.Error(t, err)
}

func TestRepository_ListDocuments(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	docs := []*entities.StoredDocument{
		newDoc("p2", "cim.2.designing.project", "Zeta"),
		newDoc("e1", "cim.2.designing.numerical_experiment", "amip"),
		newDoc("p1", "cim.2.designing.project", "Alpha"),
	}
	for _, d := range docs {
		require.NoError(t, repo.SaveDocument(ctx, d))
	}

	tests := []struct {
		name    string
		docType string
		ids     []string
	}{
		{
			name:    "all documents",
			docType: "",
			ids:     []string{"e1", "p1", "p2"},
		},
		{
			name:    "by type",
			docType: "cim.2.designing.project",
			ids:     []string{"p1", "p2"},
		},
		{
			name:    "unknown type",
			docType: "cim.2.shared.party",
			ids:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.ListDocuments(ctx, tt.docType)
			require.NoError(t, err)

			var ids []string
			for _, d := range found {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestRepository_DeleteDocument(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveDocument(ctx, newDoc("doc-1", "cim.2.shared.party", "Charlotte")))
	require.NoError(t, repo.DeleteDocument(ctx, "doc-1"))

	found, err := repo.FindDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Nil(t, found)

	err = repo.DeleteDocument(ctx, "doc-1")
	assert.Error(t, err)
}

func TestRepository_AuditLog(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	doc := newDoc("doc-1", "cim.2.shared.party", "Charlotte")
	require.NoError(t, repo.SaveDocument(ctx, doc))
	doc.Version = 2
	require.NoError(t, repo.SaveDocument(ctx, doc))
	require.NoError(t, repo.DeleteDocument(ctx, "doc-1"))

	entries, err := repo.FindAuditLog(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, entities.AuditSave, entries[0].Action)
	assert.Equal(t, 1, entries[0].Version)
	assert.Equal(t, entities.AuditSave, entries[1].Action)
	assert.Equal(t, 2, entries[1].Version)
	assert.Equal(t, entities.AuditDelete, entries[2].Action)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}
