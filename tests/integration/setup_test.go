package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/osl-core/internal/application/handlers"
	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/domain/ports"
	"github.com/ersonp/osl-core/internal/domain/services"
	"github.com/ersonp/osl-core/internal/infrastructure/config"
	"github.com/ersonp/osl-core/internal/infrastructure/docstore/sqlite"
	"github.com/ersonp/osl-core/internal/infrastructure/schemasource"
)

var schemaDir = filepath.Join("..", "..", "internal", "infrastructure", "schemasource", "testdata", "cim")

// workspace is an initialized directory with a file-backed store.
type workspace struct {
	dir       string
	factory   *services.Factory
	repo      *sqlite.Repository
	documents *handlers.DocumentHandler
}

func openSQLite(basePath string, cfg *config.Config) (ports.DocumentStore, error) {
	return sqlite.NewRepository(config.StoreConfig{Path: cfg.StorePath(basePath)})
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	_, err := handlers.NewInitHandler(openSQLite).Handle(context.Background(), dir)
	require.NoError(t, err)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	abs, err := filepath.Abs(schemaDir)
	require.NoError(t, err)
	cfg.Ontology.Path = abs

	raw, err := schemasource.Load(cfg.OntologyPath(dir))
	require.NoError(t, err)
	onto, err := services.Compile(raw)
	require.NoError(t, err)
	factory := services.NewFactory(onto)

	repo, err := sqlite.NewRepository(config.StoreConfig{Path: cfg.StorePath(dir)})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchema(context.Background()))

	return &workspace{
		dir:       dir,
		factory:   factory,
		repo:      repo,
		documents: handlers.NewDocumentHandler(factory, repo, nil),
	}
}

func mustSet(t *testing.T, inst *entities.Instance, name string, v any) {
	t.Helper()
	require.NoError(t, inst.Set(name, v))
}

// newProject builds a project authored by a party, governing one
// experiment held inline.
func newProject(t *testing.T, f *services.Factory) (project, experiment, author *entities.Instance) {
	t.Helper()

	author, err := f.NewDocument("shared.party", nil)
	require.NoError(t, err)
	mustSet(t, author, "name", "Charlotte")
	authorRef, err := f.ReferenceFor(author)
	require.NoError(t, err)

	project, err = f.NewDocument("designing.project", authorRef)
	require.NoError(t, err)
	mustSet(t, project, "name", "CMIP6")

	experiment, err = f.NewDocument("designing.numerical_experiment", authorRef)
	require.NoError(t, err)
	mustSet(t, experiment, "name", "amip")
	require.NoError(t, project.Append("governed_experiments", experiment))

	return project, experiment, author
}
