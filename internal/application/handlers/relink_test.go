package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/domain/services"
	"github.com/ersonp/osl-core/internal/infrastructure/codec"
)

func mustSet(t *testing.T, inst *entities.Instance, name string, v any) {
	t.Helper()
	require.NoError(t, inst.Set(name, v))
}

// newProject builds a project authored by a party that governs one
// experiment.
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

	experiment, err = f.NewDocument("designing.numerical_experiment", nil)
	require.NoError(t, err)
	mustSet(t, experiment, "name", "amip")
	require.NoError(t, project.Append("governed_experiments", experiment))

	return project, experiment, author
}

func TestRelink(t *testing.T) {
	f := newTestFactory(t)
	project, experiment, author := newProject(t, f)

	bundle, err := codec.NewNative(f).Bundle(project)
	require.NoError(t, err)
	require.Len(t, bundle, 2)

	root, err := Relink(f, bundle)
	require.NoError(t, err)

	assert.Equal(t, project.Meta().GetString("uid"), root.Meta().GetString("uid"))
	governed, err := root.Get("governed_experiments")
	require.NoError(t, err)
	require.Len(t, governed, 1)

	live := governed.([]any)[0].(*entities.Instance)
	assert.Equal(t, "designing.numerical_experiment", live.Key())
	assert.Equal(t, experiment.Meta().GetString("uid"), live.Meta().GetString("uid"))
	assert.Equal(t, "amip", live.GetString("name"))

	// the author is not in the bundle and stays a reference
	ref, _ := root.Meta().Get("author")
	require.IsType(t, &entities.Instance{}, ref)
	assert.Equal(t, entities.KindDocReference, entities.KindOf(ref))
	assert.Equal(t, author.Meta().GetString("uid"), ref.(*entities.Instance).GetString("id"))
}

func TestRelink_Cycle(t *testing.T) {
	f := newTestFactory(t)
	native := codec.NewNative(f)

	a, err := services.NamedBuild(f, "designing.project", "A")
	require.NoError(t, err)
	require.NoError(t, a.Meta().Set("uid", "a"))
	b, err := services.NamedBuild(f, "designing.project", "B")
	require.NoError(t, err)
	require.NoError(t, b.Meta().Set("uid", "b"))

	refA, err := f.ReferenceFor(a)
	require.NoError(t, err)
	refB, err := f.ReferenceFor(b)
	require.NoError(t, err)
	require.NoError(t, a.Append("sub_projects", refB))
	require.NoError(t, b.Append("sub_projects", refA))

	bundleA, err := native.Bundle(a)
	require.NoError(t, err)
	bundleB, err := native.Bundle(b)
	require.NoError(t, err)

	root, err := Relink(f, append(bundleA, bundleB...))
	require.NoError(t, err)

	subs, _ := root.Get("sub_projects")
	linkedB := subs.([]any)[0].(*entities.Instance)
	assert.Equal(t, "B", linkedB.GetString("name"))
	back, _ := linkedB.Get("sub_projects")
	assert.Same(t, root, back.([]any)[0].(*entities.Instance))
}

func TestRelink_Errors(t *testing.T) {
	f := newTestFactory(t)

	part := `{"_meta": {"type": "cim.2.shared.numeric", "source_key": "json by osl_encode V0.2"}, "value": 1.5}`
	noUID := `{"_meta": {"type": "cim.2.designing.project", "source_key": "json by osl_encode V0.2"}}`

	tests := []struct {
		name   string
		bundle []string
		err    error
	}{
		{"empty bundle", nil, nil},
		{"not a document", []string{part}, entities.ErrMalformedDocument},
		{"document without uid", []string{noUID}, entities.ErrMalformedDocument},
		{"bad member", []string{`{`}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Relink(f, tt.bundle)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
