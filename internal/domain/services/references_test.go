package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/osl-core/internal/domain/entities"
)

func TestFactory_ReferenceFor(t *testing.T) {
	f := newTestFactory(t)
	doc, err := f.NewDocument("designing.numerical_experiment", nil)
	require.NoError(t, err)
	require.NoError(t, doc.Set("name", "historical"))

	ref, err := f.ReferenceFor(doc)

	require.NoError(t, err)
	assert.Equal(t, entities.DocReferenceKey, ref.Key())
	assert.Equal(t, "historical", ref.GetString("name"))
	assert.Equal(t, "historical", ref.GetString("canonical_name"))
	assert.Equal(t, doc.Meta().GetString("uid"), ref.GetString("id"))
	assert.Equal(t, "cim.2.designing.numerical_experiment", ref.GetString("type"))
	version, _ := ref.Get("version")
	assert.Equal(t, 1, version)
}

func TestFactory_ReferenceFor_KeepsCanonicalName(t *testing.T) {
	f := newTestFactory(t)
	doc, err := f.NewDocument("designing.project", nil)
	require.NoError(t, err)
	require.NoError(t, doc.Set("name", "CMIP6"))
	require.NoError(t, doc.Set("canonical_name", "cmip6"))

	ref, err := f.ReferenceFor(doc)

	require.NoError(t, err)
	assert.Equal(t, "cmip6", ref.GetString("canonical_name"))
}

func TestFactory_ReferenceFor_Errors(t *testing.T) {
	f := newTestFactory(t)

	_, err := f.ReferenceFor(mustBuild(t, f, "designing.project"))
	assert.ErrorIs(t, err, entities.ErrMalformedDocument)

	_, err = f.ReferenceFor(mustBuild(t, f, "shared.numeric"))
	assert.ErrorIs(t, err, entities.ErrNotADocument)
}

func TestFactory_ReferenceFor_SatisfiesLink(t *testing.T) {
	f := newTestFactory(t)
	exp, err := f.NewDocument("designing.numerical_experiment", nil)
	require.NoError(t, err)
	ref, err := f.ReferenceFor(exp)
	require.NoError(t, err)

	plan := mustBuild(t, f, "designing.simulation_plan")

	assert.NoError(t, plan.Append("will_support_experiments", ref))
}

func TestCollectReferences(t *testing.T) {
	f := newTestFactory(t)

	author, err := f.NewDocument("shared.party", nil)
	require.NoError(t, err)
	authorRef, err := f.ReferenceFor(author)
	require.NoError(t, err)

	root, err := f.NewDocument("designing.project", authorRef)
	require.NoError(t, err)

	exp, err := f.NewDocument("designing.numerical_experiment", nil)
	require.NoError(t, err)
	require.NoError(t, exp.Set("name", "amip"))
	expRef, err := f.ReferenceFor(exp)
	require.NoError(t, err)
	require.NoError(t, expRef.Set("relationship", "requires"))
	require.NoError(t, root.Append("requires_experiments", expRef))

	inline, err := f.NewDocument("designing.numerical_experiment", nil)
	require.NoError(t, err)
	require.NoError(t, inline.Append("related_experiments", expRef))
	require.NoError(t, root.Append("governed_experiments", inline))

	// references without an id are skipped
	require.NoError(t, root.Append("sub_projects", typedRef(t, f, "designing.project")))

	refs, err := CollectReferences(root)

	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, author.Meta().GetString("uid"), refs[0].ID)
	assert.Equal(t, Reference{
		ID:           exp.Meta().GetString("uid"),
		Name:         "amip",
		Type:         "cim.2.designing.numerical_experiment",
		Relationship: "requires",
	}, refs[1])
}

func TestCollectReferences_InlineDocumentWithoutUID(t *testing.T) {
	f := newTestFactory(t)
	root, err := f.NewDocument("designing.project", nil)
	require.NoError(t, err)
	require.NoError(t, root.Append("governed_experiments", mustBuild(t, f, "designing.numerical_experiment")))

	_, err = CollectReferences(root)

	assert.ErrorIs(t, err, entities.ErrMalformedDocument)
}
