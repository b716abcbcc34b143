package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClass(key string, props ...PropertyDefinition) *Class {
	return NewClass(&TypeDescriptor{
		Key:         key,
		Type:        RecordClass,
		FullTypeKey: "t.1." + key,
		Properties:  props,
	}, nil)
}

func newTestInstance(c *Class) *Instance {
	return NewInstance(c, primitiveValidator)
}

var (
	nodeClass = testClass("t.node",
		PropertyDefinition{Name: "name", Target: "str", Cardinality: Optional},
		PropertyDefinition{Name: "next", Target: "t.node", Cardinality: Optional},
		PropertyDefinition{Name: "tags", Target: "str", Cardinality: ZeroOrMore},
	)
	metaClass = testClass(DocMetaKey, PropertyDefinition{Name: "uid", Target: "str", Cardinality: Required})
)

func TestInstance_GetSet(t *testing.T) {
	inst := newTestInstance(nodeClass)

	require.NoError(t, inst.Set("name", "a"))
	v, err := inst.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	_, err = inst.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownProperty)
	assert.ErrorIs(t, inst.Set("missing", 1), ErrUnknownProperty)
	assert.ErrorIs(t, inst.Append("missing", 1), ErrUnknownProperty)
	assert.ErrorIs(t, inst.Reset("missing"), ErrUnknownProperty)
	assert.Equal(t, "", inst.GetString("missing"))
}

func TestInstance_Reset(t *testing.T) {
	inst := newTestInstance(nodeClass)
	require.NoError(t, inst.Set("name", "a"))
	require.NoError(t, inst.Append("tags", "x"))

	require.NoError(t, inst.Reset("name"))
	require.NoError(t, inst.Reset("tags"))

	v, _ := inst.Get("name")
	assert.Nil(t, v)
	v, _ = inst.Get("tags")
	assert.Equal(t, []any{}, v)
}

func TestInstance_Equal(t *testing.T) {
	a := newTestInstance(nodeClass)
	b := newTestInstance(nodeClass)
	assert.True(t, a.Equal(b))

	require.NoError(t, a.Set("name", "x"))
	assert.False(t, a.Equal(b))
	require.NoError(t, b.Set("name", "x"))
	assert.True(t, a.Equal(b))

	childA, childB := newTestInstance(nodeClass), newTestInstance(nodeClass)
	require.NoError(t, childA.Set("name", "c"))
	require.NoError(t, childB.Set("name", "d"))
	require.NoError(t, a.Set("next", childA))
	require.NoError(t, b.Set("next", childB))
	assert.False(t, a.Equal(b))

	require.NoError(t, childB.Set("name", "c"))
	assert.True(t, a.Equal(b))

	// same shape, different descriptor
	other := newTestInstance(testClass("t.node",
		PropertyDefinition{Name: "name", Target: "str", Cardinality: Optional},
		PropertyDefinition{Name: "next", Target: "t.node", Cardinality: Optional},
		PropertyDefinition{Name: "tags", Target: "str", Cardinality: ZeroOrMore},
	))
	assert.False(t, newTestInstance(nodeClass).Equal(other))
}

func TestInstance_EqualCycles(t *testing.T) {
	a, b := newTestInstance(nodeClass), newTestInstance(nodeClass)
	require.NoError(t, a.Set("next", a))
	require.NoError(t, b.Set("next", b))

	assert.True(t, a.Equal(b))
}

func TestInstance_Meta(t *testing.T) {
	docClass := NewClass(&TypeDescriptor{Key: "t.doc", Type: RecordClass, IsDocument: true}, nil)
	doc := newTestInstance(docClass)
	meta := newTestInstance(metaClass)

	require.NoError(t, doc.SetMeta(meta))
	assert.Same(t, meta, doc.Meta())

	assert.ErrorIs(t, doc.SetMeta(newTestInstance(nodeClass)), ErrTypeMismatch)
	assert.ErrorIs(t, newTestInstance(nodeClass).SetMeta(meta), ErrNotADocument)
}

func TestInstance_EqualIgnoresMeta(t *testing.T) {
	docClass := NewClass(&TypeDescriptor{Key: "t.doc", Type: RecordClass, IsDocument: true}, nil)
	a, b := newTestInstance(docClass), newTestInstance(docClass)
	ma, mb := newTestInstance(metaClass), newTestInstance(metaClass)
	require.NoError(t, ma.Set("uid", "1"))
	require.NoError(t, mb.Set("uid", "2"))
	require.NoError(t, a.SetMeta(ma))
	require.NoError(t, b.SetMeta(mb))

	assert.True(t, a.Equal(b))
}

func TestInstance_Clone(t *testing.T) {
	a := newTestInstance(nodeClass)
	child := newTestInstance(nodeClass)
	require.NoError(t, child.Set("name", "child"))
	require.NoError(t, a.Set("next", child))
	require.NoError(t, a.Set("tags", []any{"x", "y"}))

	c := a.Clone()

	assert.True(t, a.Equal(c))
	got, _ := c.Get("next")
	assert.NotSame(t, child, got)

	require.NoError(t, c.Append("tags", "z"))
	tags, _ := a.Get("tags")
	assert.Len(t, tags, 2)
}

func TestInstance_String(t *testing.T) {
	inst := newTestInstance(nodeClass)
	assert.Equal(t, "Instance of t.1.t.node", inst.String())

	require.NoError(t, inst.Set("name", "alpha"))
	assert.Equal(t, "alpha (t.1.t.node)", inst.String())

	templated := NewClass(&TypeDescriptor{
		Key:  "t.numeric",
		Type: RecordClass,
		Properties: []PropertyDefinition{
			{Name: "value", Target: "float", Cardinality: Optional},
			{Name: "units", Target: "str", Cardinality: ZeroOrMore},
		},
		Pstr: &PrintTemplate{Format: "{} {1} {{x}}", Properties: []string{"value", "units"}},
	}, nil)
	n := newTestInstance(templated)
	require.NoError(t, n.Set("value", 2.5))
	require.NoError(t, n.Set("units", []any{"m", "s"}))

	assert.Equal(t, "2.5 ['m', 's'] {x}", n.String())
}

func TestNewClass_Constraints(t *testing.T) {
	c := NewClass(&TypeDescriptor{
		Key:  "t.c",
		Type: RecordClass,
		Properties: []PropertyDefinition{
			{Name: "a", Target: "str", Cardinality: ZeroOrMore},
		},
		InheritedProperties: []PropertyDefinition{
			{Name: "b", Target: "int", Cardinality: Optional},
		},
		Constraints: []Constraint{
			{Kind: ConstraintCardinality, Property: "b", Value: "0.0"},
			{Kind: ConstraintValue, Property: "a", Value: []any{"x"}},
			{Kind: ConstraintValue, Property: "missing", Value: 1},
		},
	}, nil)

	b, ok := c.Property("b")
	require.True(t, ok)
	assert.Equal(t, Forbidden, b.Cardinality)
	require.Len(t, c.Defaults, 1)
	assert.Equal(t, "a", c.Defaults[0].Property)
}

func TestNewClass_InheritsBaseConstraints(t *testing.T) {
	base := NewClass(&TypeDescriptor{
		Key:  "t.base",
		Type: RecordClass,
		Properties: []PropertyDefinition{
			{Name: "n", Target: "int", Cardinality: ZeroOrMore},
			{Name: "s", Target: "str", Cardinality: Optional},
			{Name: "k", Target: "str", Cardinality: Optional},
		},
		Constraints: []Constraint{
			{Kind: ConstraintCardinality, Property: "n", Value: "0.0"},
			{Kind: ConstraintValue, Property: "s", Value: "base"},
			{Kind: ConstraintValue, Property: "k", Value: "kept"},
		},
	}, nil)

	child := NewClass(&TypeDescriptor{
		Key:  "t.child",
		Type: RecordClass,
		Base: "t.base",
		InheritedProperties: []PropertyDefinition{
			{Name: "n", Target: "int", Cardinality: ZeroOrMore},
			{Name: "s", Target: "str", Cardinality: Optional},
			{Name: "k", Target: "str", Cardinality: Optional},
		},
		Constraints: []Constraint{
			{Kind: ConstraintValue, Property: "s", Value: "child"},
		},
	}, base)

	n, ok := child.Property("n")
	require.True(t, ok)
	assert.Equal(t, Forbidden, n.Cardinality)
	assert.Equal(t, []Constraint{
		{Kind: ConstraintValue, Property: "k", Value: "kept"},
		{Kind: ConstraintValue, Property: "s", Value: "child"},
	}, child.Defaults)
}

func TestKindOf(t *testing.T) {
	nilReason := newTestInstance(testClass(NilReasonKey))
	ref := newTestInstance(testClass(DocReferenceKey))

	tests := []struct {
		name  string
		value any
		want  ValueKind
	}{
		{"int", 1, KindPrimitive},
		{"string", "s", KindPrimitive},
		{"composed", newTestInstance(nodeClass), KindComposed},
		{"nil reason", nilReason, KindNilReason},
		{"reference", ref, KindDocReference},
		{"int64", int64(1), KindUnsupported},
		{"nil", nil, KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.value))
		})
	}
}
