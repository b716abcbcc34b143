package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// primitiveValidator accepts primitives by tag and instances by key.
var primitiveValidator = ValidatorFunc(func(value any, target string) (bool, error) {
	if IsPrimitive(target) {
		return MatchesPrimitive(value, target), nil
	}
	inst, ok := value.(*Instance)
	return ok && inst.Descriptor().DescendsFrom(target), nil
})

func TestProperty_InitialValue(t *testing.T) {
	tests := []struct {
		card Cardinality
		want any
	}{
		{Optional, nil},
		{Required, nil},
		{ZeroOrMore, []any{}},
		{OneOrMore, []any{}},
		{"0.2", []any{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.card), func(t *testing.T) {
			p := NewProperty(PropertyDefinition{Name: "p", Target: "int", Cardinality: tt.card}, primitiveValidator)
			assert.Equal(t, tt.want, p.Get())
			assert.False(t, p.IsSet())
		})
	}
}

func TestProperty_SetScalar(t *testing.T) {
	p := NewProperty(PropertyDefinition{Name: "count", Target: "int", Cardinality: Optional}, primitiveValidator)

	require.NoError(t, p.Set(3))
	assert.Equal(t, 3, p.Get())
	assert.True(t, p.IsSet())

	err := p.Set("three")
	var mismatch *TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "count", mismatch.Property)
	assert.Equal(t, "int", mismatch.Target)
	assert.Equal(t, "three", mismatch.Value)
	assert.Equal(t, 3, p.Get())
}

func TestProperty_SetSequence(t *testing.T) {
	p := NewProperty(PropertyDefinition{Name: "tags", Target: "str", Cardinality: ZeroOrMore}, primitiveValidator)

	err := p.Set("solo")
	assert.ErrorIs(t, err, ErrCardinality)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	err = p.Set([]any{"a", 1})
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, []any{}, p.Get())

	require.NoError(t, p.Set([]string{"a", "b"}))
	assert.Equal(t, []any{"a", "b"}, p.Get())
}

func TestProperty_Append(t *testing.T) {
	p := NewProperty(PropertyDefinition{Name: "tags", Target: "str", Cardinality: ZeroOrMore}, primitiveValidator)

	require.NoError(t, p.Append("a"))
	assert.Len(t, p.Get(), 1)

	assert.ErrorIs(t, p.Append(2), ErrTypeMismatch)
	assert.Len(t, p.Get(), 1)

	scalar := NewProperty(PropertyDefinition{Name: "n", Target: "str", Cardinality: Optional}, primitiveValidator)
	assert.ErrorIs(t, scalar.Append("a"), ErrCardinality)
}

func TestProperty_ReadOnly(t *testing.T) {
	p := NewProperty(PropertyDefinition{Name: "frozen", Target: "str", Cardinality: Forbidden}, primitiveValidator)

	assert.ErrorIs(t, p.Set("x"), ErrReadOnlyProperty)
	assert.ErrorIs(t, p.Append("x"), ErrReadOnlyProperty)
	assert.Nil(t, p.Get())
}

func TestProperty_ValidatorError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProperty(PropertyDefinition{Name: "p", Target: "x", Cardinality: Optional},
		ValidatorFunc(func(any, string) (bool, error) { return false, boom }))

	err := p.Set(1)

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTypeMismatch)
}

func TestProperty_Reset(t *testing.T) {
	p := NewProperty(PropertyDefinition{Name: "tags", Target: "str", Cardinality: ZeroOrMore}, primitiveValidator)
	require.NoError(t, p.Append("a"))

	p.Reset()

	assert.Equal(t, []any{}, p.Get())
}

func TestProperty_Equal(t *testing.T) {
	def := PropertyDefinition{Name: "tags", Target: "str", Cardinality: ZeroOrMore}
	a := NewProperty(def, primitiveValidator)
	b := NewProperty(def, primitiveValidator)
	require.NoError(t, a.Set([]any{"x"}))
	require.NoError(t, b.Set([]any{"x"}))

	assert.True(t, a.Equal(b))

	require.NoError(t, b.Append("y"))
	assert.False(t, a.Equal(b))

	other := NewProperty(PropertyDefinition{Name: "tags", Target: "str", Cardinality: ZeroOrMore, Doc: "d"}, primitiveValidator)
	require.NoError(t, other.Set([]any{"x"}))
	assert.False(t, a.Equal(other))
}

func TestProperty_String(t *testing.T) {
	p := NewProperty(PropertyDefinition{Name: "tags", Target: "str", Cardinality: ZeroOrMore}, primitiveValidator)
	require.NoError(t, p.Set([]any{"a", "b"}))

	assert.Equal(t, "tags: ['a', 'b']", p.String())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"scalar string", "a", "a"},
		{"string list", []any{"a", "b"}, "['a', 'b']"},
		{"embedded quote", []any{"it's"}, `['it\'s']`},
		{"numbers", []any{1, 2.5}, "[1, 2.5]"},
		{"empty", []any{}, "[]"},
		{"unset", nil, "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value))
		})
	}
}

func TestCardinality(t *testing.T) {
	tests := []struct {
		card      Cardinality
		forbidden bool
		sequence  bool
		required  bool
		valid     bool
	}{
		{Forbidden, true, false, false, true},
		{Optional, false, false, false, true},
		{Required, false, false, true, true},
		{ZeroOrMore, false, true, false, true},
		{OneOrMore, false, true, true, true},
		{"many", false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.card), func(t *testing.T) {
			assert.Equal(t, tt.forbidden, tt.card.IsForbidden())
			assert.Equal(t, tt.sequence, tt.card.IsSequence())
			assert.Equal(t, tt.required, tt.card.IsRequired())
			assert.Equal(t, tt.valid, tt.card.Validate() == nil)
		})
	}
}
