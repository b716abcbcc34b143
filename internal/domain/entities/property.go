package entities

import "fmt"

// Validator decides whether value is acceptable for a property target. An
// error means the question could not be answered, e.g. an untyped reference.
type Validator interface {
	Validate(value any, target string) (bool, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(value any, target string) (bool, error)

// Validate calls f.
func (f ValidatorFunc) Validate(value any, target string) (bool, error) {
	return f(value, target)
}

// Property is the runtime value holder behind one schema attribute. Scalar
// cardinalities hold a single value or nil, others hold an ordered sequence.
type Property struct {
	def       PropertyDefinition
	validator Validator
	value     any
	values    []any
}

// NewProperty creates an empty container for def.
func NewProperty(def PropertyDefinition, validator Validator) *Property {
	p := &Property{def: def, validator: validator}
	p.Reset()
	return p
}

// Definition returns the property definition.
func (p *Property) Definition() PropertyDefinition {
	return p.def
}

// Name returns the property name.
func (p *Property) Name() string {
	return p.def.Name
}

// Get returns the current value: nil or a scalar, or the []any sequence.
func (p *Property) Get() any {
	if p.def.Cardinality.IsSequence() {
		return p.values
	}
	return p.value
}

// IsSet reports whether the property holds a value or a non-empty sequence.
func (p *Property) IsSet() bool {
	if p.def.Cardinality.IsSequence() {
		return len(p.values) > 0
	}
	return p.value != nil
}

// Reset restores the initial value.
func (p *Property) Reset() {
	p.value = nil
	if p.def.Cardinality.IsSequence() {
		p.values = []any{}
	} else {
		p.values = nil
	}
}

// Set replaces the value. Sequence properties take any slice; every element
// is checked before anything is stored.
func (p *Property) Set(value any) error {
	c := p.def.Cardinality
	if c.IsForbidden() {
		return fmt.Errorf("property %s: %w", p.def.Name, ErrReadOnlyProperty)
	}
	if !c.IsSequence() {
		if err := p.check(value); err != nil {
			return err
		}
		p.value = value
		return nil
	}
	seq, ok := asSequence(value)
	if !ok {
		return &CardinalityError{Property: p.def.Name, Cardinality: c, Value: value}
	}
	for _, e := range seq {
		if err := p.check(e); err != nil {
			return err
		}
	}
	p.values = seq
	return nil
}

// Append adds one element to a sequence property.
func (p *Property) Append(value any) error {
	c := p.def.Cardinality
	if c.IsForbidden() {
		return fmt.Errorf("property %s: %w", p.def.Name, ErrReadOnlyProperty)
	}
	if !c.IsSequence() {
		return &CardinalityError{Property: p.def.Name, Cardinality: c, Value: value}
	}
	if err := p.check(value); err != nil {
		return err
	}
	p.values = append(p.values, value)
	return nil
}

func (p *Property) check(value any) error {
	if p.validator == nil {
		return nil
	}
	ok, err := p.validator.Validate(value, p.def.Target)
	if err != nil {
		return fmt.Errorf("property %s: %w", p.def.Name, err)
	}
	if !ok {
		return &TypeMismatchError{Property: p.def.Name, Target: p.def.Target, Value: value}
	}
	return nil
}

// Equal reports whether both containers share a definition and hold equal values.
func (p *Property) Equal(other *Property) bool {
	if other == nil || p.def != other.def {
		return false
	}
	return valuesEqual(p.Get(), other.Get(), make(map[instancePair]bool))
}

func (p *Property) String() string {
	return fmt.Sprintf("%s: %s", p.def.Name, formatValue(p.Get()))
}
