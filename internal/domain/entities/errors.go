package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine. Errors carrying context are structs whose
// Is method matches one of these, so callers should test with errors.Is.
var (
	ErrUnknownEntity                   = errors.New("unknown entity")
	ErrUnknownProperty                 = errors.New("unknown property")
	ErrAbstractInstantiation           = errors.New("attempt to instantiate abstract class")
	ErrNotADocument                    = errors.New("entity is not a document")
	ErrReadOnlyProperty                = errors.New("property has cardinality 0.0 and cannot be assigned")
	ErrTypeMismatch                    = errors.New("value does not match property target")
	ErrCardinality                     = errors.New("value does not match property cardinality")
	ErrUnresolvedReferenceType         = errors.New("document reference has no type")
	ErrUnsupportedSerializationVersion = errors.New("unsupported serialization version")
	ErrMalformedDocument               = errors.New("malformed document")
	ErrUnresolvableBase                = errors.New("unresolvable base")
	ErrInvalidTypeKey                  = errors.New("invalid type key")
)

// TypeMismatchError reports a value rejected by a property container.
type TypeMismatchError struct {
	Property string
	Target   string
	Value    any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("property %s: value %v (%T) is not of type %s", e.Property, e.Value, e.Value, e.Target)
}

// Is matches ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// CardinalityError reports a value whose shape does not fit the property
// cardinality, e.g. a scalar assigned to a sequence property.
type CardinalityError struct {
	Property    string
	Cardinality Cardinality
	Value       any
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("property %s: value %v (%T) does not fit cardinality %s", e.Property, e.Value, e.Value, e.Cardinality)
}

// Is matches ErrCardinality and ErrTypeMismatch.
func (e *CardinalityError) Is(target error) bool {
	return target == ErrCardinality || target == ErrTypeMismatch
}

// UnresolvableBaseError reports a broken or cyclic inheritance chain.
type UnresolvableBaseError struct {
	Entity string
	Base   string
	Cycle  bool
}

func (e *UnresolvableBaseError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("entity %s: inheritance cycle through %s", e.Entity, e.Base)
	}
	return fmt.Sprintf("entity %s: base %s not found", e.Entity, e.Base)
}

// Is matches ErrUnresolvableBase.
func (e *UnresolvableBaseError) Is(target error) bool {
	return target == ErrUnresolvableBase
}
