// Package entities contains the data structures of the object model: raw
// schema records, compiled type descriptors, resolved classes, property
// containers and instances.
package entities

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entity record types.
const (
	RecordClass = "class"
	RecordEnum  = "enum"
)

// Primitive type tags usable as property targets.
const (
	PrimitiveInt      = "int"
	PrimitiveStr      = "str"
	PrimitiveFloat    = "float"
	PrimitiveBool     = "bool"
	PrimitiveDatetime = "datetime"
	PrimitiveText     = "text"
)

// Reserved entity keys the engine gives special meaning to.
const (
	NilReasonKey    = "shared.nil_reason"
	DocReferenceKey = "shared.doc_reference"
	DocMetaKey      = "shared.doc_meta_info"
	PartyKey        = "shared.party"
)

const linkedToPrefix = "linked_to("

// IsPrimitive reports whether target is a primitive type tag.
func IsPrimitive(target string) bool {
	switch target {
	case PrimitiveInt, PrimitiveStr, PrimitiveFloat, PrimitiveBool, PrimitiveDatetime, PrimitiveText:
		return true
	}
	return false
}

// LinkedTarget returns X for a target of the form linked_to(X).
func LinkedTarget(target string) (string, bool) {
	if !strings.HasPrefix(target, linkedToPrefix) || !strings.HasSuffix(target, ")") {
		return "", false
	}
	return target[len(linkedToPrefix) : len(target)-1], true
}

// LinkedTo builds a linked_to(X) target.
func LinkedTo(key string) string {
	return linkedToPrefix + key + ")"
}

// Cardinality is a min.max multiplicity such as "0.1" or "1.N".
type Cardinality string

// Common cardinalities.
const (
	Forbidden  Cardinality = "0.0"
	Optional   Cardinality = "0.1"
	Required   Cardinality = "1.1"
	ZeroOrMore Cardinality = "0.N"
	OneOrMore  Cardinality = "1.N"
)

// IsForbidden reports whether the property may never be assigned.
func (c Cardinality) IsForbidden() bool {
	return c == Forbidden
}

// IsSequence reports whether values are held as an ordered sequence.
func (c Cardinality) IsSequence() bool {
	return c != Forbidden && c != Optional && c != Required
}

// IsRequired reports whether the minimum multiplicity is at least one.
func (c Cardinality) IsRequired() bool {
	return strings.HasPrefix(string(c), "1")
}

// Validate checks the min.max shape.
func (c Cardinality) Validate() error {
	lo, hi, ok := strings.Cut(string(c), ".")
	if !ok || lo == "" || hi == "" {
		return fmt.Errorf("invalid cardinality %q", string(c))
	}
	return nil
}

// PropertyDefinition is the immutable (name, target, cardinality, doc) tuple.
type PropertyDefinition struct {
	Name        string      `yaml:"name" json:"name"`
	Target      string      `yaml:"target" json:"target"`
	Cardinality Cardinality `yaml:"cardinality" json:"cardinality"`
	Doc         string      `yaml:"doc,omitempty" json:"doc,omitempty"`
}

// UnmarshalYAML accepts either a mapping or the tuple form
// [name, target, cardinality, doc].
func (p *PropertyDefinition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var parts []string
		if err := node.Decode(&parts); err != nil {
			return fmt.Errorf("decoding property tuple: %w", err)
		}
		if len(parts) < 3 || len(parts) > 4 {
			return fmt.Errorf("line %d: property tuple needs 3 or 4 items, got %d", node.Line, len(parts))
		}
		p.Name, p.Target, p.Cardinality = parts[0], parts[1], Cardinality(parts[2])
		if len(parts) == 4 {
			p.Doc = parts[3]
		}
		return nil
	}
	type plain PropertyDefinition
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	*p = PropertyDefinition(v)
	if p.Cardinality == "" {
		p.Cardinality = Optional
	}
	return nil
}

// EnumMember is one (value, description) pair of an enumeration.
type EnumMember struct {
	Value       string `yaml:"value" json:"value"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// UnmarshalYAML accepts a mapping, a scalar value, or [value, description].
func (m *EnumMember) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		m.Value = node.Value
		return nil
	case yaml.SequenceNode:
		var parts []string
		if err := node.Decode(&parts); err != nil {
			return err
		}
		if len(parts) == 0 || len(parts) > 2 {
			return fmt.Errorf("line %d: enum member needs 1 or 2 items", node.Line)
		}
		m.Value = parts[0]
		if len(parts) == 2 {
			m.Description = parts[1]
		}
		return nil
	}
	type plain EnumMember
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	*m = EnumMember(v)
	return nil
}

// PrintTemplate renders an instance from a format string and an ordered list
// of property names. Placeholders are {} (sequential) or {N} (indexed).
type PrintTemplate struct {
	Format     string   `yaml:"format" json:"format"`
	Properties []string `yaml:"properties" json:"properties"`
}

// UnmarshalYAML accepts a mapping or [format, [properties...]].
func (t *PrintTemplate) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: pstr needs [format, [properties]]", node.Line)
		}
		if err := node.Content[0].Decode(&t.Format); err != nil {
			return err
		}
		return node.Content[1].Decode(&t.Properties)
	}
	type plain PrintTemplate
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	*t = PrintTemplate(v)
	return nil
}

// Constraint kinds.
const (
	ConstraintCardinality = "cardinality"
	ConstraintValue       = "value"
)

// Constraint is a declarative invariant attached to a class.
type Constraint struct {
	Kind     string `yaml:"kind" json:"kind"`
	Property string `yaml:"property" json:"property"`
	Value    any    `yaml:"value" json:"value"`
}

// UnmarshalYAML accepts a mapping or [kind, property, value].
func (c *Constraint) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		if len(node.Content) != 3 {
			return fmt.Errorf("line %d: constraint needs [kind, property, value]", node.Line)
		}
		if err := node.Content[0].Decode(&c.Kind); err != nil {
			return err
		}
		if err := node.Content[1].Decode(&c.Property); err != nil {
			return err
		}
		return node.Content[2].Decode(&c.Value)
	}
	type plain Constraint
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	*c = Constraint(v)
	return nil
}

// SchemaRecord is the constructor record a schema source supplies per entity.
type SchemaRecord struct {
	Type        string               `yaml:"type" json:"type"`
	Base        string               `yaml:"base,omitempty" json:"base,omitempty"`
	IsDocument  *bool                `yaml:"is_document,omitempty" json:"is_document,omitempty"`
	IsAbstract  bool                 `yaml:"is_abstract,omitempty" json:"is_abstract,omitempty"`
	IsOpen      bool                 `yaml:"is_open,omitempty" json:"is_open,omitempty"`
	Properties  []PropertyDefinition `yaml:"properties,omitempty" json:"properties,omitempty"`
	Members     []EnumMember         `yaml:"members,omitempty" json:"members,omitempty"`
	Constraints []Constraint         `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Pstr        *PrintTemplate       `yaml:"pstr,omitempty" json:"pstr,omitempty"`
	Doc         string               `yaml:"doc,omitempty" json:"doc,omitempty"`
}

// Package maps dotted entity keys (package.name) to their records.
type Package map[string]SchemaRecord

// RawSchema is the complete input of the ontology compiler.
type RawSchema struct {
	Name          string             `yaml:"name" json:"name"`
	Version       string             `yaml:"version" json:"version"`
	Documentation string             `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	Packages      map[string]Package `yaml:"packages" json:"packages"`
}

// Bool returns a pointer to b, for optional record flags.
func Bool(b bool) *bool {
	return &b
}
