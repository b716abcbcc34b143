package entities

// Class is the concrete, instantiable form of a type descriptor: the
// resolved property list (own first, then inherited, constraints applied)
// plus a name index used by the accessors.
type Class struct {
	Descriptor *TypeDescriptor
	Base       *Class
	Properties []PropertyDefinition
	Defaults   []Constraint
	index      map[string]int
}

// NewClass resolves the property list of desc. Inherited definitions and
// value defaults come from base when given, so constraints of an ancestor
// carry down. Own cardinality constraints then rewrite the matching
// definitions and own value constraints replace inherited defaults.
func NewClass(desc *TypeDescriptor, base *Class) *Class {
	props := desc.AllProperties()
	c := &Class{
		Descriptor: desc,
		Base:       base,
		Properties: props,
		index:      make(map[string]int, len(props)),
	}
	for i, p := range props {
		if base != nil && i >= len(desc.Properties) {
			if inherited, ok := base.Property(p.Name); ok {
				props[i] = inherited
			}
		}
		c.index[p.Name] = i
	}

	own := make(map[string]bool)
	for _, con := range desc.Constraints {
		if con.Kind == ConstraintValue {
			own[con.Property] = true
		}
	}
	if base != nil {
		for _, con := range base.Defaults {
			if _, ok := c.index[con.Property]; ok && !own[con.Property] && !c.declares(con.Property) {
				c.Defaults = append(c.Defaults, con)
			}
		}
	}

	for _, con := range desc.Constraints {
		i, ok := c.index[con.Property]
		if !ok {
			continue
		}
		switch con.Kind {
		case ConstraintCardinality:
			if s, ok := con.Value.(string); ok {
				c.Properties[i].Cardinality = Cardinality(s)
			}
		case ConstraintValue:
			c.Defaults = append(c.Defaults, con)
		}
	}
	return c
}

// declares reports whether name is one of the class's own properties.
func (c *Class) declares(name string) bool {
	for _, p := range c.Descriptor.Properties {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Key returns the entity key.
func (c *Class) Key() string {
	return c.Descriptor.Key
}

// Property returns the resolved definition for name.
func (c *Class) Property(name string) (PropertyDefinition, bool) {
	i, ok := c.index[name]
	if !ok {
		return PropertyDefinition{}, false
	}
	return c.Properties[i], true
}
