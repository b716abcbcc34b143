package entities

// TypeDescriptor is the compiled, immutable description of one schema entity.
// It is the _osl metadata every instance links back to.
type TypeDescriptor struct {
	Key                 string
	Type                string
	Package             string
	ClassName           string
	OntologyName        string
	Version             string
	FullTypeKey         string
	Base                string
	BaseHierarchy       []string
	Properties          []PropertyDefinition
	InheritedProperties []PropertyDefinition
	IsDocument          bool
	IsAbstract          bool
	Members             []EnumMember
	IsOpen              bool
	Constraints         []Constraint
	Pstr                *PrintTemplate
	Doc                 string
}

// IsEnum reports whether the descriptor describes an enumeration.
func (d *TypeDescriptor) IsEnum() bool {
	return d.Type == RecordEnum
}

// IsClass reports whether the descriptor describes a class.
func (d *TypeDescriptor) IsClass() bool {
	return d.Type == RecordClass
}

// HasMember reports whether value is one of the enum members.
func (d *TypeDescriptor) HasMember(value string) bool {
	for _, m := range d.Members {
		if m.Value == value {
			return true
		}
	}
	return false
}

// DescendsFrom reports whether the descriptor is key or has key as an ancestor.
func (d *TypeDescriptor) DescendsFrom(key string) bool {
	if d.Key == key {
		return true
	}
	for _, b := range d.BaseHierarchy {
		if b == key {
			return true
		}
	}
	return false
}

// AllProperties returns own properties followed by inherited properties not
// shadowed by an own property of the same name.
func (d *TypeDescriptor) AllProperties() []PropertyDefinition {
	own := make(map[string]bool, len(d.Properties))
	all := make([]PropertyDefinition, 0, len(d.Properties)+len(d.InheritedProperties))
	for _, p := range d.Properties {
		own[p.Name] = true
		all = append(all, p)
	}
	for _, p := range d.InheritedProperties {
		if !own[p.Name] {
			all = append(all, p)
		}
	}
	return all
}
