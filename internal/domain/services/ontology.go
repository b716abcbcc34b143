// Package services contains the engine logic: the ontology compiler, the
// instance factory and its validator, and document reference helpers.
package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ersonp/osl-core/internal/domain/entities"
)

// Ontology is a compiled, versioned set of type descriptors. It is immutable
// after Compile returns.
type Ontology struct {
	name          string
	version       string
	fullVersion   string
	documentation string
	descriptors   map[string]*entities.TypeDescriptor
	packages      map[string][]string
}

// Compile resolves inheritance for every entity in raw and returns the
// compiled ontology. Compiling the same input twice yields equal descriptors.
func Compile(raw *entities.RawSchema) (*Ontology, error) {
	if raw == nil {
		return nil, fmt.Errorf("compiling ontology: no schema")
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("compiling ontology: name is required")
	}

	o := &Ontology{
		name:          raw.Name,
		version:       majorVersion(raw.Version),
		fullVersion:   raw.Version,
		documentation: raw.Documentation,
		descriptors:   make(map[string]*entities.TypeDescriptor),
		packages:      make(map[string][]string),
	}

	records := make(map[string]entities.SchemaRecord)
	for pkg, contents := range raw.Packages {
		keys := make([]string, 0, len(contents))
		for key, rec := range contents {
			p, _, ok := splitKey(key)
			if !ok || p != pkg {
				return nil, fmt.Errorf("package %s: entity key %q: %w", pkg, key, entities.ErrInvalidTypeKey)
			}
			if _, dup := records[key]; dup {
				return nil, fmt.Errorf("entity %s defined twice", key)
			}
			records[key] = rec
			keys = append(keys, key)
		}
		sort.Strings(keys)
		o.packages[pkg] = keys
	}

	for _, key := range sortedKeys(records) {
		d, err := o.describe(key, records)
		if err != nil {
			return nil, fmt.Errorf("compiling %s: %w", key, err)
		}
		o.descriptors[key] = d
	}
	return o, nil
}

func (o *Ontology) describe(key string, records map[string]entities.SchemaRecord) (*entities.TypeDescriptor, error) {
	rec := records[key]
	if rec.Type != entities.RecordClass && rec.Type != entities.RecordEnum {
		return nil, fmt.Errorf("unknown record type %q", rec.Type)
	}

	hierarchy, err := baseHierarchy(key, records)
	if err != nil {
		return nil, err
	}

	pkg, className, _ := splitKey(key)
	d := &entities.TypeDescriptor{
		Key:           key,
		Type:          rec.Type,
		Package:       pkg,
		ClassName:     className,
		OntologyName:  o.name,
		Version:       o.version,
		FullTypeKey:   o.FullTypeKey(key),
		Base:          rec.Base,
		BaseHierarchy: hierarchy,
		Properties:    append([]entities.PropertyDefinition(nil), rec.Properties...),
		IsAbstract:    rec.IsAbstract,
		Members:       append([]entities.EnumMember(nil), rec.Members...),
		IsOpen:        rec.IsOpen,
		Constraints:   append([]entities.Constraint(nil), rec.Constraints...),
		Pstr:          rec.Pstr,
		Doc:           rec.Doc,
	}

	for _, p := range d.Properties {
		if err := p.Cardinality.Validate(); err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
	}
	if rec.IsDocument != nil {
		d.IsDocument = *rec.IsDocument
	}
	if !d.IsClass() {
		if len(d.Constraints) > 0 {
			return nil, fmt.Errorf("constraints on enumeration %s", key)
		}
		return d, nil
	}

	seen := make(map[string]bool)
	explicitDocument := rec.IsDocument != nil
	for _, b := range hierarchy {
		ancestor := records[b]
		for _, p := range ancestor.Properties {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			d.InheritedProperties = append(d.InheritedProperties, p)
		}
		if !explicitDocument && ancestor.IsDocument != nil {
			d.IsDocument = *ancestor.IsDocument
			explicitDocument = true
		}
	}
	if err := checkConstraints(d); err != nil {
		return nil, err
	}
	return d, nil
}

// checkConstraints rejects constraints of unknown kind, on properties the
// class does not have, or carrying an invalid cardinality.
func checkConstraints(d *entities.TypeDescriptor) error {
	props := make(map[string]bool)
	for _, p := range d.AllProperties() {
		props[p.Name] = true
	}
	for _, c := range d.Constraints {
		switch c.Kind {
		case entities.ConstraintValue:
		case entities.ConstraintCardinality:
			s, ok := c.Value.(string)
			if !ok {
				return fmt.Errorf("cardinality constraint on %s: value %v is not a cardinality", c.Property, c.Value)
			}
			if err := entities.Cardinality(s).Validate(); err != nil {
				return fmt.Errorf("cardinality constraint on %s: %w", c.Property, err)
			}
		default:
			return fmt.Errorf("unknown constraint kind %q", c.Kind)
		}
		if !props[c.Property] {
			return fmt.Errorf("constraint on %q: %w", c.Property, entities.ErrUnknownProperty)
		}
	}
	return nil
}

// baseHierarchy walks base links from key, nearest ancestor first.
func baseHierarchy(key string, records map[string]entities.SchemaRecord) ([]string, error) {
	var hierarchy []string
	visited := map[string]bool{key: true}
	current := key
	for {
		base := records[current].Base
		if base == "" {
			return hierarchy, nil
		}
		if visited[base] {
			return nil, &entities.UnresolvableBaseError{Entity: key, Base: base, Cycle: true}
		}
		if _, ok := records[base]; !ok {
			return nil, &entities.UnresolvableBaseError{Entity: key, Base: base}
		}
		visited[base] = true
		hierarchy = append(hierarchy, base)
		current = base
	}
}

// Name returns the ontology name.
func (o *Ontology) Name() string {
	return o.name
}

// Version returns the major version used in type keys.
func (o *Ontology) Version() string {
	return o.version
}

// FullVersion returns the version string as supplied by the schema.
func (o *Ontology) FullVersion() string {
	return o.fullVersion
}

// Documentation returns the ontology documentation.
func (o *Ontology) Documentation() string {
	return o.documentation
}

// Descriptor returns the descriptor for an entity key.
func (o *Ontology) Descriptor(key string) (*entities.TypeDescriptor, bool) {
	d, ok := o.descriptors[key]
	return d, ok
}

// Keys returns every entity key, sorted.
func (o *Ontology) Keys() []string {
	return sortedKeys(o.descriptors)
}

// Packages returns the package names, sorted.
func (o *Ontology) Packages() []string {
	return sortedKeys(o.packages)
}

// PackageContents returns the entity keys of a package.
func (o *Ontology) PackageContents(pkg string) ([]string, error) {
	keys, ok := o.packages[pkg]
	if !ok {
		return nil, fmt.Errorf("unrecognised package %q", pkg)
	}
	return append([]string(nil), keys...), nil
}

// FullTypeKey qualifies an entity key with ontology name and version.
func (o *Ontology) FullTypeKey(key string) string {
	return o.name + "." + o.version + "." + key
}

// CheckAndStrip returns the bare package.name form of key. Fully qualified
// keys must carry this ontology's name and version.
func (o *Ontology) CheckAndStrip(key string) (string, error) {
	parts := strings.Split(key, ".")
	switch len(parts) {
	case 1, 2:
		return key, nil
	case 4:
		if parts[0] != o.name || parts[1] != o.version {
			return "", fmt.Errorf("ontology %s.%s cannot build %s: %w", o.name, o.version, key, entities.ErrInvalidTypeKey)
		}
		return parts[2] + "." + parts[3], nil
	}
	return "", fmt.Errorf("unrecognised key %q: %w", key, entities.ErrInvalidTypeKey)
}

// IsSubtype reports whether key names ancestor or one of its descendants.
func (o *Ontology) IsSubtype(key, ancestor string) bool {
	d, ok := o.descriptors[key]
	return ok && d.DescendsFrom(ancestor)
}

func (o *Ontology) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "== ontology: %s ==\n", o.name)
	for _, pkg := range o.Packages() {
		names := make([]string, len(o.packages[pkg]))
		for i, key := range o.packages[pkg] {
			_, names[i], _ = splitKey(key)
		}
		fmt.Fprintf(&b, "%s: %s\n", pkg, strings.Join(names, ", "))
	}
	b.WriteString("=======")
	return b.String()
}

// PackageOf returns the package segment of a one, two or three part key.
func PackageOf(key string) (string, error) {
	parts := strings.Split(key, ".")
	switch len(parts) {
	case 1, 2:
		return parts[0], nil
	case 3:
		return parts[1], nil
	}
	return "", fmt.Errorf("unrecognised type key %q: %w", key, entities.ErrInvalidTypeKey)
}

func splitKey(key string) (pkg, name string, ok bool) {
	pkg, name, ok = strings.Cut(key, ".")
	if !ok || pkg == "" || name == "" || strings.Contains(name, ".") {
		return "", "", false
	}
	return pkg, name, true
}

func majorVersion(v string) string {
	major, _, _ := strings.Cut(v, ".")
	return major
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
