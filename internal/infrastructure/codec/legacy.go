package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/domain/services"
)

// Legacy is the ESD dialect: camelCase keys, a meta envelope and type keys
// spelled <ontology><version>.<package>.<EntityName>. It does not bundle.
type Legacy struct {
	w     *walker
	rules legacyRules
}

// NewLegacy creates a legacy codec building through f.
func NewLegacy(f *services.Factory, opts ...Option) *Legacy {
	o := newOptions(opts)
	r := legacyRules{factory: f}
	return &Legacy{
		w:     &walker{factory: f, rules: r, logger: o.logger, partyFallback: true},
		rules: r,
	}
}

// Dialect returns DialectLegacy.
func (l *Legacy) Dialect() Dialect {
	return DialectLegacy
}

// Encode returns the legacy tree for inst.
func (l *Legacy) Encode(inst *entities.Instance) (map[string]any, error) {
	obj, _, err := l.w.encode(inst, false)
	return obj, err
}

// Decode rebuilds an instance from a legacy tree.
func (l *Legacy) Decode(doc map[string]any) (*entities.Instance, error) {
	return l.w.decode(doc, "")
}

// Marshal encodes inst to legacy JSON.
func (l *Legacy) Marshal(inst *entities.Instance) ([]byte, error) {
	obj, err := l.Encode(inst)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// Unmarshal decodes a legacy JSON document.
func (l *Legacy) Unmarshal(data []byte) (*entities.Instance, error) {
	doc, err := unmarshalObject(data)
	if err != nil {
		return nil, err
	}
	return l.Decode(doc)
}

// TypeKey returns the legacy spelling of an entity key, bare or fully
// qualified: designing.numerical_experiment becomes
// cim2.designing.NumericalExperiment.
func (l *Legacy) TypeKey(key string) (string, error) {
	return l.rules.legacyKey(key)
}

// CanonicalKey returns the fully qualified entity key of a legacy type key.
func (l *Legacy) CanonicalKey(legacy string) (string, error) {
	return l.rules.canonicalKey(legacy)
}

type legacyRules struct {
	factory *services.Factory
}

func (legacyRules) envelope() string                { return "meta" }
func (legacyRules) wireName(property string) string { return ToCamel(property) }
func (legacyRules) propertyName(wire string) string { return ToSnake(wire) }
func (legacyRules) reserved(key string) bool        { return key == "type" }

func (legacyRules) stamp(env map[string]any, d *entities.TypeDescriptor) {
	env["type"] = d.OntologyName + d.Version + "." + d.Package + "." + ToPascal(d.ClassName)
}

func (r legacyRules) entityKey(wireType string) (string, error) {
	return r.canonicalKey(wireType)
}

// encodeRefType leaves keys of other ontologies untouched.
func (r legacyRules) encodeRefType(refType string) string {
	if k, err := r.legacyKey(refType); err == nil {
		return k
	}
	return refType
}

func (r legacyRules) decodeRefType(wireType string) (string, error) {
	return r.canonicalKey(wireType)
}

func (r legacyRules) legacyKey(key string) (string, error) {
	onto := r.factory.Ontology()
	bare, err := onto.CheckAndStrip(key)
	if err != nil {
		return "", err
	}
	pkg, name, ok := strings.Cut(bare, ".")
	if !ok {
		return "", fmt.Errorf("legacy key for %q: %w", key, entities.ErrInvalidTypeKey)
	}
	return onto.Name() + onto.Version() + "." + pkg + "." + ToPascal(name), nil
}

// canonicalKey accepts cim2.pkg.Name and cim.2.pkg.Name.
func (r legacyRules) canonicalKey(legacy string) (string, error) {
	onto := r.factory.Ontology()
	parts := strings.Split(legacy, ".")
	var tag, pkg, name string
	switch len(parts) {
	case 3:
		tag, pkg, name = parts[0], parts[1], parts[2]
	case 4:
		tag, pkg, name = parts[0]+parts[1], parts[2], parts[3]
	default:
		return "", fmt.Errorf("legacy type %q: %w", legacy, entities.ErrInvalidTypeKey)
	}
	if tag != onto.Name()+onto.Version() {
		return "", fmt.Errorf("legacy type %q is not from ontology %s.%s: %w", legacy, onto.Name(), onto.Version(), entities.ErrInvalidTypeKey)
	}
	return onto.FullTypeKey(pkg + "." + ToSnake(name)), nil
}
