package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/osl-core/internal/domain/entities"
)

var errNoOntology = errors.New("no ontology registered")

// Factory builds instances from a registered ontology. Concrete classes are
// resolved lazily and cached until the next Register.
type Factory struct {
	onto    *Ontology
	classes map[string]*entities.Class
	mu      sync.RWMutex
	logger  *zap.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger used for registration and class builds.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFactory creates a Factory. onto may be nil and registered later.
func NewFactory(onto *Ontology, opts ...Option) *Factory {
	f := &Factory{
		classes: make(map[string]*entities.Class),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if onto != nil {
		f.Register(onto)
	}
	return f
}

// Register makes onto the active ontology and drops every cached class.
func (f *Factory) Register(onto *Ontology) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onto = onto
	f.classes = make(map[string]*entities.Class)
	if onto != nil {
		f.logger.Info("registered ontology",
			zap.String("name", onto.Name()),
			zap.String("version", onto.FullVersion()),
			zap.Int("entities", len(onto.descriptors)))
	}
}

// Ontology returns the active ontology.
func (f *Factory) Ontology() *Ontology {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.onto
}

// Class returns the concrete class for key, building it and its bases on
// first use. key may be bare or fully qualified.
func (f *Factory) Class(key string) (*entities.Class, error) {
	f.mu.RLock()
	c, ok := f.classes[key]
	f.mu.RUnlock()
	if ok {
		return c, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.classLocked(key)
}

func (f *Factory) classLocked(key string) (*entities.Class, error) {
	if f.onto == nil {
		return nil, errNoOntology
	}
	bare, err := f.onto.CheckAndStrip(key)
	if err != nil {
		return nil, err
	}
	if c, ok := f.classes[bare]; ok {
		return c, nil
	}
	d, ok := f.onto.Descriptor(bare)
	if !ok {
		return nil, fmt.Errorf("%q in ontology %s: %w", key, f.onto.Name(), entities.ErrUnknownEntity)
	}

	var base *entities.Class
	if d.Base != "" {
		base, err = f.classLocked(d.Base)
		if err != nil {
			return nil, fmt.Errorf("building base of %s: %w", bare, err)
		}
	}
	c := entities.NewClass(d, base)
	f.classes[bare] = c
	f.logger.Debug("built class", zap.String("key", bare), zap.Int("properties", len(c.Properties)))
	return c, nil
}

// New returns a fresh value for key: the zero value for primitive tags, an
// empty string for enumerations, otherwise a built instance.
func (f *Factory) New(key string) (any, error) {
	if v, ok := entities.ZeroPrimitive(key); ok {
		return v, nil
	}
	c, err := f.Class(key)
	if err != nil {
		return nil, err
	}
	if c.Descriptor.IsEnum() {
		return "", nil
	}
	return f.Build(key)
}

// Build returns a new instance of the entity named by key. Value constraints
// are applied and documents get a metadata block.
func (f *Factory) Build(key string) (*entities.Instance, error) {
	return f.build(key, true)
}

// Blank is Build without value constraints: every property starts unset.
// Decoders build through it, since an absent property means not set.
func (f *Factory) Blank(key string) (*entities.Instance, error) {
	return f.build(key, false)
}

func (f *Factory) build(key string, defaults bool) (*entities.Instance, error) {
	if entities.IsPrimitive(key) {
		return nil, fmt.Errorf("building %s: primitive types have no instances: %w", key, entities.ErrInvalidTypeKey)
	}
	c, err := f.Class(key)
	if err != nil {
		return nil, err
	}
	d := c.Descriptor
	if d.IsEnum() {
		return nil, fmt.Errorf("building %s: enumerations have no instances: %w", key, entities.ErrInvalidTypeKey)
	}
	if d.IsAbstract {
		return nil, fmt.Errorf("building %s: %w", key, entities.ErrAbstractInstantiation)
	}

	inst := entities.NewInstance(c, f)
	if defaults {
		for _, con := range c.Defaults {
			if err := inst.Set(con.Property, con.Value); err != nil {
				return nil, fmt.Errorf("applying value constraint on %s: %w", d.Key, err)
			}
		}
	}
	if d.IsDocument {
		meta, err := f.build(entities.DocMetaKey, defaults)
		if err != nil {
			return nil, fmt.Errorf("building metadata for %s: %w", d.Key, err)
		}
		if err := inst.SetMeta(meta); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// NewDocument builds a document with a fresh uid and, if given, an author.
func (f *Factory) NewDocument(key string, author *entities.Instance) (*entities.Instance, error) {
	c, err := f.Class(key)
	if err != nil {
		return nil, err
	}
	if !c.Descriptor.IsDocument {
		return nil, fmt.Errorf("new document %s: %w", key, entities.ErrNotADocument)
	}
	doc, err := f.Build(key)
	if err != nil {
		return nil, err
	}
	if err := doc.Meta().Set("uid", uuid.NewString()); err != nil {
		return nil, fmt.Errorf("setting document uid: %w", err)
	}
	if author != nil {
		if err := doc.Meta().Set("author", author); err != nil {
			return nil, fmt.Errorf("setting document author: %w", err)
		}
	}
	return doc, nil
}

// Validate reports whether value is acceptable for a property target. It
// is the validator every property container built by f writes through.
func (f *Factory) Validate(value any, target string) (bool, error) {
	onto := f.Ontology()
	if onto == nil {
		return false, errNoOntology
	}

	inst, _ := value.(*entities.Instance)
	if entities.KindOf(value) == entities.KindNilReason {
		return true, nil
	}

	if entities.IsPrimitive(target) {
		return entities.MatchesPrimitive(value, target), nil
	}

	if linked, ok := entities.LinkedTarget(target); ok {
		if _, known := onto.Descriptor(linked); !known {
			return false, fmt.Errorf("link target %q: %w", linked, entities.ErrUnknownEntity)
		}
		if inst == nil {
			return false, nil
		}
		if inst.Descriptor().DescendsFrom(linked) {
			return true, nil
		}
		return referenceTo(onto, inst, linked)
	}

	d, ok := onto.Descriptor(target)
	if !ok {
		return false, fmt.Errorf("target %q: %w", target, entities.ErrUnknownEntity)
	}
	switch {
	case d.IsEnum():
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		return d.IsOpen || d.HasMember(s), nil
	case d.IsClass():
		if inst == nil {
			return false, nil
		}
		if inst.Descriptor().DescendsFrom(target) {
			return true, nil
		}
		// a sharded document stands in its owner as a reference
		if d.IsDocument {
			return referenceTo(onto, inst, target)
		}
	}
	return false, nil
}

// referenceTo reports whether inst is a Document Reference whose recorded
// type is key or one of its subtypes.
func referenceTo(onto *Ontology, inst *entities.Instance, key string) (bool, error) {
	if entities.KindOf(inst) != entities.KindDocReference {
		return false, nil
	}
	refType := inst.GetString("type")
	if refType == "" {
		return false, fmt.Errorf("reference to %s: %w", key, entities.ErrUnresolvedReferenceType)
	}
	stripped, err := onto.CheckAndStrip(refType)
	if err != nil {
		return false, nil
	}
	return onto.IsSubtype(stripped, key), nil
}
