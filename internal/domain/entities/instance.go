package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Instance is an object built from a class: one property container per
// resolved property, and a document metadata block when the class is a document.
type Instance struct {
	class     *Class
	props     []*Property
	meta      *Instance
	validator Validator
}

// NewInstance creates an instance with empty containers. Factories are
// expected to apply class defaults and attach document metadata.
func NewInstance(class *Class, validator Validator) *Instance {
	inst := &Instance{
		class:     class,
		props:     make([]*Property, len(class.Properties)),
		validator: validator,
	}
	for i, def := range class.Properties {
		inst.props[i] = NewProperty(def, validator)
	}
	return inst
}

// Class returns the concrete class of the instance.
func (i *Instance) Class() *Class {
	return i.class
}

// Descriptor returns the type descriptor (the _osl metadata).
func (i *Instance) Descriptor() *TypeDescriptor {
	return i.class.Descriptor
}

// Key returns the entity key of the instance.
func (i *Instance) Key() string {
	return i.class.Descriptor.Key
}

// IsDocument reports whether the instance carries document metadata.
func (i *Instance) IsDocument() bool {
	return i.class.Descriptor.IsDocument
}

// Properties returns the containers in resolved order.
func (i *Instance) Properties() []*Property {
	return i.props
}

// Property returns the container for name.
func (i *Instance) Property(name string) (*Property, bool) {
	idx, ok := i.class.index[name]
	if !ok {
		return nil, false
	}
	return i.props[idx], true
}

func (i *Instance) property(name string) (*Property, error) {
	p, ok := i.Property(name)
	if !ok {
		return nil, fmt.Errorf("%s has no property %q: %w", i.Key(), name, ErrUnknownProperty)
	}
	return p, nil
}

// Get returns the value of name.
func (i *Instance) Get(name string) (any, error) {
	p, err := i.property(name)
	if err != nil {
		return nil, err
	}
	return p.Get(), nil
}

// GetString returns the value of name when it is a string, else "".
func (i *Instance) GetString(name string) string {
	p, ok := i.Property(name)
	if !ok {
		return ""
	}
	s, _ := p.Get().(string)
	return s
}

// Set assigns name through its validated container.
func (i *Instance) Set(name string, value any) error {
	p, err := i.property(name)
	if err != nil {
		return err
	}
	return p.Set(value)
}

// Append adds value to the sequence property name.
func (i *Instance) Append(name string, value any) error {
	p, err := i.property(name)
	if err != nil {
		return err
	}
	return p.Append(value)
}

// Reset restores name to its initial value.
func (i *Instance) Reset(name string) error {
	p, err := i.property(name)
	if err != nil {
		return err
	}
	p.Reset()
	return nil
}

// Meta returns the document metadata block, nil for non-documents.
func (i *Instance) Meta() *Instance {
	return i.meta
}

// SetMeta replaces the document metadata block.
func (i *Instance) SetMeta(meta *Instance) error {
	if !i.IsDocument() {
		return fmt.Errorf("%s: %w", i.Key(), ErrNotADocument)
	}
	if meta == nil || !meta.Descriptor().DescendsFrom(DocMetaKey) {
		return &TypeMismatchError{Property: "_meta", Target: DocMetaKey, Value: meta}
	}
	i.meta = meta
	return nil
}

// Equal reports whether both instances share a descriptor and hold equal
// property values. Document metadata does not take part.
func (i *Instance) Equal(other *Instance) bool {
	return instancesEqual(i, other, make(map[instancePair]bool))
}

// Clone returns a deep copy of the instance tree, metadata included.
func (i *Instance) Clone() *Instance {
	return i.clone(make(map[*Instance]*Instance))
}

func (i *Instance) clone(done map[*Instance]*Instance) *Instance {
	if c, ok := done[i]; ok {
		return c
	}
	c := &Instance{
		class:     i.class,
		props:     make([]*Property, len(i.props)),
		validator: i.validator,
	}
	done[i] = c
	for n, p := range i.props {
		cp := &Property{def: p.def, validator: p.validator, value: cloneValue(p.value, done)}
		if p.values != nil {
			cp.values = make([]any, len(p.values))
			for k, v := range p.values {
				cp.values[k] = cloneValue(v, done)
			}
		}
		c.props[n] = cp
	}
	if i.meta != nil {
		c.meta = i.meta.clone(done)
	}
	return c
}

func cloneValue(v any, done map[*Instance]*Instance) any {
	if inst, ok := v.(*Instance); ok && inst != nil {
		return inst.clone(done)
	}
	return v
}

// String renders the instance with its print template when the descriptor
// has one, else as "<name> (<type key>)" or "Instance of <type key>".
func (i *Instance) String() string {
	d := i.class.Descriptor
	if d.Pstr != nil {
		values := make([]any, len(d.Pstr.Properties))
		for n, name := range d.Pstr.Properties {
			if p, ok := i.Property(name); ok {
				values[n] = p.Get()
			}
		}
		return render(d.Pstr.Format, values)
	}
	if name := i.GetString("name"); name != "" {
		return fmt.Sprintf("%s (%s)", name, d.FullTypeKey)
	}
	return "Instance of " + d.FullTypeKey
}

// render substitutes {} and {N} placeholders; {{ and }} are literal braces.
func render(format string, values []any) string {
	var b strings.Builder
	next := 0
	for k := 0; k < len(format); k++ {
		ch := format[k]
		if ch == '}' && k+1 < len(format) && format[k+1] == '}' {
			b.WriteByte('}')
			k++
			continue
		}
		if ch != '{' {
			b.WriteByte(ch)
			continue
		}
		if k+1 < len(format) && format[k+1] == '{' {
			b.WriteByte('{')
			k++
			continue
		}
		end := strings.IndexByte(format[k:], '}')
		if end < 0 {
			b.WriteString(format[k:])
			break
		}
		field := format[k+1 : k+end]
		idx := next
		if field != "" {
			n, err := strconv.Atoi(field)
			if err != nil {
				b.WriteString(format[k : k+end+1])
				k += end
				continue
			}
			idx = n
		} else {
			next++
		}
		if idx >= 0 && idx < len(values) {
			b.WriteString(formatValue(values[idx]))
		}
		k += end
	}
	return b.String()
}
