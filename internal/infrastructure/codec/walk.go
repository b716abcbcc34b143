package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/domain/services"
)

// rules are the dialect-specific parts of the walk.
type rules interface {
	// envelope is the key holding type information and document metadata.
	envelope() string
	wireName(property string) string
	propertyName(wire string) string
	// stamp writes the type information of d into an envelope.
	stamp(env map[string]any, d *entities.TypeDescriptor)
	// entityKey translates an envelope type into a key the factory builds.
	entityKey(wireType string) (string, error)
	encodeRefType(refType string) string
	decodeRefType(wireType string) (string, error)
	// reserved reports whether an envelope key is type information rather
	// than document metadata.
	reserved(key string) bool
}

// walker does the depth-first walk shared by both dialects.
type walker struct {
	factory *services.Factory
	rules   rules
	logger  *zap.Logger
	// partyFallback types an untyped metadata author as a party.
	partyFallback bool
}

func encodable(name string) bool {
	return !strings.HasPrefix(name, "_") && name != "ext"
}

func isReference(inst *entities.Instance) bool {
	return entities.KindOf(inst) == entities.KindDocReference
}

// encode returns the tree for inst. With shard set, documents below and
// including inst are moved to the returned bundle and replaced by references.
func (w *walker) encode(inst *entities.Instance, shard bool) (map[string]any, []map[string]any, error) {
	obj := make(map[string]any)
	var bundle []map[string]any

	ref := isReference(inst)
	for _, p := range inst.Properties() {
		name := p.Name()
		if !encodable(name) {
			continue
		}
		v, docs, ok, err := w.encodeValue(p.Get(), shard)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding %s.%s: %w", inst.Key(), name, err)
		}
		bundle = append(bundle, docs...)
		if !ok {
			continue
		}
		if s, isString := v.(string); ref && name == "type" && isString {
			v = w.rules.encodeRefType(s)
		}
		obj[w.rules.wireName(name)] = v
	}

	if meta := inst.Meta(); meta != nil {
		m, docs, err := w.encode(meta, shard)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding metadata of %s: %w", inst.Key(), err)
		}
		bundle = append(bundle, docs...)
		obj[w.rules.envelope()] = m
	}

	d := inst.Descriptor()
	if !d.DescendsFrom(entities.DocMetaKey) {
		env, _ := obj[w.rules.envelope()].(map[string]any)
		if env == nil {
			env = make(map[string]any)
			obj[w.rules.envelope()] = env
		}
		w.rules.stamp(env, d)
	}
	w.logger.Debug("encoded object", zap.String("type", d.FullTypeKey))

	if shard && inst.IsDocument() {
		r, err := w.factory.ReferenceFor(inst)
		if err != nil {
			return nil, nil, err
		}
		refObj, _, err := w.encode(r, false)
		if err != nil {
			return nil, nil, err
		}
		return refObj, append([]map[string]any{obj}, bundle...), nil
	}
	return obj, bundle, nil
}

func (w *walker) encodeValue(v any, shard bool) (any, []map[string]any, bool, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil, false, nil
	case *entities.Instance:
		if x == nil {
			return nil, nil, false, nil
		}
		obj, docs, err := w.encode(x, shard)
		return obj, docs, err == nil, err
	case []any:
		if len(x) == 0 {
			return nil, nil, false, nil
		}
		out := make([]any, len(x))
		var bundle []map[string]any
		for i, e := range x {
			inst, ok := e.(*entities.Instance)
			if !ok {
				out[i] = e
				continue
			}
			obj, docs, err := w.encode(inst, shard)
			if err != nil {
				return nil, nil, false, err
			}
			out[i] = obj
			bundle = append(bundle, docs...)
		}
		return out, bundle, true, nil
	}
	return v, nil, true, nil
}

// decode rebuilds an instance from obj. fallback is the entity key used when
// obj carries no envelope type.
func (w *walker) decode(obj map[string]any, fallback string) (*entities.Instance, error) {
	key, err := w.objectType(obj, fallback)
	if err != nil {
		return nil, err
	}
	inst, err := w.factory.Blank(key)
	if err != nil {
		return nil, err
	}

	ref := isReference(inst)
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, wire := range keys {
		raw := obj[wire]
		if wire == w.rules.envelope() {
			if err := w.decodeMeta(inst, raw); err != nil {
				return nil, err
			}
			continue
		}
		name := w.rules.propertyName(wire)
		p, ok := inst.Property(name)
		if !ok {
			return nil, fmt.Errorf("decoding %s: %q: %w", inst.Key(), name, entities.ErrUnknownProperty)
		}
		v, err := w.decodeValue(raw, p.Definition())
		if err != nil {
			return nil, fmt.Errorf("decoding %s.%s: %w", inst.Key(), name, err)
		}
		if s, isString := v.(string); ref && name == "type" && isString {
			if v, err = w.rules.decodeRefType(s); err != nil {
				return nil, fmt.Errorf("decoding %s.%s: %w", inst.Key(), name, err)
			}
		}
		if err := w.assign(inst, name, v); err != nil {
			return nil, err
		}
	}
	w.logger.Debug("decoded object", zap.String("type", inst.Descriptor().FullTypeKey))
	return inst, nil
}

func (w *walker) objectType(obj map[string]any, fallback string) (string, error) {
	if env, ok := obj[w.rules.envelope()].(map[string]any); ok {
		if t, ok := env["type"].(string); ok && t != "" {
			return w.rules.entityKey(t)
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("object has no %s.type: %w", w.rules.envelope(), entities.ErrMalformedDocument)
}

// decodeMeta reads the document metadata out of an envelope. An envelope
// holding type information only is not metadata.
func (w *walker) decodeMeta(inst *entities.Instance, raw any) error {
	env, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("decoding %s: %s is not an object: %w", inst.Key(), w.rules.envelope(), entities.ErrMalformedDocument)
	}
	fields := make(map[string]any, len(env))
	for k, v := range env {
		if !w.rules.reserved(k) {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return nil
	}
	if !inst.IsDocument() {
		return fmt.Errorf("decoding %s: metadata on a non-document: %w", inst.Key(), entities.ErrMalformedDocument)
	}
	meta, err := w.decode(fields, entities.DocMetaKey)
	if err != nil {
		return fmt.Errorf("decoding metadata of %s: %w", inst.Key(), err)
	}
	if _, ok := meta.Property("type"); ok {
		if err := meta.Set("type", inst.Descriptor().FullTypeKey); err != nil {
			return err
		}
	}
	return inst.SetMeta(meta)
}

func (w *walker) decodeValue(raw any, def entities.PropertyDefinition) (any, error) {
	switch x := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return w.decode(x, objectFallback(def.Target))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			if m, ok := e.(map[string]any); ok {
				inst, err := w.decode(m, objectFallback(def.Target))
				if err != nil {
					return nil, err
				}
				out[i] = inst
				continue
			}
			v, err := coerce(e, def)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return coerce(raw, def)
}

// assign sets a decoded value, typing an untyped metadata author as a party
// when the dialect asks for it.
func (w *walker) assign(inst *entities.Instance, name string, v any) error {
	err := inst.Set(name, v)
	if err == nil || !w.partyFallback || name != "author" ||
		!inst.Descriptor().DescendsFrom(entities.DocMetaKey) ||
		!errors.Is(err, entities.ErrUnresolvedReferenceType) {
		return err
	}
	ref, ok := v.(*entities.Instance)
	if !ok || !isReference(ref) {
		return err
	}
	partyType := w.factory.Ontology().FullTypeKey(entities.PartyKey)
	w.logger.Warn("untyped author reference, assuming party", zap.String("type", partyType))
	if err := ref.Set("type", partyType); err != nil {
		return err
	}
	return inst.Set(name, ref)
}

// objectFallback is the entity to build for an untyped object assigned to
// target. References and primitives need an explicit type.
func objectFallback(target string) string {
	if entities.IsPrimitive(target) {
		return ""
	}
	if _, linked := entities.LinkedTarget(target); linked {
		return ""
	}
	return target
}

// coerce converts decoded JSON numbers to the Go kind of the target.
func coerce(v any, def entities.PropertyDefinition) (any, error) {
	switch x := v.(type) {
	case json.Number:
		switch def.Target {
		case entities.PrimitiveInt:
			i, err := x.Int64()
			if err != nil {
				return nil, &entities.TypeMismatchError{Property: def.Name, Target: def.Target, Value: x.String()}
			}
			return int(i), nil
		case entities.PrimitiveFloat:
			f, err := x.Float64()
			if err != nil {
				return nil, &entities.TypeMismatchError{Property: def.Name, Target: def.Target, Value: x.String()}
			}
			return f, nil
		}
		if i, err := x.Int64(); err == nil {
			return int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, &entities.TypeMismatchError{Property: def.Name, Target: def.Target, Value: x.String()}
		}
		return f, nil
	case float64:
		if def.Target == entities.PrimitiveInt && x == math.Trunc(x) {
			return int(x), nil
		}
	case int:
		if def.Target == entities.PrimitiveFloat {
			return float64(x), nil
		}
	}
	return v, nil
}
