package entities

import (
	"fmt"
	"reflect"
	"strings"
)

// ValueKind classifies the values a property container can hold.
type ValueKind int

const (
	KindUnsupported ValueKind = iota
	KindPrimitive
	KindComposed
	KindDocReference
	KindNilReason
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindComposed:
		return "composed"
	case KindDocReference:
		return "doc_reference"
	case KindNilReason:
		return "nil_reason"
	default:
		return "unsupported"
	}
}

// KindOf classifies v. Enum values are strings and classify as primitive.
func KindOf(v any) ValueKind {
	switch x := v.(type) {
	case int, float64, bool, string:
		return KindPrimitive
	case *Instance:
		if x == nil {
			return KindUnsupported
		}
		switch {
		case x.Descriptor().DescendsFrom(NilReasonKey):
			return KindNilReason
		case x.Descriptor().DescendsFrom(DocReferenceKey):
			return KindDocReference
		}
		return KindComposed
	}
	return KindUnsupported
}

// MatchesPrimitive reports whether v is of the Go kind backing a primitive tag.
func MatchesPrimitive(v any, tag string) bool {
	switch tag {
	case PrimitiveInt:
		_, ok := v.(int)
		return ok
	case PrimitiveFloat:
		_, ok := v.(float64)
		return ok
	case PrimitiveBool:
		_, ok := v.(bool)
		return ok
	case PrimitiveStr, PrimitiveText, PrimitiveDatetime:
		_, ok := v.(string)
		return ok
	}
	return false
}

// ZeroPrimitive returns the zero value of a primitive tag.
func ZeroPrimitive(tag string) (any, bool) {
	switch tag {
	case PrimitiveInt:
		return 0, true
	case PrimitiveFloat:
		return 0.0, true
	case PrimitiveBool:
		return false, true
	case PrimitiveStr, PrimitiveText, PrimitiveDatetime:
		return "", true
	}
	return nil, false
}

// asSequence converts any slice to []any. It reports false for non-slices.
func asSequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

type instancePair struct {
	a, b *Instance
}

func valuesEqual(a, b any, seen map[instancePair]bool) bool {
	switch x := a.(type) {
	case *Instance:
		y, ok := b.(*Instance)
		if !ok {
			return false
		}
		return instancesEqual(x, y, seen)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valuesEqual(x[i], y[i], seen) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	}
	if _, ok := b.(*Instance); ok {
		return false
	}
	return a == b
}

func instancesEqual(a, b *Instance, seen map[instancePair]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.class.Descriptor != b.class.Descriptor {
		return false
	}
	pair := instancePair{a, b}
	if seen[pair] {
		return true
	}
	seen[pair] = true
	for i, p := range a.props {
		if !valuesEqual(p.Get(), b.props[i].Get(), seen) {
			return false
		}
	}
	return true
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			if str, ok := e.(string); ok {
				parts[i] = "'" + strings.ReplaceAll(str, "'", `\'`) + "'"
				continue
			}
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
