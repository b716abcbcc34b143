// Package codec encodes instance graphs to JSON and back, in the native
// ("OSL") dialect and in the legacy ("ESD") dialect.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/domain/services"
)

// Dialect names a wire convention.
type Dialect string

// Supported dialects.
const (
	DialectNative Dialect = "native"
	DialectLegacy Dialect = "legacy"
)

// Codec converts instances to and from one JSON dialect.
type Codec interface {
	Dialect() Dialect
	// Encode returns the JSON-compatible tree for inst.
	Encode(inst *entities.Instance) (map[string]any, error)
	// Decode rebuilds an instance from a top-level tree.
	Decode(doc map[string]any) (*entities.Instance, error)
	Marshal(inst *entities.Instance) ([]byte, error)
	Unmarshal(data []byte) (*entities.Instance, error)
}

// Option configures a codec.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used to trace encoded and decoded objects.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ParseDialect maps a name ("native", "osl", "legacy", "esd") to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "native", "osl":
		return DialectNative, nil
	case "legacy", "esd":
		return DialectLegacy, nil
	}
	return "", fmt.Errorf("unknown dialect %q", name)
}

// ForDialect returns the codec for name.
func ForDialect(name string, f *services.Factory, opts ...Option) (Codec, error) {
	d, err := ParseDialect(name)
	if err != nil {
		return nil, err
	}
	if d == DialectLegacy {
		return NewLegacy(f, opts...), nil
	}
	return NewNative(f, opts...), nil
}

// unmarshalObject decodes a JSON object keeping numbers as json.Number so
// they can be coerced against the property target.
func unmarshalObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parsing JSON: not an object: %w", entities.ErrMalformedDocument)
	}
	return doc, nil
}
