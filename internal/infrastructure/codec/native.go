package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/domain/services"
)

// SerialVersion is stamped into every native envelope as source_key.
const SerialVersion = "json by osl_encode V0.2"

// acceptedVersions are the serializer versions Decode understands.
var acceptedVersions = []string{"V0.1", "V0.2"}

// Native is the OSL dialect: snake_case keys, a _meta envelope carrying the
// full type key, and optional sharding into a bundle of documents.
type Native struct {
	w *walker
}

// NewNative creates a native codec building through f.
func NewNative(f *services.Factory, opts ...Option) *Native {
	o := newOptions(opts)
	return &Native{w: &walker{factory: f, rules: nativeRules{}, logger: o.logger}}
}

// Dialect returns DialectNative.
func (n *Native) Dialect() Dialect {
	return DialectNative
}

// Encode returns the tree for inst with every sub-document inlined.
func (n *Native) Encode(inst *entities.Instance) (map[string]any, error) {
	obj, _, err := n.w.encode(inst, false)
	return obj, err
}

// Shard encodes inst, moving every document (inst included) into the
// returned bundle; the returned object is the reference to inst. The first
// bundle member is always inst itself.
func (n *Native) Shard(inst *entities.Instance) (map[string]any, []map[string]any, error) {
	if !inst.IsDocument() {
		return nil, nil, fmt.Errorf("sharding %s: %w", inst.Key(), entities.ErrNotADocument)
	}
	return n.w.encode(inst, true)
}

// Bundle shards inst and serialises every member independently.
func (n *Native) Bundle(inst *entities.Instance) ([]string, error) {
	_, docs, err := n.Shard(inst)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		data, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("marshalling bundle member %d: %w", i, err)
		}
		out[i] = string(data)
	}
	return out, nil
}

// Decode checks the serializer version and rebuilds the instance.
func (n *Native) Decode(doc map[string]any) (*entities.Instance, error) {
	if err := checkVersion(doc); err != nil {
		return nil, err
	}
	return n.w.decode(doc, "")
}

// Marshal encodes inst to JSON.
func (n *Native) Marshal(inst *entities.Instance) ([]byte, error) {
	obj, err := n.Encode(inst)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// Unmarshal decodes a native JSON document.
func (n *Native) Unmarshal(data []byte) (*entities.Instance, error) {
	doc, err := unmarshalObject(data)
	if err != nil {
		return nil, err
	}
	return n.Decode(doc)
}

func checkVersion(doc map[string]any) error {
	env, ok := doc["_meta"].(map[string]any)
	if !ok {
		return fmt.Errorf("no _meta envelope: %w", entities.ErrUnsupportedSerializationVersion)
	}
	key, _ := env["source_key"].(string)
	for _, v := range acceptedVersions {
		if strings.HasSuffix(key, v) {
			return nil
		}
	}
	return fmt.Errorf("source_key %q: %w", key, entities.ErrUnsupportedSerializationVersion)
}

type nativeRules struct{}

func (nativeRules) envelope() string                { return "_meta" }
func (nativeRules) wireName(property string) string { return property }
func (nativeRules) propertyName(wire string) string { return wire }

func (nativeRules) stamp(env map[string]any, d *entities.TypeDescriptor) {
	env["type"] = d.FullTypeKey
	env["source_key"] = SerialVersion
}

func (nativeRules) entityKey(wireType string) (string, error)     { return wireType, nil }
func (nativeRules) encodeRefType(refType string) string           { return refType }
func (nativeRules) decodeRefType(wireType string) (string, error) { return wireType, nil }
func (nativeRules) reserved(key string) bool                      { return key == "type" || key == "source_key" }
