package handlers

import (
	"errors"
	"fmt"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/domain/services"
	"github.com/ersonp/osl-core/internal/infrastructure/codec"
)

// Relink decodes the native JSON members of a bundle and replaces every
// document reference whose id names another member with that member. The
// first member is returned as the root. References to documents outside the
// bundle stay references.
func Relink(factory *services.Factory, bundle []string) (*entities.Instance, error) {
	if len(bundle) == 0 {
		return nil, errors.New("empty bundle")
	}

	c := codec.NewNative(factory)
	docs := make([]*entities.Instance, 0, len(bundle))
	byID := make(map[string]*entities.Instance, len(bundle))
	for i, member := range bundle {
		doc, err := c.Unmarshal([]byte(member))
		if err != nil {
			return nil, fmt.Errorf("decoding bundle member %d: %w", i, err)
		}
		uid := ""
		if doc.Meta() != nil {
			uid = doc.Meta().GetString("uid")
		}
		if !doc.IsDocument() || uid == "" {
			return nil, fmt.Errorf("bundle member %d is not an identified document: %w", i, entities.ErrMalformedDocument)
		}
		docs = append(docs, doc)
		byID[uid] = doc
	}

	for _, doc := range docs {
		if err := relink(doc, byID); err != nil {
			return nil, err
		}
	}
	return docs[0], nil
}

// relink swaps references inside inst. Decoded members are trees, so the walk
// stops at every replaced reference and never meets a cycle.
func relink(inst *entities.Instance, byID map[string]*entities.Instance) error {
	if inst.Meta() != nil {
		if err := relink(inst.Meta(), byID); err != nil {
			return err
		}
	}
	for _, p := range inst.Properties() {
		switch v := p.Get().(type) {
		case *entities.Instance:
			live, err := resolve(v, byID)
			if err != nil {
				return err
			}
			if live == nil {
				continue
			}
			if err := p.Set(live); err != nil {
				return fmt.Errorf("relinking %s.%s: %w", inst.Key(), p.Name(), err)
			}
		case []any:
			out := make([]any, len(v))
			changed := false
			for i, e := range v {
				out[i] = e
				child, ok := e.(*entities.Instance)
				if !ok {
					continue
				}
				live, err := resolve(child, byID)
				if err != nil {
					return err
				}
				if live != nil {
					out[i] = live
					changed = true
				}
			}
			if !changed {
				continue
			}
			if err := p.Set(out); err != nil {
				return fmt.Errorf("relinking %s.%s: %w", inst.Key(), p.Name(), err)
			}
		}
	}
	return nil
}

// resolve returns the live document a reference points at, or nil when v is
// not a known reference. Other composed values are relinked in place.
func resolve(v *entities.Instance, byID map[string]*entities.Instance) (*entities.Instance, error) {
	if entities.KindOf(v) != entities.KindDocReference {
		return nil, relink(v, byID)
	}
	return byID[v.GetString("id")], nil
}
