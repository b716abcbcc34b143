package services

import (
	"fmt"

	"github.com/ersonp/osl-core/internal/domain/entities"
)

// Reference is one weak link found in an instance tree.
type Reference struct {
	ID           string
	Name         string
	Type         string
	Relationship string
}

// ReferenceFor builds a document reference pointing at doc. name and
// canonical_name are copied when set, canonical_name falling back to name.
func (f *Factory) ReferenceFor(doc *entities.Instance) (*entities.Instance, error) {
	if !doc.IsDocument() {
		return nil, fmt.Errorf("reference for %s: %w", doc.Key(), entities.ErrNotADocument)
	}
	meta := doc.Meta()
	if meta == nil || meta.GetString("uid") == "" {
		return nil, fmt.Errorf("reference for %s: document has no uid: %w", doc.Key(), entities.ErrMalformedDocument)
	}

	ref, err := f.Build(entities.DocReferenceKey)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"name", "canonical_name"} {
		if err := copyIfSet(doc, name, ref, name); err != nil {
			return nil, err
		}
	}
	if p, ok := ref.Property("canonical_name"); ok && !p.IsSet() {
		if err := copyIfSet(ref, "name", ref, "canonical_name"); err != nil {
			return nil, err
		}
	}
	if err := copyIfSet(meta, "version", ref, "version"); err != nil {
		return nil, err
	}
	if err := copyIfSet(meta, "uid", ref, "id"); err != nil {
		return nil, err
	}
	if err := ref.Set("type", doc.Descriptor().FullTypeKey); err != nil {
		return nil, err
	}
	return ref, nil
}

func copyIfSet(src *entities.Instance, from string, dst *entities.Instance, to string) error {
	sp, ok := src.Property(from)
	if !ok || !sp.IsSet() {
		return nil
	}
	if _, ok := dst.Property(to); !ok {
		return nil
	}
	if err := dst.Set(to, sp.Get()); err != nil {
		return fmt.Errorf("copying %s to %s: %w", from, to, err)
	}
	return nil
}

// CollectReferences returns every document reference with an id reachable
// from root, metadata blocks included. Inline documents other than root must
// carry a uid.
func CollectReferences(root *entities.Instance) ([]Reference, error) {
	var refs []Reference
	seen := make(map[*entities.Instance]bool)

	var walk func(inst *entities.Instance) error
	walk = func(inst *entities.Instance) error {
		if seen[inst] {
			return nil
		}
		seen[inst] = true

		if entities.KindOf(inst) == entities.KindDocReference {
			if id := inst.GetString("id"); id != "" {
				refs = append(refs, Reference{
					ID:           id,
					Name:         inst.GetString("name"),
					Type:         inst.GetString("type"),
					Relationship: inst.GetString("relationship"),
				})
			}
			return nil
		}
		if inst != root && inst.IsDocument() && (inst.Meta() == nil || inst.Meta().GetString("uid") == "") {
			return fmt.Errorf("inline %s has no uid: %w", inst.Key(), entities.ErrMalformedDocument)
		}
		if inst.Meta() != nil {
			if err := walk(inst.Meta()); err != nil {
				return err
			}
		}
		for _, p := range inst.Properties() {
			for _, child := range childInstances(p.Get()) {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return refs, nil
}

func childInstances(v any) []*entities.Instance {
	switch x := v.(type) {
	case *entities.Instance:
		if x != nil {
			return []*entities.Instance{x}
		}
	case []any:
		var out []*entities.Instance
		for _, e := range x {
			if inst, ok := e.(*entities.Instance); ok && inst != nil {
				out = append(out, inst)
			}
		}
		return out
	}
	return nil
}
