package services

import (
	"fmt"

	"github.com/ersonp/osl-core/internal/domain/entities"
)

// NamedBuild builds key and sets its name property.
func NamedBuild(f *Factory, key, name string) (*entities.Instance, error) {
	inst, err := f.Build(key)
	if err != nil {
		return nil, err
	}
	if err := inst.Set("name", name); err != nil {
		return nil, fmt.Errorf("naming %s: %w", key, err)
	}
	return inst, nil
}

// FillFrom copies every own property of dst that is unset from src.
// Composed values are deep copied.
func FillFrom(dst, src *entities.Instance) error {
	for _, def := range dst.Descriptor().Properties {
		dp, _ := dst.Property(def.Name)
		if dp == nil || dp.IsSet() {
			continue
		}
		sp, ok := src.Property(def.Name)
		if !ok || !sp.IsSet() {
			continue
		}
		if err := dp.Set(deepCopy(sp.Get())); err != nil {
			return fmt.Errorf("filling %s: %w", def.Name, err)
		}
	}
	return nil
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case *entities.Instance:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deepCopy(e)
		}
		return out
	}
	return v
}
