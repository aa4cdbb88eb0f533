package blueprint

import (
	"github.com/pkg/errors"

	"github.com/nieomylnieja/apibgen/internal/config"
)

// Example synthesizes a representative value for a structural schema.
//
// It is a pure function over its arguments: defaults supply per-kind values,
// overrides is the literal example table for the caller's context (response
// or param; the two never share state), and name keys the override lookup.
// A named override wins for scalar and array schemas; objects are always
// recursively synthesized, passing each property name down.
func Example(schema *Schema, defaults config.Defaults, overrides map[string]any, name string) (any, error) {
	switch schema.Kind {
	case KindObject:
		out := make(map[string]any, len(schema.Properties))
		for _, prop := range schema.Properties {
			v, err := Example(prop.Schema, defaults, overrides, prop.Name)
			if err != nil {
				return nil, err
			}
			out[prop.Name] = v
		}
		if schema.Additional != nil {
			v, err := Example(schema.Additional, defaults, overrides, defaults.JSONKey)
			if err != nil {
				return nil, err
			}
			out[defaults.JSONKey] = v
		}
		return out, nil
	case KindArray:
		// Arrays are never recursively synthesized when an override exists.
		if v, ok := lookup(overrides, name); ok {
			return v, nil
		}
		if schema.Items != nil {
			v, err := Example(schema.Items, defaults, overrides, "")
			if err != nil {
				return nil, err
			}
			return []any{v}, nil
		}
		out := make([]any, 0, len(schema.Tuple))
		for _, item := range schema.Tuple {
			v, err := Example(item, defaults, overrides, "")
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case KindString:
		if v, ok := lookup(overrides, name); ok {
			return v, nil
		}
		return defaults.String, nil
	case KindNumber:
		if v, ok := lookup(overrides, name); ok {
			return v, nil
		}
		return defaults.Number, nil
	case KindBoolean:
		if v, ok := lookup(overrides, name); ok {
			return v, nil
		}
		return defaults.Boolean, nil
	}
	return nil, errors.Errorf("unsupported schema type %q", schema.Kind)
}

func lookup(overrides map[string]any, name string) (any, bool) {
	if name == "" || overrides == nil {
		return nil, false
	}
	v, ok := overrides[name]
	return v, ok
}
