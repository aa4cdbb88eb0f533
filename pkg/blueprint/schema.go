package blueprint

import (
	"go/types"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Kind is a structural schema kind.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// Schema is a recursive structural description of a data shape.
type Schema struct {
	Kind Kind
	// Properties holds an object's declared properties in field order.
	Properties []Property
	// Additional describes the value shape of index-signature-like
	// objects (Go maps); nil when extra properties are not allowed.
	Additional *Schema
	// Items is the homogeneous element schema of an array.
	Items *Schema
	// Tuple holds element schemas of a fixed-arity array; mutually
	// exclusive with Items.
	Tuple []*Schema
}

// Property is one named object property.
type Property struct {
	Name   string
	Schema *Schema
}

// Resolver produces structural schemas for declared type names by consulting
// the loaded program's package scopes.
type Resolver struct {
	scopes []*types.Scope
}

// NewResolver builds a resolver over the given packages' top-level scopes.
func NewResolver(pkgs []*types.Package) *Resolver {
	r := &Resolver{}
	for _, pkg := range pkgs {
		if pkg != nil {
			r.scopes = append(r.scopes, pkg.Scope())
		}
	}
	return r
}

// Resolve maps a declared type name to its structural schema.
// Primitive grammar names (string, number, boolean and their Go spellings)
// resolve without consulting the program. Failure to resolve is a localized
// error; only the requesting tag is dropped.
func (r *Resolver) Resolve(name string) (*Schema, error) {
	if s := primitiveSchema(name); s != nil {
		return s, nil
	}
	for _, scope := range r.scopes {
		obj := scope.Lookup(name)
		if obj == nil {
			continue
		}
		if _, ok := obj.(*types.TypeName); !ok {
			continue
		}
		return schemaFromType(obj.Type(), make(map[types.Type]bool))
	}
	if obj := types.Universe.Lookup(name); obj != nil {
		if _, ok := obj.(*types.TypeName); ok {
			return schemaFromType(obj.Type(), make(map[types.Type]bool))
		}
	}
	return nil, errors.Errorf("cannot resolve type %q", name)
}

func primitiveSchema(name string) *Schema {
	switch strings.ToLower(name) {
	case "string":
		return &Schema{Kind: KindString}
	case "number", "int", "integer", "float", "float64":
		return &Schema{Kind: KindNumber}
	case "boolean", "bool":
		return &Schema{Kind: KindBoolean}
	}
	return nil
}

func schemaFromType(t types.Type, seen map[types.Type]bool) (*Schema, error) {
	if seen[t] {
		return nil, errors.Errorf("cyclic type %s", t)
	}
	seen[t] = true
	defer delete(seen, t)

	switch u := t.Underlying().(type) {
	case *types.Basic:
		return basicSchema(u)
	case *types.Pointer:
		return schemaFromType(u.Elem(), seen)
	case *types.Struct:
		return structSchema(u, seen)
	case *types.Map:
		additional, err := schemaFromType(u.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &Schema{Kind: KindObject, Additional: additional}, nil
	case *types.Slice:
		items, err := schemaFromType(u.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &Schema{Kind: KindArray, Items: items}, nil
	case *types.Array:
		items, err := schemaFromType(u.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &Schema{Kind: KindArray, Items: items}, nil
	default:
		return nil, errors.Errorf("unsupported schema type %s", t)
	}
}

func basicSchema(b *types.Basic) (*Schema, error) {
	info := b.Info()
	switch {
	case info&types.IsString != 0:
		return &Schema{Kind: KindString}, nil
	case info&types.IsNumeric != 0:
		return &Schema{Kind: KindNumber}, nil
	case info&types.IsBoolean != 0:
		return &Schema{Kind: KindBoolean}, nil
	}
	return nil, errors.Errorf("unsupported schema type %s", b)
}

func structSchema(s *types.Struct, seen map[types.Type]bool) (*Schema, error) {
	schema := &Schema{Kind: KindObject}
	for i := 0; i < s.NumFields(); i++ {
		field := s.Field(i)
		if !field.Exported() {
			continue
		}
		name := fieldName(field, s.Tag(i))
		if name == "" {
			continue
		}
		nested, err := schemaFromType(field.Type(), seen)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", field.Name())
		}
		schema.Properties = append(schema.Properties, Property{Name: name, Schema: nested})
	}
	return schema, nil
}

func fieldName(field *types.Var, tag string) string {
	tagValues := strings.Split(reflect.StructTag(tag).Get("json"), ",")
	if len(tagValues) == 0 {
		return field.Name()
	}
	tagName := tagValues[0]
	if tagName == "" {
		return field.Name()
	}
	if tagName == "-" {
		return ""
	}
	return tagName
}
