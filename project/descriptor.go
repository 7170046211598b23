package project

import (
	"reflect"
	"sort"
)

// Kind discriminates TypeDescriptor variants.
type Kind string

const (
	// KindAny is the top type: any JSON value.
	KindAny Kind = "any"
	// KindNever is the bottom type: no value satisfies it.
	KindNever Kind = "never"

	KindNull    Kind = "null"
	KindBoolean Kind = "boolean"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	// KindBinary is a string framing raw bytes (format: binary, base64
	// content encoding, octet-stream media types).
	KindBinary Kind = "binary"

	// KindLiteral is a single const value.
	KindLiteral Kind = "literal"
	// KindEnum is a closed set of literal values.
	KindEnum Kind = "enum"
	// KindNamed references a named schema in the document's schema table.
	KindNamed Kind = "named"

	KindUnion        Kind = "union"
	KindIntersection Kind = "intersection"
	KindTuple        Kind = "tuple"
	KindArray        Kind = "array"
	KindObject       Kind = "object"
)

// TypeDescriptor is one node of the projected type graph. Which fields are
// meaningful depends on Kind; everything else is zero.
type TypeDescriptor struct {
	Kind Kind `json:"kind"`

	// Format carries the schema format for primitive kinds ("int64",
	// "date-time", ...).
	Format string `json:"format,omitempty"`

	// Name is the referenced identifier for KindNamed, or the declared
	// enum name for a named KindEnum.
	Name string `json:"name,omitempty"`

	// Literal is the value of a KindLiteral.
	Literal any `json:"literal,omitempty"`
	// Literals are the members of a KindEnum.
	Literals []any `json:"literals,omitempty"`

	// Members are the branches of a KindUnion or KindIntersection.
	Members []*TypeDescriptor `json:"members,omitempty"`

	// Elem is the element type of a KindArray, or the variadic tail of an
	// open KindTuple.
	Elem *TypeDescriptor `json:"elem,omitempty"`
	// Tuple holds the fixed-position element types of a KindTuple.
	Tuple []*TypeDescriptor `json:"tuple,omitempty"`

	// Properties are the declared fields of a KindObject, ordered by name.
	Properties []Property `json:"properties,omitempty"`
	// Additional is the index-signature value type of an open KindObject.
	Additional *TypeDescriptor `json:"additional,omitempty"`
	// Closed marks a tuple with no variadic tail, or an object admitting
	// no undeclared keys.
	Closed bool `json:"closed,omitempty"`

	// Discriminator names the property selecting a union member, with an
	// optional literal-value to member-name mapping.
	Discriminator *DiscriminatorHint `json:"discriminator,omitempty"`
}

// Property is one declared object field.
type Property struct {
	Name     string          `json:"name"`
	Type     *TypeDescriptor `json:"type"`
	Required bool            `json:"required,omitempty"`
}

// DiscriminatorHint carries discriminated-union metadata.
type DiscriminatorHint struct {
	PropertyName string            `json:"propertyName"`
	Mapping      map[string]string `json:"mapping,omitempty"`
}

// Any returns the top type.
func Any() *TypeDescriptor { return &TypeDescriptor{Kind: KindAny} }

// Never returns the bottom type.
func Never() *TypeDescriptor { return &TypeDescriptor{Kind: KindNever} }

// Null returns the null type.
func Null() *TypeDescriptor { return &TypeDescriptor{Kind: KindNull} }

// Primitive returns a primitive descriptor for a JSON Schema type name.
func Primitive(typeName, format string) *TypeDescriptor {
	switch typeName {
	case "boolean":
		return &TypeDescriptor{Kind: KindBoolean}
	case "integer":
		return &TypeDescriptor{Kind: KindInteger, Format: format}
	case "number":
		return &TypeDescriptor{Kind: KindNumber, Format: format}
	case "string":
		return &TypeDescriptor{Kind: KindString, Format: format}
	case "null":
		return Null()
	default:
		return Any()
	}
}

// Named returns a reference to a named schema.
func Named(name string) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindNamed, Name: name}
}

// Union returns the disjunction of members, flattening nested unions,
// dropping duplicates and Never members, and collapsing to Any when any
// member is Any. A single survivor is returned unwrapped.
func Union(members ...*TypeDescriptor) *TypeDescriptor {
	return combine(KindUnion, members)
}

// Intersection returns the conjunction of members, flattening nested
// intersections, dropping duplicates and Any members, and collapsing to
// Never when any member is Never. A single survivor is returned unwrapped.
func Intersection(members ...*TypeDescriptor) *TypeDescriptor {
	return combine(KindIntersection, members)
}

func combine(kind Kind, members []*TypeDescriptor) *TypeDescriptor {
	absorbing, identity := KindAny, KindNever
	if kind == KindIntersection {
		absorbing, identity = KindNever, KindAny
	}

	var flat []*TypeDescriptor
	for _, m := range members {
		if m == nil {
			continue
		}
		if m.Kind == kind && m.Discriminator == nil {
			flat = append(flat, m.Members...)
			continue
		}
		flat = append(flat, m)
	}

	out := make([]*TypeDescriptor, 0, len(flat))
	for _, m := range flat {
		if m.Kind == absorbing {
			return &TypeDescriptor{Kind: absorbing}
		}
		if m.Kind == identity {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen.Equal(m) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}

	switch len(out) {
	case 0:
		return &TypeDescriptor{Kind: identity}
	case 1:
		return out[0]
	default:
		return &TypeDescriptor{Kind: kind, Members: out}
	}
}

// Equal reports structural equality. Property order is part of the
// structure; projection emits properties sorted by name, so two
// projections of the same schema always compare equal.
func (t *TypeDescriptor) Equal(other *TypeDescriptor) bool {
	if t == nil || other == nil {
		return t == other
	}
	return reflect.DeepEqual(t, other)
}

// IsAny reports whether this is the top type.
func (t *TypeDescriptor) IsAny() bool { return t != nil && t.Kind == KindAny }

// sortProperties orders object properties by name for deterministic output.
func sortProperties(props []Property) {
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
}
