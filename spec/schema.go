package spec

// Schema represents a JSON Schema node.
// Supports OAS 2.0, OAS 3.0, and the JSON Schema Draft 2020-12 keywords the
// 3.1+ dialects reference.
type Schema struct {
	// Always is set when the schema was the boolean form: `true` admits
	// anything, `false` admits nothing. All keyword fields are zero when set.
	Always *bool `yaml:"-" json:"-"`

	// JSON Schema Core
	Ref    string `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Schema string `yaml:"$schema,omitempty" json:"$schema,omitempty"`

	// Metadata
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
	Examples    []any  `yaml:"examples,omitempty" json:"examples,omitempty"` // OAS 3.0+, JSON Schema Draft 2020-12

	// Type validation
	Type  any   `yaml:"type,omitempty" json:"type,omitempty"` // string or []string (OAS 3.1+)
	Enum  []any `yaml:"enum,omitempty" json:"enum,omitempty"`
	Const any   `yaml:"const,omitempty" json:"const,omitempty"` // JSON Schema Draft 2020-12

	// Numeric validation
	MultipleOf       *float64 `yaml:"multipleOf,omitempty" json:"multipleOf,omitempty"`
	Maximum          *float64 `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	ExclusiveMaximum any      `yaml:"exclusiveMaximum,omitempty" json:"exclusiveMaximum,omitempty"` // bool in OAS 2.0/3.0, number in 3.1+
	Minimum          *float64 `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	ExclusiveMinimum any      `yaml:"exclusiveMinimum,omitempty" json:"exclusiveMinimum,omitempty"` // bool in OAS 2.0/3.0, number in 3.1+

	// String validation
	MaxLength *int   `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	MinLength *int   `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	Pattern   string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Content-encoded strings (JSON Schema Draft 2020-12)
	ContentMediaType string  `yaml:"contentMediaType,omitempty" json:"contentMediaType,omitempty"`
	ContentEncoding  string  `yaml:"contentEncoding,omitempty" json:"contentEncoding,omitempty"`
	ContentSchema    *Schema `yaml:"contentSchema,omitempty" json:"contentSchema,omitempty"`

	// Array validation
	Items            *Schema   `yaml:"items,omitempty" json:"items,omitempty"` // boolean form decodes into Always
	PrefixItems      []*Schema `yaml:"prefixItems,omitempty" json:"prefixItems,omitempty"`
	UnevaluatedItems *Schema   `yaml:"unevaluatedItems,omitempty" json:"unevaluatedItems,omitempty"`
	AdditionalItems  *Schema   `yaml:"additionalItems,omitempty" json:"additionalItems,omitempty"` // pre-2020-12 form
	MaxItems         *int      `yaml:"maxItems,omitempty" json:"maxItems,omitempty"`
	MinItems         *int      `yaml:"minItems,omitempty" json:"minItems,omitempty"`
	UniqueItems      bool      `yaml:"uniqueItems,omitempty" json:"uniqueItems,omitempty"`
	Contains         *Schema   `yaml:"contains,omitempty" json:"contains,omitempty"`
	MaxContains      *int      `yaml:"maxContains,omitempty" json:"maxContains,omitempty"`
	MinContains      *int      `yaml:"minContains,omitempty" json:"minContains,omitempty"`

	// Object validation
	Properties            map[string]*Schema  `yaml:"properties,omitempty" json:"properties,omitempty"`
	PatternProperties     map[string]*Schema  `yaml:"patternProperties,omitempty" json:"patternProperties,omitempty"`
	AdditionalProperties  *Schema             `yaml:"additionalProperties,omitempty" json:"additionalProperties,omitempty"` // boolean form decodes into Always
	UnevaluatedProperties *Schema             `yaml:"unevaluatedProperties,omitempty" json:"unevaluatedProperties,omitempty"`
	Required              []string            `yaml:"required,omitempty" json:"required,omitempty"`
	PropertyNames         *Schema             `yaml:"propertyNames,omitempty" json:"propertyNames,omitempty"`
	MaxProperties         *int                `yaml:"maxProperties,omitempty" json:"maxProperties,omitempty"`
	MinProperties         *int                `yaml:"minProperties,omitempty" json:"minProperties,omitempty"`
	DependentRequired     map[string][]string `yaml:"dependentRequired,omitempty" json:"dependentRequired,omitempty"`
	DependentSchemas      map[string]*Schema  `yaml:"dependentSchemas,omitempty" json:"dependentSchemas,omitempty"`

	// Conditional schemas (JSON Schema Draft 2020-12, OAS 3.1+)
	If   *Schema `yaml:"if,omitempty" json:"if,omitempty"`
	Then *Schema `yaml:"then,omitempty" json:"then,omitempty"`
	Else *Schema `yaml:"else,omitempty" json:"else,omitempty"`

	// Schema composition
	AllOf []*Schema `yaml:"allOf,omitempty" json:"allOf,omitempty"`
	AnyOf []*Schema `yaml:"anyOf,omitempty" json:"anyOf,omitempty"`
	OneOf []*Schema `yaml:"oneOf,omitempty" json:"oneOf,omitempty"`
	Not   *Schema   `yaml:"not,omitempty" json:"not,omitempty"`

	// OAS specific extensions
	Nullable      bool           `yaml:"nullable,omitempty" json:"nullable,omitempty"` // OAS 3.0 only (replaced by type: [T, "null"] in 3.1+)
	Discriminator *Discriminator `yaml:"discriminator,omitempty" json:"discriminator,omitempty"`
	ReadOnly      bool           `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	WriteOnly     bool           `yaml:"writeOnly,omitempty" json:"writeOnly,omitempty"`
	ExternalDocs  *ExternalDocs  `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`
	Example       any            `yaml:"example,omitempty" json:"example,omitempty"` // OAS 2.0, 3.0 (deprecated in 3.1+)
	Deprecated    bool           `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`

	// Format
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// OAS 2.0 specific
	CollectionFormat string `yaml:"collectionFormat,omitempty" json:"collectionFormat,omitempty"`

	// JSON Schema Draft 2020-12 identity fields
	ID            string             `yaml:"$id,omitempty" json:"$id,omitempty"`
	Anchor        string             `yaml:"$anchor,omitempty" json:"$anchor,omitempty"`
	DynamicRef    string             `yaml:"$dynamicRef,omitempty" json:"$dynamicRef,omitempty"`
	DynamicAnchor string             `yaml:"$dynamicAnchor,omitempty" json:"$dynamicAnchor,omitempty"`
	Comment       string             `yaml:"$comment,omitempty" json:"$comment,omitempty"`
	Defs          map[string]*Schema `yaml:"$defs,omitempty" json:"$defs,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Discriminator represents a discriminator for polymorphism (OAS 3.0+)
type Discriminator struct {
	PropertyName string            `yaml:"propertyName" json:"propertyName"`
	Mapping      map[string]string `yaml:"mapping,omitempty" json:"mapping,omitempty"`
	Extra        map[string]any    `yaml:",inline" json:"-"`
}

// UnmarshalYAML implements boolean-form schema decoding: `true` and `false`
// are valid schemas in JSON Schema 2020-12 and decode into Always.
func (s *Schema) UnmarshalYAML(unmarshal func(any) error) error {
	var b *bool
	if err := unmarshal(&b); err == nil && b != nil {
		s.Always = b
		return nil
	}
	type plain Schema
	return unmarshal((*plain)(s))
}

// IsAlways reports whether this is the boolean `true` schema.
func (s *Schema) IsAlways() bool {
	return s != nil && s.Always != nil && *s.Always
}

// IsNever reports whether this is the boolean `false` schema.
func (s *Schema) IsNever() bool {
	return s != nil && s.Always != nil && !*s.Always
}

// Types returns the normalized list of declared primitive type names.
// A scalar `type: string` yields one entry; the 3.1+ array form yields all
// string members; anything else yields nil.
func (s *Schema) Types() []string {
	if s == nil {
		return nil
	}
	switch t := s.Type.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if name, ok := v.(string); ok {
				out = append(out, name)
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}

// HasType reports whether name appears in the declared type list.
func (s *Schema) HasType(name string) bool {
	for _, t := range s.Types() {
		if t == name {
			return true
		}
	}
	return false
}
