package spec

// Parameter describes a single operation parameter.
// Name and In use omitempty because parameters can be defined via $ref;
// a referencing site may carry only sibling override fields.
type Parameter struct {
	Ref         string `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	In          string `yaml:"in,omitempty" json:"in,omitempty"` // "query", "header", "path", "cookie", "querystring" (OAS 3.2), "formData", "body" (OAS 2.0)
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Deprecated  bool   `yaml:"deprecated,omitempty" json:"deprecated,omitempty"` // OAS 3.0+

	// OAS 3.0+ fields
	Style           string                `yaml:"style,omitempty" json:"style,omitempty"`
	Explode         *bool                 `yaml:"explode,omitempty" json:"explode,omitempty"`
	AllowReserved   bool                  `yaml:"allowReserved,omitempty" json:"allowReserved,omitempty"`
	AllowEmptyValue bool                  `yaml:"allowEmptyValue,omitempty" json:"allowEmptyValue,omitempty"`
	Schema          *Schema               `yaml:"schema,omitempty" json:"schema,omitempty"`
	Example         any                   `yaml:"example,omitempty" json:"example,omitempty"`
	Examples        map[string]*Example   `yaml:"examples,omitempty" json:"examples,omitempty"`
	Content         map[string]*MediaType `yaml:"content,omitempty" json:"content,omitempty"`

	// OAS 2.0 flat fields, synthesized into a schema during extraction
	Type             string   `yaml:"type,omitempty" json:"type,omitempty"`
	Format           string   `yaml:"format,omitempty" json:"format,omitempty"`
	Items            *Items   `yaml:"items,omitempty" json:"items,omitempty"`
	CollectionFormat string   `yaml:"collectionFormat,omitempty" json:"collectionFormat,omitempty"`
	Default          any      `yaml:"default,omitempty" json:"default,omitempty"`
	Enum             []any    `yaml:"enum,omitempty" json:"enum,omitempty"`
	Pattern          string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	MaxLength        *int     `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	MinLength        *int     `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	Maximum          *float64 `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	Minimum          *float64 `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	MaxItems         *int     `yaml:"maxItems,omitempty" json:"maxItems,omitempty"`
	MinItems         *int     `yaml:"minItems,omitempty" json:"minItems,omitempty"`
	UniqueItems      bool     `yaml:"uniqueItems,omitempty" json:"uniqueItems,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Items represents the items object for array parameters (OAS 2.0)
type Items struct {
	Type             string         `yaml:"type" json:"type"`
	Format           string         `yaml:"format,omitempty" json:"format,omitempty"`
	Items            *Items         `yaml:"items,omitempty" json:"items,omitempty"`
	CollectionFormat string         `yaml:"collectionFormat,omitempty" json:"collectionFormat,omitempty"`
	Default          any            `yaml:"default,omitempty" json:"default,omitempty"`
	Enum             []any          `yaml:"enum,omitempty" json:"enum,omitempty"`
	Extra            map[string]any `yaml:",inline" json:"-"`
}

// RequestBody describes a single request body (OAS 3.0+).
// Content uses omitempty because request bodies can be defined via $ref.
type RequestBody struct {
	Ref         string                `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty" json:"content,omitempty"`
	Required    bool                  `yaml:"required,omitempty" json:"required,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Header represents a header object
type Header struct {
	Ref         string `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Deprecated  bool   `yaml:"deprecated,omitempty" json:"deprecated,omitempty"` // OAS 3.0+

	// OAS 3.0+ fields
	Style    string                `yaml:"style,omitempty" json:"style,omitempty"`
	Explode  *bool                 `yaml:"explode,omitempty" json:"explode,omitempty"`
	Schema   *Schema               `yaml:"schema,omitempty" json:"schema,omitempty"`
	Example  any                   `yaml:"example,omitempty" json:"example,omitempty"`
	Examples map[string]*Example   `yaml:"examples,omitempty" json:"examples,omitempty"`
	Content  map[string]*MediaType `yaml:"content,omitempty" json:"content,omitempty"`

	// OAS 2.0 flat fields
	Type             string `yaml:"type,omitempty" json:"type,omitempty"`
	Format           string `yaml:"format,omitempty" json:"format,omitempty"`
	Items            *Items `yaml:"items,omitempty" json:"items,omitempty"`
	CollectionFormat string `yaml:"collectionFormat,omitempty" json:"collectionFormat,omitempty"`
	Default          any    `yaml:"default,omitempty" json:"default,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}
