package extract

import (
	"github.com/offscale/oasir/spec"
)

// Locations a parameter may occupy after normalization. Swagger 2.0 body and
// formData parameters never survive as parameters; they become the request
// body.
const (
	InPath        = "path"
	InQuery       = "query"
	InHeader      = "header"
	InCookie      = "cookie"
	InQueryString = "querystring" // OAS 3.2+
)

// OperationRecord is one fully normalized API operation. All references in
// reachable slots have been resolved; schemas may still carry $ref strings,
// which the type projector resolves on demand.
type OperationRecord struct {
	// Method is the uppercase HTTP method, or the literal token for an
	// additionalOperations entry.
	Method string `json:"method"`
	// Path is the path template as written, e.g. "/pets/{petId}".
	Path string `json:"path"`
	// Custom is true when Method came from additionalOperations rather
	// than a fixed verb field.
	Custom bool `json:"custom,omitempty"`

	OperationID string   `json:"operationId,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	Parameters  []*ParameterRecord `json:"parameters,omitempty"`
	RequestBody *RequestBodyRecord `json:"requestBody,omitempty"`
	// Responses is ordered: numeric and wildcard statuses sorted
	// lexicographically, then "default".
	Responses []*ResponseRecord `json:"responses,omitempty"`

	// Security holds the operation's (or document-level fallback)
	// requirements with normalized scheme keys.
	Security []spec.SecurityRequirement `json:"security,omitempty"`
	Servers  []*spec.Server             `json:"servers,omitempty"`

	// Extensions carries x- fields verbatim.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// ParameterRecord is one normalized parameter in OpenAPI 3.x shape.
type ParameterRecord struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`

	Style           string `json:"style,omitempty"`
	Explode         bool   `json:"explode,omitempty"`
	AllowReserved   bool   `json:"allowReserved,omitempty"`
	AllowEmptyValue bool   `json:"allowEmptyValue,omitempty"`

	// Schema describes the parameter value. For a content-based parameter
	// it is the schema of the single content entry and ContentType names
	// the media type it serializes as.
	Schema      *spec.Schema `json:"schema,omitempty"`
	ContentType string       `json:"contentType,omitempty"`

	Extensions map[string]any `json:"extensions,omitempty"`
}

// ContentBased reports whether the parameter serializes as one encoded
// string of ContentType rather than as a styled value.
func (p *ParameterRecord) ContentBased() bool { return p.ContentType != "" }

// key identifies a parameter for merge purposes.
func (p *ParameterRecord) key() string { return p.In + " " + p.Name }

// RequestBodyRecord is a normalized request body. For Swagger 2.0 operations
// it is synthesized from the body or formData parameters.
type RequestBodyRecord struct {
	Description string                  `json:"description,omitempty"`
	Required    bool                    `json:"required,omitempty"`
	Content     map[string]*MediaRecord `json:"content,omitempty"`
	Extensions  map[string]any          `json:"extensions,omitempty"`
}

// MediaRecord is one media-type entry of a request or response body.
type MediaRecord struct {
	Schema *spec.Schema `json:"schema,omitempty"`
	// ItemSchema describes one element of a streaming body (OAS 3.2+).
	ItemSchema *spec.Schema             `json:"itemSchema,omitempty"`
	Example    any                      `json:"example,omitempty"`
	Examples   map[string]*spec.Example `json:"examples,omitempty"`
}

// ResponseRecord is one normalized response entry.
type ResponseRecord struct {
	// Status is a three-digit code, a wildcard like "2XX", an x- extension
	// key, or "default".
	Status      string                   `json:"status"`
	Description string                   `json:"description,omitempty"`
	Content     map[string]*MediaRecord  `json:"content,omitempty"`
	Headers     map[string]*HeaderRecord `json:"headers,omitempty"`
	Links       map[string]*spec.Link    `json:"links,omitempty"`
	Extensions  map[string]any           `json:"extensions,omitempty"`
}

// HeaderRecord is a response header type hint.
type HeaderRecord struct {
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required,omitempty"`
	Schema      *spec.Schema `json:"schema,omitempty"`
}

// Result is the output of one extraction run.
type Result struct {
	// Operations are ordered by path, then method.
	Operations []*OperationRecord `json:"operations"`
	// Schemas is the named-schema table keyed by sanitized identifier.
	Schemas map[string]*spec.Schema `json:"schemas,omitempty"`
	// SchemaNames maps sanitized identifiers back to source names.
	SchemaNames map[string]string `json:"schemaNames,omitempty"`
	// Warnings collects every non-fatal anomaly absorbed during the walk.
	Warnings []error `json:"-"`
}
