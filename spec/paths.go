package spec

import (
	"fmt"

	"go.yaml.in/yaml/v4"

	"github.com/offscale/oasir/internal/httputil"
)

// Paths holds the relative paths to the individual endpoints
type Paths map[string]*PathItem

// PathItem describes the operations available on a single path
type PathItem struct {
	Ref         string       `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Summary     string       `yaml:"summary,omitempty" json:"summary,omitempty"`         // OAS 3.0+
	Description string       `yaml:"description,omitempty" json:"description,omitempty"` // OAS 3.0+
	Get         *Operation   `yaml:"get,omitempty" json:"get,omitempty"`
	Put         *Operation   `yaml:"put,omitempty" json:"put,omitempty"`
	Post        *Operation   `yaml:"post,omitempty" json:"post,omitempty"`
	Delete      *Operation   `yaml:"delete,omitempty" json:"delete,omitempty"`
	Options     *Operation   `yaml:"options,omitempty" json:"options,omitempty"`
	Head        *Operation   `yaml:"head,omitempty" json:"head,omitempty"`
	Patch       *Operation   `yaml:"patch,omitempty" json:"patch,omitempty"`
	Trace       *Operation   `yaml:"trace,omitempty" json:"trace,omitempty"`     // OAS 3.0+
	Query       *Operation   `yaml:"query,omitempty" json:"query,omitempty"`     // OAS 3.2+
	Servers     []*Server    `yaml:"servers,omitempty" json:"servers,omitempty"` // OAS 3.0+
	Parameters  []*Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`

	// AdditionalOperations holds OAS 3.2+ custom-method operations keyed by
	// their literal (uppercase) method token. Never merged with the fixed
	// verb fields above, even when a token matches a field name.
	AdditionalOperations map[string]*Operation `yaml:"additionalOperations,omitempty" json:"additionalOperations,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Operations returns the fixed-verb operations defined on this path item,
// keyed by lowercase method name, honoring version availability (trace is
// 3.0+, query is 3.2+). AdditionalOperations are not included; callers
// handle them separately to keep custom tokens distinct from fixed verbs.
func (pi *PathItem) Operations(version OASVersion) map[string]*Operation {
	ops := map[string]*Operation{
		httputil.MethodGet:     pi.Get,
		httputil.MethodPut:     pi.Put,
		httputil.MethodPost:    pi.Post,
		httputil.MethodDelete:  pi.Delete,
		httputil.MethodOptions: pi.Options,
		httputil.MethodHead:    pi.Head,
		httputil.MethodPatch:   pi.Patch,
	}
	if version >= Version300 {
		ops[httputil.MethodTrace] = pi.Trace
	}
	if version >= Version320 {
		ops[httputil.MethodQuery] = pi.Query
	}
	for method, op := range ops {
		if op == nil {
			delete(ops, method)
		}
	}
	return ops
}

// Operation describes a single API operation on a path
type Operation struct {
	Tags         []string              `yaml:"tags,omitempty" json:"tags,omitempty"`
	Summary      string                `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description  string                `yaml:"description,omitempty" json:"description,omitempty"`
	ExternalDocs *ExternalDocs         `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`
	OperationID  string                `yaml:"operationId,omitempty" json:"operationId,omitempty"`
	Parameters   []*Parameter          `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	RequestBody  *RequestBody          `yaml:"requestBody,omitempty" json:"requestBody,omitempty"` // OAS 3.0+
	Responses    *Responses            `yaml:"responses" json:"responses"`
	Deprecated   bool                  `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	Security     []SecurityRequirement `yaml:"security,omitempty" json:"security,omitempty"`
	Servers      []*Server             `yaml:"servers,omitempty" json:"servers,omitempty"` // OAS 3.0+
	// OAS 2.0 specific
	Consumes []string `yaml:"consumes,omitempty" json:"consumes,omitempty"`
	Produces []string `yaml:"produces,omitempty" json:"produces,omitempty"`
	Schemes  []string `yaml:"schemes,omitempty" json:"schemes,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Responses is a container for the expected responses of an operation
type Responses struct {
	Default *Response            `yaml:"default,omitempty" json:"default,omitempty"`
	Codes   map[string]*Response `yaml:"-" json:"-"` // handled by custom unmarshaler
}

// UnmarshalYAML validates status code keys while decoding, so invalid keys
// fail early with a clear message instead of surfacing later as phantom
// response entries.
func (r *Responses) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]any
	if err := unmarshal(&raw); err != nil {
		return err
	}

	r.Codes = make(map[string]*Response)

	for key, value := range raw {
		if key == "default" {
			var defaultResp Response
			if err := DecodeNode(value, &defaultResp); err != nil {
				return fmt.Errorf("failed to decode default response: %w", err)
			}
			r.Default = &defaultResp
			continue
		}
		if !httputil.ValidateStatusCode(key) {
			return fmt.Errorf("invalid status code %q in responses: must be a valid HTTP status code (e.g. \"200\"), wildcard pattern (e.g. \"2XX\"), or extension field (e.g. \"x-custom\")", key)
		}
		var resp Response
		if err := DecodeNode(value, &resp); err != nil {
			return fmt.Errorf("failed to decode response for status code %s: %w", key, err)
		}
		r.Codes[key] = &resp
	}

	return nil
}

// Response describes a single response from an API operation.
// Description uses omitempty because responses can be defined via $ref.
type Response struct {
	Ref         string                `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Headers     map[string]*Header    `yaml:"headers,omitempty" json:"headers,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty" json:"content,omitempty"` // OAS 3.0+
	Links       map[string]*Link      `yaml:"links,omitempty" json:"links,omitempty"`     // OAS 3.0+
	// OAS 2.0 specific
	Schema   *Schema        `yaml:"schema,omitempty" json:"schema,omitempty"`
	Examples map[string]any `yaml:"examples,omitempty" json:"examples,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Link represents a possible design-time link for a response (OAS 3.0+)
type Link struct {
	Ref          string         `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	OperationRef string         `yaml:"operationRef,omitempty" json:"operationRef,omitempty"`
	OperationID  string         `yaml:"operationId,omitempty" json:"operationId,omitempty"`
	Parameters   map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	RequestBody  any            `yaml:"requestBody,omitempty" json:"requestBody,omitempty"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	Server       *Server        `yaml:"server,omitempty" json:"server,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// MediaType provides schema and examples for a media type (OAS 3.0+)
type MediaType struct {
	Schema   *Schema              `yaml:"schema,omitempty" json:"schema,omitempty"`
	Example  any                  `yaml:"example,omitempty" json:"example,omitempty"`
	Examples map[string]*Example  `yaml:"examples,omitempty" json:"examples,omitempty"`
	Encoding map[string]*Encoding `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	// ItemSchema describes one element of a streaming response body (OAS 3.2+)
	ItemSchema *Schema `yaml:"itemSchema,omitempty" json:"itemSchema,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Example represents an example object (OAS 3.0+)
type Example struct {
	Ref           string `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Summary       string `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description   string `yaml:"description,omitempty" json:"description,omitempty"`
	Value         any    `yaml:"value,omitempty" json:"value,omitempty"`
	ExternalValue string `yaml:"externalValue,omitempty" json:"externalValue,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Encoding defines encoding for a specific property (OAS 3.0+)
type Encoding struct {
	ContentType   string             `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	Headers       map[string]*Header `yaml:"headers,omitempty" json:"headers,omitempty"`
	Style         string             `yaml:"style,omitempty" json:"style,omitempty"`
	Explode       *bool              `yaml:"explode,omitempty" json:"explode,omitempty"`
	AllowReserved bool               `yaml:"allowReserved,omitempty" json:"allowReserved,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// DecodeNode converts a raw node (as produced by parsing or reference
// resolution) into a typed struct by a marshal/unmarshal round trip.
// The source node is never modified.
func DecodeNode(node any, target any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, target)
}
