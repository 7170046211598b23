// Package spec defines the typed document model for OpenAPI 2.0 (Swagger)
// and OpenAPI 3.x documents, together with version detection and parsing
// from YAML or JSON bytes.
//
// The model covers both dialects in one set of structs: fields that exist
// only in one dialect are tagged with a comment naming it. Specification
// extensions ("x-" fields) are captured verbatim in each struct's Extra map.
//
// Schemas support the JSON Schema 2020-12 keywords the OAS 3.1+ dialect
// references, including boolean-form schemas: `true` and `false` decode into
// a Schema whose Always field is set, so downstream consumers can branch on
// the explicit top/bottom form instead of a dynamically typed escape hatch.
//
// Parsed values are treated as immutable: the resolver hands out nodes from
// loaded documents and never mutates them, so a Document can be shared by
// concurrent extraction branches without copying.
package spec
