package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offscale/oasir/resolver"
	"github.com/offscale/oasir/spec"
)

func parseDoc(t *testing.T, source string) (*spec.Document, *resolver.Cache) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	cache := resolver.NewCache(resolver.WithBaseDir(dir))
	doc, err := cache.Load(context.Background(), path)
	require.NoError(t, err)
	return doc, cache
}

func extractAll(t *testing.T, source string, opts ...Option) *Result {
	t.Helper()
	doc, cache := parseDoc(t, source)
	result, err := Extract(context.Background(), doc, cache, opts...)
	require.NoError(t, err)
	return result
}

func TestExtractSingleOperation(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /x:
    get:
      responses: {}
`)
	require.Len(t, result.Operations, 1)
	op := result.Operations[0]
	assert.Equal(t, "GET", op.Method)
	assert.Equal(t, "/x", op.Path)
	assert.False(t, op.Custom)
	assert.Empty(t, op.Responses)
}

func TestExtractOperationOrdering(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /b:
    get: {responses: {}}
  /a:
    post: {responses: {}}
    get: {responses: {}}
`)
	require.Len(t, result.Operations, 3)
	assert.Equal(t, "/a", result.Operations[0].Path)
	assert.Equal(t, "GET", result.Operations[0].Method)
	assert.Equal(t, "POST", result.Operations[1].Method)
	assert.Equal(t, "/b", result.Operations[2].Path)
}

func TestExtractAdditionalOperations(t *testing.T) {
	result := extractAll(t, `openapi: 3.2.0
info: {title: T, version: "1"}
paths:
  /jobs:
    get: {responses: {}}
    additionalOperations:
      PURGE:
        operationId: purgeJobs
        responses: {}
`)
	require.Len(t, result.Operations, 2)
	var purge *OperationRecord
	for _, op := range result.Operations {
		if op.Method == "PURGE" {
			purge = op
		}
	}
	require.NotNil(t, purge)
	assert.True(t, purge.Custom)
	assert.Equal(t, "purgeJobs", purge.OperationID)
}

func TestQueryMethodVersionGated(t *testing.T) {
	const body = "info: {title: T, version: \"1\"}\npaths:\n  /search:\n    query:\n      responses: {}\n"

	old := extractAll(t, "openapi: 3.1.0\n"+body)
	assert.Empty(t, old.Operations, "query verb requires 3.2")

	modern := extractAll(t, "openapi: 3.2.0\n"+body)
	require.Len(t, modern.Operations, 1)
	assert.Equal(t, "QUERY", modern.Operations[0].Method)
}

func TestPathParameterForcedRequired(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          schema: {type: string}
      responses: {}
`)
	require.Len(t, result.Operations, 1)
	require.Len(t, result.Operations[0].Parameters, 1)
	assert.True(t, result.Operations[0].Parameters[0].Required)
}

func TestCollectionFormatMapping(t *testing.T) {
	result := extractAll(t, `swagger: "2.0"
info: {title: T, version: "1"}
paths:
  /things:
    get:
      parameters:
        - name: tags
          in: query
          type: array
          collectionFormat: multi
          items: {type: string}
        - name: ids
          in: query
          type: array
          collectionFormat: csv
          items: {type: string}
        - name: cols
          in: query
          type: array
          collectionFormat: pipes
          items: {type: string}
        - name: words
          in: query
          type: array
          collectionFormat: ssv
          items: {type: string}
      responses:
        "200": {description: ok}
`)
	require.Len(t, result.Operations, 1)
	params := map[string]*ParameterRecord{}
	for _, p := range result.Operations[0].Parameters {
		params[p.Name] = p
	}
	require.Len(t, params, 4)

	assert.Equal(t, "form", params["tags"].Style)
	assert.True(t, params["tags"].Explode)
	assert.Equal(t, "form", params["ids"].Style)
	assert.False(t, params["ids"].Explode)
	assert.Equal(t, "pipeDelimited", params["cols"].Style)
	assert.False(t, params["cols"].Explode)
	assert.Equal(t, "spaceDelimited", params["words"].Style)
	assert.False(t, params["words"].Explode)

	// Flat Swagger 2.0 fields synthesize into a schema.
	require.NotNil(t, params["tags"].Schema)
	assert.True(t, params["tags"].Schema.HasType("array"))
	require.NotNil(t, params["tags"].Schema.Items)
	assert.True(t, params["tags"].Schema.Items.HasType("string"))
}

func TestCollectionFormatDefaultsToCSV(t *testing.T) {
	// Swagger 2.0 array parameters without a collectionFormat serialize as
	// csv, which maps to form without explode, never to multi semantics.
	result := extractAll(t, `swagger: "2.0"
info: {title: T, version: "1"}
paths:
  /things:
    get:
      parameters:
        - name: ids
          in: query
          type: array
          items: {type: string}
        - name: q
          in: query
          type: string
      responses:
        "200": {description: ok}
`)
	require.Len(t, result.Operations, 1)
	params := map[string]*ParameterRecord{}
	for _, p := range result.Operations[0].Parameters {
		params[p.Name] = p
	}

	ids := params["ids"]
	require.NotNil(t, ids)
	assert.Equal(t, "form", ids.Style)
	assert.False(t, ids.Explode)

	// Non-array parameters keep the plain location default.
	q := params["q"]
	require.NotNil(t, q)
	assert.Equal(t, "form", q.Style)
	assert.True(t, q.Explode)
	assert.Empty(t, result.Warnings)
}

func TestParameterMergeOverride(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /pets:
    parameters:
      - name: limit
        in: query
        description: shared description
        schema: {type: integer}
      - name: verbose
        in: query
        schema: {type: boolean}
    get:
      parameters:
        - name: limit
          in: query
          required: true
          schema: {type: integer, format: int32}
      responses: {}
`)
	require.Len(t, result.Operations, 1)
	params := map[string]*ParameterRecord{}
	for _, p := range result.Operations[0].Parameters {
		params[p.Name] = p
	}
	require.Len(t, params, 2, "matching name+location merges instead of duplicating")

	limit := params["limit"]
	assert.True(t, limit.Required, "operation-level required wins")
	assert.Equal(t, "shared description", limit.Description, "untouched path-level fields survive")
	require.NotNil(t, limit.Schema)
	assert.Equal(t, "int32", limit.Schema.Format, "operation-level schema wins")
}

func TestReferencedParameterSiblingOverride(t *testing.T) {
	result := extractAll(t, `openapi: 3.1.0
info: {title: T, version: "1"}
paths:
  /pets:
    get:
      parameters:
        - $ref: '#/components/parameters/Limit'
          description: overridden
      responses: {}
components:
  parameters:
    Limit:
      name: limit
      in: query
      description: base
      schema: {type: integer}
`)
	require.Len(t, result.Operations, 1)
	require.Len(t, result.Operations[0].Parameters, 1)
	p := result.Operations[0].Parameters[0]
	assert.Equal(t, "limit", p.Name)
	assert.Equal(t, "overridden", p.Description)
	require.NotNil(t, p.Schema)
	assert.True(t, p.Schema.HasType("integer"))
}

func TestUnresolvableParameterDegrades(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /pets:
    get:
      parameters:
        - $ref: '#/components/parameters/Ghost'
      responses: {}
`)
	require.Len(t, result.Operations, 1)
	assert.Empty(t, result.Operations[0].Parameters)
	assert.NotEmpty(t, result.Warnings)
}

func TestContentBasedParameter(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /pets:
    get:
      parameters:
        - name: filter
          in: query
          content:
            application/json:
              schema: {type: object}
      responses: {}
`)
	require.Len(t, result.Operations[0].Parameters, 1)
	p := result.Operations[0].Parameters[0]
	assert.True(t, p.ContentBased())
	assert.Equal(t, "application/json", p.ContentType)
	require.NotNil(t, p.Schema)
	assert.True(t, p.Schema.HasType("object"))
	assert.Empty(t, p.Style, "content-based parameters carry no style")
}

func TestReservedHeadersDropped(t *testing.T) {
	source := `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /pets:
    get:
      parameters:
        - name: Authorization
          in: header
          schema: {type: string}
        - name: X-Request-Id
          in: header
          schema: {type: string}
      responses: {}
`
	result := extractAll(t, source)
	require.Len(t, result.Operations[0].Parameters, 1)
	assert.Equal(t, "X-Request-Id", result.Operations[0].Parameters[0].Name)

	kept := extractAll(t, source, WithReservedHeaders())
	assert.Len(t, kept.Operations[0].Parameters, 2)
}

func TestSwagger2BodyBecomesRequestBody(t *testing.T) {
	result := extractAll(t, `swagger: "2.0"
info: {title: T, version: "1"}
paths:
  /pets:
    post:
      consumes: [application/json]
      parameters:
        - name: pet
          in: body
          required: true
          schema:
            $ref: '#/definitions/Pet'
      responses:
        "201": {description: created}
definitions:
  Pet:
    type: object
`)
	op := result.Operations[0]
	assert.Empty(t, op.Parameters, "body parameter never survives as a parameter")
	require.NotNil(t, op.RequestBody)
	assert.True(t, op.RequestBody.Required)
	require.Contains(t, op.RequestBody.Content, "application/json")
	assert.Equal(t, "#/definitions/Pet", op.RequestBody.Content["application/json"].Schema.Ref)
}

func TestSwagger2FormDataAggregates(t *testing.T) {
	result := extractAll(t, `swagger: "2.0"
info: {title: T, version: "1"}
paths:
  /upload:
    post:
      consumes: [multipart/form-data]
      parameters:
        - name: file
          in: formData
          type: string
          format: binary
          required: true
        - name: note
          in: formData
          type: string
      responses:
        "204": {description: done}
`)
	op := result.Operations[0]
	require.NotNil(t, op.RequestBody)
	require.Contains(t, op.RequestBody.Content, "multipart/form-data")
	schema := op.RequestBody.Content["multipart/form-data"].Schema
	require.NotNil(t, schema)
	assert.True(t, schema.HasType("object"))
	require.Contains(t, schema.Properties, "file")
	require.Contains(t, schema.Properties, "note")
	assert.Equal(t, []string{"file"}, schema.Required)
	assert.True(t, op.RequestBody.Required)
}

func TestSwagger2ResponseSchemaLifted(t *testing.T) {
	result := extractAll(t, `swagger: "2.0"
info: {title: T, version: "1"}
paths:
  /pets:
    get:
      responses:
        "200":
          description: ok
          schema:
            type: array
            items: {type: object}
`)
	op := result.Operations[0]
	require.Len(t, op.Responses, 1)
	resp := op.Responses[0]
	assert.Equal(t, "200", resp.Status)
	require.Contains(t, resp.Content, "application/json")
	assert.True(t, resp.Content["application/json"].Schema.HasType("array"))
}

func TestResponseOrderingDefaultLast(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /pets:
    get:
      responses:
        default: {description: fallback}
        "404": {description: missing}
        x-internal: {description: extension}
        "200": {description: ok}
        "2XX": {description: wildcard}
`)
	statuses := make([]string, 0, 5)
	for _, r := range result.Operations[0].Responses {
		statuses = append(statuses, r.Status)
	}
	assert.Equal(t, []string{"200", "404", "2XX", "x-internal", "default"}, statuses)
}

func TestReferencedResponseResolves(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /pets:
    get:
      responses:
        "404":
          $ref: '#/components/responses/NotFound'
components:
  responses:
    NotFound:
      description: resource missing
      content:
        application/json:
          schema: {type: object}
`)
	resp := result.Operations[0].Responses[0]
	assert.Equal(t, "resource missing", resp.Description)
	require.Contains(t, resp.Content, "application/json")
}

func TestSecurityKeyNormalization(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /pets:
    get:
      security:
        - '#/components/securitySchemes/MyAuth': [read]
        - 'http://auth.example': []
      responses: {}
components:
  securitySchemes:
    MyAuth:
      type: apiKey
      name: X-Key
      in: header
    'http://auth.example':
      type: openIdConnect
      openIdConnectUrl: https://auth.example/.well-known
`)
	security := result.Operations[0].Security
	require.Len(t, security, 2)
	assert.Contains(t, security[0], "MyAuth", "fragment key rewrites to bare scheme name")
	assert.Contains(t, security[1], "http://auth.example", "literal scheme name wins unnormalized")
}

func TestDocumentSecurityFallback(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
security:
  - ApiKey: []
paths:
  /open:
    get:
      security: []
      responses: {}
  /locked:
    get:
      responses: {}
components:
  securitySchemes:
    ApiKey:
      type: apiKey
      name: X-Key
      in: header
`)
	byPath := map[string]*OperationRecord{}
	for _, op := range result.Operations {
		byPath[op.Path] = op
	}
	require.Len(t, byPath["/locked"].Security, 1)
	assert.Contains(t, byPath["/locked"].Security[0], "ApiKey")
	assert.Empty(t, byPath["/open"].Security, "explicit empty security disables the document default")
}

func TestNamedSchemaTable(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths: {}
components:
  schemas:
    pet-profile:
      type: object
    Order:
      type: object
`)
	require.Contains(t, result.Schemas, "PetProfile")
	require.Contains(t, result.Schemas, "Order")
	assert.Equal(t, "pet-profile", result.SchemaNames["PetProfile"])
}

func TestExtensionsPassThrough(t *testing.T) {
	result := extractAll(t, `openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /pets:
    get:
      x-rate-limit: 100
      responses: {}
`)
	op := result.Operations[0]
	assert.Equal(t, 100, op.Extensions["x-rate-limit"])
}

func TestExtractNilDocument(t *testing.T) {
	_, err := Extract(context.Background(), nil, nil)
	require.Error(t, err)
}
