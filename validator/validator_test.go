package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offscale/oasir/spec"
	"github.com/offscale/oasir/specerr"
)

func parse(t *testing.T, data string) *spec.Document {
	t.Helper()
	doc, err := spec.ParseBytes([]byte(data), "test.yaml")
	require.NoError(t, err)
	return doc
}

func TestValidateAcceptsMinimalDocuments(t *testing.T) {
	tests := map[string]string{
		"OAS3 with empty paths": `
openapi: "3.0.0"
info: {title: T, version: "1"}
paths: {}
`,
		"OAS3 components only": `
openapi: "3.1.0"
info: {title: T, version: "1"}
components:
  schemas:
    Empty: {}
`,
		"OAS3 webhooks only": `
openapi: "3.1.0"
info: {title: T, version: "1"}
webhooks:
  newPet:
    post:
      responses: {}
`,
		"Swagger 2 with empty paths": `
swagger: "2.0"
info: {title: T, version: "1"}
paths: {}
`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Validate(parse(t, data)))
		})
	}
}

func TestValidateMissingTitleNamesTitle(t *testing.T) {
	err := Validate(parse(t, `
openapi: "3.0.0"
info: {version: "1"}
paths: {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")

	var verr *specerr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)
}

func TestValidateMissingVersionNamesVersion(t *testing.T) {
	err := Validate(parse(t, `
openapi: "3.0.0"
info: {title: T}
paths: {}
`))
	require.Error(t, err)

	var verr *specerr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "version", verr.Field)
}

func TestValidateMissingInfo(t *testing.T) {
	err := Validate(parse(t, `
openapi: "3.0.0"
paths: {}
`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, specerr.ErrValidation))
	assert.Contains(t, err.Error(), "info")
}

func TestValidateNoVersionMarker(t *testing.T) {
	err := Validate(parse(t, `
info: {title: T, version: "1"}
paths: {}
`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, specerr.ErrValidation))
	assert.Contains(t, err.Error(), "version marker")
}

func TestValidateUnsupportedVersions(t *testing.T) {
	err := Validate(parse(t, `
swagger: "1.2"
info: {title: T, version: "1"}
paths: {}
`))
	require.Error(t, err)
	var verr *specerr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "swagger", verr.Field)

	err = Validate(parse(t, `
openapi: "4.0.0"
info: {title: T, version: "1"}
paths: {}
`))
	require.Error(t, err)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "openapi", verr.Field)
}

func TestValidateOAS3MissingAllEntryPoints(t *testing.T) {
	err := Validate(parse(t, `
openapi: "3.1.0"
info: {title: T, version: "1"}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paths, components, or webhooks")
}

func TestValidateSwagger2MissingPaths(t *testing.T) {
	err := Validate(parse(t, `
swagger: "2.0"
info: {title: T, version: "1"}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paths")
}

func TestValidateCollectsMultipleViolations(t *testing.T) {
	err := Validate(parse(t, `
swagger: "2.0"
info: {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "version")
	assert.Contains(t, err.Error(), "paths")
}

func TestValidateNilDocument(t *testing.T) {
	assert.Error(t, Validate(nil))
}
