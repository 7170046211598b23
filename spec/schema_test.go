package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

func TestSchemaBooleanForms(t *testing.T) {
	var s Schema
	require.NoError(t, yaml.Unmarshal([]byte(`true`), &s))
	assert.True(t, s.IsAlways())
	assert.False(t, s.IsNever())

	var n Schema
	require.NoError(t, yaml.Unmarshal([]byte(`false`), &n))
	assert.True(t, n.IsNever())
	assert.False(t, n.IsAlways())
}

func TestSchemaBooleanAdditionalProperties(t *testing.T) {
	data := []byte(`
type: object
properties:
  name:
    type: string
additionalProperties: false
`)
	var s Schema
	require.NoError(t, yaml.Unmarshal(data, &s))
	require.NotNil(t, s.AdditionalProperties)
	assert.True(t, s.AdditionalProperties.IsNever())
	require.Contains(t, s.Properties, "name")
	assert.False(t, s.Properties["name"].IsAlways())
}

func TestSchemaTypeList(t *testing.T) {
	var scalar Schema
	require.NoError(t, yaml.Unmarshal([]byte(`type: string`), &scalar))
	assert.Equal(t, []string{"string"}, scalar.Types())
	assert.True(t, scalar.HasType("string"))
	assert.False(t, scalar.HasType("number"))

	var list Schema
	require.NoError(t, yaml.Unmarshal([]byte(`type: [string, "null"]`), &list))
	assert.Equal(t, []string{"string", "null"}, list.Types())
	assert.True(t, list.HasType("null"))

	var none Schema
	require.NoError(t, yaml.Unmarshal([]byte(`description: untyped`), &none))
	assert.Nil(t, none.Types())
}

func TestSchema202012Keywords(t *testing.T) {
	data := []byte(`
prefixItems:
  - type: string
  - type: integer
items: false
dependentRequired:
  credit_card: [billing_address]
dependentSchemas:
  credit_card:
    properties:
      billing_address:
        type: string
if:
  properties:
    kind:
      const: dog
then:
  required: [bark]
contentMediaType: application/octet-stream
contentEncoding: base64
`)
	var s Schema
	require.NoError(t, yaml.Unmarshal(data, &s))

	require.Len(t, s.PrefixItems, 2)
	assert.True(t, s.PrefixItems[0].HasType("string"))
	require.NotNil(t, s.Items)
	assert.True(t, s.Items.IsNever())
	assert.Equal(t, []string{"billing_address"}, s.DependentRequired["credit_card"])
	require.Contains(t, s.DependentSchemas, "credit_card")
	require.NotNil(t, s.If)
	assert.Equal(t, "dog", s.If.Properties["kind"].Const)
	require.NotNil(t, s.Then)
	assert.Equal(t, "application/octet-stream", s.ContentMediaType)
	assert.Equal(t, "base64", s.ContentEncoding)
}

func TestSchemaExtensionsAndDiscriminator(t *testing.T) {
	data := []byte(`
oneOf:
  - $ref: '#/components/schemas/Cat'
  - $ref: '#/components/schemas/Dog'
discriminator:
  propertyName: petType
  mapping:
    cat: '#/components/schemas/Cat'
x-internal: true
`)
	var s Schema
	require.NoError(t, yaml.Unmarshal(data, &s))
	require.Len(t, s.OneOf, 2)
	assert.Equal(t, "#/components/schemas/Cat", s.OneOf[0].Ref)
	require.NotNil(t, s.Discriminator)
	assert.Equal(t, "petType", s.Discriminator.PropertyName)
	assert.Equal(t, true, s.Extra["x-internal"])
}

func TestDecodeNode(t *testing.T) {
	node := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{"type": "integer"},
		},
	}
	var s Schema
	require.NoError(t, DecodeNode(node, &s))
	assert.True(t, s.HasType("object"))
	require.Contains(t, s.Properties, "id")

	// Source node must not be modified
	assert.Equal(t, "object", node["type"])
}
