package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offscale/oasir/specerr"
)

func TestSplitRef(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		docPart  string
		fragment string
	}{
		{"local pointer", "#/components/schemas/Pet", "", "/components/schemas/Pet"},
		{"bare document", "common.yaml", "common.yaml", ""},
		{"document with pointer", "common.yaml#/definitions/Error", "common.yaml", "/definitions/Error"},
		{"remote with pointer", "https://example.com/api.yaml#/info", "https://example.com/api.yaml", "/info"},
		{"empty", "", "", ""},
		{"root pointer", "#", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			docPart, fragment := SplitRef(tc.ref)
			assert.Equal(t, tc.docPart, docPart)
			assert.Equal(t, tc.fragment, fragment)
		})
	}
}

func TestWalkPointer(t *testing.T) {
	root := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet":      map[string]any{"type": "object"},
				"a/b":      map[string]any{"type": "string"},
				"tilde~it": map[string]any{"type": "integer"},
			},
		},
		"servers": []any{
			map[string]any{"url": "https://api.example.com"},
			map[string]any{"url": "https://staging.example.com"},
		},
	}

	t.Run("root", func(t *testing.T) {
		node, err := WalkPointer(root, "", 0)
		require.NoError(t, err)
		assert.Equal(t, root, node)
	})

	t.Run("nested map", func(t *testing.T) {
		node, err := WalkPointer(root, "/components/schemas/Pet", 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"type": "object"}, node)
	})

	t.Run("array index", func(t *testing.T) {
		node, err := WalkPointer(root, "/servers/1", 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"url": "https://staging.example.com"}, node)
	})

	t.Run("escaped slash", func(t *testing.T) {
		node, err := WalkPointer(root, "/components/schemas/a~1b", 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"type": "string"}, node)
	})

	t.Run("escaped tilde", func(t *testing.T) {
		node, err := WalkPointer(root, "/components/schemas/tilde~0it", 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"type": "integer"}, node)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := WalkPointer(root, "/components/schemas/Missing", 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, specerr.ErrReference))
	})

	t.Run("index out of bounds", func(t *testing.T) {
		_, err := WalkPointer(root, "/servers/5", 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, specerr.ErrReference))
	})

	t.Run("non numeric index", func(t *testing.T) {
		_, err := WalkPointer(root, "/servers/first", 0)
		require.Error(t, err)
	})

	t.Run("traverse into scalar", func(t *testing.T) {
		_, err := WalkPointer(root, "/servers/0/url/deeper", 0)
		require.Error(t, err)
	})

	t.Run("depth limit", func(t *testing.T) {
		_, err := WalkPointer(root, "/components/schemas/Pet", 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, specerr.ErrResourceLimit))
	})
}

func TestRefOf(t *testing.T) {
	ref, ok := RefOf(map[string]any{"$ref": "#/components/schemas/Pet"})
	assert.True(t, ok)
	assert.Equal(t, "#/components/schemas/Pet", ref)

	_, ok = RefOf(map[string]any{"type": "object"})
	assert.False(t, ok)

	_, ok = RefOf("not a map")
	assert.False(t, ok)

	_, ok = RefOf(map[string]any{"$ref": ""})
	assert.False(t, ok)
}

func TestRefName(t *testing.T) {
	assert.Equal(t, "Pet", RefName("#/components/schemas/Pet"))
	assert.Equal(t, "Error", RefName("common.yaml#/definitions/Error"))
	assert.Equal(t, "a/b", RefName("#/components/schemas/a~1b"))
	assert.Equal(t, "", RefName("common.yaml"))
}
