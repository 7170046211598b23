package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offscale/oasir/spec"
	"github.com/offscale/oasir/specerr"
)

const petstoreEntry = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
        owner:
          $ref: 'common.yaml#/components/schemas/Owner'
`

const commonDoc = `openapi: 3.0.3
info:
  title: Common
  version: 1.0.0
components:
  schemas:
    Owner:
      type: object
      properties:
        email:
          type: string
    Alias:
      $ref: '#/components/schemas/Owner'
    Loop:
      $ref: '#/components/schemas/Loop'
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestCache(t *testing.T, dir string) (*Cache, string) {
	t.Helper()
	entry := writeFixture(t, dir, "petstore.yaml", petstoreEntry)
	writeFixture(t, dir, "common.yaml", commonDoc)
	return NewCache(WithBaseDir(dir)), entry
}

func TestCacheLoad(t *testing.T) {
	cache, entry := newTestCache(t, t.TempDir())
	ctx := context.Background()

	doc, err := cache.Load(ctx, entry)
	require.NoError(t, err)
	assert.Equal(t, spec.Version303, doc.OASVersion)
	assert.Equal(t, 1, doc.Stats.PathCount)

	again, err := cache.Load(ctx, entry)
	require.NoError(t, err)
	assert.Same(t, doc, again, "cached load must return the same document")
	assert.Equal(t, 1, cache.Len())
}

func TestCacheLoadEntryValidates(t *testing.T) {
	dir := t.TempDir()
	entry := writeFixture(t, dir, "bad.yaml", "openapi: 3.0.3\ninfo:\n  title: No Version\npaths: {}\n")
	cache := NewCache(WithBaseDir(dir))

	_, err := cache.LoadEntry(context.Background(), entry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, specerr.ErrValidation))
}

func TestCacheLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(WithBaseDir(dir))

	_, err := cache.Load(context.Background(), filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, specerr.ErrParse))

	// Negative cache: the second attempt fails without refetching.
	_, err2 := cache.Load(context.Background(), filepath.Join(dir, "nope.yaml"))
	assert.Equal(t, err, err2)
}

func TestCacheResolveLocal(t *testing.T) {
	cache, entry := newTestCache(t, t.TempDir())

	node, err := cache.Resolve(context.Background(), "#/components/schemas/Pet", entry)
	require.NoError(t, err)
	m, ok := node.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", m["type"])
}

func TestCacheResolveCrossDocument(t *testing.T) {
	cache, entry := newTestCache(t, t.TempDir())

	node, err := cache.Resolve(context.Background(), "common.yaml#/components/schemas/Owner", entry)
	require.NoError(t, err)
	m, ok := node.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", m["type"])
	assert.Equal(t, 2, cache.Len())
}

func TestCacheResolveMissingPointer(t *testing.T) {
	cache, entry := newTestCache(t, t.TempDir())

	_, err := cache.Resolve(context.Background(), "#/components/schemas/Ghost", entry)
	require.Error(t, err)
	var refErr *specerr.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.False(t, refErr.IsCircular)
}

func TestCacheResolveFullyChain(t *testing.T) {
	cache, entry := newTestCache(t, t.TempDir())

	resolved, err := cache.ResolveFully(context.Background(), "common.yaml#/components/schemas/Alias", entry, nil)
	require.NoError(t, err)
	m, ok := resolved.Node.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", m["type"])
	assert.Contains(t, resolved.URI, "common.yaml")
}

func TestCacheResolveFullyCycle(t *testing.T) {
	cache, entry := newTestCache(t, t.TempDir())

	_, err := cache.ResolveFully(context.Background(), "common.yaml#/components/schemas/Loop", entry, nil)
	require.Error(t, err)
	var refErr *specerr.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.True(t, refErr.IsCircular)
	assert.True(t, errors.Is(err, specerr.ErrCircularReference))
}

func TestResolveStateSiblingRevisit(t *testing.T) {
	// The same reference may appear on two sibling paths; only revisiting
	// it on a single path is a cycle.
	cache, entry := newTestCache(t, t.TempDir())
	state := NewResolveState()

	for i := 0; i < 2; i++ {
		_, err := cache.ResolveFully(context.Background(), "common.yaml#/components/schemas/Alias", entry, state)
		require.NoError(t, err, "visit %d", i)
	}
	assert.Equal(t, 0, state.Depth())
}

func TestCacheResolveSchema(t *testing.T) {
	cache, entry := newTestCache(t, t.TempDir())

	schema, uri, err := cache.ResolveSchema(context.Background(), "#/components/schemas/Pet", entry, nil)
	require.NoError(t, err)
	assert.Equal(t, entry, uri)
	assert.True(t, schema.HasType("object"))
	require.Contains(t, schema.Properties, "owner")
	assert.Equal(t, "common.yaml#/components/schemas/Owner", schema.Properties["owner"].Ref)
}

func TestCachePathTraversalGuard(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	writeFixture(t, outside, "secret.yaml", "openapi: 3.0.3\n")
	_, entry := filepath.Split(writeFixture(t, dir, "entry.yaml", petstoreEntry))
	cache := NewCache(WithBaseDir(dir))

	ref := fmt.Sprintf("%s#/info", filepath.Join(outside, "secret.yaml"))
	_, err := cache.Resolve(context.Background(), ref, filepath.Join(dir, entry))
	require.Error(t, err)
	assert.True(t, errors.Is(err, specerr.ErrPathTraversal))
}

func TestCacheRemoteFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, commonDoc)
	}))
	defer srv.Close()

	cache := NewCache(WithHTTPFetcher(srv.Client()))
	ctx := context.Background()

	node, err := cache.Resolve(ctx, srv.URL+"/common.yaml#/components/schemas/Owner", "")
	require.NoError(t, err)
	m, ok := node.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", m["type"])

	_, err = cache.Resolve(ctx, srv.URL+"/common.yaml#/components/schemas/Alias", "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "same URI must be fetched once")
}

func TestCacheRemoteDisabledByDefault(t *testing.T) {
	cache := NewCache()
	_, err := cache.Load(context.Background(), "https://example.invalid/api.yaml")
	require.Error(t, err)
	var refErr *specerr.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Contains(t, refErr.Message, "no fetcher")
}

func TestCacheConcurrentLoadDedup(t *testing.T) {
	var fetches atomic.Int32
	cache := NewCache(WithFetcher("file", func(ctx context.Context, uri string) ([]byte, error) {
		fetches.Add(1)
		return []byte(commonDoc), nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Load(context.Background(), "/virtual/common.yaml")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), fetches.Load(), "concurrent loads of one URI must share a single fetch")
	assert.Equal(t, 1, cache.Len())
}

func TestCacheSelfAlias(t *testing.T) {
	dir := t.TempDir()
	doc := `openapi: 3.2.0
$self: https://registry.example.com/specs/common
info:
  title: Registered
  version: 1.0.0
components:
  schemas:
    Thing:
      type: object
`
	entry := writeFixture(t, dir, "registered.yaml", doc)
	cache := NewCache(WithBaseDir(dir))

	_, err := cache.Load(context.Background(), entry)
	require.NoError(t, err)

	// References addressing the document's $self URI resolve from cache
	// without a network fetch.
	node, err := cache.Resolve(context.Background(), "https://registry.example.com/specs/common#/components/schemas/Thing", entry)
	require.NoError(t, err)
	m, ok := node.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", m["type"])
}

func TestCacheDocumentLimit(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		writeFixture(t, dir, fmt.Sprintf("doc%d.yaml", i), commonDoc)
	}
	cache := NewCache(WithBaseDir(dir), WithMaxDocuments(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := cache.Load(ctx, filepath.Join(dir, fmt.Sprintf("doc%d.yaml", i)))
		require.NoError(t, err)
	}
	_, err := cache.Load(ctx, filepath.Join(dir, "doc2.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, specerr.ErrResourceLimit))
}
