package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/offscale/oasir"
	"github.com/offscale/oasir/spec"
	"github.com/offscale/oasir/specerr"
	"github.com/offscale/oasir/validator"
)

const (
	// DefaultMaxDocumentBytes caps how large a single fetched document may be.
	DefaultMaxDocumentBytes = 16 << 20
	// DefaultMaxDocuments caps how many documents one cache may hold.
	DefaultMaxDocuments = 512
	// DefaultMaxPointerDepth caps JSON Pointer segment counts.
	DefaultMaxPointerDepth = 128
	// DefaultMaxRefDepth caps how many $ref hops ResolveFully will follow.
	DefaultMaxRefDepth = 64
)

// Cache loads, parses, and memoizes specification documents for one
// resolution run. All methods are safe for concurrent use; each URI is
// fetched and parsed at most once regardless of how many goroutines ask
// for it.
type Cache struct {
	mu          sync.Mutex
	documents   map[string]*spec.Document
	selfAliases map[string]string
	failed      map[string]error

	group    singleflight.Group
	fetchers map[string]Fetcher

	logger           oasir.Logger
	httpClient       *http.Client
	allowRemote      bool
	baseDir          string
	maxDocumentBytes int64
	maxDocuments     int
	maxPointerDepth  int
	maxRefDepth      int
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for resolution warnings.
func WithLogger(logger oasir.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseDir restricts local document loads to paths under dir. References
// resolving outside dir fail with a path-traversal error.
func WithBaseDir(dir string) Option {
	return func(c *Cache) { c.baseDir = dir }
}

// WithHTTPFetcher enables loading http and https references with the given
// client (nil uses a default client).
func WithHTTPFetcher(client *http.Client) Option {
	return func(c *Cache) {
		c.allowRemote = true
		c.httpClient = client
	}
}

// WithFetcher overrides the fetcher for a scheme ("file", "http", "https").
func WithFetcher(scheme string, fetch Fetcher) Option {
	return func(c *Cache) { c.fetchers[scheme] = fetch }
}

// WithMaxDocumentBytes caps the size of a single fetched document.
func WithMaxDocumentBytes(n int64) Option {
	return func(c *Cache) { c.maxDocumentBytes = n }
}

// WithMaxDocuments caps how many documents the cache will load.
func WithMaxDocuments(n int) Option {
	return func(c *Cache) { c.maxDocuments = n }
}

// WithMaxRefDepth caps how many $ref hops ResolveFully follows.
func WithMaxRefDepth(n int) Option {
	return func(c *Cache) { c.maxRefDepth = n }
}

// NewCache returns an empty cache. Callers create one cache per resolution
// run; caches are never shared across runs.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		documents:        make(map[string]*spec.Document),
		selfAliases:      make(map[string]string),
		failed:           make(map[string]error),
		fetchers:         make(map[string]Fetcher),
		logger:           oasir.NopLogger{},
		maxDocumentBytes: DefaultMaxDocumentBytes,
		maxDocuments:     DefaultMaxDocuments,
		maxPointerDepth:  DefaultMaxPointerDepth,
		maxRefDepth:      DefaultMaxRefDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, ok := c.fetchers["file"]; !ok {
		c.fetchers["file"] = FileFetcher(c.maxDocumentBytes)
	}
	if c.allowRemote {
		httpFetch := HTTPFetcher(c.httpClient, c.maxDocumentBytes)
		if _, ok := c.fetchers["http"]; !ok {
			c.fetchers["http"] = httpFetch
		}
		if _, ok := c.fetchers["https"]; !ok {
			c.fetchers["https"] = httpFetch
		}
	}
	return c
}

// LoadEntry loads and validates the entry document. Unlike Load, any
// failure here is fatal: a run cannot proceed without a valid entry point.
func (c *Cache) LoadEntry(ctx context.Context, uri string) (*spec.Document, error) {
	doc, err := c.Load(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load fetches, parses, and caches the document at uri, returning the
// cached copy on every subsequent call. Concurrent calls for the same URI
// share one fetch. Failed loads are remembered so a broken URI is only
// attempted once per run.
func (c *Cache) Load(ctx context.Context, uri string) (*spec.Document, error) {
	c.mu.Lock()
	if doc, ok := c.documents[uri]; ok {
		c.mu.Unlock()
		return doc, nil
	}
	if err, ok := c.failed[uri]; ok {
		c.mu.Unlock()
		return nil, err
	}
	count := len(c.documents)
	c.mu.Unlock()

	if c.maxDocuments > 0 && count >= c.maxDocuments {
		return nil, &specerr.ResourceLimitError{
			ResourceType: "documents",
			Limit:        int64(c.maxDocuments),
			Actual:       int64(count + 1),
			Message:      "document count limit reached",
		}
	}

	result, err, _ := c.group.Do(uri, func() (any, error) {
		doc, err := c.loadUncached(ctx, uri)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.failed[uri] = err
			return nil, err
		}
		c.documents[uri] = doc
		if self := doc.Self(); self != "" && self != uri {
			c.selfAliases[self] = uri
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*spec.Document), nil
}

func (c *Cache) loadUncached(ctx context.Context, uri string) (*spec.Document, error) {
	if err := guardTraversal(uri, c.baseDir); err != nil {
		return nil, err
	}
	scheme := schemeOf(uri)
	fetch, ok := c.fetchers[scheme]
	if !ok {
		return nil, &specerr.ReferenceError{
			Ref:     uri,
			Message: fmt.Sprintf("no fetcher registered for scheme %q", scheme),
		}
	}
	c.logger.Debug("loading document", "uri", uri, "scheme", scheme)
	data, err := fetch(ctx, uri)
	if err != nil {
		return nil, &specerr.ParseError{
			URI:     uri,
			Message: "failed to fetch document",
			Cause:   err,
		}
	}
	doc, err := spec.ParseBytes(data, uri)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("document loaded",
		"uri", uri,
		"version", doc.OASVersion.String(),
		"paths", doc.Stats.PathCount,
		"operations", doc.Stats.OperationCount,
		"schemas", doc.Stats.SchemaCount)
	return doc, nil
}

// Document returns the cached document for a canonical URI, resolving any
// $self alias registered during loading.
func (c *Cache) Document(uri string) (*spec.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if alias, ok := c.selfAliases[uri]; ok {
		uri = alias
	}
	doc, ok := c.documents[uri]
	return doc, ok
}

// Len reports how many documents the cache currently holds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.documents)
}

// resolveTarget maps a reference's document part to its canonical cache
// key, consulting $self aliases before hitting the filesystem or network.
func (c *Cache) resolveTarget(docPart, baseURI string) (string, error) {
	if docPart != "" {
		c.mu.Lock()
		alias, ok := c.selfAliases[docPart]
		c.mu.Unlock()
		if ok {
			return alias, nil
		}
	}
	return CanonicalURI(docPart, baseURI)
}

// Resolve follows a single reference from the document at baseURI and
// returns the raw node it addresses. Cross-document references load the
// target document on demand. The returned node may itself contain further
// references; see ResolveFully.
func (c *Cache) Resolve(ctx context.Context, ref, baseURI string) (any, error) {
	docPart, fragment := SplitRef(ref)

	targetURI, err := c.resolveTarget(docPart, baseURI)
	if err != nil {
		return nil, err
	}
	doc, err := c.Load(ctx, targetURI)
	if err != nil {
		c.logger.Warn("failed to load reference target", "ref", ref, "base", baseURI, "error", err)
		return nil, &specerr.ReferenceError{
			Ref:     ref,
			BaseURI: baseURI,
			Message: "failed to load reference target",
			Cause:   err,
		}
	}
	node, err := WalkPointer(doc.Raw, fragment, c.maxPointerDepth)
	if err != nil {
		c.logger.Warn("unresolvable pointer", "ref", ref, "base", baseURI, "error", err)
		return nil, &specerr.ReferenceError{
			Ref:     ref,
			BaseURI: baseURI,
			Message: fmt.Sprintf("pointer %q not found in %s", fragment, targetURI),
			Cause:   err,
		}
	}
	return node, nil
}

// Resolved pairs a resolved raw node with the URI of the document that
// owns it, so further references inside the node resolve against the
// right base.
type Resolved struct {
	Node any
	URI  string
}

// ResolveState tracks the references in flight on one resolution path.
// Each traversal carries its own state; states are never shared between
// concurrent resolutions.
type ResolveState struct {
	refs  map[string]bool
	depth int
}

// NewResolveState returns an empty state for one resolution path.
func NewResolveState() *ResolveState {
	return &ResolveState{refs: make(map[string]bool)}
}

// Enter marks a canonical reference as in flight, reporting false when the
// reference is already on the current path (a cycle).
func (s *ResolveState) Enter(key string) bool {
	if s.refs[key] {
		return false
	}
	s.refs[key] = true
	s.depth++
	return true
}

// Leave removes a reference from the in-flight set after its subtree has
// been fully processed, so siblings may legitimately revisit it.
func (s *ResolveState) Leave(key string) {
	delete(s.refs, key)
	s.depth--
}

// Depth reports how many references are currently in flight.
func (s *ResolveState) Depth() int { return s.depth }

// ResolveFully follows a chain of references until it reaches a node that
// is not itself a reference object, returning that node together with its
// owning document URI. Cycles and excessive chains surface as
// *specerr.ReferenceError; callers degrade to an unresolved placeholder.
func (c *Cache) ResolveFully(ctx context.Context, ref, baseURI string, state *ResolveState) (*Resolved, error) {
	if state == nil {
		state = NewResolveState()
	}

	currentRef, currentBase := ref, baseURI
	for {
		docPart, fragment := SplitRef(currentRef)
		targetURI, err := c.resolveTarget(docPart, currentBase)
		if err != nil {
			return nil, err
		}
		key := targetURI + "#" + fragment

		if !state.Enter(key) {
			c.logger.Warn("circular reference", "ref", currentRef, "base", currentBase)
			return nil, &specerr.ReferenceError{
				Ref:        currentRef,
				BaseURI:    currentBase,
				IsCircular: true,
				Message:    fmt.Sprintf("reference cycle through %s", key),
			}
		}
		defer state.Leave(key)

		if c.maxRefDepth > 0 && state.Depth() > c.maxRefDepth {
			return nil, &specerr.ReferenceError{
				Ref:     currentRef,
				BaseURI: currentBase,
				Message: fmt.Sprintf("reference chain exceeds %d hops", c.maxRefDepth),
			}
		}

		node, err := c.Resolve(ctx, currentRef, currentBase)
		if err != nil {
			return nil, err
		}
		next, ok := RefOf(node)
		if !ok {
			return &Resolved{Node: node, URI: targetURI}, nil
		}
		currentRef, currentBase = next, targetURI
	}
}

// ResolveSchema resolves a reference and decodes the target into a Schema,
// returning the decoded schema with the owning document URI.
func (c *Cache) ResolveSchema(ctx context.Context, ref, baseURI string, state *ResolveState) (*spec.Schema, string, error) {
	resolved, err := c.ResolveFully(ctx, ref, baseURI, state)
	if err != nil {
		return nil, "", err
	}
	var schema spec.Schema
	if err := spec.DecodeNode(resolved.Node, &schema); err != nil {
		return nil, "", &specerr.ReferenceError{
			Ref:     ref,
			BaseURI: baseURI,
			Message: "reference target is not a schema",
			Cause:   err,
		}
	}
	return &schema, resolved.URI, nil
}

// RefName extracts the terminal component name from a reference, e.g.
// "#/components/schemas/Pet" yields "Pet". Returns "" when no fragment
// component exists.
func RefName(ref string) string {
	_, fragment := SplitRef(ref)
	if fragment == "" {
		return ""
	}
	parts := strings.Split(fragment, "/")
	return unescapePointerToken(parts[len(parts)-1])
}
