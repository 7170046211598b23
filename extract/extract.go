package extract

import (
	"context"
	"sort"
	"strings"

	"github.com/offscale/oasir"
	"github.com/offscale/oasir/internal/naming"
	"github.com/offscale/oasir/resolver"
	"github.com/offscale/oasir/spec"
	"github.com/offscale/oasir/specerr"
)

// Option configures an extraction run.
type Option func(*extractor)

// WithLogger sets the logger used for extraction warnings.
func WithLogger(logger oasir.Logger) Option {
	return func(e *extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReservedHeaders keeps Accept, Content-Type, and Authorization header
// parameters instead of dropping them. The default drops them: those
// headers are managed by the transport, not by generated parameter code.
func WithReservedHeaders() Option {
	return func(e *extractor) { e.dropReserved = false }
}

type extractor struct {
	doc          *spec.Document
	cache        *resolver.Cache
	logger       oasir.Logger
	dropReserved bool
	warnings     []error
}

// Extract walks the document's path collection and produces the normalized
// operation records plus the named-schema table. The document must have
// passed validation; extraction itself never fails on malformed corners,
// it degrades them and records warnings.
func Extract(ctx context.Context, doc *spec.Document, cache *resolver.Cache, opts ...Option) (*Result, error) {
	if doc == nil {
		return nil, &specerr.ValidationError{Message: "no document to extract"}
	}
	if cache == nil {
		cache = resolver.NewCache()
	}
	e := &extractor{
		doc:          doc,
		cache:        cache,
		logger:       oasir.NopLogger{},
		dropReserved: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	result := &Result{}
	e.extractSchemas(result)
	e.extractOperations(ctx, result)
	result.Warnings = e.warnings

	e.logger.Info("extraction complete",
		"operations", len(result.Operations),
		"schemas", len(result.Schemas),
		"warnings", len(result.Warnings))
	return result, nil
}

// warnf records a non-fatal anomaly and logs it. err may be nil when the
// anomaly has no underlying error.
func (e *extractor) warnf(err error, msg string, attrs ...any) {
	if err == nil {
		err = &specerr.ReferenceError{Message: msg}
	}
	e.warnings = append(e.warnings, err)
	e.logger.Warn(msg, append(attrs, "error", err)...)
}

// extractSchemas builds the named-schema table from definitions (2.0) or
// components.schemas (3.x), keying by sanitized identifier.
func (e *extractor) extractSchemas(result *Result) {
	source := e.doc.Schemas()
	if len(source) == 0 {
		return
	}
	result.Schemas = make(map[string]*spec.Schema, len(source))
	result.SchemaNames = make(map[string]string, len(source))
	for _, name := range sortedKeys(source) {
		id := naming.SchemaIdentifier(name)
		if prev, taken := result.SchemaNames[id]; taken {
			e.warnf(nil, "schema identifier collision", "identifier", id, "name", name, "previous", prev)
			continue
		}
		result.Schemas[id] = source[name]
		result.SchemaNames[id] = name
	}
}

func (e *extractor) extractOperations(ctx context.Context, result *Result) {
	paths := e.doc.PathItems()
	schemes := e.doc.SecuritySchemes()
	docSecurity := e.documentSecurity()

	for _, path := range sortedKeys(paths) {
		item := paths[path]
		if item == nil {
			continue
		}
		item = e.resolvePathItem(ctx, item)

		shared := e.normalizeParams(ctx, item.Parameters)
		sharedBody, sharedForm := e.collectBodyParams(ctx, item.Parameters)

		type opEntry struct {
			method string
			op     *spec.Operation
			custom bool
		}
		var entries []opEntry
		fixed := item.Operations(e.doc.OASVersion)
		for _, method := range sortedKeys(fixed) {
			entries = append(entries, opEntry{method: strings.ToUpper(method), op: fixed[method]})
		}
		for _, token := range sortedKeys(item.AdditionalOperations) {
			if item.AdditionalOperations[token] == nil {
				continue
			}
			entries = append(entries, opEntry{method: token, op: item.AdditionalOperations[token], custom: true})
		}

		for _, entry := range entries {
			rec := e.buildOperation(ctx, entry.method, path, entry.op, shared, sharedBody, sharedForm, schemes, docSecurity)
			rec.Custom = entry.custom
			result.Operations = append(result.Operations, rec)
		}
	}

	sort.SliceStable(result.Operations, func(i, j int) bool {
		if result.Operations[i].Path != result.Operations[j].Path {
			return result.Operations[i].Path < result.Operations[j].Path
		}
		return result.Operations[i].Method < result.Operations[j].Method
	})
}

// documentSecurity returns the document-level security requirements applied
// when an operation declares none of its own.
func (e *extractor) documentSecurity() []spec.SecurityRequirement {
	switch {
	case e.doc.OAS2 != nil:
		return e.doc.OAS2.Security
	case e.doc.OAS3 != nil:
		return e.doc.OAS3.Security
	default:
		return nil
	}
}

// resolvePathItem follows a path item's $ref, overlaying the referencing
// site's summary and description on the resolved target.
func (e *extractor) resolvePathItem(ctx context.Context, item *spec.PathItem) *spec.PathItem {
	if item.Ref == "" {
		return item
	}
	resolved, err := e.cache.ResolveFully(ctx, item.Ref, e.doc.URI, nil)
	if err != nil {
		e.warnf(err, "unresolvable path item reference", "ref", item.Ref)
		return item
	}
	var target spec.PathItem
	if err := spec.DecodeNode(resolved.Node, &target); err != nil {
		e.warnf(err, "path item reference target is not a path item", "ref", item.Ref)
		return item
	}
	if item.Summary != "" {
		target.Summary = item.Summary
	}
	if item.Description != "" {
		target.Description = item.Description
	}
	return &target
}

func (e *extractor) buildOperation(
	ctx context.Context,
	method, path string,
	op *spec.Operation,
	shared []*ParameterRecord,
	sharedBody *spec.Parameter,
	sharedForm []*spec.Parameter,
	schemes map[string]*spec.SecurityScheme,
	docSecurity []spec.SecurityRequirement,
) *OperationRecord {
	rec := &OperationRecord{
		Method:      method,
		Path:        path,
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Tags:        op.Tags,
		Servers:     op.Servers,
		Extensions:  extensionFields(op.Extra),
	}

	own := e.normalizeParams(ctx, op.Parameters)
	rec.Parameters = mergeParameterRecords(shared, own)

	body, formData := e.collectBodyParams(ctx, op.Parameters)
	if body == nil {
		body = sharedBody
	}
	if len(formData) == 0 {
		formData = sharedForm
	}
	switch {
	case op.RequestBody != nil:
		rec.RequestBody = e.normalizeRequestBody(ctx, op.RequestBody, e.doc.URI)
	case body != nil || len(formData) > 0:
		rec.RequestBody = e.synthesizeRequestBody(body, formData, op.Consumes)
	}

	rec.Responses = e.normalizeResponses(ctx, op.Responses, e.doc.URI)

	security := op.Security
	if security == nil {
		security = docSecurity
	}
	rec.Security = normalizeSecurity(security, schemes)
	return rec
}

// normalizeParams converts a source parameter list, skipping entries that
// do not survive normalization.
func (e *extractor) normalizeParams(ctx context.Context, params []*spec.Parameter) []*ParameterRecord {
	var out []*ParameterRecord
	for _, p := range params {
		if rec := e.normalizeParameter(ctx, p, e.doc.URI); rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// collectBodyParams pulls the Swagger 2.0 body parameter and formData
// parameters out of a source list, resolving references along the way.
func (e *extractor) collectBodyParams(ctx context.Context, params []*spec.Parameter) (body *spec.Parameter, formData []*spec.Parameter) {
	for _, p := range params {
		if p == nil {
			continue
		}
		if p.Ref != "" {
			resolved, err := e.resolveParameter(ctx, p.Ref, e.doc.URI)
			if err != nil {
				continue // already warned during normalizeParameter
			}
			p = overlayParameter(resolved, p)
		}
		switch p.In {
		case "body":
			if body == nil {
				body = p
			}
		case "formData":
			formData = append(formData, p)
		}
	}
	return body, formData
}

func (e *extractor) resolveParameter(ctx context.Context, ref, baseURI string) (*spec.Parameter, error) {
	var target spec.Parameter
	if err := e.resolveInto(ctx, ref, baseURI, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

func (e *extractor) resolveResponse(ctx context.Context, ref, baseURI string) (*spec.Response, error) {
	var target spec.Response
	if err := e.resolveInto(ctx, ref, baseURI, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

func (e *extractor) resolveRequestBody(ctx context.Context, ref, baseURI string) (*spec.RequestBody, error) {
	var target spec.RequestBody
	if err := e.resolveInto(ctx, ref, baseURI, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

func (e *extractor) resolveHeader(ctx context.Context, ref, baseURI string) (*spec.Header, error) {
	var target spec.Header
	if err := e.resolveInto(ctx, ref, baseURI, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

func (e *extractor) resolveInto(ctx context.Context, ref, baseURI string, target any) error {
	resolved, err := e.cache.ResolveFully(ctx, ref, baseURI, nil)
	if err != nil {
		return err
	}
	if err := spec.DecodeNode(resolved.Node, target); err != nil {
		return &specerr.ReferenceError{
			Ref:     ref,
			BaseURI: baseURI,
			Message: "reference target has unexpected shape",
			Cause:   err,
		}
	}
	return nil
}
