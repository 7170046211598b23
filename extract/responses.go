package extract

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/offscale/oasir/spec"
)

// jsonMediaType is where a bare Swagger 2.0 response schema is lifted to.
const jsonMediaType = "application/json"

// normalizeResponses flattens a responses container into status-ordered
// records: exact numeric statuses ascending, then wildcard patterns such as
// "2XX", then extension keys, with "default" last.
func (e *extractor) normalizeResponses(ctx context.Context, responses *spec.Responses, baseURI string) []*ResponseRecord {
	if responses == nil {
		return nil
	}
	out := make([]*ResponseRecord, 0, len(responses.Codes)+1)
	for _, status := range sortedStatuses(responses.Codes) {
		if rec := e.normalizeResponse(ctx, status, responses.Codes[status], baseURI); rec != nil {
			out = append(out, rec)
		}
	}
	if responses.Default != nil {
		if rec := e.normalizeResponse(ctx, "default", responses.Default, baseURI); rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// sortedStatuses orders response map keys: exact numeric codes ascending,
// then wildcard patterns, then extension keys, each group tie-broken
// lexicographically.
func sortedStatuses(codes map[string]*spec.Response) []string {
	statuses := make([]string, 0, len(codes))
	for status := range codes {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		ri, ni := statusRank(statuses[i])
		rj, nj := statusRank(statuses[j])
		if ri != rj {
			return ri < rj
		}
		if ri == 0 && ni != nj {
			return ni < nj
		}
		return statuses[i] < statuses[j]
	})
	return statuses
}

// statusRank classifies a responses key: 0 for exact numeric codes (with the
// parsed value), 1 for wildcard patterns like "2XX", 2 for anything else.
func statusRank(status string) (rank, code int) {
	if n, err := strconv.Atoi(status); err == nil {
		return 0, n
	}
	if len(status) == 3 && strings.HasSuffix(status, "XX") {
		return 1, 0
	}
	return 2, 0
}

func (e *extractor) normalizeResponse(ctx context.Context, status string, resp *spec.Response, baseURI string) *ResponseRecord {
	if resp == nil {
		return nil
	}
	if resp.Ref != "" {
		resolved, err := e.resolveResponse(ctx, resp.Ref, baseURI)
		if err != nil {
			e.warnf(err, "unresolvable response reference", "ref", resp.Ref, "status", status)
			return &ResponseRecord{Status: status}
		}
		resp = resolved
	}

	rec := &ResponseRecord{
		Status:      status,
		Description: resp.Description,
		Links:       resp.Links,
		Extensions:  extensionFields(resp.Extra),
	}

	switch {
	case len(resp.Content) > 0:
		rec.Content = make(map[string]*MediaRecord, len(resp.Content))
		for mediaType, mt := range resp.Content {
			if mt == nil {
				continue
			}
			rec.Content[mediaType] = &MediaRecord{
				Schema:     mt.Schema,
				ItemSchema: mt.ItemSchema,
				Example:    mt.Example,
				Examples:   mt.Examples,
			}
		}
	case resp.Schema != nil:
		// Swagger 2.0: lift the bare schema into a content map.
		rec.Content = map[string]*MediaRecord{
			jsonMediaType: {Schema: resp.Schema},
		}
	}

	if len(resp.Headers) > 0 {
		rec.Headers = make(map[string]*HeaderRecord, len(resp.Headers))
		for name, hdr := range resp.Headers {
			if hdr == nil {
				continue
			}
			rec.Headers[name] = e.normalizeHeader(ctx, hdr, baseURI)
		}
	}
	return rec
}

func (e *extractor) normalizeHeader(ctx context.Context, hdr *spec.Header, baseURI string) *HeaderRecord {
	if hdr.Ref != "" {
		resolved, err := e.resolveHeader(ctx, hdr.Ref, baseURI)
		if err != nil {
			e.warnf(err, "unresolvable header reference", "ref", hdr.Ref)
			return &HeaderRecord{}
		}
		hdr = resolved
	}
	rec := &HeaderRecord{
		Description: hdr.Description,
		Required:    hdr.Required,
		Schema:      hdr.Schema,
	}
	if rec.Schema == nil && hdr.Type != "" {
		rec.Schema = &spec.Schema{
			Type:    hdr.Type,
			Format:  hdr.Format,
			Items:   itemsSchema(hdr.Items),
			Default: hdr.Default,
		}
	}
	return rec
}

// normalizeRequestBody resolves and converts an OpenAPI 3.x request body.
func (e *extractor) normalizeRequestBody(ctx context.Context, body *spec.RequestBody, baseURI string) *RequestBodyRecord {
	if body == nil {
		return nil
	}
	if body.Ref != "" {
		resolved, err := e.resolveRequestBody(ctx, body.Ref, baseURI)
		if err != nil {
			e.warnf(err, "unresolvable request body reference", "ref", body.Ref)
			return nil
		}
		resolved = overlayRequestBody(resolved, body)
		body = resolved
	}
	rec := &RequestBodyRecord{
		Description: body.Description,
		Required:    body.Required,
		Extensions:  extensionFields(body.Extra),
	}
	if len(body.Content) > 0 {
		rec.Content = make(map[string]*MediaRecord, len(body.Content))
		for mediaType, mt := range body.Content {
			if mt == nil {
				continue
			}
			rec.Content[mediaType] = &MediaRecord{
				Schema:     mt.Schema,
				ItemSchema: mt.ItemSchema,
				Example:    mt.Example,
				Examples:   mt.Examples,
			}
		}
	}
	return rec
}

func overlayRequestBody(base, site *spec.RequestBody) *spec.RequestBody {
	merged := *base
	if site.Description != "" {
		merged.Description = site.Description
	}
	if site.Required {
		merged.Required = true
	}
	if site.Content != nil {
		merged.Content = site.Content
	}
	return &merged
}

// synthesizeRequestBody builds an OpenAPI 3.x request body from Swagger 2.0
// body and formData parameters. A body parameter carries its schema
// directly; formData parameters aggregate into one object schema under a
// form media type chosen from the operation's consumes list.
func (e *extractor) synthesizeRequestBody(body *spec.Parameter, formData []*spec.Parameter, consumes []string) *RequestBodyRecord {
	if body != nil {
		mediaType := pickConsumes(consumes, jsonMediaType)
		return &RequestBodyRecord{
			Description: body.Description,
			Required:    body.Required,
			Content: map[string]*MediaRecord{
				mediaType: {Schema: body.Schema},
			},
		}
	}
	if len(formData) == 0 {
		return nil
	}

	schema := &spec.Schema{
		Type:       "object",
		Properties: make(map[string]*spec.Schema, len(formData)),
	}
	required := false
	for _, p := range formData {
		prop := p.Schema
		if prop == nil {
			prop = flatSchema(p)
		}
		if prop == nil {
			continue
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
			required = true
		}
	}
	return &RequestBodyRecord{
		Required: required,
		Content: map[string]*MediaRecord{
			pickConsumes(consumes, "application/x-www-form-urlencoded"): {Schema: schema},
		},
	}
}

// pickConsumes returns the first declared consumes entry, or fallback when
// the operation declares none.
func pickConsumes(consumes []string, fallback string) string {
	if len(consumes) > 0 && consumes[0] != "" {
		return consumes[0]
	}
	return fallback
}
