package extract

import (
	"context"
	"sort"

	"github.com/offscale/oasir/internal/httputil"
	"github.com/offscale/oasir/spec"
)

// collectionFormatStyle maps a Swagger 2.0 collectionFormat token onto the
// OpenAPI 3.x style/explode pair.
func collectionFormatStyle(format string) (style string, explode bool, ok bool) {
	switch format {
	case "csv":
		return "form", false, true
	case "ssv":
		return "spaceDelimited", false, true
	case "pipes":
		return "pipeDelimited", false, true
	case "multi":
		return "form", true, true
	default:
		return "", false, false
	}
}

// itemsSchema converts a Swagger 2.0 items object into a schema.
func itemsSchema(items *spec.Items) *spec.Schema {
	if items == nil {
		return nil
	}
	return &spec.Schema{
		Type:    items.Type,
		Format:  items.Format,
		Items:   itemsSchema(items.Items),
		Default: items.Default,
		Enum:    items.Enum,
	}
}

// flatSchema synthesizes a schema from a Swagger 2.0 parameter's flat
// type/format/constraint fields.
func flatSchema(p *spec.Parameter) *spec.Schema {
	if p.Type == "" && p.Items == nil && len(p.Enum) == 0 {
		return nil
	}
	return &spec.Schema{
		Type:        p.Type,
		Format:      p.Format,
		Items:       itemsSchema(p.Items),
		Default:     p.Default,
		Enum:        p.Enum,
		Pattern:     p.Pattern,
		MaxLength:   p.MaxLength,
		MinLength:   p.MinLength,
		Maximum:     p.Maximum,
		Minimum:     p.Minimum,
		MaxItems:    p.MaxItems,
		MinItems:    p.MinItems,
		UniqueItems: p.UniqueItems,
	}
}

// overlayParameter lays the referencing site's sibling fields over a
// resolved parameter, field by field. Only fields the site actually set
// win; zero values leave the resolved base untouched.
func overlayParameter(base, site *spec.Parameter) *spec.Parameter {
	merged := *base
	if site.Name != "" {
		merged.Name = site.Name
	}
	if site.In != "" {
		merged.In = site.In
	}
	if site.Description != "" {
		merged.Description = site.Description
	}
	if site.Required {
		merged.Required = true
	}
	if site.Deprecated {
		merged.Deprecated = true
	}
	if site.Style != "" {
		merged.Style = site.Style
	}
	if site.Explode != nil {
		merged.Explode = site.Explode
	}
	if site.AllowReserved {
		merged.AllowReserved = true
	}
	if site.AllowEmptyValue {
		merged.AllowEmptyValue = true
	}
	if site.Schema != nil {
		merged.Schema = site.Schema
	}
	if site.Content != nil {
		merged.Content = site.Content
	}
	if site.Type != "" {
		merged.Type = site.Type
	}
	if site.Format != "" {
		merged.Format = site.Format
	}
	if site.Items != nil {
		merged.Items = site.Items
	}
	if site.CollectionFormat != "" {
		merged.CollectionFormat = site.CollectionFormat
	}
	if len(site.Extra) > 0 {
		extra := make(map[string]any, len(base.Extra)+len(site.Extra))
		for k, v := range base.Extra {
			extra[k] = v
		}
		for k, v := range site.Extra {
			extra[k] = v
		}
		merged.Extra = extra
	}
	return &merged
}

// defaultStyle returns the spec-defined default style for a location.
func defaultStyle(in string) (style string, explode bool) {
	switch in {
	case InPath, InHeader:
		return "simple", false
	default:
		return "form", true
	}
}

// normalizeParameter turns one source parameter into a ParameterRecord,
// resolving any $ref first. A nil return means the parameter does not
// survive normalization (reserved header, unresolvable reference, or a
// body/formData parameter handled elsewhere).
func (e *extractor) normalizeParameter(ctx context.Context, p *spec.Parameter, baseURI string) *ParameterRecord {
	if p == nil {
		return nil
	}

	if p.Ref != "" {
		resolved, err := e.resolveParameter(ctx, p.Ref, baseURI)
		if err != nil {
			e.warnf(err, "unresolvable parameter reference", "ref", p.Ref)
			if p.Name == "" || p.In == "" {
				return nil
			}
			resolved = &spec.Parameter{}
		}
		p = overlayParameter(resolved, p)
	}

	// Body and formData are Swagger 2.0 request-body carriers, collected
	// separately by the operation builder.
	if p.In == "body" || p.In == "formData" {
		return nil
	}

	if p.In == InHeader && e.dropReserved && httputil.IsReservedHeader(p.Name) {
		e.logger.Debug("dropping reserved header parameter", "name", p.Name)
		return nil
	}

	rec := &ParameterRecord{
		Name:            p.Name,
		In:              p.In,
		Description:     p.Description,
		Required:        p.Required,
		Deprecated:      p.Deprecated,
		AllowReserved:   p.AllowReserved,
		AllowEmptyValue: p.AllowEmptyValue,
		Extensions:      extensionFields(p.Extra),
	}
	if rec.In == InPath {
		rec.Required = true
	}

	switch {
	case len(p.Content) > 0:
		// A content-bearing parameter serializes as one encoded string;
		// schema and style do not apply.
		keys := sortedKeys(p.Content)
		if len(keys) > 1 {
			e.warnf(nil, "content parameter declares multiple media types; using first",
				"name", p.Name, "mediaType", keys[0])
		}
		rec.ContentType = keys[0]
		if mt := p.Content[keys[0]]; mt != nil {
			rec.Schema = mt.Schema
		}
		return rec

	case p.Schema != nil:
		rec.Schema = p.Schema

	default:
		rec.Schema = flatSchema(p)
	}

	rec.Style, rec.Explode = defaultStyle(rec.In)
	collectionFormat := p.CollectionFormat
	if collectionFormat == "" && p.Type == "array" && e.doc.OASVersion.IsOAS2() {
		// Swagger 2.0 arrays default to csv when no collectionFormat is
		// declared.
		collectionFormat = "csv"
	}
	if style, explode, ok := collectionFormatStyle(collectionFormat); ok {
		rec.Style, rec.Explode = style, explode
	} else if collectionFormat != "" {
		e.warnf(nil, "unsupported collectionFormat", "name", p.Name, "collectionFormat", collectionFormat)
	}
	if p.Style != "" {
		rec.Style = p.Style
		rec.Explode = p.Style == "form"
	}
	if p.Explode != nil {
		rec.Explode = *p.Explode
	}
	return rec
}

// mergeParameterRecords folds operation-level records over path-level
// records. Matching (name, location) pairs merge field by field, with the
// operation-level side winning; unmatched entries from either side survive.
// Output order is path-level order, then new operation-level entries.
func mergeParameterRecords(shared, own []*ParameterRecord) []*ParameterRecord {
	if len(shared) == 0 {
		return own
	}
	index := make(map[string]int, len(shared))
	out := make([]*ParameterRecord, len(shared))
	for i, rec := range shared {
		copied := *rec
		out[i] = &copied
		index[rec.key()] = i
	}
	for _, rec := range own {
		i, ok := index[rec.key()]
		if !ok {
			out = append(out, rec)
			continue
		}
		out[i] = overrideRecord(out[i], rec)
	}
	return out
}

// overrideRecord lays non-zero fields of over on top of base.
func overrideRecord(base, over *ParameterRecord) *ParameterRecord {
	merged := *base
	if over.Description != "" {
		merged.Description = over.Description
	}
	if over.Required {
		merged.Required = true
	}
	if over.Deprecated {
		merged.Deprecated = true
	}
	if over.Style != "" {
		merged.Style = over.Style
		merged.Explode = over.Explode
	}
	if over.AllowReserved {
		merged.AllowReserved = true
	}
	if over.AllowEmptyValue {
		merged.AllowEmptyValue = true
	}
	if over.Schema != nil {
		merged.Schema = over.Schema
	}
	if over.ContentType != "" {
		merged.ContentType = over.ContentType
	}
	if len(over.Extensions) > 0 {
		ext := make(map[string]any, len(base.Extensions)+len(over.Extensions))
		for k, v := range base.Extensions {
			ext[k] = v
		}
		for k, v := range over.Extensions {
			ext[k] = v
		}
		merged.Extensions = ext
	}
	return &merged
}

// extensionFields filters an inline capture map down to x- keys.
func extensionFields(extra map[string]any) map[string]any {
	var out map[string]any
	for k, v := range extra {
		if len(k) > 2 && k[:2] == "x-" {
			if out == nil {
				out = make(map[string]any)
			}
			out[k] = v
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
