package spec

import (
	"bytes"

	gojson "github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"

	"github.com/offscale/oasir/specerr"
)

// SourceFormat represents the serialization format of a source document
type SourceFormat string

const (
	// SourceFormatYAML indicates the source was in YAML format
	SourceFormatYAML SourceFormat = "yaml"
	// SourceFormatJSON indicates the source was in JSON format
	SourceFormatJSON SourceFormat = "json"
)

// Document is one loaded specification document: the raw object graph the
// resolver walks pointers over, plus the version-specific typed view.
//
// Documents are read-only after parsing. The resolver caches them per URI and
// hands the same instance to every extraction branch, so repeated resolutions
// of the same target observe identical node identity.
type Document struct {
	// URI is the canonical resolution URI this document was loaded from
	URI string
	// SourceFormat is the detected serialization format
	SourceFormat SourceFormat
	// Version is the raw version marker string (e.g. "2.0", "3.1.0")
	Version string
	// OASVersion is the enumerated dialect version; VersionUnknown when the
	// document carries no recognized marker (the validator rejects those)
	OASVersion OASVersion
	// Raw is the document as a generic object graph, for pointer walking
	Raw map[string]any
	// OAS2 is the typed view for 2.0 documents, nil otherwise
	OAS2 *OAS2Document
	// OAS3 is the typed view for 3.x documents, nil otherwise
	OAS3 *OAS3Document
	// Stats holds counts gathered during parsing
	Stats DocumentStats
}

// DocumentStats carries counts used for run summaries
type DocumentStats struct {
	PathCount      int `json:"pathCount"`
	OperationCount int `json:"operationCount"`
	SchemaCount    int `json:"schemaCount"`
}

// Info returns the info object of whichever typed view is populated.
func (d *Document) Info() *Info {
	switch {
	case d.OAS2 != nil:
		return d.OAS2.Info
	case d.OAS3 != nil:
		return d.OAS3.Info
	default:
		return nil
	}
}

// PathItems returns the paths map of whichever typed view is populated.
func (d *Document) PathItems() Paths {
	switch {
	case d.OAS2 != nil:
		return d.OAS2.Paths
	case d.OAS3 != nil:
		return d.OAS3.Paths
	default:
		return nil
	}
}

// Schemas returns the named schema definitions: `definitions` for 2.0,
// `components.schemas` for 3.x.
func (d *Document) Schemas() map[string]*Schema {
	switch {
	case d.OAS2 != nil:
		return d.OAS2.Definitions
	case d.OAS3 != nil && d.OAS3.Components != nil:
		return d.OAS3.Components.Schemas
	default:
		return nil
	}
}

// SecuritySchemes returns the declared security schemes of either dialect.
func (d *Document) SecuritySchemes() map[string]*SecurityScheme {
	switch {
	case d.OAS2 != nil:
		return d.OAS2.SecurityDefinitions
	case d.OAS3 != nil && d.OAS3.Components != nil:
		return d.OAS3.Components.SecuritySchemes
	default:
		return nil
	}
}

// Self returns the document's declared canonical identifier ($self, OAS 3.2+),
// or "" when none is declared.
func (d *Document) Self() string {
	if d.OAS3 != nil {
		return d.OAS3.Self
	}
	return ""
}

// ParseBytes parses a specification document from YAML or JSON bytes.
// JSON input takes a fast path through goccy/go-json instead of building a
// YAML AST. The typed view is only populated when the version marker is
// recognized; the validator rejects documents without one.
//
// ParseBytes fails only when the bytes are not decodable at all; a missing
// or unrecognized version marker is a validation concern, not a parse error.
func ParseBytes(data []byte, uri string) (*Document, error) {
	doc := &Document{URI: uri, SourceFormat: detectFormat(data)}

	if doc.SourceFormat == SourceFormatJSON {
		if err := gojson.Unmarshal(data, &doc.Raw); err != nil {
			return nil, &specerr.ParseError{URI: uri, Message: "invalid JSON", Cause: err}
		}
	} else {
		if err := yaml.Unmarshal(data, &doc.Raw); err != nil {
			return nil, &specerr.ParseError{URI: uri, Message: "invalid YAML", Cause: err}
		}
	}

	version, marker, ok := DetectVersion(doc.Raw)
	doc.Version = marker
	doc.OASVersion = version
	if !ok {
		return doc, nil
	}

	// The yaml decoder accepts JSON too, so one typed decode path serves both
	// formats.
	if version.IsOAS2() {
		var typed OAS2Document
		if err := yaml.Unmarshal(data, &typed); err != nil {
			return nil, &specerr.ParseError{URI: uri, Message: "invalid Swagger 2.0 document", Cause: err}
		}
		doc.OAS2 = &typed
	} else {
		var typed OAS3Document
		if err := yaml.Unmarshal(data, &typed); err != nil {
			return nil, &specerr.ParseError{URI: uri, Message: "invalid OpenAPI 3.x document", Cause: err}
		}
		doc.OAS3 = &typed
	}

	doc.Stats = gatherStats(doc)
	return doc, nil
}

// detectFormat distinguishes JSON from YAML by the first non-whitespace byte.
func detectFormat(data []byte) SourceFormat {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return SourceFormatJSON
	}
	return SourceFormatYAML
}

func gatherStats(doc *Document) DocumentStats {
	var stats DocumentStats
	paths := doc.PathItems()
	stats.PathCount = len(paths)
	for _, item := range paths {
		if item == nil {
			continue
		}
		stats.OperationCount += len(item.Operations(doc.OASVersion)) + len(item.AdditionalOperations)
	}
	stats.SchemaCount = len(doc.Schemas())
	return stats
}
