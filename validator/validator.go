package validator

import (
	"errors"
	"fmt"

	"github.com/offscale/oasir/spec"
	"github.com/offscale/oasir/specerr"
)

// Validate confirms doc declares a supported dialect and a minimally valid
// structure. It returns nil for a valid document, or an error joining one
// *specerr.ValidationError per violation, each naming the offending field.
//
// An empty `paths: {}` is valid in every dialect.
func Validate(doc *spec.Document) error {
	if doc == nil {
		return &specerr.ValidationError{Message: "no document"}
	}

	if !doc.OASVersion.IsValid() {
		return versionMarkerError(doc)
	}

	var errs []error
	errs = append(errs, validateInfo(doc.Raw)...)

	if doc.OASVersion.IsOAS2() {
		if _, ok := doc.Raw["paths"]; !ok {
			errs = append(errs, &specerr.ValidationError{
				Field:   "paths",
				Message: "Swagger 2.0 document must have a paths object",
			})
		}
	} else {
		// OAS 3.1+ allows a document that only defines components or
		// webhooks; at least one of the three entry points must exist.
		if !hasAnyKey(doc.Raw, "paths", "components", "webhooks") {
			errs = append(errs, &specerr.ValidationError{
				Field:   "paths",
				Message: "OpenAPI 3.x document must have at least one of paths, components, or webhooks",
			})
		}
	}

	return errors.Join(errs...)
}

// versionMarkerError builds the failure for a document with no usable
// version marker, naming whichever marker field was (or should have been)
// present.
func versionMarkerError(doc *spec.Document) error {
	if marker, ok := doc.Raw["swagger"]; ok {
		return &specerr.ValidationError{
			Field:   "swagger",
			Value:   marker,
			Message: fmt.Sprintf("unsupported Swagger version %v (only 2.0 is supported)", marker),
		}
	}
	if marker, ok := doc.Raw["openapi"]; ok {
		return &specerr.ValidationError{
			Field:   "openapi",
			Value:   marker,
			Message: fmt.Sprintf("unsupported OpenAPI version %v (only 3.0 through 3.2 are supported)", marker),
		}
	}
	return &specerr.ValidationError{
		Field:   "openapi",
		Message: "document has no swagger or openapi version marker",
	}
}

// validateInfo checks info.title and info.version on the raw map, so that
// wrong-typed values are reported by field name rather than as decode noise.
func validateInfo(raw map[string]any) []error {
	info, ok := raw["info"]
	if !ok {
		return []error{&specerr.ValidationError{
			Field:   "info",
			Message: "document must have an info object",
		}}
	}
	infoMap, ok := info.(map[string]any)
	if !ok {
		return []error{&specerr.ValidationError{
			Field:   "info",
			Value:   info,
			Message: "info must be an object",
		}}
	}

	var errs []error
	for _, field := range []string{"title", "version"} {
		value, ok := infoMap[field]
		if !ok {
			errs = append(errs, &specerr.ValidationError{
				Path:    "info",
				Field:   field,
				Message: fmt.Sprintf("info.%s is required", field),
			})
			continue
		}
		if _, ok := value.(string); !ok {
			errs = append(errs, &specerr.ValidationError{
				Path:    "info",
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("info.%s must be a string", field),
			})
		}
	}
	return errs
}

func hasAnyKey(raw map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := raw[key]; ok {
			return true
		}
	}
	return false
}
