// Package validator performs the minimal structural validation that gates
// extraction: a document must declare a supported dialect and carry the
// smallest shape that makes a specification a specification.
//
// Validation runs once per loaded document, before any reference resolution
// or extraction touches it. It is the only component in the pipeline that
// raises hard errors; everything downstream degrades and logs instead.
//
//	doc, _ := spec.ParseBytes(data, "api.yaml")
//	if err := validator.Validate(doc); err != nil {
//	    // err names the offending field, e.g. `validation error at info.title: ...`
//	}
//
// Deliberately out of scope: semantic checks (duplicate operationIds,
// unresolvable $refs, path template consistency). Those conditions are
// tolerated during extraction and surface as warnings there, so that one
// malformed corner never blocks the rest of a large document.
package validator
