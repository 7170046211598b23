// Package specerr provides structured error types for the oasir library.
//
// Import path: github.com/offscale/oasir/specerr
//
// The package enables programmatic error handling via [errors.Is] and
// [errors.As], so callers can distinguish between the error categories the
// resolution pipeline produces and react accordingly.
//
// # Error Types
//
//   - [ParseError]: YAML/JSON deserialization failures and malformed documents
//   - [ReferenceError]: $ref resolution failures, circular references, path traversal
//   - [ValidationError]: structural violations of the declared OAS dialect
//   - [ResourceLimitError]: resource exhaustion (document size, pointer depth, cache count)
//
// Each type has a corresponding sentinel for use with errors.Is():
// [ErrParse], [ErrReference], [ErrCircularReference], [ErrPathTraversal],
// [ErrValidation], and [ErrResourceLimit].
//
// Only [ValidationError] (and the failure to load the entry document) is ever
// fatal to a generation run; the other categories are absorbed as warnings by
// the components that encounter them.
//
// # Usage
//
//	doc, err := cache.LoadEntry(ctx, path)
//	if errors.Is(err, specerr.ErrValidation) {
//	    // the entry document failed structural checks
//	}
//
//	var refErr *specerr.ReferenceError
//	if errors.As(err, &refErr) && refErr.IsCircular {
//	    // circular reference - tolerated, partially loaded node returned
//	}
//
// All error types support chaining via the Cause field and Unwrap().
package specerr
