// Package oasir turns OpenAPI Specification documents (OAS 2.0 through 3.2,
// including the JSON Schema 2020-12 keywords those versions reference) into a
// fully resolved intermediate representation for API-client code generators.
//
// The library is organized bottom-up:
//
//   - spec: document model and version detection for both dialects
//   - resolver: per-run document cache and $ref resolution
//   - validator: minimal structural validation that gates extraction
//   - extract: one normalized OperationRecord per (path, method) pair
//   - project: canonical type descriptors for every schema node
//
// A generation run owns exactly one resolver.Cache; the extractor and the
// projector resolve every reference through it, so repeated resolutions of
// the same target observe the same loaded document. Code emitters consume
// the extract.Result and project.TypeDescriptor values this module produces;
// they are deliberately out of scope here.
//
// # Quick start
//
//	cache := resolver.NewCache(resolver.WithBaseDir(filepath.Dir(path)))
//	doc, err := cache.LoadEntry(ctx, path)
//	if err != nil {
//		log.Fatal(err) // entry document failures are fatal
//	}
//	res, err := extract.Extract(ctx, doc, cache)
//
// Anything that is not a structural validation failure of the entry document
// is absorbed as a warning: broken external references resolve to "unresolved"
// and project to the Any type, so one malformed corner of a large document
// never blocks generation of the rest.
package oasir
