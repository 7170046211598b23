// Package resolver implements the per-run document cache and reference
// resolver the extraction pipeline is built on.
//
// A [Cache] is owned by exactly one generation run and passed by handle to
// every component that resolves references; it is never a process-wide
// singleton, so concurrent or repeated runs never share or leak state.
// Documents are cached under their canonical resolution URI (and their $self
// identifier when one is declared) and are loaded at most once, even under
// concurrent requests from independent walk branches.
//
// References are the usual two-part form: an optional document part plus a
// JSON Pointer fragment, e.g.
//
//	#/components/schemas/Pet
//	./common.yaml#/components/parameters/limit
//	https://example.com/shared.yaml#/components/schemas/Error
//
// Resolve splits the reference, loads the target document through the
// transport selected by URI scheme, and walks the pointer segment by segment
// (RFC 6901 unescaping included). ResolveFully additionally follows chains
// of references to the terminal non-reference node, using a [ResolveState]
// carried through the call chain to terminate on cycles.
//
// Failure policy: failing to load the entry document is fatal; every other
// anomaly (unreachable document, missing pointer segment, malformed
// reference) is logged as a warning and reported as a *specerr.ReferenceError
// that callers absorb by degrading to an unresolved node.
package resolver
