// Package extract walks a validated specification document and produces one
// normalized OperationRecord per (path, method) pair, plus the named-schema
// table downstream consumers project types from.
//
// Extraction reconciles the two dialects into one shape: Swagger 2.0 flat
// parameter fields are synthesized into schemas, body and formData
// parameters become request bodies, bare response schemas are lifted into
// content maps, and collectionFormat is mapped onto style/explode. Every
// embedded reference resolves through a resolver.Cache; an unresolvable
// reference is reported as a warning and the affected slot degrades rather
// than failing the run.
//
// Records are produced in one top-to-bottom walk and are read-only
// afterward. Path, method, and status orderings are deterministic.
package extract
