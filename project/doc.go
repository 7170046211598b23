// Package project turns schema nodes into canonical type descriptors for a
// closed, statically-typed target type system.
//
// A TypeDescriptor is a closed tagged union: every downstream consumer can
// match it exhaustively. "Anything goes" shapes (boolean schemas, schemas
// with no structural hint) become explicit Any/Never variants rather than a
// dynamically-typed escape hatch.
//
// Projection is total: malformed structural input degrades to Any for the
// affected slot instead of raising, and projecting the same schema twice
// yields structurally equal descriptors.
package project
