package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/offscale/oasir/specerr"
)

// SplitRef splits a reference string into its document part and JSON Pointer
// fragment. "#/a/b" yields ("", "/a/b"); "doc.yaml" yields ("doc.yaml", "").
func SplitRef(ref string) (docPart, fragment string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// unescapePointerToken unescapes a JSON Pointer token.
// Per RFC 6901, ~1 represents / and ~0 represents ~; the order matters.
func unescapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}

// WalkPointer walks a JSON Pointer fragment over a raw object graph and
// returns the addressed node. An empty fragment (or "/") addresses the root.
// Any missing segment yields a *specerr.ReferenceError describing which
// segment failed; the graph is never modified.
func WalkPointer(root any, fragment string, maxDepth int) (any, error) {
	if fragment == "" || fragment == "/" {
		return root, nil
	}

	parts := strings.Split(strings.TrimPrefix(fragment, "/"), "/")
	if maxDepth > 0 && len(parts) > maxDepth {
		return nil, &specerr.ResourceLimitError{
			ResourceType: "pointer_depth",
			Limit:        int64(maxDepth),
			Actual:       int64(len(parts)),
			Message:      "pointer too deeply nested",
		}
	}

	current := root
	for i, part := range parts {
		part = unescapePointerToken(part)

		switch node := current.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, &specerr.ReferenceError{
					Ref:     "#/" + strings.Join(parts[:i+1], "/"),
					Message: fmt.Sprintf("missing key %q", part),
				}
			}
			current = next

		case []any:
			// Array indexing per RFC 6901
			index, err := strconv.Atoi(part)
			if err != nil {
				return nil, &specerr.ReferenceError{
					Ref:     "#/" + strings.Join(parts[:i+1], "/"),
					Message: fmt.Sprintf("invalid array index %q", part),
				}
			}
			if index < 0 || index >= len(node) {
				return nil, &specerr.ReferenceError{
					Ref:     "#/" + strings.Join(parts[:i+1], "/"),
					Message: fmt.Sprintf("array index %d out of bounds (length %d)", index, len(node)),
				}
			}
			current = node[index]

		default:
			return nil, &specerr.ReferenceError{
				Ref:     "#/" + strings.Join(parts[:i], "/"),
				Message: fmt.Sprintf("cannot traverse into %T", node),
			}
		}
	}

	return current, nil
}

// RefOf returns the $ref string of a raw node, if the node is a reference
// object.
func RefOf(node any) (string, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return "", false
	}
	ref, ok := m["$ref"].(string)
	return ref, ok && ref != ""
}
