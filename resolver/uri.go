package resolver

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/offscale/oasir/specerr"
)

// isRemoteURI reports whether uri carries an http or https scheme.
func isRemoteURI(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// CanonicalURI resolves a reference target against the base document URI,
// producing the canonical key used for cache lookups. Remote bases resolve
// per RFC 3986; local bases resolve as cleaned filesystem paths. An empty
// target returns the base unchanged (same-document references).
func CanonicalURI(target, baseURI string) (string, error) {
	if target == "" {
		return baseURI, nil
	}
	if isRemoteURI(target) {
		u, err := url.Parse(target)
		if err != nil {
			return "", &specerr.ReferenceError{
				Ref:     target,
				BaseURI: baseURI,
				Message: "invalid URL",
				Cause:   err,
			}
		}
		u.Fragment = ""
		return u.String(), nil
	}
	if isRemoteURI(baseURI) {
		base, err := url.Parse(baseURI)
		if err != nil {
			return "", &specerr.ReferenceError{
				Ref:     target,
				BaseURI: baseURI,
				Message: "invalid base URL",
				Cause:   err,
			}
		}
		rel, err := url.Parse(target)
		if err != nil {
			return "", &specerr.ReferenceError{
				Ref:     target,
				BaseURI: baseURI,
				Message: "invalid relative URL",
				Cause:   err,
			}
		}
		resolved := base.ResolveReference(rel)
		resolved.Fragment = ""
		return resolved.String(), nil
	}
	// Local file path resolution.
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}
	return filepath.Clean(filepath.Join(filepath.Dir(baseURI), target)), nil
}

// guardTraversal rejects resolved local paths that escape baseDir. Remote
// URIs are exempt; traversal guarding only applies to filesystem loads.
func guardTraversal(resolved, baseDir string) error {
	if baseDir == "" || isRemoteURI(resolved) {
		return nil
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return err
	}
	absResolved, err := filepath.Abs(resolved)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absBase, absResolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &specerr.ReferenceError{
			Ref:             resolved,
			BaseURI:         baseDir,
			IsPathTraversal: true,
			Message:         fmt.Sprintf("path %q escapes base directory %q", absResolved, absBase),
		}
	}
	return nil
}

// schemeOf returns the fetch scheme for a canonical URI: "http", "https",
// or "file" for everything else.
func schemeOf(uri string) string {
	switch {
	case strings.HasPrefix(uri, "https://"):
		return "https"
	case strings.HasPrefix(uri, "http://"):
		return "http"
	default:
		return "file"
	}
}
