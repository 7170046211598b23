package extract

import (
	"strings"

	"github.com/offscale/oasir/resolver"
	"github.com/offscale/oasir/spec"
)

// normalizeSecurity rewrites requirement keys written as scheme-pointer
// fragments to bare scheme names. A scheme literally named with the exact
// key string wins unnormalized, so unconventional but valid scheme names
// are never rewritten away.
func normalizeSecurity(reqs []spec.SecurityRequirement, schemes map[string]*spec.SecurityScheme) []spec.SecurityRequirement {
	if len(reqs) == 0 {
		return nil
	}
	out := make([]spec.SecurityRequirement, 0, len(reqs))
	for _, req := range reqs {
		normalized := make(spec.SecurityRequirement, len(req))
		for key, scopes := range req {
			normalized[normalizeSecurityKey(key, schemes)] = scopes
		}
		out = append(out, normalized)
	}
	return out
}

func normalizeSecurityKey(key string, schemes map[string]*spec.SecurityScheme) string {
	if _, ok := schemes[key]; ok {
		return key
	}
	if !strings.Contains(key, "#") {
		return key
	}
	if name := resolver.RefName(key); name != "" {
		return name
	}
	return key
}
