package project

import (
	"context"
	"sort"
	"strings"

	"github.com/offscale/oasir/extract"
	"github.com/offscale/oasir/internal/httputil"
)

// Negotiate picks one representation among several content entries and
// returns its key. Keys are normalized (parameters stripped, lowercased)
// for comparison but the original key is returned. Wildcard entries
// subsumed by a more specific matching entry are discarded; survivors rank
// by fixed media-type preference, tie-broken deterministically. ok is false
// only for an empty map.
func Negotiate[V any](content map[string]V) (key string, ok bool) {
	if len(content) == 0 {
		return "", false
	}

	type candidate struct {
		original   string
		normalized string
	}
	candidates := make([]candidate, 0, len(content))
	normalized := make([]string, 0, len(content))
	for original := range content {
		c := candidate{original: original, normalized: httputil.NormalizeMediaType(original)}
		candidates = append(candidates, c)
		normalized = append(normalized, c.normalized)
	}

	survivors := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if specificity(c.normalized) < 2 && subsumed(c.normalized, normalized) {
			continue
		}
		survivors = append(survivors, c)
	}
	if len(survivors) == 0 {
		survivors = candidates
	}

	sort.Slice(survivors, func(i, j int) bool {
		ri, rj := preferenceRank(survivors[i].normalized), preferenceRank(survivors[j].normalized)
		if ri != rj {
			return ri < rj
		}
		if si, sj := specificity(survivors[i].normalized), specificity(survivors[j].normalized); si != sj {
			return si > sj
		}
		return survivors[i].original < survivors[j].original
	})
	return survivors[0].original, true
}

// subsumed reports whether a wildcard media type is covered by a more
// specific entry in the candidate set.
func subsumed(wildcard string, normalized []string) bool {
	for _, other := range normalized {
		if other == wildcard {
			continue
		}
		if specificity(other) > specificity(wildcard) && wildcardMatches(wildcard, other) {
			return true
		}
	}
	return false
}

// specificity scores a normalized media type: exact = 2, a wildcard type or
// subtype = 1, the full wildcard = 0.
func specificity(mediaType string) int {
	mainType, subType, _ := strings.Cut(mediaType, "/")
	switch {
	case mainType == "*" && subType == "*":
		return 0
	case mainType == "*" || subType == "*":
		return 1
	default:
		return 2
	}
}

// wildcardMatches reports whether a concrete media type falls under a
// wildcard pattern like "application/*" or "*/*".
func wildcardMatches(pattern, concrete string) bool {
	pMain, pSub, _ := strings.Cut(pattern, "/")
	cMain, cSub, _ := strings.Cut(concrete, "/")
	return (pMain == "*" || pMain == cMain) && (pSub == "*" || pSub == cSub)
}

// preferenceRank orders survivors by fixed media-type preference; lower
// ranks win.
func preferenceRank(mediaType string) int {
	switch {
	case mediaType == "application/json":
		return 0
	case mediaType == "application/x-json":
		return 1
	case strings.HasSuffix(mediaType, "/json") || strings.HasSuffix(mediaType, "+json"):
		return 2
	case mediaType == "multipart/form-data":
		return 3
	case mediaType == "application/x-www-form-urlencoded":
		return 4
	case strings.HasPrefix(mediaType, "text/"):
		return 5
	default:
		return 6
	}
}

// isTextualContent reports whether a contentMediaType frames text or JSON
// rather than raw bytes. An empty media type is textual; the binary signal
// then comes from contentEncoding alone.
func isTextualContent(mediaType string) bool {
	mt := httputil.NormalizeMediaType(mediaType)
	switch {
	case mt == "":
		return true
	case strings.HasPrefix(mt, "text/"):
		return true
	case strings.HasSuffix(mt, "/json") || strings.HasSuffix(mt, "+json"):
		return true
	case strings.HasSuffix(mt, "/xml") || strings.HasSuffix(mt, "+xml"):
		return true
	default:
		return false
	}
}

// ProjectContent negotiates one representation out of a content map and
// projects its schema. Streaming entries project their per-item schema.
// The chosen media type is returned alongside the descriptor; an empty
// content map projects to Any with no media type.
func (p *Projector) ProjectContent(ctx context.Context, content map[string]*extract.MediaRecord) (*TypeDescriptor, string) {
	key, ok := Negotiate(content)
	if !ok {
		return Any(), ""
	}
	media := content[key]
	if media == nil {
		return Any(), key
	}
	if media.ItemSchema != nil {
		return p.Project(ctx, media.ItemSchema), key
	}
	return p.Project(ctx, media.Schema), key
}

func sortStrings(names []string) { sort.Strings(names) }
