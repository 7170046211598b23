package spec

import (
	"strconv"
	"strings"
)

// OASVersion enumerates the canonical versions of the OpenAPI Specification,
// see https://github.com/OAI/OpenAPI-Specification/releases
type OASVersion int

const (
	// VersionUnknown represents an unknown or invalid OAS version
	VersionUnknown OASVersion = iota
	// Version20 OpenAPI Specification Version 2.0 (Swagger)
	Version20
	// Version300 OpenAPI Specification Version 3.0.0
	Version300
	// Version301 OpenAPI Specification Version 3.0.1
	Version301
	// Version302 OpenAPI Specification Version 3.0.2
	Version302
	// Version303 OpenAPI Specification Version 3.0.3
	Version303
	// Version304 OpenAPI Specification Version 3.0.4
	Version304
	// Version310 OpenAPI Specification Version 3.1.0
	Version310
	// Version311 OpenAPI Specification Version 3.1.1
	Version311
	// Version312 OpenAPI Specification Version 3.1.2
	Version312
	// Version320 OpenAPI Specification Version 3.2.0
	Version320
)

var versionToString = map[OASVersion]string{
	Version20:  "2.0",
	Version300: "3.0.0",
	Version301: "3.0.1",
	Version302: "3.0.2",
	Version303: "3.0.3",
	Version304: "3.0.4",
	Version310: "3.1.0",
	Version311: "3.1.1",
	Version312: "3.1.2",
	Version320: "3.2.0",
}

// seriesMax maps a "major.minor" series to its highest known version. Unknown
// future patch releases of a known series snap to this, so a document that
// declares e.g. "3.1.9" still parses with 3.1 semantics.
var seriesMax = map[string]OASVersion{
	"3.0": Version304,
	"3.1": Version312,
	"3.2": Version320,
}

var stringToVersion = func() map[string]OASVersion {
	m := make(map[string]OASVersion, len(versionToString))
	for k, v := range versionToString {
		m[v] = k
	}
	return m
}()

func (v OASVersion) String() string {
	if s, ok := versionToString[v]; ok {
		return s
	}
	return "unknown"
}

// IsValid returns true if this is a known version
func (v OASVersion) IsValid() bool {
	_, ok := versionToString[v]
	return ok
}

// IsOAS2 reports whether this is the 2.0 (Swagger) dialect.
func (v OASVersion) IsOAS2() bool { return v == Version20 }

// IsOAS3 reports whether this is any 3.x dialect.
func (v OASVersion) IsOAS3() bool { return v >= Version300 && v <= Version320 }

// ParseVersion attempts to parse s into an OASVersion and reports whether it
// succeeded. Supported inputs:
//  1. Exact version matches (e.g. "2.0", "3.0.3", "3.1.0")
//  2. Two-segment 2.x markers ("2.0" only; any other 2.x is rejected)
//  3. Future patch versions of a known 3.x series, snapped to the highest
//     known patch of that series
func ParseVersion(s string) (OASVersion, bool) {
	s = strings.TrimSpace(s)
	if v, ok := stringToVersion[s]; ok {
		return v, true
	}

	segs := strings.Split(s, ".")
	if len(segs) != 3 {
		return VersionUnknown, false
	}
	for _, seg := range segs {
		if _, err := strconv.Atoi(seg); err != nil {
			return VersionUnknown, false
		}
	}
	if v, ok := seriesMax[segs[0]+"."+segs[1]]; ok {
		return v, true
	}
	return VersionUnknown, false
}

// DetectVersion inspects a raw document map for its version marker.
// A `swagger` key must hold "2.0"; an `openapi` key must hold a 3.x version.
// Returns VersionUnknown and false when no recognized marker is present.
func DetectVersion(raw map[string]any) (OASVersion, string, bool) {
	if marker, ok := raw["swagger"].(string); ok {
		if v, ok := ParseVersion(marker); ok && v.IsOAS2() {
			return v, marker, true
		}
		return VersionUnknown, marker, false
	}
	if marker, ok := raw["openapi"].(string); ok {
		if v, ok := ParseVersion(marker); ok && v.IsOAS3() {
			return v, marker, true
		}
		return VersionUnknown, marker, false
	}
	return VersionUnknown, "", false
}
