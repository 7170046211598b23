// Package httputil provides HTTP-related constants and validation helpers
// shared by the extraction and projection packages.
package httputil

import (
	"mime"
	"strconv"
	"strings"
)

// HTTP status code boundaries.
const (
	StatusCodeLength = 3   // Standard length of HTTP status codes (e.g., "200", "404")
	MinStatusCode    = 100 // Minimum valid HTTP status code
	MaxStatusCode    = 599 // Maximum valid HTTP status code
	wildcardChar     = 'X' // Wildcard character in status code patterns (e.g., "2XX")
)

// HTTP method keys as they appear in OpenAPI path items.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace" // OAS 3.0+ only
	MethodQuery   = "query" // OAS 3.2+ only
)

// reservedHeaders are header names that transports and generated clients
// manage themselves. Parameters targeting them are dropped during extraction.
var reservedHeaders = map[string]bool{
	"accept":        true,
	"content-type":  true,
	"authorization": true,
}

// IsReservedHeader reports whether name is a header the framework manages.
// Matching is case-insensitive per RFC 9110.
func IsReservedHeader(name string) bool {
	return reservedHeaders[strings.ToLower(name)]
}

// ValidateStatusCode checks if a status code string is valid for a responses
// map key. Valid values are:
//   - "default" for the default response
//   - Extension fields starting with "x-"
//   - Wildcard patterns: 1XX, 2XX, 3XX, 4XX, 5XX
//   - Numeric codes: 100-599
func ValidateStatusCode(code string) bool {
	if code == "default" {
		return true
	}

	if strings.HasPrefix(code, "x-") {
		return true
	}

	if len(code) == StatusCodeLength {
		// Wildcard patterns (e.g., "2XX", "4XX")
		if code[1] == wildcardChar && code[2] == wildcardChar {
			return code[0] >= '1' && code[0] <= '5'
		}

		if code[0] >= '0' && code[0] <= '9' &&
			code[1] >= '0' && code[1] <= '9' &&
			code[2] >= '0' && code[2] <= '9' {
			statusCode, err := strconv.Atoi(code)
			return err == nil && statusCode >= MinStatusCode && statusCode <= MaxStatusCode
		}
	}

	return false
}

// NormalizeMediaType lowercases a media type key and strips any ";"-separated
// parameters, so "Application/JSON; charset=utf-8" becomes "application/json".
func NormalizeMediaType(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// IsValidMediaType validates a media type string according to RFC 2045/2046.
// Handles wildcards (*/* and type/*) and rejects invalid combinations (*/subtype).
func IsValidMediaType(mediaType string) bool {
	if mediaType == "*/*" {
		return true
	}

	if strings.HasSuffix(mediaType, "/*") {
		parts := strings.Split(mediaType, "/")
		return len(parts) == 2 && parts[0] != "" && parts[0] != "*"
	}

	_, _, err := mime.ParseMediaType(mediaType)
	return err == nil
}
