// Package naming provides identifier construction for named schema types.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Use golang.org/x/text/cases for proper Unicode title casing
// (strings.Title is deprecated).
var titleCaser = cases.Title(language.English, cases.NoLower)

// ToPascalCase converts a string to PascalCase.
// Separators (underscore, hyphen, dot, slash, space) trigger capitalization
// of the next letter.
// Example: "user_profile" -> "UserProfile"
// Example: "api-client" -> "ApiClient"
func ToPascalCase(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	capitalizeNext := true

	for _, r := range s {
		if r == '_' || r == '-' || r == '.' || r == '/' || r == ' ' {
			capitalizeNext = true
			continue
		}
		if capitalizeNext {
			result.WriteString(titleCaser.String(string(r)))
			capitalizeNext = false
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// ToCamelCase converts a string to camelCase.
// Like PascalCase but with the first letter lowercase.
// Example: "user_profile" -> "userProfile"
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if pascal == "" {
		return ""
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// SchemaIdentifier converts a component key into a name usable as a type
// identifier in any target language: invalid characters become separators,
// the result is PascalCased, and a leading digit is prefixed.
// Example: "pet.store-item" -> "PetStoreItem"
// Example: "2dPoint" -> "N2dPoint"
func SchemaIdentifier(name string) string {
	if name == "" {
		return ""
	}

	var cleaned strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cleaned.WriteRune(r)
		} else {
			cleaned.WriteRune('_')
		}
	}

	id := ToPascalCase(cleaned.String())
	if id == "" {
		return ""
	}
	if unicode.IsDigit([]rune(id)[0]) {
		id = "N" + id
	}
	return id
}
