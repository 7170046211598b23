package naming

import "testing"

func TestToPascalCase(t *testing.T) {
	cases := map[string]string{
		"user_profile": "UserProfile",
		"api-client":   "ApiClient",
		"pet.tag":      "PetTag",
		"already":      "Already",
		"":             "",
	}
	for in, want := range cases {
		if got := ToPascalCase(in); got != want {
			t.Errorf("ToPascalCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToCamelCase(t *testing.T) {
	cases := map[string]string{
		"user_profile": "userProfile",
		"UserProfile":  "userProfile",
		"":             "",
	}
	for in, want := range cases {
		if got := ToCamelCase(in); got != want {
			t.Errorf("ToCamelCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSchemaIdentifier(t *testing.T) {
	cases := map[string]string{
		"Pet":            "Pet",
		"pet.store-item": "PetStoreItem",
		"2dPoint":        "N2dPoint",
		"user profile":   "UserProfile",
		"":               "",
	}
	for in, want := range cases {
		if got := SchemaIdentifier(in); got != want {
			t.Errorf("SchemaIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}
