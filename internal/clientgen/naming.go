package clientgen

import (
	"strings"
	"unicode"

	"github.com/ettle/strcase"
)

// sanitize replaces every character that cannot appear in an identifier
// with an underscore so strcase treats it as a word boundary. Identifiers
// may not start with a digit, so those get an "n" prefix.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "value"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "n" + out
	}
	return out
}

// Pascal converts s to PascalCase ("list_pets" -> "ListPets").
func Pascal(s string) string {
	return strcase.ToPascal(sanitize(s))
}

// GoPascal converts s to PascalCase keeping Go initialisms ("pet_id" -> "PetID").
func GoPascal(s string) string {
	return strcase.ToGoPascal(sanitize(s))
}

// GoCamel converts s to camelCase keeping Go initialisms ("PetID" -> "petID").
func GoCamel(s string) string {
	return strcase.ToGoCamel(sanitize(s))
}

// Camel converts s to camelCase ("list_pets" -> "listPets").
func Camel(s string) string {
	return strcase.ToCamel(sanitize(s))
}

// Snake converts s to snake_case ("petId" -> "pet_id").
func Snake(s string) string {
	return strcase.ToSnake(sanitize(s))
}

// Kebab converts s to kebab-case ("Pet Store" -> "pet-store").
func Kebab(s string) string {
	return strcase.ToKebab(sanitize(s))
}

// Reserved appends an underscore to name when it is in words.
func Reserved(name string, words map[string]bool) string {
	if words[name] {
		return name + "_"
	}
	return name
}
