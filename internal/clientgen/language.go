package clientgen

import (
	"errors"
	"fmt"
	"strings"
)

// Language is a supported client language.
type Language string

const (
	Python     Language = "python"
	TypeScript Language = "typescript"
	Go         Language = "go"
)

// languages is the closed set of supported languages in declaration order.
var languages = []Language{Python, TypeScript, Go}

// Languages returns every supported language in declaration order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// LanguageNames returns the string value of every supported language.
func LanguageNames() []string {
	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = string(l)
	}
	return names
}

// ErrUnknownLanguage is matched by every *UnsupportedLanguageError.
var ErrUnknownLanguage = errors.New("clientgen: unknown language")

// UnsupportedLanguageError is returned by ParseLanguage for values outside
// the supported set.
type UnsupportedLanguageError struct {
	Value string
}

func (e *UnsupportedLanguageError) Error() string {
	quoted := make([]string, len(languages))
	for i, l := range languages {
		quoted[i] = fmt.Sprintf("'%s'", l)
	}
	return fmt.Sprintf("\"%s\" is not a valid language, must be one of: [%s]", e.Value, strings.Join(quoted, ", "))
}

func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnknownLanguage
}

// ParseLanguage resolves s to a supported Language. Matching is exact.
func ParseLanguage(s string) (Language, error) {
	for _, l := range languages {
		if string(l) == s {
			return l, nil
		}
	}
	return "", &UnsupportedLanguageError{Value: s}
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}
