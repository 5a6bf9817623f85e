// Package clientgen provides a registry of language-specific client generators.
//
// Generators turn a language-neutral Model, built from an OpenRPC document
// with BuildModel, into a map of relative file paths to file contents. The
// factory package writes those files to disk; generators never touch the
// file system themselves.
package clientgen

import (
	"fmt"
	"sort"
)

// Generator produces client code for one language.
//
// Implementations register themselves via Register() in their init()
// function. The factory dispatches on the resolved Language.
type Generator interface {
	// Language returns the language this generator emits.
	Language() Language

	// Generate returns a map of relative filename -> content.
	Generate(model *Model, cfg *Config) (map[string][]byte, error)

	// DefaultConfig returns the defaults used for unset Config fields.
	DefaultConfig() *Config
}

// Config holds language-agnostic generation options.
type Config struct {
	// Package is the package/module name for generated code.
	// For Go: package name. For Python: import package. For TypeScript:
	// the npm package name.
	Package string

	// ClientName is the name of the generated client type.
	// Empty derives it from the document title.
	ClientName string

	// Version is written into package metadata (pyproject.toml, package.json).
	// Empty uses the document's info.version.
	Version string

	// ServerURL is the default endpoint baked into the client.
	// Empty uses the document's first server URL.
	ServerURL string

	// Options holds language-specific configuration.
	Options map[string]any
}

// Merge returns a copy of c with empty fields filled from defaults.
// A nil c yields a copy of defaults.
func (c *Config) Merge(defaults *Config) *Config {
	out := &Config{Options: make(map[string]any)}
	if defaults != nil {
		*out = *defaults
		out.Options = make(map[string]any, len(defaults.Options))
		for k, v := range defaults.Options {
			out.Options[k] = v
		}
	}
	if c == nil {
		return out
	}
	if c.Package != "" {
		out.Package = c.Package
	}
	if c.ClientName != "" {
		out.ClientName = c.ClientName
	}
	if c.Version != "" {
		out.Version = c.Version
	}
	if c.ServerURL != "" {
		out.ServerURL = c.ServerURL
	}
	for k, v := range c.Options {
		out.Options[k] = v
	}
	return out
}

// registry maps languages to generators.
var registry = make(map[Language]Generator)

// Register adds a generator to the global registry.
// Generators should call this from their init() function.
//
// Panics if a generator for the same language is already registered.
func Register(g Generator) {
	lang := g.Language()
	if _, exists := registry[lang]; exists {
		panic(fmt.Sprintf("clientgen: generator %q already registered", lang))
	}
	registry[lang] = g
}

// Get returns the generator for the given language.
// Returns nil if no generator is registered for it.
func Get(lang Language) Generator {
	return registry[lang]
}

// List returns all registered languages, sorted.
func List() []Language {
	langs := make([]Language, 0, len(registry))
	for lang := range registry {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Registered returns true if a generator is registered for the given language.
func Registered(lang Language) bool {
	_, ok := registry[lang]
	return ok
}
