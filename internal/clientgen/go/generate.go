// Package gogen implements the Go client code generator.
//
// Output layout:
//   - types_gen.go: structs, string enums with constants, and named types
//   - client_gen.go: a net/http client with one method per RPC method
//
// Both files are formatted with go/format before they are returned, so a
// template bug surfaces as a generation error rather than as broken output.
package gogen

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/pthm/ocg/internal/clientgen"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates *template.Template

func init() {
	var err error
	templates, err = template.New("go").Funcs(template.FuncMap{
		"comment": func(s string) string { return strings.Join(clientgen.Lines(s), " ") },
	}).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		panic(fmt.Sprintf("failed to parse go templates: %v", err))
	}

	clientgen.Register(&Generator{})
}

// DefaultPackage is used when no package name can be derived from the title.
const DefaultPackage = "rpcclient"

// Generator implements clientgen.Generator for Go.
type Generator struct{}

// Language returns clientgen.Go.
func (g *Generator) Language() clientgen.Language { return clientgen.Go }

// DefaultConfig returns default configuration for Go code generation.
// ClientName defaults to "Client"; the package qualifies it.
func (g *Generator) DefaultConfig() *clientgen.Config {
	return &clientgen.Config{
		ClientName: "Client",
		Options:    make(map[string]any),
	}
}

type fileData struct {
	Header     string
	Title      string
	Package    string
	ClientName string
	ServerURL  string
	NeedsJSON  bool
	Body       string
}

// Generate returns types_gen.go and client_gen.go.
func (g *Generator) Generate(model *clientgen.Model, cfg *clientgen.Config) (map[string][]byte, error) {
	cfg = cfg.Merge(g.DefaultConfig())

	pkg := cfg.Package
	if pkg == "" {
		pkg = packageName(model.Title)
	}
	if keywords[pkg] {
		pkg = DefaultPackage
	}

	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = model.ServerURL
	}

	r := newRenderer(model, cfg.ClientName)

	data := fileData{
		Header:     clientgen.Header(model),
		Title:      model.Title,
		Package:    pkg,
		ClientName: cfg.ClientName,
		ServerURL:  serverURL,
	}

	files := make(map[string][]byte)
	render := func(name, tmpl string, d fileData) error {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, tmpl, d); err != nil {
			return fmt.Errorf("executing template %s: %w", tmpl, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return fmt.Errorf("formatting %s: %w", name, err)
		}
		files[name] = src
		return nil
	}

	typesData := data
	typesData.Body = r.types()
	typesData.NeedsJSON = r.needsJSON
	if err := render("types_gen.go", "types_gen.go.tmpl", typesData); err != nil {
		return nil, err
	}

	clientData := data
	clientData.Body = r.methods()
	if err := render("client_gen.go", "client_gen.go.tmpl", clientData); err != nil {
		return nil, err
	}

	return files, nil
}

// packageName keeps the lowercase ASCII letters and digits of title.
func packageName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return DefaultPackage
	}
	return name
}
