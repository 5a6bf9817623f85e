// Package typescript implements the TypeScript client code generator.
//
// Output layout:
//   - package.json
//   - src/types.ts: interfaces, string literal unions and aliases
//   - src/client.ts: a fetch-based client class and RpcError
//   - src/index.ts: re-exports for clean imports
package typescript

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/pthm/ocg/internal/clientgen"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates *template.Template

func init() {
	var err error
	templates, err = template.New("typescript").Funcs(template.FuncMap{
		"quote": clientgen.Quote,
		"doc":   docComment,
		"join":  strings.Join,
	}).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		panic(fmt.Sprintf("failed to parse typescript templates: %v", err))
	}

	clientgen.Register(&Generator{})
}

// Generator implements clientgen.Generator for TypeScript.
type Generator struct{}

// Language returns clientgen.TypeScript.
func (g *Generator) Language() clientgen.Language { return clientgen.TypeScript }

// DefaultConfig returns default configuration for TypeScript code generation.
func (g *Generator) DefaultConfig() *clientgen.Config {
	return &clientgen.Config{
		Options: map[string]any{
			"typescript": "^5.4.0",
		},
	}
}

type fileData struct {
	Header            string
	Title             string
	Version           string
	Package           string
	ClientName        string
	ServerURL         string
	TypeScriptVersion string
	Imports           []string
	Body              string
}

// Generate returns the files of an npm package.
func (g *Generator) Generate(model *clientgen.Model, cfg *clientgen.Config) (map[string][]byte, error) {
	cfg = cfg.Merge(g.DefaultConfig())

	data := fileData{
		Header:     clientgen.Header(model),
		Title:      model.Title,
		Version:    cfg.Version,
		Package:    cfg.Package,
		ClientName: cfg.ClientName,
		ServerURL:  cfg.ServerURL,
	}
	if data.Package == "" {
		data.Package = clientgen.Kebab(model.Title)
	}
	if data.ClientName == "" {
		data.ClientName = clientgen.Pascal(model.Title) + "Client"
	}
	if data.Version == "" {
		data.Version = model.Version
	}
	if data.ServerURL == "" {
		data.ServerURL = model.ServerURL
	}
	data.TypeScriptVersion, _ = cfg.Options["typescript"].(string)

	files := make(map[string][]byte)
	render := func(name, tmpl string, d fileData) error {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, tmpl, d); err != nil {
			return fmt.Errorf("executing template %s: %w", tmpl, err)
		}
		files[name] = buf.Bytes()
		return nil
	}

	if err := render("package.json", "package.json.tmpl", data); err != nil {
		return nil, err
	}
	if err := render("src/index.ts", "index.ts.tmpl", data); err != nil {
		return nil, err
	}

	typesData := data
	typesData.Body = renderTypes(model)
	if err := render("src/types.ts", "types.ts.tmpl", typesData); err != nil {
		return nil, err
	}

	clientData := data
	clientData.Imports = usedRefs(model)
	clientData.Body = renderMethods(model)
	if err := render("src/client.ts", "client.ts.tmpl", clientData); err != nil {
		return nil, err
	}

	return files, nil
}
