// Package python implements the Python client code generator.
//
// The generated package has no third-party dependencies: models are
// TypedDicts and the client speaks JSON-RPC over urllib.
//
// Output layout:
//   - pyproject.toml
//   - <package>/__init__.py: re-exports the client, errors and models
//   - <package>/models.py: TypedDicts, Literal enums and aliases
//   - <package>/client.py: the client class with one method per RPC method
package python

import (
	"bytes"
	"fmt"
	"path"
	"text/template"

	"github.com/pthm/ocg/internal/clientgen"
)

func init() {
	clientgen.Register(&Generator{})
}

// Generator implements clientgen.Generator for Python.
type Generator struct{}

// Language returns clientgen.Python.
func (g *Generator) Language() clientgen.Language { return clientgen.Python }

// DefaultConfig returns default configuration for Python code generation.
// Package and ClientName are derived from the document title when empty.
func (g *Generator) DefaultConfig() *clientgen.Config {
	return &clientgen.Config{
		Options: map[string]any{
			"requires_python": ">=3.8",
		},
	}
}

var templates = template.Must(template.New("python").Funcs(template.FuncMap{
	"quote": clientgen.Quote,
	"doc":   docString,
}).Parse(fileTemplates))

// fileData is shared by every Python template.
type fileData struct {
	Header         string
	Title          string
	Version        string
	Description    string
	Package        string
	Dist           string
	ClientName     string
	ServerURL      string
	RequiresPython string
	Models         []string
	Body           string
}

// Generate returns the files of a Python client package.
func (g *Generator) Generate(model *clientgen.Model, cfg *clientgen.Config) (map[string][]byte, error) {
	cfg = cfg.Merge(g.DefaultConfig())

	pkg := cfg.Package
	if pkg == "" {
		pkg = clientgen.Snake(model.Title)
	}
	pkg = clientgen.Reserved(pkg, keywords)

	clientName := cfg.ClientName
	if clientName == "" {
		clientName = clientgen.Pascal(model.Title) + "Client"
	}

	version := cfg.Version
	if version == "" {
		version = model.Version
	}

	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = model.ServerURL
	}

	requires, _ := cfg.Options["requires_python"].(string)

	data := fileData{
		Header:         clientgen.Header(model),
		Title:          model.Title,
		Version:        version,
		Description:    model.Description,
		Package:        pkg,
		Dist:           clientgen.Kebab(pkg),
		ClientName:     clientName,
		ServerURL:      serverURL,
		RequiresPython: requires,
	}
	for _, d := range model.Types {
		data.Models = append(data.Models, d.Name)
	}

	files := make(map[string][]byte)

	render := func(name, tmpl string, d fileData) error {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, tmpl, d); err != nil {
			return fmt.Errorf("executing template %s: %w", tmpl, err)
		}
		files[name] = buf.Bytes()
		return nil
	}

	if err := render("pyproject.toml", "pyproject", data); err != nil {
		return nil, err
	}
	if err := render(path.Join(pkg, "__init__.py"), "init", data); err != nil {
		return nil, err
	}

	modelsData := data
	modelsData.Body = renderModels(model)
	if err := render(path.Join(pkg, "models.py"), "models", modelsData); err != nil {
		return nil, err
	}

	clientData := data
	clientData.Body = renderMethods(model)
	if err := render(path.Join(pkg, "client.py"), "client", clientData); err != nil {
		return nil, err
	}

	return files, nil
}
