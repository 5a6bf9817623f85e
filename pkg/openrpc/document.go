// Package openrpc provides the OpenRPC document model used by ocg.
//
// A document is decoded with Parse, which inlines local content descriptor
// and error references and then validates the structure required for client
// generation. Schema references are kept as references so that generators
// can emit them as named types; use LookupSchema to follow one.
//
// # Basic Usage
//
//	doc, err := openrpc.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, m := range doc.Methods {
//	    fmt.Println(m.Name)
//	}
//
// Only the subset of JSON Schema that maps onto client types is modelled.
// Unknown keywords and x- extension fields are ignored on decode.
package openrpc

// ParamStructure controls how a method's params are sent on the wire.
type ParamStructure string

const (
	ParamsEither     ParamStructure = "either"
	ParamsByName     ParamStructure = "by-name"
	ParamsByPosition ParamStructure = "by-position"
)

// Document is the root object of an OpenRPC document.
type Document struct {
	OpenRPC      string        `json:"openrpc" validate:"required"`
	Info         Info          `json:"info"`
	Servers      []Server      `json:"servers,omitempty" validate:"dive"`
	Methods      []Method      `json:"methods" validate:"dive"`
	Components   *Components   `json:"components,omitempty" validate:"-"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty" validate:"-"`
}

// Info carries metadata about the API.
type Info struct {
	Title          string   `json:"title" validate:"required"`
	Description    string   `json:"description,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty"`
	Version        string   `json:"version" validate:"required"`
	Contact        *Contact `json:"contact,omitempty" validate:"-"`
	License        *License `json:"license,omitempty" validate:"-"`
}

// Contact is the contact information for the exposed API.
type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

// License is the license information for the exposed API.
type License struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Server describes an endpoint serving the API.
type Server struct {
	Name        string `json:"name,omitempty"`
	URL         string `json:"url" validate:"required"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExternalDocs points at additional documentation.
type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// Tag groups methods.
type Tag struct {
	Name        string `json:"name"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
}

// Method describes a single JSON-RPC method.
type Method struct {
	Name           string              `json:"name" validate:"required"`
	Summary        string              `json:"summary,omitempty"`
	Description    string              `json:"description,omitempty"`
	Tags           []Tag               `json:"tags,omitempty" validate:"-"`
	ParamStructure ParamStructure      `json:"paramStructure,omitempty" validate:"omitempty,oneof=by-name by-position either"`
	Params         []ContentDescriptor `json:"params" validate:"dive"`
	Result         *ContentDescriptor  `json:"result,omitempty" validate:"omitempty"`
	Errors         []Error             `json:"errors,omitempty" validate:"dive"`
	Deprecated     bool                `json:"deprecated,omitempty"`
}

// ByPosition reports whether params must be sent as a JSON array.
// Methods that accept either form are called by name.
func (m *Method) ByPosition() bool {
	return m.ParamStructure == ParamsByPosition
}

// ContentDescriptor describes a param or a result.
type ContentDescriptor struct {
	Ref         string  `json:"$ref,omitempty"`
	Name        string  `json:"name,omitempty" validate:"required"`
	Summary     string  `json:"summary,omitempty"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty" validate:"required"`
	Deprecated  bool    `json:"deprecated,omitempty"`
}

// Error is an application level error a method may return.
type Error struct {
	Ref     string `json:"$ref,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty" validate:"required"`
	Data    any    `json:"data,omitempty" validate:"-"`
}

// Components holds reusable objects referenced from the document.
type Components struct {
	Schemas            map[string]*Schema            `json:"schemas,omitempty"`
	ContentDescriptors map[string]*ContentDescriptor `json:"contentDescriptors,omitempty"`
	Errors             map[string]*Error             `json:"errors,omitempty"`
}

// MethodNames returns method names in declaration order.
func (d *Document) MethodNames() []string {
	names := make([]string, 0, len(d.Methods))
	for i := range d.Methods {
		names = append(names, d.Methods[i].Name)
	}
	return names
}

// ServerURL returns the first declared server URL, or "" when there is none.
func (d *Document) ServerURL() string {
	if len(d.Servers) == 0 {
		return ""
	}
	return d.Servers[0].URL
}
