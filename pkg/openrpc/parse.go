package openrpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Reference prefixes for local components.
const (
	SchemaRefPrefix            = "#/components/schemas/"
	ContentDescriptorRefPrefix = "#/components/contentDescriptors/"
	ErrorRefPrefix             = "#/components/errors/"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names so messages match the document the user wrote.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Parse decodes an OpenRPC document from JSON, inlines component
// references in methods and validates the result.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.ResolveRefs(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ResolveRefs replaces content descriptor and error references in methods
// with copies of the referenced components. Schema references are left in
// place. Calling it on an already resolved document is a no-op.
func (d *Document) ResolveRefs() error {
	for i := range d.Methods {
		m := &d.Methods[i]
		for j := range m.Params {
			if m.Params[j].Ref == "" {
				continue
			}
			cd, err := d.lookupContentDescriptor(m.Params[j].Ref)
			if err != nil {
				return fmt.Errorf("method %q param %d: %w", m.Name, j, err)
			}
			m.Params[j] = cd
		}
		if m.Result != nil && m.Result.Ref != "" {
			cd, err := d.lookupContentDescriptor(m.Result.Ref)
			if err != nil {
				return fmt.Errorf("method %q result: %w", m.Name, err)
			}
			m.Result = &cd
		}
		for j := range m.Errors {
			if m.Errors[j].Ref == "" {
				continue
			}
			e, err := d.lookupError(m.Errors[j].Ref)
			if err != nil {
				return fmt.Errorf("method %q error %d: %w", m.Name, j, err)
			}
			m.Errors[j] = e
		}
	}
	return nil
}

func (d *Document) lookupContentDescriptor(ref string) (ContentDescriptor, error) {
	name, ok := refName(ref, ContentDescriptorRefPrefix)
	if !ok {
		return ContentDescriptor{}, fmt.Errorf("%w: %s", ErrUnresolvedRef, ref)
	}
	if d.Components == nil || d.Components.ContentDescriptors[name] == nil {
		return ContentDescriptor{}, fmt.Errorf("%w: %s", ErrUnresolvedRef, ref)
	}
	cd := *d.Components.ContentDescriptors[name]
	cd.Ref = ""
	return cd, nil
}

func (d *Document) lookupError(ref string) (Error, error) {
	name, ok := refName(ref, ErrorRefPrefix)
	if !ok {
		return Error{}, fmt.Errorf("%w: %s", ErrUnresolvedRef, ref)
	}
	if d.Components == nil || d.Components.Errors[name] == nil {
		return Error{}, fmt.Errorf("%w: %s", ErrUnresolvedRef, ref)
	}
	e := *d.Components.Errors[name]
	e.Ref = ""
	return e, nil
}

// LookupSchema follows a "#/components/schemas/<name>" reference and returns
// the component schema together with its name.
func (d *Document) LookupSchema(ref string) (*Schema, string, error) {
	name, ok := refName(ref, SchemaRefPrefix)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnresolvedRef, ref)
	}
	if d.Components == nil || d.Components.Schemas[name] == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnresolvedRef, ref)
	}
	return d.Components.Schemas[name], name, nil
}

// refName strips prefix from ref and decodes JSON pointer escapes.
func refName(ref, prefix string) (string, bool) {
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, prefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	name = strings.ReplaceAll(name, "~1", "/")
	name = strings.ReplaceAll(name, "~0", "~")
	return name, true
}

// Validate checks the structure needed for client generation.
// All problems are reported together, joined with errors.Join, and wrapped
// in ErrInvalidDocument.
func (d *Document) Validate() error {
	var problems []error

	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, fieldError(fe))
			}
		} else {
			problems = append(problems, err)
		}
	}

	seen := make(map[string]bool, len(d.Methods))
	for i := range d.Methods {
		m := &d.Methods[i]
		if m.Name != "" {
			if seen[m.Name] {
				problems = append(problems, fmt.Errorf("duplicate method name %q", m.Name))
			}
			seen[m.Name] = true
		}
		problems = append(problems, validateParams(m)...)
	}

	problems = append(problems, d.validateSchemaRefs()...)

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidDocument, errors.Join(problems...))
}

func validateParams(m *Method) []error {
	var problems []error
	names := make(map[string]bool, len(m.Params))
	optionalSeen := false
	for _, p := range m.Params {
		if p.Name == "" {
			continue
		}
		if names[p.Name] {
			problems = append(problems, fmt.Errorf("method %q: duplicate param name %q", m.Name, p.Name))
		}
		names[p.Name] = true
		if m.ByPosition() {
			if p.Required && optionalSeen {
				problems = append(problems, fmt.Errorf("method %q: required param %q follows an optional param", m.Name, p.Name))
			}
			if !p.Required {
				optionalSeen = true
			}
		}
	}
	return problems
}

// validateSchemaRefs walks every schema reachable from methods and
// components and reports references that do not resolve.
func (d *Document) validateSchemaRefs() []error {
	var problems []error
	check := func(path string, s *Schema) {
		walkSchema(s, path, func(p string, s *Schema) {
			if s.Ref == "" {
				return
			}
			if _, _, err := d.LookupSchema(s.Ref); err != nil {
				problems = append(problems, fmt.Errorf("%s: %w", p, err))
			}
		})
	}

	for i := range d.Methods {
		m := &d.Methods[i]
		for _, p := range m.Params {
			check(fmt.Sprintf("method %q param %q", m.Name, p.Name), p.Schema)
		}
		if m.Result != nil {
			check(fmt.Sprintf("method %q result", m.Name), m.Result.Schema)
		}
	}
	if d.Components != nil {
		for _, name := range sortedKeys(d.Components.Schemas) {
			check(fmt.Sprintf("schema %q", name), d.Components.Schemas[name])
		}
		for _, name := range sortedKeys(d.Components.ContentDescriptors) {
			if cd := d.Components.ContentDescriptors[name]; cd != nil {
				check(fmt.Sprintf("content descriptor %q", name), cd.Schema)
			}
		}
	}
	return problems
}

// walkSchema calls fn for s and every inline subschema. References are not
// followed, so the walk always terminates.
func walkSchema(s *Schema, path string, fn func(string, *Schema)) {
	if s == nil {
		return
	}
	fn(path, s)
	for _, name := range sortedKeys(s.Properties) {
		walkSchema(s.Properties[name], path+"."+name, fn)
	}
	walkSchema(s.Items, path+"[]", fn)
	if s.AdditionalProperties != nil {
		walkSchema(s.AdditionalProperties.Schema, path+"{}", fn)
	}
	for i, sub := range s.OneOf {
		walkSchema(sub, fmt.Sprintf("%s.oneOf[%d]", path, i), fn)
	}
	for i, sub := range s.AnyOf {
		walkSchema(sub, fmt.Sprintf("%s.anyOf[%d]", path, i), fn)
	}
	for i, sub := range s.AllOf {
		walkSchema(sub, fmt.Sprintf("%s.allOf[%d]", path, i), fn)
	}
}

func fieldError(fe validator.FieldError) error {
	// Drop the root struct name from the namespace ("Document.methods[0].name").
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", ns)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", ns, fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation", ns, fe.Tag())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
