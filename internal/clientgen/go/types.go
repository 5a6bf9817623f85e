package gogen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pthm/ocg/internal/clientgen"
)

var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
}

// locals are identifiers declared inside generated method bodies.
var locals = map[string]bool{
	"c": true, "ctx": true, "params": true, "result": true, "err": true,
	"any": true, "string": true, "bool": true, "int32": true, "int64": true,
	"float32": true, "float64": true, "json": true, "context": true,
}

// clientMembers are the exported fields of the generated client struct.
var clientMembers = []string{"URL", "HTTPClient", "Header"}

type renderer struct {
	model      *clientgen.Model
	clientName string

	// names maps declaration names to Go type names.
	names map[string]string
	used  map[string]bool

	needsJSON bool
}

func newRenderer(m *clientgen.Model, clientName string) *renderer {
	r := &renderer{
		model:      m,
		clientName: clientName,
		names:      make(map[string]string),
		used:       make(map[string]bool),
	}
	for _, name := range []string{"RPCError", "DefaultURL", clientName, "New" + clientName} {
		r.used[name] = true
	}
	for _, d := range m.Types {
		if !r.used[d.Name] {
			r.names[d.Name] = d.Name
			r.used[d.Name] = true
		}
	}
	for _, d := range m.Types {
		if _, ok := r.names[d.Name]; ok {
			continue
		}
		r.names[d.Name] = uniqueIdent(d.Name+"Type", r.used)
	}
	return r
}

func uniqueIdent(name string, used map[string]bool) string {
	out := name
	for i := 2; used[out]; i++ {
		out = name + strconv.Itoa(i)
	}
	used[out] = true
	return out
}

// baseType renders t without nullability.
func (r *renderer) baseType(t *clientgen.TypeRef) string {
	switch t.Kind {
	case clientgen.KindString:
		return "string"
	case clientgen.KindInteger:
		if t.Format == "int32" {
			return "int32"
		}
		return "int64"
	case clientgen.KindNumber:
		if t.Format == "float" {
			return "float32"
		}
		return "float64"
	case clientgen.KindBoolean:
		return "bool"
	case clientgen.KindArray:
		return "[]" + r.valueType(t.Elem)
	case clientgen.KindMap:
		return "map[string]" + r.valueType(t.Elem)
	case clientgen.KindRef:
		return r.names[t.Name]
	case clientgen.KindUnion:
		r.needsJSON = true
		return "json.RawMessage"
	default:
		return "any"
	}
}

// pointerable reports whether nil must be expressed with a pointer.
func pointerable(t *clientgen.TypeRef) bool {
	switch t.Kind {
	case clientgen.KindString, clientgen.KindInteger, clientgen.KindNumber,
		clientgen.KindBoolean, clientgen.KindRef:
		return true
	}
	return false
}

// valueType renders t as a value that may hold JSON null when t is nullable.
func (r *renderer) valueType(t *clientgen.TypeRef) string {
	base := r.baseType(t)
	if t.Nullable && pointerable(t) {
		return "*" + base
	}
	return base
}

// optionalType renders t for a value that may be absent.
func (r *renderer) optionalType(t *clientgen.TypeRef) string {
	base := r.baseType(t)
	if pointerable(t) {
		return "*" + base
	}
	return base
}

func writeComment(b *strings.Builder, indent, text string) {
	for _, l := range clientgen.Lines(text) {
		if l == "" {
			fmt.Fprintf(b, "%s//\n", indent)
			continue
		}
		fmt.Fprintf(b, "%s// %s\n", indent, l)
	}
}

func (r *renderer) types() string {
	var b strings.Builder
	for _, d := range r.model.Types {
		name := r.names[d.Name]
		b.WriteString("\n")
		writeComment(&b, "", d.Description)
		switch d.Kind {
		case clientgen.DeclEnum:
			fmt.Fprintf(&b, "type %s string\n\n", name)
			b.WriteString("const (\n")
			for _, v := range d.Enum {
				c := uniqueIdent(name+clientgen.GoPascal(v), r.used)
				fmt.Fprintf(&b, "\t%s %s = %s\n", c, name, strconv.Quote(v))
			}
			b.WriteString(")\n")
		case clientgen.DeclAlias:
			fmt.Fprintf(&b, "type %s %s\n", name, r.valueType(d.Alias))
		default:
			if len(d.Fields) == 0 {
				fmt.Fprintf(&b, "type %s map[string]any\n", name)
				continue
			}
			fmt.Fprintf(&b, "type %s struct {\n", name)
			fields := make(map[string]bool)
			for _, f := range d.Fields {
				writeComment(&b, "\t", f.Description)
				fieldName := uniqueIdent(clientgen.GoPascal(f.Name), fields)
				typ := r.valueType(f.Type)
				tag := f.Name
				if !f.Required {
					typ = r.optionalType(f.Type)
					tag += ",omitempty"
				}
				fmt.Fprintf(&b, "\t%s %s `json:%s`\n", fieldName, typ, strconv.Quote(tag))
			}
			b.WriteString("}\n")
		}
	}
	return b.String()
}

func (r *renderer) methodDoc(b *strings.Builder, name string, m *clientgen.Method) {
	fmt.Fprintf(b, "// %s calls %s.\n", name, m.Name)
	var body []string
	if m.Summary != "" {
		body = append(body, clientgen.Lines(m.Summary)...)
	}
	if m.Description != "" && m.Description != m.Summary {
		if len(body) > 0 {
			body = append(body, "")
		}
		body = append(body, clientgen.Lines(m.Description)...)
	}
	for _, e := range m.Errors {
		if len(body) > 0 {
			body = append(body, "")
		}
		body = append(body, fmt.Sprintf("The server may return an *RPCError with code %d (%s).", e.Code, e.Message))
	}
	if m.Deprecated {
		body = append(body, "", "Deprecated: the server marks this method as deprecated.")
	}
	if len(body) > 0 {
		b.WriteString("//\n")
		writeComment(b, "", strings.Join(body, "\n"))
	}
}

func (r *renderer) methods() string {
	var b strings.Builder
	usedMethods := make(map[string]bool)
	for _, name := range clientMembers {
		usedMethods[name] = true
	}

	for _, meth := range r.model.Methods {
		name := uniqueIdent(clientgen.GoPascal(meth.Name), usedMethods)

		usedParams := make(map[string]bool)
		idents := make(map[*clientgen.Param]string, len(meth.Params))
		for _, p := range meth.Params {
			ident := clientgen.GoCamel(p.Name)
			if keywords[ident] || locals[ident] {
				ident += "_"
			}
			idents[p] = uniqueIdent(ident, usedParams)
		}

		args := []string{"ctx context.Context"}
		for _, p := range meth.RequiredFirst() {
			typ := r.valueType(p.Type)
			if !p.Required {
				typ = r.optionalType(p.Type)
			}
			args = append(args, idents[p]+" "+typ)
		}

		b.WriteString("\n")
		r.methodDoc(&b, name, meth)

		var resultType string
		if meth.Result != nil {
			resultType = r.valueType(meth.Result.Type)
			fmt.Fprintf(&b, "func (c *%s) %s(%s) (%s, error) {\n", r.clientName, name, strings.Join(args, ", "), resultType)
		} else {
			fmt.Fprintf(&b, "func (c *%s) %s(%s) error {\n", r.clientName, name, strings.Join(args, ", "))
		}

		if meth.ByPosition {
			values := make([]string, len(meth.Params))
			requiredCount := 0
			for i, p := range meth.Params {
				values[i] = idents[p]
				if p.Required {
					requiredCount++
				}
			}
			fmt.Fprintf(&b, "\tparams := []any{%s}\n", strings.Join(values, ", "))
			if requiredCount < len(meth.Params) {
				// Trailing absent values are dropped so the server applies
				// its defaults.
				b.WriteString("\tswitch {\n")
				for i := len(meth.Params) - 1; i >= requiredCount; i-- {
					fmt.Fprintf(&b, "\tcase %s != nil:\n", idents[meth.Params[i]])
					if i < len(meth.Params)-1 {
						fmt.Fprintf(&b, "\t\tparams = params[:%d]\n", i+1)
					}
				}
				fmt.Fprintf(&b, "\tdefault:\n\t\tparams = params[:%d]\n", requiredCount)
				b.WriteString("\t}\n")
			}
		} else {
			var entries []string
			for _, p := range meth.Params {
				if p.Required {
					entries = append(entries, fmt.Sprintf("%s: %s", strconv.Quote(p.Name), idents[p]))
				}
			}
			fmt.Fprintf(&b, "\tparams := map[string]any{%s}\n", strings.Join(entries, ", "))
			for _, p := range meth.Params {
				if p.Required {
					continue
				}
				fmt.Fprintf(&b, "\tif %s != nil {\n", idents[p])
				fmt.Fprintf(&b, "\t\tparams[%s] = %s\n", strconv.Quote(p.Name), idents[p])
				b.WriteString("\t}\n")
			}
		}

		if meth.Result != nil {
			fmt.Fprintf(&b, "\tvar result %s\n", resultType)
			fmt.Fprintf(&b, "\terr := c.call(ctx, %s, params, &result)\n", strconv.Quote(meth.Name))
			b.WriteString("\treturn result, err\n")
		} else {
			fmt.Fprintf(&b, "\treturn c.call(ctx, %s, params, nil)\n", strconv.Quote(meth.Name))
		}
		b.WriteString("}\n")
	}
	return b.String()
}
