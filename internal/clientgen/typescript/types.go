package typescript

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pthm/ocg/internal/clientgen"
)

// reserved are words that cannot name a parameter or a client method.
var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "implements": true, "interface": true,
	"let": true, "package": true, "private": true, "protected": true,
	"public": true, "static": true, "yield": true, "await": true,
	"arguments": true, "eval": true,
	"params": true, "call": true, "constructor": true,
}

// clientMembers are properties of the generated client class.
var clientMembers = []string{"url", "headers", "fetchImpl", "nextId"}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func docComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}

func tsType(t *clientgen.TypeRef) string {
	var base string
	switch t.Kind {
	case clientgen.KindString:
		base = "string"
	case clientgen.KindInteger, clientgen.KindNumber:
		base = "number"
	case clientgen.KindBoolean:
		base = "boolean"
	case clientgen.KindNull:
		return "null"
	case clientgen.KindArray:
		elem := tsType(t.Elem)
		if t.Elem.Kind == clientgen.KindUnion || t.Elem.Nullable {
			elem = "(" + elem + ")"
		}
		base = elem + "[]"
	case clientgen.KindMap:
		base = "Record<string, " + tsType(t.Elem) + ">"
	case clientgen.KindRef:
		base = t.Name
	case clientgen.KindUnion:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = tsType(v)
		}
		base = strings.Join(parts, " | ")
	default:
		return "unknown"
	}
	if t.Nullable {
		return base + " | null"
	}
	return base
}

func writeDoc(b *strings.Builder, indent string, lines []string) {
	switch len(lines) {
	case 0:
		return
	case 1:
		fmt.Fprintf(b, "%s/** %s */\n", indent, docComment(lines[0]))
		return
	}
	fmt.Fprintf(b, "%s/**\n", indent)
	for _, l := range lines {
		if l == "" {
			fmt.Fprintf(b, "%s *\n", indent)
			continue
		}
		fmt.Fprintf(b, "%s * %s\n", indent, docComment(l))
	}
	fmt.Fprintf(b, "%s */\n", indent)
}

func renderTypes(m *clientgen.Model) string {
	var b strings.Builder
	for _, d := range m.Types {
		b.WriteString("\n")
		writeDoc(&b, "", clientgen.Lines(d.Description))
		switch d.Kind {
		case clientgen.DeclEnum:
			values := make([]string, len(d.Enum))
			for i, v := range d.Enum {
				values[i] = clientgen.Quote(v)
			}
			fmt.Fprintf(&b, "export type %s = %s;\n", d.Name, strings.Join(values, " | "))
		case clientgen.DeclAlias:
			fmt.Fprintf(&b, "export type %s = %s;\n", d.Name, tsType(d.Alias))
		default:
			if len(d.Fields) == 0 {
				fmt.Fprintf(&b, "export type %s = Record<string, unknown>;\n", d.Name)
				continue
			}
			fmt.Fprintf(&b, "export interface %s {\n", d.Name)
			for _, f := range d.Fields {
				writeDoc(&b, "  ", clientgen.Lines(f.Description))
				key := f.Name
				if !identifier.MatchString(key) {
					key = clientgen.Quote(key)
				}
				opt := ""
				if !f.Required {
					opt = "?"
				}
				fmt.Fprintf(&b, "  %s%s: %s;\n", key, opt, tsType(f.Type))
			}
			b.WriteString("}\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// usedRefs returns the declared names referenced by method signatures.
func usedRefs(m *clientgen.Model) []string {
	seen := make(map[string]bool)
	var walk func(t *clientgen.TypeRef)
	walk = func(t *clientgen.TypeRef) {
		if t == nil {
			return
		}
		if t.Kind == clientgen.KindRef {
			seen[t.Name] = true
		}
		walk(t.Elem)
		for _, v := range t.Variants {
			walk(v)
		}
	}
	for _, meth := range m.Methods {
		for _, p := range meth.Params {
			walk(p.Type)
		}
		if meth.Result != nil {
			walk(meth.Result.Type)
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func uniqueIdent(name string, used map[string]bool) string {
	out := name
	for i := 2; used[out]; i++ {
		out = name + strconv.Itoa(i)
	}
	used[out] = true
	return out
}

func methodDoc(m *clientgen.Method, idents map[*clientgen.Param]string) []string {
	var lines []string
	if m.Summary != "" {
		lines = append(lines, clientgen.Lines(m.Summary)...)
	}
	if m.Description != "" && m.Description != m.Summary {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, clientgen.Lines(m.Description)...)
	}
	if len(lines) == 0 {
		lines = append(lines, "Calls "+m.Name+".")
	}

	var tags []string
	for _, p := range m.Params {
		if p.Description != "" {
			tags = append(tags, fmt.Sprintf("@param %s %s", idents[p], strings.Join(clientgen.Lines(p.Description), " ")))
		}
	}
	if m.Result != nil && m.Result.Description != "" {
		tags = append(tags, "@returns "+strings.Join(clientgen.Lines(m.Result.Description), " "))
	}
	for _, e := range m.Errors {
		tags = append(tags, fmt.Sprintf("@throws {RpcError} %d %s", e.Code, e.Message))
	}
	if m.Deprecated {
		tags = append(tags, "@deprecated")
	}
	if len(tags) > 0 {
		lines = append(lines, "")
		lines = append(lines, tags...)
	}
	return lines
}

func renderMethods(m *clientgen.Model) string {
	var b strings.Builder
	usedMethods := make(map[string]bool)
	for _, name := range clientMembers {
		usedMethods[name] = true
	}

	for _, meth := range m.Methods {
		name := uniqueIdent(clientgen.Reserved(clientgen.Camel(meth.Name), reserved), usedMethods)

		usedParams := make(map[string]bool)
		idents := make(map[*clientgen.Param]string, len(meth.Params))
		for _, p := range meth.Params {
			idents[p] = uniqueIdent(clientgen.Reserved(clientgen.Camel(p.Name), reserved), usedParams)
		}

		var args []string
		for _, p := range meth.RequiredFirst() {
			opt := ""
			if !p.Required {
				opt = "?"
			}
			args = append(args, fmt.Sprintf("%s%s: %s", idents[p], opt, tsType(p.Type)))
		}

		ret := "void"
		if meth.Result != nil {
			ret = tsType(meth.Result.Type)
		}

		b.WriteString("\n")
		writeDoc(&b, "  ", methodDoc(meth, idents))
		fmt.Fprintf(&b, "  async %s(%s): Promise<%s> {\n", name, strings.Join(args, ", "), ret)

		if meth.ByPosition {
			values := make([]string, len(meth.Params))
			requiredCount := 0
			for i, p := range meth.Params {
				values[i] = idents[p]
				if p.Required {
					requiredCount++
				}
			}
			fmt.Fprintf(&b, "    const params: unknown[] = [%s];\n", strings.Join(values, ", "))
			if requiredCount < len(meth.Params) {
				fmt.Fprintf(&b, "    while (params.length > %d && params[params.length - 1] === undefined) {\n", requiredCount)
				b.WriteString("      params.pop();\n")
				b.WriteString("    }\n")
			}
		} else {
			var entries []string
			for _, p := range meth.Params {
				if p.Required {
					entries = append(entries, fmt.Sprintf("%s: %s", clientgen.Quote(p.Name), idents[p]))
				}
			}
			if len(entries) == 0 {
				b.WriteString("    const params: Record<string, unknown> = {};\n")
			} else {
				fmt.Fprintf(&b, "    const params: Record<string, unknown> = { %s };\n", strings.Join(entries, ", "))
			}
			for _, p := range meth.Params {
				if p.Required {
					continue
				}
				fmt.Fprintf(&b, "    if (%s !== undefined) {\n", idents[p])
				fmt.Fprintf(&b, "      params[%s] = %s;\n", clientgen.Quote(p.Name), idents[p])
				b.WriteString("    }\n")
			}
		}

		if meth.Result != nil {
			fmt.Fprintf(&b, "    return this.call<%s>(%s, params);\n", ret, clientgen.Quote(meth.Name))
		} else {
			fmt.Fprintf(&b, "    await this.call<unknown>(%s, params);\n", clientgen.Quote(meth.Name))
		}
		b.WriteString("  }\n")
	}
	return b.String()
}
