package python

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pthm/ocg/internal/clientgen"
)

// keywords are Python keywords plus names that must not be shadowed by
// generated parameters.
var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
	"self": true, "params": true,
}

// clientMembers are attributes of the generated client class.
var clientMembers = map[string]bool{
	"url": true, "headers": true, "timeout": true,
}

// maxLine is the signature length after which parameters are wrapped.
const maxLine = 88

func docString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"""`, `\"\"\"`)
}

// pyType renders t as a typing annotation. Inside models.py references are
// quoted because declarations appear in name order, not dependency order.
func pyType(t *clientgen.TypeRef, quoteRefs bool) string {
	var base string
	switch t.Kind {
	case clientgen.KindString:
		base = "str"
	case clientgen.KindInteger:
		base = "int"
	case clientgen.KindNumber:
		base = "float"
	case clientgen.KindBoolean:
		base = "bool"
	case clientgen.KindNull:
		return "None"
	case clientgen.KindArray:
		base = "List[" + pyType(t.Elem, quoteRefs) + "]"
	case clientgen.KindMap:
		base = "Dict[str, " + pyType(t.Elem, quoteRefs) + "]"
	case clientgen.KindRef:
		base = t.Name
		if quoteRefs {
			base = strconv.Quote(t.Name)
		}
	case clientgen.KindUnion:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = pyType(v, quoteRefs)
		}
		base = "Union[" + strings.Join(parts, ", ") + "]"
	default:
		return "Any"
	}
	if t.Nullable {
		return "Optional[" + base + "]"
	}
	return base
}

// optionalType renders the annotation of a parameter that defaults to None.
func optionalType(t *clientgen.TypeRef) string {
	s := pyType(t, false)
	if t.Nullable || t.Kind == clientgen.KindAny || t.Kind == clientgen.KindNull {
		return s
	}
	return "Optional[" + s + "]"
}

func isIdentifier(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func writeComment(b *strings.Builder, indent, text string) {
	for _, l := range clientgen.Lines(text) {
		if l == "" {
			fmt.Fprintf(b, "%s#\n", indent)
			continue
		}
		fmt.Fprintf(b, "%s# %s\n", indent, l)
	}
}

func writeDocstring(b *strings.Builder, indent string, lines []string) {
	switch len(lines) {
	case 0:
		return
	case 1:
		fmt.Fprintf(b, "%s\"\"\"%s\"\"\"\n", indent, docString(lines[0]))
		return
	}
	fmt.Fprintf(b, "%s\"\"\"%s\n", indent, docString(lines[0]))
	for _, l := range lines[1:] {
		if l == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(b, "%s%s\n", indent, docString(l))
	}
	fmt.Fprintf(b, "%s\"\"\"\n", indent)
}

func renderModels(m *clientgen.Model) string {
	var b strings.Builder
	for _, d := range m.Types {
		b.WriteString("\n\n")
		switch d.Kind {
		case clientgen.DeclEnum:
			writeComment(&b, "", d.Description)
			values := make([]string, len(d.Enum))
			for i, v := range d.Enum {
				values[i] = clientgen.Quote(v)
			}
			fmt.Fprintf(&b, "%s = Literal[%s]\n", d.Name, strings.Join(values, ", "))
		case clientgen.DeclAlias:
			writeComment(&b, "", d.Description)
			fmt.Fprintf(&b, "%s = %s\n", d.Name, pyType(d.Alias, true))
		default:
			renderTypedDict(&b, d)
		}
	}
	return b.String()
}

func renderTypedDict(b *strings.Builder, d *clientgen.TypeDecl) {
	if len(d.Fields) == 0 {
		writeComment(b, "", d.Description)
		fmt.Fprintf(b, "%s = Dict[str, Any]\n", d.Name)
		return
	}

	functional := false
	var required, optional []*clientgen.Field
	for _, f := range d.Fields {
		if !isIdentifier(f.Name) {
			functional = true
		}
		if f.Required {
			required = append(required, f)
		} else {
			optional = append(optional, f)
		}
	}

	// Keys that are not identifiers need the functional TypedDict syntax,
	// which cannot mix required and optional keys.
	if functional {
		writeComment(b, "", d.Description)
		fmt.Fprintf(b, "%s = TypedDict(\n    %s,\n    {\n", d.Name, clientgen.Quote(d.Name))
		for _, f := range d.Fields {
			fmt.Fprintf(b, "        %s: %s,\n", clientgen.Quote(f.Name), pyType(f.Type, true))
		}
		b.WriteString("    },\n    total=False,\n)\n")
		return
	}

	writeFields := func(fields []*clientgen.Field) {
		for _, f := range fields {
			writeComment(b, "    ", f.Description)
			fmt.Fprintf(b, "    %s: %s\n", f.Name, pyType(f.Type, true))
		}
	}

	switch {
	case len(required) > 0 && len(optional) > 0:
		base := "_" + d.Name + "Required"
		fmt.Fprintf(b, "class %s(TypedDict):\n", base)
		writeFields(required)
		b.WriteString("\n\n")
		fmt.Fprintf(b, "class %s(%s, total=False):\n", d.Name, base)
		writeDocstring(b, "    ", clientgen.Lines(d.Description))
		writeFields(optional)
	case len(required) > 0:
		fmt.Fprintf(b, "class %s(TypedDict):\n", d.Name)
		writeDocstring(b, "    ", clientgen.Lines(d.Description))
		writeFields(required)
	default:
		fmt.Fprintf(b, "class %s(TypedDict, total=False):\n", d.Name)
		writeDocstring(b, "    ", clientgen.Lines(d.Description))
		writeFields(optional)
	}
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
		lines = append(lines, "Call "+m.Name+".")
	}
	if m.Deprecated {
		lines = append(lines, "", ".. deprecated:: This method is deprecated by the server.")
	}

	var fields []string
	for _, p := range m.Params {
		if p.Description != "" {
			fields = append(fields, fmt.Sprintf(":param %s: %s", idents[p], strings.Join(clientgen.Lines(p.Description), " ")))
		}
	}
	if m.Result != nil && m.Result.Description != "" {
		fields = append(fields, ":return: "+strings.Join(clientgen.Lines(m.Result.Description), " "))
	}
	for _, e := range m.Errors {
		fields = append(fields, fmt.Sprintf(":raises RPCError: %d %s", e.Code, e.Message))
	}
	if len(fields) > 0 {
		lines = append(lines, "")
		lines = append(lines, fields...)
	}
	return lines
}

func renderMethods(m *clientgen.Model) string {
	var b strings.Builder
	usedMethods := make(map[string]bool)

	for _, meth := range m.Methods {
		name := clientgen.Snake(meth.Name)
		if keywords[name] || clientMembers[name] {
			name += "_"
		}
		name = uniqueIdent(name, usedMethods)

		usedParams := make(map[string]bool)
		idents := make(map[*clientgen.Param]string, len(meth.Params))
		for _, p := range meth.Params {
			idents[p] = uniqueIdent(clientgen.Reserved(clientgen.Snake(p.Name), keywords), usedParams)
		}

		ordered := meth.RequiredFirst()
		args := []string{"self"}
		for _, p := range ordered {
			if p.Required {
				args = append(args, fmt.Sprintf("%s: %s", idents[p], pyType(p.Type, false)))
			} else {
				args = append(args, fmt.Sprintf("%s: %s = None", idents[p], optionalType(p.Type)))
			}
		}

		ret := "None"
		if meth.Result != nil {
			ret = pyType(meth.Result.Type, false)
		}

		b.WriteString("\n")
		sig := fmt.Sprintf("    def %s(%s) -> %s:", name, strings.Join(args, ", "), ret)
		if len(sig) <= maxLine {
			b.WriteString(sig + "\n")
		} else {
			fmt.Fprintf(&b, "    def %s(\n", name)
			for _, a := range args {
				fmt.Fprintf(&b, "        %s,\n", a)
			}
			fmt.Fprintf(&b, "    ) -> %s:\n", ret)
		}

		writeDocstring(&b, "        ", methodDoc(meth, idents))

		if meth.ByPosition {
			values := make([]string, len(meth.Params))
			requiredCount := 0
			for i, p := range meth.Params {
				values[i] = idents[p]
				if p.Required {
					requiredCount++
				}
			}
			fmt.Fprintf(&b, "        params: List[Any] = [%s]\n", strings.Join(values, ", "))
			if requiredCount < len(meth.Params) {
				fmt.Fprintf(&b, "        while len(params) > %d and params[-1] is None:\n", requiredCount)
				b.WriteString("            params.pop()\n")
			}
		} else {
			var entries []string
			for _, p := range meth.Params {
				if p.Required {
					entries = append(entries, fmt.Sprintf("%s: %s", clientgen.Quote(p.Name), idents[p]))
				}
			}
			fmt.Fprintf(&b, "        params: Dict[str, Any] = {%s}\n", strings.Join(entries, ", "))
			for _, p := range meth.Params {
				if p.Required {
					continue
				}
				fmt.Fprintf(&b, "        if %s is not None:\n", idents[p])
				fmt.Fprintf(&b, "            params[%s] = %s\n", clientgen.Quote(p.Name), idents[p])
			}
		}

		if meth.Result != nil {
			fmt.Fprintf(&b, "        return self._call(%s, params)\n", clientgen.Quote(meth.Name))
		} else {
			fmt.Fprintf(&b, "        self._call(%s, params)\n", clientgen.Quote(meth.Name))
		}
	}
	return b.String()
}
