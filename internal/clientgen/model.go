package clientgen

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pthm/ocg/pkg/openrpc"
)

// Kind classifies a TypeRef.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindNull
	KindArray
	KindMap
	KindRef
	KindUnion
)

// TypeRef is a use site of a type: a param, a result, or a field.
type TypeRef struct {
	Kind Kind

	// Name is the declared type name for KindRef.
	Name string

	// Elem is the element type for KindArray and the value type for KindMap.
	Elem *TypeRef

	// Variants are the members of a KindUnion.
	Variants []*TypeRef

	// Nullable is set when the value may be JSON null.
	Nullable bool

	// Format is the JSON Schema format hint for scalars ("int64", "date-time").
	Format string
}

// DeclKind classifies a TypeDecl.
type DeclKind int

const (
	DeclObject DeclKind = iota
	DeclEnum
	DeclAlias
)

// TypeDecl is a named type emitted by a generator.
type TypeDecl struct {
	// Name is unique within the model and already PascalCase.
	Name        string
	Description string
	Kind        DeclKind

	// Fields of a DeclObject, sorted by wire name.
	Fields []*Field

	// Enum holds the string values of a DeclEnum.
	Enum []string

	// Alias is the target of a DeclAlias.
	Alias *TypeRef
}

// Field is a property of an object declaration.
type Field struct {
	// Name is the wire name used in JSON.
	Name        string
	Description string
	Type        *TypeRef
	Required    bool
}

// Param is a method parameter or result.
type Param struct {
	// Name is the wire name used for by-name calls.
	Name        string
	Description string
	Type        *TypeRef
	Required    bool
}

// ErrorInfo documents an application error a method may return.
type ErrorInfo struct {
	Code    int
	Message string
}

// Method is a JSON-RPC method.
type Method struct {
	// Name is the wire name ("list_pets", "math.add").
	Name        string
	Summary     string
	Description string
	Deprecated  bool
	ByPosition  bool
	Params      []*Param

	// Result is nil for notification-style methods without a result.
	Result *Param
	Errors []ErrorInfo
}

// Model is the language-neutral view of an OpenRPC document.
type Model struct {
	Title       string
	Description string
	Version     string
	ServerURL   string

	// Types are sorted by name.
	Types []*TypeDecl

	// Methods are in declaration order.
	Methods []*Method
}

// Decl returns the declaration with the given name, or nil.
func (m *Model) Decl(name string) *TypeDecl {
	for _, d := range m.Types {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// RequiredFirst returns params with required ones before optional ones,
// keeping relative order within each group.
func (m *Method) RequiredFirst() []*Param {
	out := make([]*Param, 0, len(m.Params))
	for _, p := range m.Params {
		if p.Required {
			out = append(out, p)
		}
	}
	for _, p := range m.Params {
		if !p.Required {
			out = append(out, p)
		}
	}
	return out
}

type builder struct {
	doc        *openrpc.Document
	components map[string]string // component key -> declared name
	used       map[string]bool
	decls      []*TypeDecl
}

// BuildModel converts a parsed document into a Model.
//
// Component schemas become named declarations. Inline object schemas found
// in params, results, and properties are hoisted into declarations named
// after their owner ("CreatePet" + "NewPet"); collisions get a numeric
// suffix.
func BuildModel(doc *openrpc.Document) (*Model, error) {
	b := &builder{
		doc:        doc,
		components: make(map[string]string),
		used:       make(map[string]bool),
	}

	var keys []string
	if doc.Components != nil {
		for k := range doc.Components.Schemas {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	// Reserve component names before anything is hoisted so references
	// always map to the component's own name.
	for _, k := range keys {
		b.components[k] = b.uniqueName(k)
	}
	for _, k := range keys {
		decl, err := b.componentDecl(b.components[k], doc.Components.Schemas[k])
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", k, err)
		}
		b.decls = append(b.decls, decl)
	}

	model := &Model{
		Title:       doc.Info.Title,
		Description: doc.Info.Description,
		Version:     doc.Info.Version,
		ServerURL:   doc.ServerURL(),
	}

	for i := range doc.Methods {
		m, err := b.method(&doc.Methods[i])
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", doc.Methods[i].Name, err)
		}
		model.Methods = append(model.Methods, m)
	}

	sort.Slice(b.decls, func(i, j int) bool { return b.decls[i].Name < b.decls[j].Name })
	model.Types = b.decls
	return model, nil
}

func (b *builder) method(om *openrpc.Method) (*Method, error) {
	m := &Method{
		Name:        om.Name,
		Summary:     om.Summary,
		Description: om.Description,
		Deprecated:  om.Deprecated,
		ByPosition:  om.ByPosition(),
	}
	for _, p := range om.Params {
		t, err := b.typeRef(p.Schema, Pascal(om.Name)+Pascal(p.Name))
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Name, err)
		}
		m.Params = append(m.Params, &Param{
			Name:        p.Name,
			Description: describe(p.Summary, p.Description),
			Type:        t,
			Required:    p.Required,
		})
	}
	if om.Result != nil {
		t, err := b.typeRef(om.Result.Schema, Pascal(om.Name)+"Result")
		if err != nil {
			return nil, fmt.Errorf("result: %w", err)
		}
		m.Result = &Param{
			Name:        om.Result.Name,
			Description: describe(om.Result.Summary, om.Result.Description),
			Type:        t,
			Required:    true,
		}
	}
	for _, e := range om.Errors {
		m.Errors = append(m.Errors, ErrorInfo{Code: e.Code, Message: e.Message})
	}
	return m, nil
}

func (b *builder) componentDecl(name string, s *openrpc.Schema) (*TypeDecl, error) {
	if isObject(s) {
		return b.objectDecl(name, s)
	}
	if values, ok := stringEnum(s); ok {
		return &TypeDecl{Name: name, Description: s.Description, Kind: DeclEnum, Enum: values}, nil
	}
	t, err := b.typeRef(s, name+"Item")
	if err != nil {
		return nil, err
	}
	return &TypeDecl{Name: name, Description: s.Description, Kind: DeclAlias, Alias: t}, nil
}

func (b *builder) objectDecl(name string, s *openrpc.Schema) (*TypeDecl, error) {
	props := make(map[string]*openrpc.Schema)
	required := make(map[string]bool)
	if err := b.mergeObject(s, props, required, make(map[*openrpc.Schema]bool)); err != nil {
		return nil, err
	}

	decl := &TypeDecl{Name: name, Description: s.Description, Kind: DeclObject}
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, pname := range names {
		ps := props[pname]
		t, err := b.typeRef(ps, name+Pascal(pname))
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", pname, err)
		}
		var desc string
		if ps != nil {
			desc = describe(ps.Title, ps.Description)
		}
		decl.Fields = append(decl.Fields, &Field{
			Name:        pname,
			Description: desc,
			Type:        t,
			Required:    required[pname],
		})
	}
	return decl, nil
}

// mergeObject collects properties from s and, through allOf, from every
// schema it extends. seen guards against allOf reference cycles.
func (b *builder) mergeObject(s *openrpc.Schema, props map[string]*openrpc.Schema, required map[string]bool, seen map[*openrpc.Schema]bool) error {
	if s == nil || seen[s] {
		return nil
	}
	seen[s] = true
	if s.Ref != "" {
		target, _, err := b.doc.LookupSchema(s.Ref)
		if err != nil {
			return err
		}
		return b.mergeObject(target, props, required, seen)
	}
	for _, sub := range s.AllOf {
		if err := b.mergeObject(sub, props, required, seen); err != nil {
			return err
		}
	}
	for k, v := range s.Properties {
		props[k] = v
	}
	for _, r := range s.Required {
		required[r] = true
	}
	return nil
}

func (b *builder) typeRef(s *openrpc.Schema, hint string) (*TypeRef, error) {
	if s == nil {
		return &TypeRef{Kind: KindAny}, nil
	}

	if s.Ref != "" {
		_, key, err := b.doc.LookupSchema(s.Ref)
		if err != nil {
			return nil, err
		}
		return &TypeRef{Kind: KindRef, Name: b.components[key], Nullable: s.Nullable}, nil
	}

	if variants := append(append([]*openrpc.Schema{}, s.OneOf...), s.AnyOf...); len(variants) > 0 {
		return b.union(variants, s.Nullable, hint)
	}

	if len(s.AllOf) == 1 && len(s.Properties) == 0 {
		t, err := b.typeRef(s.AllOf[0], hint)
		if err != nil {
			return nil, err
		}
		t.Nullable = t.Nullable || s.Nullable
		return t, nil
	}
	if len(s.AllOf) > 0 {
		return b.hoist(hint, s)
	}

	nullable := s.Nullable || s.Type.Has(openrpc.TypeNull)
	types := s.Type.NonNull()

	switch len(types) {
	case 0:
		switch {
		case len(s.Type) > 0:
			return &TypeRef{Kind: KindNull}, nil
		case len(s.Properties) > 0:
			t, err := b.hoist(hint, s)
			if err != nil {
				return nil, err
			}
			t.Nullable = nullable
			return t, nil
		case s.Items != nil:
			return b.single(openrpc.TypeArray, s, nullable, hint)
		}
		if _, ok := stringEnum(s); ok {
			return &TypeRef{Kind: KindString, Nullable: nullable}, nil
		}
		return &TypeRef{Kind: KindAny, Nullable: nullable}, nil
	case 1:
		return b.single(types[0], s, nullable, hint)
	}

	t := &TypeRef{Kind: KindUnion, Nullable: nullable}
	for _, name := range types {
		v, err := b.single(name, s, false, hint)
		if err != nil {
			return nil, err
		}
		t.Variants = append(t.Variants, v)
	}
	return t, nil
}

func (b *builder) single(typ string, s *openrpc.Schema, nullable bool, hint string) (*TypeRef, error) {
	switch typ {
	case openrpc.TypeString:
		return &TypeRef{Kind: KindString, Format: s.Format, Nullable: nullable}, nil
	case openrpc.TypeInteger:
		return &TypeRef{Kind: KindInteger, Format: s.Format, Nullable: nullable}, nil
	case openrpc.TypeNumber:
		return &TypeRef{Kind: KindNumber, Format: s.Format, Nullable: nullable}, nil
	case openrpc.TypeBoolean:
		return &TypeRef{Kind: KindBoolean, Nullable: nullable}, nil
	case openrpc.TypeArray:
		elem, err := b.typeRef(s.Items, hint+"Item")
		if err != nil {
			return nil, err
		}
		return &TypeRef{Kind: KindArray, Elem: elem, Nullable: nullable}, nil
	case openrpc.TypeObject:
		if len(s.Properties) > 0 {
			t, err := b.hoist(hint, s)
			if err != nil {
				return nil, err
			}
			t.Nullable = nullable
			return t, nil
		}
		elem := &TypeRef{Kind: KindAny}
		if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
			var err error
			elem, err = b.typeRef(s.AdditionalProperties.Schema, hint+"Value")
			if err != nil {
				return nil, err
			}
		}
		return &TypeRef{Kind: KindMap, Elem: elem, Nullable: nullable}, nil
	default:
		return nil, fmt.Errorf("unsupported schema type %q", typ)
	}
}

func (b *builder) union(variants []*openrpc.Schema, nullable bool, hint string) (*TypeRef, error) {
	var members []*TypeRef
	for i, v := range variants {
		t, err := b.typeRef(v, hint+"Option"+strconv.Itoa(i+1))
		if err != nil {
			return nil, err
		}
		if t.Kind == KindNull {
			nullable = true
			continue
		}
		members = append(members, t)
	}
	switch len(members) {
	case 0:
		return &TypeRef{Kind: KindNull}, nil
	case 1:
		members[0].Nullable = members[0].Nullable || nullable
		return members[0], nil
	}
	return &TypeRef{Kind: KindUnion, Variants: members, Nullable: nullable}, nil
}

func (b *builder) hoist(hint string, s *openrpc.Schema) (*TypeRef, error) {
	name := b.uniqueName(hint)
	decl, err := b.objectDecl(name, s)
	if err != nil {
		return nil, err
	}
	b.decls = append(b.decls, decl)
	return &TypeRef{Kind: KindRef, Name: name}, nil
}

func (b *builder) uniqueName(hint string) string {
	base := Pascal(hint)
	if base == "" {
		base = "Anonymous"
	}
	name := base
	for i := 2; b.used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	b.used[name] = true
	return name
}

func isObject(s *openrpc.Schema) bool {
	if s == nil || s.Ref != "" || len(s.OneOf) > 0 || len(s.AnyOf) > 0 {
		return false
	}
	if len(s.AllOf) > 1 || (len(s.AllOf) == 1 && len(s.Properties) > 0) {
		return true
	}
	types := s.Type.NonNull()
	if len(types) == 0 {
		return len(s.Properties) > 0
	}
	return len(types) == 1 && types[0] == openrpc.TypeObject && len(s.Properties) > 0
}

func stringEnum(s *openrpc.Schema) ([]string, bool) {
	if s == nil || len(s.Enum) == 0 {
		return nil, false
	}
	if len(s.Type) > 0 && !(len(s.Type) == 1 && s.Type[0] == openrpc.TypeString) {
		return nil, false
	}
	values := make([]string, 0, len(s.Enum))
	for _, v := range s.Enum {
		str, ok := v.(string)
		if !ok {
			return nil, false
		}
		values = append(values, str)
	}
	return values, true
}

func describe(summary, description string) string {
	if description != "" {
		return description
	}
	return summary
}
