package openrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON Schema primitive type names.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	TypeNull    = "null"
)

// Schema is the subset of JSON Schema that ocg understands.
type Schema struct {
	Ref                  string                `json:"$ref,omitempty"`
	Type                 Types                 `json:"type,omitempty"`
	Format               string                `json:"format,omitempty"`
	Title                string                `json:"title,omitempty"`
	Description          string                `json:"description,omitempty"`
	Properties           map[string]*Schema    `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	Items                *Schema               `json:"items,omitempty"`
	AdditionalProperties *AdditionalProperties `json:"additionalProperties,omitempty"`
	Enum                 []any                 `json:"enum,omitempty"`
	Const                any                   `json:"const,omitempty"`
	OneOf                []*Schema             `json:"oneOf,omitempty"`
	AnyOf                []*Schema             `json:"anyOf,omitempty"`
	AllOf                []*Schema             `json:"allOf,omitempty"`
	Nullable             bool                  `json:"nullable,omitempty"`
	Default              any                   `json:"default,omitempty"`
}

// IsRequired reports whether the named property is listed in Required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Types is the JSON Schema "type" keyword. It decodes from either a single
// string or a list of strings.
type Types []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Types) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*t = Types{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("schema type must be a string or a list of strings: %w", err)
	}
	*t = many
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Types) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Has reports whether name is one of the listed types.
func (t Types) Has(name string) bool {
	for _, v := range t {
		if v == name {
			return true
		}
	}
	return false
}

// NonNull returns the listed types without "null".
func (t Types) NonNull() []string {
	out := make([]string, 0, len(t))
	for _, v := range t {
		if v != TypeNull {
			out = append(out, v)
		}
	}
	return out
}

// AdditionalProperties is either a boolean or a schema.
type AdditionalProperties struct {
	Allowed bool
	Schema  *Schema
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AdditionalProperties) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "true":
		*a = AdditionalProperties{Allowed: true}
		return nil
	case "false":
		*a = AdditionalProperties{Allowed: false}
		return nil
	}
	var s Schema
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("additionalProperties must be a boolean or a schema: %w", err)
	}
	*a = AdditionalProperties{Allowed: true, Schema: &s}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a AdditionalProperties) MarshalJSON() ([]byte, error) {
	if a.Schema != nil {
		return json.Marshal(a.Schema)
	}
	return json.Marshal(a.Allowed)
}
