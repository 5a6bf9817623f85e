package clientgen

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Quote returns s as a double-quoted string literal using JSON escapes.
// The result is a valid literal in Python, TypeScript, and TOML.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Lines splits free text into trimmed lines for use in comments. Leading and
// trailing blank lines are dropped.
func Lines(s string) []string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return lines
}

// Header is the first comment line of every generated file.
func Header(m *Model) string {
	title := strings.Join(strings.Fields(m.Title+" "+m.Version), " ")
	return "Code generated by ocg from " + title + ". DO NOT EDIT."
}
