package services

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

type FieldDefault struct {
	Key     string
	Default string
}

// ResponseSchema names the string fields expected in a model reply.
type ResponseSchema struct {
	Name          string
	Fields        []FieldDefault
	ListDelimiter string // joins array values; ", " when empty
}

// Normalize turns a free-form model reply into a fully keyed field map.
// It tries a strict JSON parse, then the outermost {...} span, then a
// per-field pattern match, and finally the schema defaults. degraded is
// true when any field fell back to its default.
func Normalize(raw string, schema ResponseSchema) (map[string]string, bool) {
	delim := schema.ListDelimiter
	if delim == "" {
		delim = ", "
	}
	out := make(map[string]string, len(schema.Fields))

	text := strings.TrimSpace(raw)
	if obj, ok := parseObject(text); ok {
		collect(obj, schema.Fields, delim, out)
	}
	if len(out) < len(schema.Fields) {
		if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
			if obj, ok := parseObject(text[start : end+1]); ok {
				collect(obj, schema.Fields, delim, out)
			}
		}
	}

	degraded := false
	for _, f := range schema.Fields {
		if _, ok := out[f.Key]; ok {
			continue
		}
		if v, ok := matchField(raw, f.Key); ok {
			out[f.Key] = v
			continue
		}
		out[f.Key] = f.Default
		degraded = true
	}
	return out, degraded
}

func parseObject(s string) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// collect fills keys not yet resolved from a parsed object.
func collect(obj map[string]json.RawMessage, fields []FieldDefault, delim string, out map[string]string) {
	for _, f := range fields {
		if _, done := out[f.Key]; done {
			continue
		}
		if v, ok := coerce(obj[f.Key], delim); ok {
			out[f.Key] = v
		}
	}
}

// coerce renders a JSON value as text. Missing and null values report false.
func coerce(raw json.RawMessage, delim string) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", false
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := coerce(item, delim); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, delim), true
	case '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", false
		}
		return buf.String(), true
	default:
		return string(raw), true
	}
}

// matchField finds the first "key": "value" pair anywhere in text.
func matchField(text, key string) (string, bool) {
	re, err := regexp.Compile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &s); err != nil {
		return m[1], true
	}
	return s, true
}
