package payload

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// fields is a JSON object whose keys are normalized so that "dataClasses",
// "DataClasses" and "data_classes" are the same key.
type fields map[string]json.RawMessage

// normalizeKey lowercases k and drops separators.
func normalizeKey(k string) string {
	var sb strings.Builder
	sb.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// parseObject decodes raw as an object. Keys colliding after normalization
// keep the value of the lexically first original key.
func parseObject(raw json.RawMessage) (fields, bool) {
	if isNull(raw) {
		return nil, false
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := make(fields, len(m))
	for _, k := range keys {
		nk := normalizeKey(k)
		if _, ok := f[nk]; ok {
			continue
		}
		f[nk] = m[k]
	}
	return f, true
}

// parseArray decodes raw as an array.
func parseArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	if isNull(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// get returns the first non-null value among names.
func (f fields) get(names ...string) (json.RawMessage, bool) {
	for _, name := range names {
		if raw, ok := f[name]; ok && !isNull(raw) {
			return raw, true
		}
	}
	return nil, false
}

// has reports whether any of names is present and non-null.
func (f fields) has(names ...string) bool {
	_, ok := f.get(names...)
	return ok
}

// str returns the first of names that renders as text.
func (f fields) str(names ...string) string {
	for _, name := range names {
		raw, ok := f[name]
		if !ok {
			continue
		}
		if s := text(raw); s != "" {
			return s
		}
	}
	return ""
}

// object returns the first of names holding an object.
func (f fields) object(names ...string) (fields, bool) {
	for _, name := range names {
		raw, ok := f[name]
		if !ok {
			continue
		}
		if obj, ok := parseObject(raw); ok {
			return obj, true
		}
	}
	return nil, false
}

// list returns the first of names holding an array.
func (f fields) list(names ...string) []json.RawMessage {
	for _, name := range names {
		raw, ok := f[name]
		if !ok {
			continue
		}
		if items, ok := parseArray(raw); ok {
			return items
		}
	}
	return nil
}

// strs returns the first of names as a list of strings. A single string
// becomes a one-element list.
func (f fields) strs(names ...string) []string {
	for _, name := range names {
		raw, ok := f[name]
		if !ok || isNull(raw) {
			continue
		}
		if items, ok := parseArray(raw); ok {
			out := make([]string, 0, len(items))
			for _, item := range items {
				if s := text(item); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
		if s := text(raw); s != "" {
			return []string{s}
		}
	}
	return nil
}

// boolean returns the first of names that reads as a truth value.
// Numbers are true when non-zero; strings accept true/yes/1.
func (f fields) boolean(names ...string) (bool, bool) {
	for _, name := range names {
		raw, ok := f[name]
		if !ok || isNull(raw) {
			continue
		}

		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b, true
		}
		if n, ok := number(raw); ok {
			return n != 0, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true", "yes", "1":
				return true, true
			case "false", "no", "0":
				return false, true
			}
		}
	}
	return false, false
}

// integer returns the first of names that reads as a number.
func (f fields) integer(names ...string) (int, bool) {
	for _, name := range names {
		raw, ok := f[name]
		if !ok || isNull(raw) {
			continue
		}
		if n, ok := number(raw); ok {
			return int(n), true
		}
	}
	return 0, false
}

// number reads a JSON number or a numeric string.
func number(raw json.RawMessage) (float64, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// text renders a scalar as a trimmed string. Objects contribute their
// name, value or text field; arrays and booleans render as empty.
func text(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	if obj, ok := parseObject(raw); ok {
		return obj.str("name", "value", "text", "url")
	}
	return ""
}

// freeText renders raw as text, falling back to compact JSON for objects
// and arrays so that narrative fields keep their content.
func freeText(raw json.RawMessage) string {
	if s := text(raw); s != "" {
		if _, isObj := parseObject(raw); !isObj {
			return s
		}
	}
	if isNull(raw) {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

// looksLikeURL reports whether s is a URL or a bare domain path.
func looksLikeURL(s string) bool {
	if strings.Contains(s, "://") {
		return true
	}
	host, _, _ := strings.Cut(s, "/")
	return strings.Contains(host, ".") && !strings.ContainsAny(host, " @")
}
