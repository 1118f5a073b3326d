package vdom

import (
	"sort"
	"strings"
)

// NormalizeClass collapses the supported class binding forms into a single
// space-joined string:
//
//   - string: used as-is (trimmed)
//   - []any: each entry normalized recursively and joined
//   - map[string]bool: keys with true values, in sorted order
func NormalizeClass(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []string:
		return strings.TrimSpace(strings.Join(v, " "))
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := NormalizeClass(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]bool:
		parts := make([]string, 0, len(v))
		for name, on := range v {
			if on {
				parts = append(parts, name)
			}
		}
		sort.Strings(parts)
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// NormalizeStyle collapses the supported style binding forms into a
// key-value mapping:
//
//   - map[string]string / map[string]any: used directly
//   - string: parsed as ";"-separated declarations; declarations without
//     a ":" are dropped rather than erroring
//   - []any: entries normalized recursively and merged, later wins
func NormalizeStyle(value any) map[string]string {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[strings.TrimSpace(k)] = strings.TrimSpace(val)
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[strings.TrimSpace(k)] = strings.TrimSpace(s)
			}
		}
		return out
	case string:
		return parseStyleString(v)
	case []any:
		var out map[string]string
		for _, item := range v {
			m := NormalizeStyle(item)
			if len(m) == 0 {
				continue
			}
			if out == nil {
				out = make(map[string]string, len(m))
			}
			for k, val := range m {
				out[k] = val
			}
		}
		return out
	default:
		return nil
	}
}

func parseStyleString(s string) map[string]string {
	var out map[string]string
	for _, decl := range strings.Split(s, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		key, val, ok := strings.Cut(decl, ":")
		if !ok {
			// Malformed declaration; drop it.
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if key == "" || val == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[key] = val
	}
	return out
}

// StyleToString renders a normalized style mapping as a deterministic
// ";"-separated string, for backends that store styles as one attribute.
func StyleToString(style map[string]string) string {
	if len(style) == 0 {
		return ""
	}
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(style[k])
	}
	return b.String()
}
