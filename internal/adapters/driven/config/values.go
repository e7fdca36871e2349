// Package config holds the value conversions shared by the config stores.
//
// Stores keep settings as a flat map of dot-separated keys
// ("notion.database_id", "mapping.columns.French"). Values arrive either
// from TOML, where integers are int64 and arrays are []any, or from code.
package config

import "strings"

// String returns v as a string, or "" for any other type.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int returns v as an int. Floats are truncated.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Float returns v as a float64.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// Bool returns v as a bool, or false for any other type.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// StringSlice returns the string elements of v. Non-string elements are skipped.
func StringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// StringMap collects the string values under prefix, keyed by the rest of
// the key. Column names may contain dots, so the rest is kept whole.
// It returns nil when nothing is set under prefix.
func StringMap(data map[string]any, prefix string) map[string]string {
	var out map[string]string
	for key, val := range data {
		name, ok := strings.CutPrefix(key, prefix+".")
		if !ok || name == "" {
			continue
		}
		s, ok := val.(string)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[name] = s
	}
	return out
}

// Flatten turns nested tables into dot-separated keys.
func Flatten(tables map[string]any) map[string]any {
	flat := make(map[string]any)
	flatten(flat, tables, "")
	return flat
}

func flatten(dst, tables map[string]any, prefix string) {
	for key, value := range tables {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(dst, nested, key)
			continue
		}
		dst[key] = value
	}
}
