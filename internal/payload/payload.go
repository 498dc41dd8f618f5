// Package payload reads typed values out of decoded JSON block payloads.
//
// Block attributes arrive as map[string]any trees. Missing keys and values of
// the wrong type read as the zero value so converters can apply their own
// defaults.
package payload

// Map returns m[key] as a map, or nil.
func Map(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

// String returns m[key] as a string, or "".
func String(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

// StringOr returns m[key] as a string, or fallback when absent or empty.
func StringOr(m map[string]any, key, fallback string) string {
	if v := String(m, key); v != "" {
		return v
	}
	return fallback
}

// Bool returns m[key] as a bool, or false.
func Bool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	v, _ := m[key].(bool)
	return v
}

// List returns m[key] as a slice, or nil.
func List(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	v, _ := m[key].([]any)
	return v
}

// Maps converts v into a slice of maps. It accepts []any, []map[string]any and
// a single map; elements that are not maps are dropped.
func Maps(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
