package backend

import "strings"

// The backend speaks snake_case on the wire; everything above the client
// speaks camelCase. CamelizeKeys rewrites object keys recursively, leaving
// non-object values untouched. Translating an already-camelCase document is
// a no-op, so the transform is idempotent.
func CamelizeKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[snakeToCamel(k)] = CamelizeKeys(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CamelizeKeys(item)
		}
		return out
	default:
		return v
	}
}

func snakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	wrote := false
	for _, p := range parts {
		if p == "" {
			continue
		}
		if !wrote {
			b.WriteString(p)
			wrote = true
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	if !wrote {
		// Only underscores; leave the key as-is.
		return s
	}
	return b.String()
}
