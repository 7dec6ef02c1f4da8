package config

import (
	"strings"

	"github.com/knadh/koanf/maps"
)

// Merge deep merges override on top of base. When both sides hold a mapping
// at the same key the mappings are merged recursively; in every other case
// the override value replaces the base value, lists included. Neither input
// is modified.
func Merge(base, override map[string]any) map[string]any {
	result := cloneValue(base).(map[string]any)
	maps.Merge(cloneValue(override).(map[string]any), result)
	return result
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// lookup walks a dotted path through nested mappings.
func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
