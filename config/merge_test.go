package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]any
		override map[string]any
		want     map[string]any
	}{
		{
			name:     "nested mappings merge recursively",
			base:     map[string]any{"a": map[string]any{"b": 1, "c": 2}},
			override: map[string]any{"a": map[string]any{"b": 9}},
			want:     map[string]any{"a": map[string]any{"b": 9, "c": 2}},
		},
		{
			name:     "scalar replaces mapping",
			base:     map[string]any{"a": map[string]any{"b": 1}},
			override: map[string]any{"a": 5},
			want:     map[string]any{"a": 5},
		},
		{
			name:     "mapping replaces scalar",
			base:     map[string]any{"a": 5},
			override: map[string]any{"a": map[string]any{"b": 1}},
			want:     map[string]any{"a": map[string]any{"b": 1}},
		},
		{
			name:     "lists are replaced not merged",
			base:     map[string]any{"pairs": []any{"EURUSD", "GBPUSD"}},
			override: map[string]any{"pairs": []any{"USDJPY"}},
			want:     map[string]any{"pairs": []any{"USDJPY"}},
		},
		{
			name:     "keys from either side pass through",
			base:     map[string]any{"a": 1},
			override: map[string]any{"b": 2},
			want:     map[string]any{"a": 1, "b": 2},
		},
		{
			name:     "deep type mismatch resolves to override",
			base:     map[string]any{"x": map[string]any{"y": map[string]any{"z": map[string]any{"k": 1}}}},
			override: map[string]any{"x": map[string]any{"y": map[string]any{"z": []any{1, 2}}}},
			want:     map[string]any{"x": map[string]any{"y": map[string]any{"z": []any{1, 2}}}},
		},
		{
			name:     "null override replaces value",
			base:     map[string]any{"a": map[string]any{"b": 1}},
			override: map[string]any{"a": nil},
			want:     map[string]any{"a": nil},
		},
		{
			name:     "nil inputs",
			base:     nil,
			override: nil,
			want:     map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.base, tt.override))
		})
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	base := map[string]any{"a": map[string]any{"b": 1, "c": 2}}
	override := map[string]any{"a": map[string]any{"b": 9}}

	merged := Merge(base, override)
	merged["a"].(map[string]any)["c"] = 100

	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": 2}}, base)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 9}}, override)
}

// document draws a nested mapping of bounded depth.
func document(depth int) *rapid.Generator[map[string]any] {
	return rapid.Custom(func(t *rapid.T) map[string]any {
		keys := rapid.SliceOfDistinct(rapid.SampledFrom([]string{"a", "b", "c", "d", "e"}), rapid.ID[string]).Draw(t, "keys")
		doc := make(map[string]any, len(keys))
		for _, k := range keys {
			choice := rapid.IntRange(0, 3).Draw(t, "kind")
			if depth == 0 && choice == 3 {
				choice = 0
			}
			switch choice {
			case 0:
				doc[k] = rapid.Int().Draw(t, "int")
			case 1:
				doc[k] = rapid.String().Draw(t, "str")
			case 2:
				doc[k] = []any{rapid.Int().Draw(t, "item")}
			case 3:
				doc[k] = document(depth-1).Draw(t, "nested")
			}
		}
		return doc
	})
}

func TestMergeProperties(t *testing.T) {
	t.Run("empty override is identity", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			base := document(3).Draw(t, "base")
			assert.Equal(t, base, Merge(base, map[string]any{}))
		})
	})

	t.Run("empty base yields override", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			override := document(3).Draw(t, "override")
			assert.Equal(t, override, Merge(map[string]any{}, override))
		})
	})

	t.Run("every top-level key survives", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			base := document(2).Draw(t, "base")
			override := document(2).Draw(t, "override")
			merged := Merge(base, override)
			for k := range base {
				assert.Contains(t, merged, k)
			}
			for k, v := range override {
				if _, isMap := v.(map[string]any); !isMap {
					assert.Equal(t, v, merged[k])
				}
			}
		})
	})

	t.Run("merging with itself is stable", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			doc := document(3).Draw(t, "doc")
			assert.Equal(t, doc, Merge(doc, doc))
		})
	})
}
