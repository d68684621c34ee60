package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPatch() map[string]any {
	return map[string]any{
		"name": "TEST",
		"env1": map[string]any{"attack": 0.01, "decay": 0.15, "sustain": 0.8, "release": 0.15},
		"env2": map[string]any{"attack": 0.02, "decay": 0.25, "sustain": 0.4, "release": 0.2},
		"filter": map[string]any{
			"type": "lowpass4", "cutoff": 0.5, "res": 0.2, "drive": 0.0, "mix": 1.0,
		},
		"osc": []any{
			map[string]any{"wave": "saw", "wt_pos": 0.5, "transpose": 0, "detune": 0.0, "amp": 0.8},
			map[string]any{"wave": "square", "wt_pos": 0.5, "transpose": 0, "detune": 0.0, "amp": 0.7},
			map[string]any{"wave": "sine", "wt_pos": 0.0, "transpose": 0, "detune": 0.0, "amp": 0.0},
		},
		"meta": map[string]any{"tags": []any{"unit"}, "key": nil, "tempo": nil},
	}
}

func TestResolveBasic(t *testing.T) {
	p := testPatch()

	tests := []struct {
		path string
		want float64
	}{
		{"env1.attack", 0.01},
		{"filter.cutoff", 0.5},
		{"osc.0.amp", 0.8},
		{"osc[1].wt_pos", 0.5},
		{"osc[2].amp", 0.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Resolve(p, tt.path, -1), 1e-9, "path %s", tt.path)
	}
}

func TestResolveMissingReturnsDefault(t *testing.T) {
	p := testPatch()

	assert.Equal(t, 0.42, Resolve(p, "does.not.exist", 0.42))
	assert.Equal(t, 0.42, Resolve(p, "osc[9].amp", 0.42))
	assert.Equal(t, 0.42, Resolve(p, "osc[x].amp", 0.42))
	assert.Equal(t, 0.42, Resolve(p, "env1.attack.deeper", 0.42))
	assert.Equal(t, 0.42, Resolve(p, "", 0.42))

	// non-numeric leaf falls back too
	wrong := map[string]any{"x": map[string]any{"y": "not-a-number"}}
	assert.Equal(t, 0.1, Resolve(wrong, "x.y", 0.1))
}

func TestResolveCoercesStringsAndInts(t *testing.T) {
	doc := map[string]any{
		"a": " 0.5 ",
		"b": 3,
		"c": int64(7),
		"d": true,
	}
	assert.Equal(t, 0.5, Resolve(doc, "a", -1))
	assert.Equal(t, 3.0, Resolve(doc, "b", -1))
	assert.Equal(t, 7.0, Resolve(doc, "c", -1))
	assert.Equal(t, -1.0, Resolve(doc, "d", -1), "bool is not numeric")
}

func TestResolveMultiDimensionalBrackets(t *testing.T) {
	doc := map[string]any{
		"grid": []any{
			[]any{1.0, 2.0},
			[]any{3.0, 4.0},
		},
	}
	assert.Equal(t, 4.0, Resolve(doc, "grid[1][1]", -1))
	assert.Equal(t, 2.0, Resolve(doc, "grid[0][1]", -1))
	assert.Equal(t, -1.0, Resolve(doc, "grid[0][2]", -1))
}
