package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMacroMapMissingFile(t *testing.T) {
	cfg := LoadMacroMap("testdata/does-not-exist.yaml")
	assert.Empty(t, cfg.Macros)
}

func TestParseMacroMapBadShapes(t *testing.T) {
	assert.Empty(t, ParseMacroMap([]byte("macros: not-a-list\n")).Macros)
	assert.Empty(t, ParseMacroMap([]byte("- just\n- a\n- list\n")).Macros)
	assert.Empty(t, ParseMacroMap([]byte("")).Macros)
	assert.Empty(t, ParseMacroMap([]byte("{{{bad yaml")).Macros)
}

func TestMapToMacrosConstantAndPath(t *testing.T) {
	cfg := ParseMacroMap([]byte(`
macros:
  - idx: 1
    source:
      path: "filter.cutoff"
      default: 0.0
    mapping:
      in: [0.0, 1.0]
      out: [0, 127]
  - idx: 2
    source:
      constant: 0.25
    mapping:
      in: [0.0, 1.0]
      out: [0, 127]
`))
	vals := MapToMacros(testPatch(), cfg)
	require.Len(t, vals, 8)
	assert.Contains(t, []int{63, 64}, vals[0], "cutoff 0.5")
	assert.Contains(t, []int{31, 32}, vals[1], "constant 0.25")
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, vals[2:])
}

func TestMapToMacrosExprPowInvert(t *testing.T) {
	cfg := ParseMacroMap([]byte(`
macros:
  - idx: 1
    source:
      expr: "0.7*a + 0.3*b"
      vars:
        a: "filter.cutoff"
        b: "env2.decay"
      default: 0.0
    mapping:
      in: [0.0, 1.0]
      out: [0, 127]
      curve: "pow:2.0"
      invert: true
      clamp: true
`))
	// 0.7*0.5 + 0.3*0.25 = 0.425; ^2 = 0.1806; inverted = 0.8194 -> ~104
	vals := MapToMacros(testPatch(), cfg)
	assert.GreaterOrEqual(t, vals[0], 100)
	assert.LessOrEqual(t, vals[0], 108)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, vals[1:])
}

func TestMapToMacrosExprFailureUsesDefault(t *testing.T) {
	cfg := ParseMacroMap([]byte(`
macros:
  - idx: 1
    source:
      expr: "a / b"
      vars:
        a: "filter.cutoff"
        b: "no.such.path"
      default: 0.5
    mapping:
      in: [0.0, 1.0]
      out: [0, 127]
`))
	// b resolves to the entry default 0.5, so the expr evaluates to 1.0
	vals := MapToMacros(testPatch(), cfg)
	assert.Equal(t, 127, vals[0])

	cfg = ParseMacroMap([]byte(`
macros:
  - idx: 1
    source:
      expr: "a +"
      vars:
        a: "filter.cutoff"
      default: 0.25
`))
	// broken expression falls back to the entry default
	vals = MapToMacros(testPatch(), cfg)
	assert.Contains(t, []int{31, 32}, vals[0])
}

func TestMapToMacrosSlotPlacement(t *testing.T) {
	cfg := ParseMacroMap([]byte(`
macros:
  - idx: 0      # zero-based index allowed -> slot 0
    source:
      constant: 1.0
  - idx: 9      # out of range -> first empty slot (slot 1)
    source:
      constant: 0.0
  - source:     # no idx -> next empty slot (slot 2)
      constant: 0.5
  - source:     # no idx -> next empty slot (slot 3)
      constant: 0.5
`))
	vals := MapToMacros(testPatch(), cfg)
	assert.Equal(t, 127, vals[0])
	assert.Equal(t, 0, vals[1])
	assert.Contains(t, []int{63, 64}, vals[2])
	assert.Contains(t, []int{63, 64}, vals[3])
	assert.Equal(t, []int{0, 0, 0, 0}, vals[4:])
}

func TestMapToMacrosNegativeIdxFallsBack(t *testing.T) {
	cfg := ParseMacroMap([]byte(`
macros:
  - idx: -1
    source:
      constant: 1.0
`))
	vals := MapToMacros(testPatch(), cfg)
	assert.Equal(t, 127, vals[0])
}

func TestMapToMacrosMalformedEntrySkipped(t *testing.T) {
	cfg := ParseMacroMap([]byte(`
macros:
  - idx: 1
    source: {constant: 1.0}
  - idx: 2
    source: {constant: 1.0}
  - idx: 3
    source: {constant: 1.0}
  - idx: 4
    source: {constant: 1.0}
  - idx: 5
    source: {constant: 1.0}
  - idx: 6
    source: {constant: 1.0}
  - idx: 7
    source: {constant: 1.0}
  - idx: 8
    source: {constant: 1.0}
  - "not-an-entry"
`))
	vals := MapToMacros(testPatch(), cfg)
	assert.Equal(t, []int{127, 127, 127, 127, 127, 127, 127, 127}, vals)
}

func TestMapToMacrosMalformedRangesUseDefaults(t *testing.T) {
	cfg := ParseMacroMap([]byte(`
macros:
  - idx: 1
    source: {constant: 0.5}
    mapping:
      in: "not-a-range"
      out: [0, 127, 3]
`))
	vals := MapToMacros(testPatch(), cfg)
	assert.Contains(t, []int{63, 64}, vals[0])
}

func TestMapToMacrosClampsToMIDIRange(t *testing.T) {
	cfg := ParseMacroMap([]byte(`
macros:
  - idx: 1
    source: {constant: 1.0}
    mapping:
      out: [0, 500]
  - idx: 2
    source: {constant: 0.0}
    mapping:
      out: [-50, 127]
`))
	vals := MapToMacros(testPatch(), cfg)
	assert.Equal(t, 127, vals[0], "slot values stay MIDI-CC safe")
	assert.Equal(t, 0, vals[1])
}

func TestMapToMacrosEmptyConfigAllZero(t *testing.T) {
	vals := MapToMacros(testPatch(), Config{})
	assert.Equal(t, make([]int, 8), vals)
}

func TestMapToMacrosIdempotent(t *testing.T) {
	cfg := ParseMacroMap([]byte(`
macros:
  - source: {path: "env1.attack"}
  - source: {path: "filter.cutoff"}
    mapping: {curve: "pow:0.5"}
`))
	p := testPatch()
	first := MapToMacros(p, cfg)
	second := MapToMacros(p, cfg)
	assert.Equal(t, first, second)
}
