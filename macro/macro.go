// Package macro turns a nested patch document into the 8 macro values that
// drive the synth's control surface.
//
// The mapping is configuration driven: each entry of the macro map names a
// source (a constant, a path into the patch document, or an arithmetic
// expression over resolved paths), a response mapping, and a target slot.
// The engine never fails; every per-entry problem degrades to that entry's
// default so a live performance is never interrupted by a bad config.
package macro

import (
	"log"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// MacroCount is the number of control-surface macros, each dispatched as one
// MIDI CC value in [0,127].
const MacroCount = 8

// Config is a loaded macro map. Entries keep their file order; order is
// significant because unaddressed entries fill the first still-empty slot.
type Config struct {
	Macros []any
}

// LoadMacroMap reads a macro map YAML file. A missing file, a non-mapping
// top level, or a `macros` key that is not a list all degrade to an empty
// config (and thus all-zero macros) with a logged warning.
func LoadMacroMap(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("macro map %s not found; using defaults: %v", path, err)
		return Config{}
	}
	return ParseMacroMap(data)
}

// ParseMacroMap is LoadMacroMap over raw YAML bytes.
func ParseMacroMap(data []byte) Config {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Printf("failed to parse macro map: %v", err)
		return Config{}
	}
	top, ok := doc.(map[string]any)
	if !ok {
		if doc != nil {
			log.Printf("macro map top level must be a mapping")
		}
		return Config{}
	}
	macros, ok := top["macros"].([]any)
	if !ok {
		if top["macros"] != nil {
			log.Printf("macro map `macros` must be a list")
		}
		return Config{}
	}
	return Config{Macros: macros}
}

// MapToMacros computes the 8 macro values for a patch document. It never
// fails: malformed entries are skipped, unresolvable sources fall back to
// their entry default, and unassigned slots report 0. Neither input is
// mutated, so the call is safe from concurrent goroutines.
func MapToMacros(patch any, cfg Config) []int {
	values := make([]*int, MacroCount)

	for _, raw := range cfg.Macros {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		source, _ := entry["source"].(map[string]any)
		mapping, _ := entry["mapping"].(map[string]any)

		defVal := coerceFloat(source["default"], 0.0)
		srcVal := sourceValue(patch, source, defVal, entry["idx"])

		inMin, inMax := rangeSpec(mapping["in"], 0, 1)
		outMin, outMax := rangeSpec(mapping["out"], 0, 127)
		curve := cast.ToString(mapping["curve"])
		invert := cast.ToBool(mapping["invert"])
		clamp := true
		if c, ok := mapping["clamp"]; ok {
			clamp = cast.ToBool(c)
		}

		val := MapValue(srcVal, inMin, inMax, outMin, outMax, curve, invert, clamp)
		place(values, val, entry["idx"])
	}

	out := make([]int, MacroCount)
	for i, v := range values {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}

// sourceValue resolves one entry's source scalar. Exactly one of constant,
// expr+vars or path is honored, in that order; anything that goes wrong
// yields defVal.
func sourceValue(patch any, source map[string]any, defVal float64, idx any) float64 {
	if c, ok := source["constant"]; ok {
		return coerceFloat(c, defVal)
	}
	exprRaw, hasExpr := source["expr"]
	varsRaw, hasVars := source["vars"].(map[string]any)
	if hasExpr && hasVars {
		vars := make(map[string]float64, len(varsRaw))
		for name, p := range varsRaw {
			vars[name] = Resolve(patch, cast.ToString(p), defVal)
		}
		v, err := Eval(cast.ToString(exprRaw), vars)
		if err != nil {
			log.Printf("macro idx=%v: %v; using default", idx, err)
			return defVal
		}
		return v
	}
	if p, ok := source["path"]; ok {
		return Resolve(patch, cast.ToString(p), defVal)
	}
	return defVal
}

// rangeSpec reads a 2-element numeric range, falling back to the documented
// default when the spec is malformed.
func rangeSpec(v any, defMin, defMax float64) (float64, float64) {
	seq, ok := v.([]any)
	if !ok || len(seq) != 2 {
		return defMin, defMax
	}
	lo, err1 := cast.ToFloat64E(seq[0])
	hi, err2 := cast.ToFloat64E(seq[1])
	if err1 != nil || err2 != nil {
		return defMin, defMax
	}
	return lo, hi
}

// place stores val into its slot, clamped to the MIDI CC range. A 1-based
// idx in [1,8] wins, then a 0-based idx in [0,7]; otherwise the first empty
// slot is used (slot 0 when all are taken).
func place(values []*int, val int, idx any) {
	slot := -1
	if i, ok := idx.(int); ok {
		switch {
		case i >= 1 && i <= MacroCount:
			slot = i - 1
		case i >= 0 && i < MacroCount:
			slot = i
		}
	}
	if slot < 0 {
		slot = 0
		for i, v := range values {
			if v == nil {
				slot = i
				break
			}
		}
	}
	v := min(127, max(0, val))
	values[slot] = &v
}

// coerceFloat converts any scalar to float64 with a fallback, tolerating
// strings and ints the way YAML and JSON hand them over.
func coerceFloat(v any, def float64) float64 {
	if v == nil {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}
