package midicc

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// MacroCount mirrors the macro engine's slot count; one CC number per slot.
const MacroCount = 8

// DefaultCCAssignments returns the fallback CC numbers 1..8.
func DefaultCCAssignments() []int {
	ccs := make([]int, MacroCount)
	for i := range ccs {
		ccs[i] = i + 1
	}
	return ccs
}

// LoadCCAssignments reads the CC numbers for the 8 macros from the macro
// map YAML. Two shapes are understood: a top-level `cc` list of at least 8
// numbers, or per-entry `idx`+`cc` pairs inside the `macros` list. Anything
// missing or malformed falls back to CC 1..8.
func LoadCCAssignments(path string) []int {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultCCAssignments()
	}
	return ParseCCAssignments(data)
}

// ParseCCAssignments is LoadCCAssignments over raw YAML bytes.
func ParseCCAssignments(data []byte) []int {
	fallback := DefaultCCAssignments()

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Printf("failed to parse CC assignments: %v", err)
		return fallback
	}
	top, ok := doc.(map[string]any)
	if !ok {
		return fallback
	}

	// Option A: cc: [1, 2, ... 8]
	if cc, ok := top["cc"].([]any); ok && len(cc) >= MacroCount {
		out := make([]int, MacroCount)
		for i := 0; i < MacroCount; i++ {
			n, ok := cc[i].(int)
			if !ok {
				return fallback
			}
			out[i] = n
		}
		return out
	}

	// Option B: per-entry idx + cc inside the macros list.
	macros, ok := top["macros"].([]any)
	if !ok {
		return fallback
	}
	out := DefaultCCAssignments()
	for _, raw := range macros {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		idx, okIdx := entry["idx"].(int)
		cc, okCC := entry["cc"].(int)
		if !okIdx || !okCC {
			continue
		}
		switch {
		case idx >= 1 && idx <= MacroCount:
			out[idx-1] = cc
		case idx >= 0 && idx < MacroCount:
			out[idx] = cc
		}
	}
	return out
}
