// Package gen builds batches of musically-constrained random patches from a
// YAML recipe. Each recipe entry names a flavor (lead, bass, pad, pluck), a
// count, an optional seed for reproducible batches, and optional dotted-path
// overrides applied after generation.
package gen

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"massivectl/patch"
)

type flavorFunc func(rng *rand.Rand, name string, key *string, tempo *float64) *patch.Patch

var flavors = map[string]flavorFunc{
	"lead":  genLead,
	"bass":  genBass,
	"pad":   genPad,
	"pluck": genPluck,
}

// FromRecipe reads a recipe YAML file and returns the generated patch
// documents, ready for the store.
func FromRecipe(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("recipe not found: %w", err)
	}
	return FromRecipeBytes(data)
}

// FromRecipeBytes generates patches from raw recipe YAML. The recipe is
// either a top-level list of entries or a mapping with a `generators` list.
// An empty recipe degrades to a single default lead.
func FromRecipeBytes(data []byte) ([]map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}

	entries := normalizeEntries(doc)
	if len(entries) == 0 {
		entries = []map[string]any{{"type": "lead", "count": 1, "name_prefix": "LD"}}
	}

	var patches []map[string]any
	for _, entry := range entries {
		kind := strings.ToLower(cast.ToString(entry["type"]))
		if kind == "" {
			kind = "lead"
		}
		count := max(1, cast.ToInt(entry["count"]))
		prefix := cast.ToString(entry["name_prefix"])
		if prefix == "" {
			prefix = strings.ToUpper(kind)
		}
		var key *string
		if k := cast.ToString(entry["key"]); k != "" {
			key = &k
		}
		var tempo *float64
		if t, err := cast.ToFloat64E(entry["tempo"]); err == nil && entry["tempo"] != nil {
			tempo = &t
		}
		overrides, _ := entry["overrides"].(map[string]any)
		rng := newRNG(entry["seed"])

		gen, ok := flavors[kind]
		if !ok {
			gen = genLead
		}

		for i := 1; i <= count; i++ {
			p := gen(rng, fmt.Sprintf("%s_%04d", prefix, i), key, tempo)
			doc, err := p.ToMap()
			if err != nil {
				return nil, fmt.Errorf("failed to render patch %s: %w", p.Name, err)
			}
			applyOverrides(doc, overrides, rng)
			patches = append(patches, doc)
		}
	}
	return patches, nil
}

func normalizeEntries(doc any) []map[string]any {
	var raw []any
	switch d := doc.(type) {
	case []any:
		raw = d
	case map[string]any:
		raw, _ = d["generators"].([]any)
	}
	var entries []map[string]any
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			entries = append(entries, m)
		}
	}
	return entries
}

// newRNG builds the per-entry source. An integer seed is used directly, a
// string seed is hashed (FNV-1a) so names make stable seeds, no seed means a
// time-based one.
func newRNG(seed any) *rand.Rand {
	switch s := seed.(type) {
	case nil:
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	case int:
		return rand.New(rand.NewSource(int64(s)))
	default:
		h := fnv.New64a()
		h.Write([]byte(cast.ToString(s)))
		return rand.New(rand.NewSource(int64(h.Sum64())))
	}
}

// applyOverrides writes recipe overrides into the generated document. A
// 2-element list is sampled uniformly as a range; anything else is set
// verbatim. Intermediate maps are created as needed. Paths are applied in
// sorted order so a seeded batch stays reproducible.
func applyOverrides(doc map[string]any, overrides map[string]any, rng *rand.Rand) {
	paths := make([]string, 0, len(overrides))
	for p := range overrides {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		spec := overrides[path]
		if pair, ok := spec.([]any); ok && len(pair) == 2 {
			lo := cast.ToFloat64(pair[0])
			hi := cast.ToFloat64(pair[1])
			setDotted(doc, path, lo+rng.Float64()*(hi-lo))
			continue
		}
		setDotted(doc, path, spec)
	}
}

func setDotted(doc map[string]any, dotted string, value any) {
	parts := strings.Split(dotted, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		if p == "" {
			continue
		}
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// --- flavors ---------------------------------------------------------------

var harmonicWaves = weightedWaves{
	names:   []string{"saw", "square", "wavetable", "triangle"},
	weights: []float64{0.5, 0.3, 0.15, 0.05},
}

var softWaves = weightedWaves{
	names:   []string{"sine", "triangle", "saw", "square"},
	weights: []float64{0.5, 0.3, 0.15, 0.05},
}

var anyWaves = weightedWaves{
	names:   []string{"saw", "square", "sine", "triangle", "wavetable", "noise"},
	weights: []float64{0.45, 0.25, 0.1, 0.08, 0.07, 0.05},
}

type weightedWaves struct {
	names   []string
	weights []float64
}

func (w weightedWaves) pick(rng *rand.Rand) string {
	x := rng.Float64()
	acc := 0.0
	for i, name := range w.names {
		acc += w.weights[i]
		if x <= acc {
			return name
		}
	}
	return w.names[len(w.names)-1]
}

func base(name, tag string, key *string, tempo *float64) *patch.Patch {
	p := patch.Default(name)
	p.Meta.Tags = []string{tag}
	p.Meta.Key = key
	p.Meta.Tempo = tempo
	return p
}

func genLead(rng *rand.Rand, name string, key *string, tempo *float64) *patch.Patch {
	p := base(name, "lead", key, tempo)
	p.Osc[0].Wave = harmonicWaves.pick(rng)
	p.Osc[1].Wave = harmonicWaves.pick(rng)
	p.Osc[0].Detune = round4(uniform(rng, 0.01, 0.08))
	p.Osc[1].Detune = round4(uniform(rng, 0.01, 0.12))
	p.Osc[2].Amp = 0.0
	p.Filter.Cutoff = round4(uniform(rng, 0.55, 0.95))
	p.Filter.Res = round4(uniform(rng, 0.05, 0.25))
	p.Env1 = patch.Envelope{
		Attack:  round4(uniform(rng, 0.001, 0.02)),
		Decay:   round4(uniform(rng, 0.1, 0.25)),
		Sustain: round4(uniform(rng, 0.6, 0.9)),
		Release: round4(uniform(rng, 0.05, 0.2)),
	}
	p.Env2 = patch.Envelope{
		Decay:   round4(uniform(rng, 0.05, 0.25)),
		Sustain: round4(uniform(rng, 0.0, 0.2)),
		Release: round4(uniform(rng, 0.05, 0.2)),
	}
	p.Mod.Env2ToCutoff = round4(uniform(rng, 0.2, 0.7))
	p.FX.Reverb.Mix = round4(uniform(rng, 0.05, 0.2))
	p.FX.Delay.Mix = round4(uniform(rng, 0.05, 0.25))
	p.LFO1.Amount = round4(uniform(rng, 0.0, 0.25))
	return p
}

func genBass(rng *rand.Rand, name string, key *string, tempo *float64) *patch.Patch {
	p := base(name, "bass", key, tempo)
	p.Osc[0].Wave = harmonicWaves.pick(rng)
	p.Osc[1].Wave = harmonicWaves.pick(rng)
	if rng.Float64() < 0.8 {
		p.Osc[0].Transpose = -12
	}
	if rng.Float64() < 0.5 {
		p.Osc[1].Transpose = -12
	}
	p.Osc[0].Detune = round4(uniform(rng, 0.0, 0.03))
	p.Osc[1].Detune = round4(uniform(rng, 0.0, 0.05))
	p.Filter.Cutoff = round4(uniform(rng, 0.15, 0.45))
	p.Filter.Res = round4(uniform(rng, 0.1, 0.35))
	p.Filter.Drive = round4(uniform(rng, 0.0, 0.4))
	p.Env1 = patch.Envelope{
		Attack:  round4(uniform(rng, 0.001, 0.01)),
		Decay:   round4(uniform(rng, 0.05, 0.18)),
		Sustain: round4(uniform(rng, 0.6, 0.95)),
		Release: round4(uniform(rng, 0.04, 0.12)),
	}
	p.Env2 = patch.Envelope{
		Decay:   round4(uniform(rng, 0.05, 0.2)),
		Sustain: round4(uniform(rng, 0.0, 0.2)),
		Release: round4(uniform(rng, 0.05, 0.15)),
	}
	p.Mod.Env2ToCutoff = round4(uniform(rng, 0.3, 0.9))
	p.FX.Reverb.Mix = 0.0
	p.FX.Delay.Mix = 0.0
	p.LFO1.Amount = round4(uniform(rng, 0.0, 0.15))
	return p
}

func genPad(rng *rand.Rand, name string, key *string, tempo *float64) *patch.Patch {
	p := base(name, "pad", key, tempo)
	for i := 0; i < 2; i++ {
		p.Osc[i].Wave = softWaves.pick(rng)
		p.Osc[i].Detune = round4(uniform(rng, 0.02, 0.12))
	}
	p.Osc[2].Wave = "sine"
	p.Osc[2].Amp = round4(uniform(rng, 0.1, 0.4))
	p.Filter.Type = "lowpass2"
	p.Filter.Cutoff = round4(uniform(rng, 0.25, 0.6))
	p.Filter.Res = round4(uniform(rng, 0.05, 0.2))
	p.Env1 = patch.Envelope{
		Attack:  round4(uniform(rng, 0.2, 1.2)),
		Decay:   round4(uniform(rng, 0.5, 1.5)),
		Sustain: round4(uniform(rng, 0.6, 0.95)),
		Release: round4(uniform(rng, 0.8, 2.5)),
	}
	p.Env2 = patch.Envelope{
		Attack:  round4(uniform(rng, 0.1, 0.5)),
		Decay:   round4(uniform(rng, 0.6, 1.8)),
		Sustain: round4(uniform(rng, 0.5, 0.9)),
		Release: round4(uniform(rng, 0.8, 2.0)),
	}
	p.Mod.Env2ToCutoff = round4(uniform(rng, 0.1, 0.5))
	p.FX.Reverb.Mix = round4(uniform(rng, 0.2, 0.6))
	p.FX.Reverb.Size = round4(uniform(rng, 0.5, 0.9))
	p.FX.Chorus.Mix = round4(uniform(rng, 0.15, 0.5))
	p.FX.Delay.Mix = round4(uniform(rng, 0.05, 0.25))
	p.LFO1.Amount = round4(uniform(rng, 0.0, 0.35))
	p.LFO1.Rate = round4(uniform(rng, 0.05, 0.35))
	return p
}

func genPluck(rng *rand.Rand, name string, key *string, tempo *float64) *patch.Patch {
	p := base(name, "pluck", key, tempo)
	p.Osc[0].Wave = anyWaves.pick(rng)
	p.Osc[1].Wave = anyWaves.pick(rng)
	p.Osc[0].Detune = round4(uniform(rng, 0.0, 0.05))
	p.Osc[1].Detune = round4(uniform(rng, 0.0, 0.08))
	p.Env1 = patch.Envelope{
		Attack:  round4(uniform(rng, 0.001, 0.01)),
		Decay:   round4(uniform(rng, 0.05, 0.25)),
		Sustain: round4(uniform(rng, 0.0, 0.25)),
		Release: round4(uniform(rng, 0.05, 0.2)),
	}
	p.Env2 = patch.Envelope{
		Decay:   round4(uniform(rng, 0.05, 0.2)),
		Release: round4(uniform(rng, 0.02, 0.15)),
	}
	p.Filter.Cutoff = round4(uniform(rng, 0.35, 0.85))
	p.Mod.Env2ToCutoff = round4(uniform(rng, 0.3, 0.9))
	p.FX.Reverb.Mix = round4(uniform(rng, 0.05, 0.25))
	p.FX.Delay.Mix = round4(uniform(rng, 0.1, 0.35))
	return p
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
