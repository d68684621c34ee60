package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPatchIsValid(t *testing.T) {
	p := Default("INIT")
	require.NoError(t, p.Validate())
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, "saw", p.Osc[0].Wave)
	assert.Equal(t, 0.5, p.Filter.Cutoff)
	assert.Equal(t, "lowpass4", p.Filter.Type)
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Patch)
	}{
		{"empty name", func(p *Patch) { p.Name = "" }},
		{"unknown wave", func(p *Patch) { p.Osc[1].Wave = "hypersaw" }},
		{"amp above 1", func(p *Patch) { p.Osc[0].Amp = 1.5 }},
		{"cutoff below 0", func(p *Patch) { p.Filter.Cutoff = -0.1 }},
		{"unknown filter type", func(p *Patch) { p.Filter.Type = "comb" }},
		{"negative attack", func(p *Patch) { p.Env1.Attack = -0.01 }},
		{"sustain above 1", func(p *Patch) { p.Env2.Sustain = 1.1 }},
		{"unknown lfo shape", func(p *Patch) { p.LFO1.Shape = "noise" }},
		{"negative delay time", func(p *Patch) { p.FX.Delay.Time = -1 }},
		{"mod depth above 1", func(p *Patch) { p.Mod.Env2ToCutoff = 2 }},
		{"negative tempo", func(p *Patch) {
			tempo := -120.0
			p.Meta.Tempo = &tempo
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default("X")
			tt.mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestToMapFromMapRoundTrip(t *testing.T) {
	p := Default("RoundTrip")
	p.Filter.Cutoff = 0.73
	p.Osc[2].Amp = 0.4

	m, err := p.ToMap()
	require.NoError(t, err)

	// the macro engine addresses exactly these shapes
	filter, ok := m["filter"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.73, filter["cutoff"].(float64), 1e-9)
	osc, ok := m["osc"].([]any)
	require.True(t, ok)
	require.Len(t, osc, 3)

	back, err := FromMap(m)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestSchemaMarshals(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.NotEmpty(t, schema["$defs"])
}
