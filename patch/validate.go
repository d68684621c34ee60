package patch

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

var waveNames = map[string]bool{
	"saw": true, "square": true, "sine": true,
	"triangle": true, "wavetable": true, "noise": true,
}

var filterTypes = map[string]bool{
	"lowpass4": true, "lowpass2": true, "bandpass": true,
	"highpass4": true, "highpass2": true,
}

var lfoShapes = map[string]bool{
	"sine": true, "triangle": true, "square": true, "saw": true, "random": true,
}

// Validate checks the patch against the schema bounds: normalized values in
// [0,1], times non-negative, enum names known. The first violation is
// reported.
func (p *Patch) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	for i, o := range p.Osc {
		if !waveNames[o.Wave] {
			return fmt.Errorf("osc[%d].wave %q unknown", i, o.Wave)
		}
		if err := unit(fmt.Sprintf("osc[%d].wt_pos", i), o.WtPos); err != nil {
			return err
		}
		if err := unit(fmt.Sprintf("osc[%d].amp", i), o.Amp); err != nil {
			return err
		}
	}
	if err := unit("mix.osc_balance", p.Mix.OscBalance); err != nil {
		return err
	}
	if err := unit("mix.noise", p.Mix.Noise); err != nil {
		return err
	}
	if !filterTypes[p.Filter.Type] {
		return fmt.Errorf("filter.type %q unknown", p.Filter.Type)
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"filter.cutoff", p.Filter.Cutoff},
		{"filter.res", p.Filter.Res},
		{"filter.drive", p.Filter.Drive},
		{"filter.mix", p.Filter.Mix},
	} {
		if err := unit(c.name, c.v); err != nil {
			return err
		}
	}
	if err := p.Env1.validate("env1"); err != nil {
		return err
	}
	if err := p.Env2.validate("env2"); err != nil {
		return err
	}
	if !lfoShapes[p.LFO1.Shape] {
		return fmt.Errorf("lfo1.shape %q unknown", p.LFO1.Shape)
	}
	if p.LFO1.Rate < 0 {
		return fmt.Errorf("lfo1.rate %v must be non-negative", p.LFO1.Rate)
	}
	if err := unit("lfo1.amount", p.LFO1.Amount); err != nil {
		return err
	}
	if err := p.FX.validate(); err != nil {
		return err
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"mod.env2_to_cutoff", p.Mod.Env2ToCutoff},
		{"mod.lfo1_to_pitch", p.Mod.LFO1ToPitch},
		{"mod.lfo1_to_amp", p.Mod.LFO1ToAmp},
	} {
		if err := unit(c.name, c.v); err != nil {
			return err
		}
	}
	if p.Meta.Tempo != nil && *p.Meta.Tempo < 0 {
		return fmt.Errorf("meta.tempo %v must be non-negative", *p.Meta.Tempo)
	}
	return nil
}

func (e Envelope) validate(name string) error {
	if e.Attack < 0 || e.Decay < 0 || e.Release < 0 {
		return fmt.Errorf("%s times must be non-negative", name)
	}
	return unit(name+".sustain", e.Sustain)
}

func (fx FX) validate() error {
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"fx.reverb.mix", fx.Reverb.Mix},
		{"fx.reverb.size", fx.Reverb.Size},
		{"fx.delay.mix", fx.Delay.Mix},
		{"fx.delay.feedback", fx.Delay.Feedback},
		{"fx.chorus.mix", fx.Chorus.Mix},
		{"fx.chorus.depth", fx.Chorus.Depth},
	} {
		if err := unit(c.name, c.v); err != nil {
			return err
		}
	}
	if fx.Delay.Time < 0 {
		return fmt.Errorf("fx.delay.time %v must be non-negative", fx.Delay.Time)
	}
	if fx.Chorus.Rate < 0 {
		return fmt.Errorf("fx.chorus.rate %v must be non-negative", fx.Chorus.Rate)
	}
	return nil
}

func unit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s %v out of range [0,1]", name, v)
	}
	return nil
}

// Schema returns the patch JSON Schema as pretty-printed JSON.
func Schema() ([]byte, error) {
	s := jsonschema.Reflect(&Patch{})
	return json.MarshalIndent(s, "", "  ")
}
