// Package patch defines the Massive-style patch document: three oscillator
// slots, mixer, filter, two envelopes, one LFO, an FX block and a small mod
// section. Values are normalized floats so the macro engine can treat every
// parameter uniformly.
package patch

import "encoding/json"

type Osc struct {
	Wave      string  `json:"wave"`
	WtPos     float64 `json:"wt_pos"`
	Transpose int     `json:"transpose"` // semitones
	Detune    float64 `json:"detune"`    // +/- fraction of a semitone
	Amp       float64 `json:"amp"`
}

type Mix struct {
	OscBalance float64 `json:"osc_balance"` // 0..1 between osc1 and osc2
	Noise      float64 `json:"noise"`
}

type Filter struct {
	Type   string  `json:"type"`
	Cutoff float64 `json:"cutoff"`
	Res    float64 `json:"res"`
	Drive  float64 `json:"drive"`
	Mix    float64 `json:"mix"`
}

type Envelope struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

type LFO struct {
	Rate      float64 `json:"rate"` // Hz unless tempo-synced
	Shape     string  `json:"shape"`
	Amount    float64 `json:"amount"`
	TempoSync bool    `json:"tempo_sync"`
}

type FXReverb struct {
	Mix  float64 `json:"mix"`
	Size float64 `json:"size"`
}

type FXDelay struct {
	Mix      float64 `json:"mix"`
	Time     float64 `json:"time"` // seconds unless synced
	Feedback float64 `json:"feedback"`
	Sync     bool    `json:"sync"`
}

type FXChorus struct {
	Mix   float64 `json:"mix"`
	Rate  float64 `json:"rate"`
	Depth float64 `json:"depth"`
}

type FX struct {
	Reverb FXReverb `json:"reverb"`
	Delay  FXDelay  `json:"delay"`
	Chorus FXChorus `json:"chorus"`
}

// Mod holds the named modulation slots, each a normalized depth.
type Mod struct {
	Env2ToCutoff float64 `json:"env2_to_cutoff"`
	LFO1ToPitch  float64 `json:"lfo1_to_pitch"`
	LFO1ToAmp    float64 `json:"lfo1_to_amp"`
}

type Meta struct {
	Tags  []string `json:"tags"`
	Key   *string  `json:"key"`
	Tempo *float64 `json:"tempo"`
}

type Patch struct {
	Version int    `json:"version"`
	Name    string `json:"name"`

	Osc [3]Osc `json:"osc"`

	Mix    Mix      `json:"mix"`
	Filter Filter   `json:"filter"`
	Env1   Envelope `json:"env1"` // amplitude
	Env2   Envelope `json:"env2"` // modulation
	LFO1   LFO      `json:"lfo1"`
	FX     FX       `json:"fx"`
	Mod    Mod      `json:"mod"`
	Meta   Meta     `json:"meta"`
}

// Default returns the base template every generator starts from.
func Default(name string) *Patch {
	return &Patch{
		Version: 1,
		Name:    name,
		Osc: [3]Osc{
			{Wave: "saw", WtPos: 0.5, Amp: 0.8},
			{Wave: "square", WtPos: 0.5, Amp: 0.7},
			{Wave: "sine", WtPos: 0.0, Amp: 0.0},
		},
		Mix:    Mix{OscBalance: 0.5, Noise: 0.0},
		Filter: Filter{Type: "lowpass4", Cutoff: 0.5, Res: 0.2, Drive: 0.0, Mix: 1.0},
		Env1:   Envelope{Attack: 0.01, Decay: 0.15, Sustain: 0.8, Release: 0.15},
		Env2:   Envelope{Attack: 0.02, Decay: 0.25, Sustain: 0.4, Release: 0.2},
		LFO1:   LFO{Rate: 0.2, Shape: "sine", Amount: 0.0},
		FX: FX{
			Reverb: FXReverb{Mix: 0.1, Size: 0.5},
			Delay:  FXDelay{Mix: 0.1, Time: 0.3, Feedback: 0.2},
			Chorus: FXChorus{Mix: 0.0, Rate: 0.2, Depth: 0.2},
		},
		Meta: Meta{Tags: []string{}},
	}
}

// ToMap renders the patch as the plain nested document the macro engine and
// the JSON store consume.
func (p *Patch) ToMap() (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// FromMap parses a patch document back into the typed model.
func FromMap(m map[string]any) (*Patch, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	p := &Patch{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}
