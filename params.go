package dissonaut

import (
	"errors"
	"fmt"
)

type (
	// EnvelopeParams are the ADSR parameters shared by all voices triggered
	// while they are in effect. Changing them never alters a voice that is
	// already sounding; only voices triggered afterwards see the new values.
	EnvelopeParams struct {
		Attack  float64 `yaml:"attack"`  // seconds
		Decay   float64 `yaml:"decay"`   // seconds
		Sustain float64 `yaml:"sustain"` // level in 0..1
		Release float64 `yaml:"release"` // seconds
		// Jitter is the bound of the per-block multiplicative gain
		// variation, as a fraction. The variation is symmetric around 1 so
		// the mean envelope shape is unchanged. Zero disables it.
		Jitter float64 `yaml:"jitter,omitempty"`
	}

	// StringParams control the plucked-string model of each voice.
	StringParams struct {
		PickPosition float64 `yaml:"pickposition"` // excitation point along the string, 0..1
		Damping      float64 `yaml:"damping"`      // loop gain, controls sustain length; < 1
		Brightness   float64 `yaml:"brightness"`   // high-frequency content of the loop filter, 0..1
		Stiffness    float64 `yaml:"stiffness"`    // inharmonicity amount, 0..1; scaled per register
		BodyFreq     float64 `yaml:"bodyfreq"`     // body resonance center frequency, Hz
		BodyQ        float64 `yaml:"bodyq"`        // body resonance quality factor
		// Coupling scales the sympathetic-resonance noise injected into
		// other sounding strings on every note on. CouplingThreshold gates
		// the injection on the harmonic closeness of the two strings.
		Coupling          float64 `yaml:"coupling"`
		CouplingThreshold float64 `yaml:"couplingthreshold"`
	}

	ReverbParams struct {
		Wet      float64 `yaml:"wet"`      // wet level, 0..1
		Dry      float64 `yaml:"dry"`      // dry level, 0..1
		RoomSize float64 `yaml:"roomsize"` // 0..1, mapped to comb feedback
		Damp     float64 `yaml:"damp"`     // high-frequency damping of the tail, 0..1
	}

	LimiterParams struct {
		Threshold float64 `yaml:"threshold"` // dB, negative
		Attack    float64 `yaml:"attack"`    // seconds
		Release   float64 `yaml:"release"`   // seconds
		// Tolerance is the allowed overshoot fraction above the linear
		// threshold; the limiter hard-clamps at threshold*(1+tolerance).
		Tolerance float64 `yaml:"tolerance"`
	}

	EffectParams struct {
		Reverb  ReverbParams  `yaml:"reverb"`
		Limiter LimiterParams `yaml:"limiter"`
	}

	// Config is the immutable synthesis configuration, injected at startup
	// and shared read-only between the control and render contexts.
	Config struct {
		SampleRate int            `yaml:"samplerate"`
		BlockSize  int            `yaml:"blocksize"`
		MaxVoices  int            `yaml:"maxvoices"`
		Tuning     Tuning         `yaml:"tuning"`
		Envelope   EnvelopeParams `yaml:"envelope"`
		String     StringParams   `yaml:"string"`
		Effects    EffectParams   `yaml:"effects"`
		// Debug enables non-essential diagnostics. It is an explicit
		// configuration value, never ambient global state.
		Debug bool `yaml:"-"`
	}
)

// MaxVoiceLimit is the hard upper bound for Config.MaxVoices, so that
// per-voice bookkeeping can live in fixed-size arrays.
const MaxVoiceLimit = 32

func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		BlockSize:  128,
		MaxVoices:  8,
		Tuning:     Tuning{RefPitch: 69, RefFreq: 440},
		Envelope: EnvelopeParams{
			Attack:  0.01,
			Decay:   0.1,
			Sustain: 0.7,
			Release: 0.3,
		},
		String: StringParams{
			PickPosition:      0.18,
			Damping:           0.996,
			Brightness:        0.5,
			Stiffness:         0.2,
			BodyFreq:          220,
			BodyQ:             2,
			Coupling:          0.01,
			CouplingThreshold: 0.25,
		},
		Effects: EffectParams{
			Reverb: ReverbParams{
				Wet:      0.33,
				Dry:      0.4,
				RoomSize: 0.5,
				Damp:     0.2,
			},
			Limiter: LimiterParams{
				Threshold: -3,
				Attack:    0.005,
				Release:   0.05,
				Tolerance: 0.01,
			},
		},
	}
}

func (e EnvelopeParams) Validate() error {
	if e.Attack < 0 || e.Decay < 0 || e.Release < 0 {
		return errors.New("envelope durations should be non-negative")
	}
	if e.Sustain < 0 || e.Sustain > 1 {
		return errors.New("envelope sustain should be in 0..1")
	}
	if e.Jitter < 0 || e.Jitter >= 1 {
		return errors.New("envelope jitter should be in 0..1")
	}
	return nil
}

func (s StringParams) Validate() error {
	if s.PickPosition < 0 || s.PickPosition > 1 {
		return errors.New("pick position should be in 0..1")
	}
	if s.Damping <= 0 || s.Damping >= 1 {
		return errors.New("string damping should be in (0,1)")
	}
	if s.Brightness < 0 || s.Brightness > 1 {
		return errors.New("string brightness should be in 0..1")
	}
	if s.Stiffness < 0 || s.Stiffness > 1 {
		return errors.New("string stiffness should be in 0..1")
	}
	if s.BodyFreq <= 0 || s.BodyQ <= 0 {
		return errors.New("body resonance frequency and Q should be positive")
	}
	if s.Coupling < 0 {
		return errors.New("coupling should be non-negative")
	}
	return nil
}

func (p EffectParams) Validate() error {
	r := p.Reverb
	if r.Wet < 0 || r.Wet > 1 || r.Dry < 0 || r.Dry > 1 {
		return errors.New("reverb wet/dry levels should be in 0..1")
	}
	if r.RoomSize < 0 || r.RoomSize > 1 || r.Damp < 0 || r.Damp > 1 {
		return errors.New("reverb room size and damp should be in 0..1")
	}
	l := p.Limiter
	if l.Threshold > 0 || l.Threshold < -60 {
		return errors.New("limiter threshold should be in -60..0 dB")
	}
	if l.Attack <= 0 || l.Release <= 0 {
		return errors.New("limiter time constants should be positive")
	}
	if l.Tolerance < 0 {
		return errors.New("limiter tolerance should be non-negative")
	}
	return nil
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate should be positive")
	}
	if c.BlockSize <= 0 {
		return errors.New("block size should be positive")
	}
	if c.MaxVoices < 1 || c.MaxVoices > MaxVoiceLimit {
		return fmt.Errorf("max voices should be in 1..%d", MaxVoiceLimit)
	}
	if c.Tuning.RefFreq <= 0 {
		return errors.New("reference frequency should be positive")
	}
	if err := c.Envelope.Validate(); err != nil {
		return err
	}
	if err := c.String.Validate(); err != nil {
		return err
	}
	return c.Effects.Validate()
}
