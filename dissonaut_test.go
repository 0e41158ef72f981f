package dissonaut_test

import (
	"math"
	"testing"

	"github.com/dissonaut/dissonaut"
)

func TestTuningFrequency(t *testing.T) {
	tuning := dissonaut.Tuning{RefPitch: 69, RefFreq: 440}
	for _, c := range []struct {
		pitch dissonaut.Pitch
		freq  float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6256},
		{21, 27.5},
		{108, 4186.009},
	} {
		got := tuning.Frequency(c.pitch)
		if math.Abs(got-c.freq) > 0.001 {
			t.Errorf("Frequency(%d) = %v, expected %v", c.pitch, got, c.freq)
		}
	}
}

func TestPitchClass(t *testing.T) {
	if got := dissonaut.Pitch(60).Class(); got != 0 {
		t.Errorf("Class(60) = %d, expected 0", got)
	}
	if got := dissonaut.Pitch(69).Class(); got != 9 {
		t.Errorf("Class(69) = %d, expected 9", got)
	}
	if got := dissonaut.Pitch(72).Class(); got != dissonaut.Pitch(60).Class() {
		t.Errorf("Class(72) = %d, expected same as Class(60)", got)
	}
}

func TestPitchValid(t *testing.T) {
	for _, c := range []struct {
		pitch dissonaut.Pitch
		valid bool
	}{
		{20, false}, {21, true}, {69, true}, {108, true}, {109, false}, {-3, false},
	} {
		if got := c.pitch.Valid(); got != c.valid {
			t.Errorf("Valid(%d) = %v, expected %v", c.pitch, got, c.valid)
		}
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := dissonaut.DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate, got: %v", err)
	}
}

func TestConfigValidateCatchesBadValues(t *testing.T) {
	for _, c := range []struct {
		name   string
		mutate func(*dissonaut.Config)
	}{
		{"zero sample rate", func(c *dissonaut.Config) { c.SampleRate = 0 }},
		{"zero block size", func(c *dissonaut.Config) { c.BlockSize = 0 }},
		{"too many voices", func(c *dissonaut.Config) { c.MaxVoices = dissonaut.MaxVoiceLimit + 1 }},
		{"zero ref freq", func(c *dissonaut.Config) { c.Tuning.RefFreq = 0 }},
		{"damping one", func(c *dissonaut.Config) { c.String.Damping = 1 }},
		{"negative sustain", func(c *dissonaut.Config) { c.Envelope.Sustain = -0.1 }},
		{"positive limiter threshold", func(c *dissonaut.Config) { c.Effects.Limiter.Threshold = 3 }},
		{"reverb wet over one", func(c *dissonaut.Config) { c.Effects.Reverb.Wet = 1.5 }},
	} {
		config := dissonaut.DefaultConfig()
		c.mutate(&config)
		if err := config.Validate(); err == nil {
			t.Errorf("%s: Validate should return an error", c.name)
		}
	}
}

func TestMessageConstructorsPanicOnBadArguments(t *testing.T) {
	for _, c := range []struct {
		name string
		f    func()
	}{
		{"pitch too low", func() { dissonaut.NoteOn(20, 0.5) }},
		{"pitch too high", func() { dissonaut.NoteOff(109) }},
		{"velocity over one", func() { dissonaut.NoteOn(69, 1.5) }},
		{"negative velocity", func() { dissonaut.NoteOn(69, -0.1) }},
		{"negative attack", func() { dissonaut.SetEnvelope(dissonaut.EnvelopeParams{Attack: -1, Sustain: 0.5}) }},
		{"bad limiter", func() {
			p := dissonaut.DefaultConfig().Effects
			p.Limiter.Attack = 0
			dissonaut.SetEffects(p)
		}},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected a panic", c.name)
				}
			}()
			c.f()
		}()
	}
}

func TestMessageCheck(t *testing.T) {
	if err := dissonaut.NoteOn(60, 0.8).Check(); err != nil {
		t.Errorf("valid NoteOn should pass Check, got: %v", err)
	}
	if err := dissonaut.Shutdown().Check(); err != nil {
		t.Errorf("Shutdown should pass Check, got: %v", err)
	}
	bad := dissonaut.ControlMessage{Kind: dissonaut.KindNoteOn, Pitch: 5, Velocity: 0.5}
	if err := bad.Check(); err == nil {
		t.Error("out-of-range pitch should fail Check")
	}
	unknown := dissonaut.ControlMessage{Kind: dissonaut.MessageKind(42)}
	if err := unknown.Check(); err == nil {
		t.Error("unknown kind should fail Check")
	}
}

func TestMessageKindString(t *testing.T) {
	for kind, expected := range map[dissonaut.MessageKind]string{
		dissonaut.KindNoteOn:      "NoteOn",
		dissonaut.KindNoteOff:     "NoteOff",
		dissonaut.KindSetEnvelope: "SetEnvelope",
		dissonaut.KindSetEffects:  "SetEffects",
		dissonaut.KindShutdown:    "Shutdown",
	} {
		if got := kind.String(); got != expected {
			t.Errorf("String() = %q, expected %q", got, expected)
		}
	}
}
