package dissonaut

import (
	"math"
)

type (
	// Pitch is a semitone index using MIDI note numbering. Frequencies are
	// derived from a Tuning; Pitch itself carries no tuning information.
	Pitch int

	// Tuning fixes the reference from which all frequencies are derived:
	// f = RefFreq * 2^((pitch-RefPitch)/12).
	Tuning struct {
		RefPitch Pitch   `yaml:"refpitch"`
		RefFreq  float64 `yaml:"reffreq"`
	}
)

// The representable pitch range of the synth, matching a piano keyboard.
// Pitches outside this range in a ControlMessage are a programmer error.
const (
	MinPitch Pitch = 21  // A0
	MaxPitch Pitch = 108 // C8
)

func (t Tuning) Frequency(p Pitch) float64 {
	return t.RefFreq * math.Exp2(float64(p-t.RefPitch)/12)
}

func (p Pitch) Valid() bool {
	return p >= MinPitch && p <= MaxPitch
}

// Class returns the pitch class (semitones above C) in 0..11.
func (p Pitch) Class() int {
	return ((int(p) % 12) + 12) % 12
}

// AudioBuffer is a buffer of stereo audio samples of variable length
type AudioBuffer [][2]float32

type (
	// Renderer is the execution-context boundary between the control plane
	// and the render plane. The concrete implementation decides where the
	// render context runs: behind a real-time audio callback (oto package),
	// or driven synchronously for offline rendering and tests (Play). Both
	// methods are only ever called from the render context; HandleMessage is
	// called for every drained ControlMessage strictly before the
	// RenderBlock call of the same block. RenderBlock fills the buffer and
	// returns whether the context should keep being invoked.
	Renderer interface {
		HandleMessage(msg ControlMessage)
		RenderBlock(buffer AudioBuffer) bool
	}

	// CloserWaiter is a handle to a started render context: Close stops the
	// periodic render invocations, Wait blocks until the renderer reported
	// that it is done (i.e. RenderBlock returned false).
	CloserWaiter interface {
		Close() error
		Wait()
	}

	// AudioContext is a host environment that can invoke a Renderer
	// periodically with a fixed block size and play back the produced audio.
	AudioContext interface {
		Start(r Renderer) (CloserWaiter, error)
		Close() error
	}
)
