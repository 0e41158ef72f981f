// Package synth implements the render-plane DSP: a polyphonic
// Karplus-Strong string synthesizer with ADSR envelopes, sympathetic
// coupling between strings and a reverb plus limiter effects chain. All
// state in this package is exclusively owned by the render context; nothing
// here is safe for concurrent use.
package synth

import (
	"fmt"

	"github.com/dissonaut/dissonaut"
)

// Strings is the synthesizer the render context runs: it dispatches control
// messages to the voice pool and effects, and renders fixed-size blocks into
// a stereo buffer. Everything on the rendering path works on preallocated
// memory.
type Strings struct {
	config   dissonaut.Config
	pool     *Pool
	reverb   *Reverb
	limiter  *Limiter
	mono     []float32
	shutdown bool
}

func NewStrings(config dissonaut.Config) (*Strings, error) {
	pool, err := NewPool(config)
	if err != nil {
		return nil, err
	}
	return &Strings{
		config:  config,
		pool:    pool,
		reverb:  NewReverb(config.Effects.Reverb, config.SampleRate),
		limiter: NewLimiter(config.Effects.Limiter, config.SampleRate),
		mono:    make([]float32, config.BlockSize),
	}, nil
}

// HandleMessage applies one control message. Messages are trusted: they come
// from the ControlMessage constructors, so an unknown kind is a programming
// error and panics.
func (s *Strings) HandleMessage(msg dissonaut.ControlMessage) {
	switch msg.Kind {
	case dissonaut.KindNoteOn:
		s.pool.NoteOn(msg.Pitch, float32(msg.Velocity))
	case dissonaut.KindNoteOff:
		s.pool.NoteOff(msg.Pitch)
	case dissonaut.KindSetEnvelope:
		s.pool.SetEnvelope(msg.Envelope)
	case dissonaut.KindSetEffects:
		s.reverb.SetParams(msg.Effects.Reverb)
		s.limiter.SetParams(msg.Effects.Limiter, s.config.SampleRate)
	case dissonaut.KindShutdown:
		s.shutdown = true
		s.pool.ReleaseAll()
	default:
		panic(fmt.Sprintf("HandleMessage: unknown message kind %v", msg.Kind))
	}
}

// RenderBlock fills the buffer with the next samples and reports whether
// rendering should continue. After a shutdown message has been consumed it
// writes silence and returns false. The buffer may have any length; it is
// processed in chunks of the configured block size.
func (s *Strings) RenderBlock(buffer dissonaut.AudioBuffer) bool {
	if s.shutdown {
		for i := range buffer {
			buffer[i] = [2]float32{}
		}
		return false
	}
	for pos := 0; pos < len(buffer); pos += len(s.mono) {
		n := len(buffer) - pos
		if n > len(s.mono) {
			n = len(s.mono)
		}
		chunk := s.mono[:n]
		s.pool.AdvanceBlock(chunk)
		s.reverb.Process(chunk)
		s.limiter.Process(chunk)
		for i, v := range chunk {
			buffer[pos+i] = [2]float32{v, v}
		}
	}
	return true
}

// Levels reports the per-voice envelope levels for metering.
func (s *Strings) Levels(dst *[MaxVoices]float32) int {
	return s.pool.Levels(dst)
}

// Active returns the number of sounding voices.
func (s *Strings) Active() int { return s.pool.Active() }

// Full reports whether the next note on will steal a voice.
func (s *Strings) Full() bool { return s.pool.Active() == cap(s.pool.live) }
