package synth

import (
	"github.com/dissonaut/dissonaut"
)

type EnvelopePhase int

const (
	PhaseAttack EnvelopePhase = iota
	PhaseDecay
	PhaseSustain
	PhaseRelease
	PhaseDone
)

func (p EnvelopePhase) String() string {
	switch p {
	case PhaseAttack:
		return "Attack"
	case PhaseDecay:
		return "Decay"
	case PhaseSustain:
		return "Sustain"
	case PhaseRelease:
		return "Release"
	case PhaseDone:
		return "Done"
	}
	return "EnvelopePhase(?)"
}

// Envelope is a linear ADSR gain generator, advanced one sample at a time.
// The per-sample rates are fixed at construction; the release rate is fixed
// when Release is called, from whatever level the envelope had then, so the
// release ramp always takes the configured time regardless of the phase it
// interrupted.
type Envelope struct {
	phase       EnvelopePhase
	level       float32
	attackRate  float32
	decayRate   float32
	sustain     float32
	releaseTime float32 // seconds times sample rate, for computing releaseRate
	releaseRate float32
	jitter      float32
	blockGain   float32
	deferred    bool
}

func NewEnvelope(params dissonaut.EnvelopeParams, sampleRate int) Envelope {
	sr := float32(sampleRate)
	e := Envelope{
		phase:       PhaseAttack,
		sustain:     float32(params.Sustain),
		attackRate:  1,
		decayRate:   1,
		releaseTime: float32(params.Release) * sr,
		jitter:      float32(params.Jitter),
		blockGain:   1,
	}
	if params.Attack > 0 {
		e.attackRate = 1 / (float32(params.Attack) * sr)
	}
	if params.Decay > 0 {
		e.decayRate = (1 - e.sustain) / (float32(params.Decay) * sr)
	}
	return e
}

func (e *Envelope) Phase() EnvelopePhase { return e.phase }

// Level returns the current gain without advancing the envelope.
func (e *Envelope) Level() float32 { return e.level }

// Release starts the release ramp, unless the envelope is already releasing
// or done. A release during the attack is held back until the attack peak:
// releasing right away would ramp down from whatever level the attack had
// reached, and a note whose on and off arrive within the same block would
// ramp down from level zero and vanish without one audible sample.
func (e *Envelope) Release() {
	if e.phase == PhaseRelease || e.phase == PhaseDone {
		return
	}
	if e.phase == PhaseAttack {
		e.deferred = true
		return
	}
	e.startRelease()
}

func (e *Envelope) startRelease() {
	e.phase = PhaseRelease
	if e.releaseTime > 0 {
		e.releaseRate = e.level / e.releaseTime
	} else {
		e.releaseRate = 1
	}
}

// SetBlockJitter picks the gain variation for the next block from a uniform
// random value r in -1..1. The variation is multiplicative and symmetric
// around 1, so it leaves the mean envelope shape untouched.
func (e *Envelope) SetBlockJitter(r float32) {
	e.blockGain = 1 + e.jitter*r
}

// Next advances the envelope one sample and returns its gain.
func (e *Envelope) Next() float32 {
	switch e.phase {
	case PhaseAttack:
		e.level += e.attackRate
		if e.level >= 1 {
			e.level = 1
			e.phase = PhaseDecay
			if e.deferred {
				e.deferred = false
				e.startRelease()
			}
		}
	case PhaseDecay:
		e.level -= e.decayRate
		if e.level <= e.sustain {
			e.level = e.sustain
			e.phase = PhaseSustain
		}
	case PhaseSustain:
		// hold until Release
	case PhaseRelease:
		e.level -= e.releaseRate
		if e.level <= 0 {
			e.level = 0
			e.phase = PhaseDone
		}
	case PhaseDone:
		return 0
	}
	return e.level * e.blockGain
}
