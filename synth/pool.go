package synth

import (
	"fmt"
	"math"

	"github.com/dissonaut/dissonaut"
)

// MaxVoices is the hard upper bound of simultaneous voices a pool can hold.
const MaxVoices = dissonaut.MaxVoiceLimit

// Pool owns the live voices. All voice structures and their excitation
// buffers are allocated up front, so note on, note off and block advancement
// never allocate.
type Pool struct {
	config   dissonaut.Config
	envelope dissonaut.EnvelopeParams

	live    []*Voice
	free    []*Voice
	scratch []float32
	rng     noise
	now     uint64
}

func NewPool(config dissonaut.Config) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("NewPool: %v", err)
	}
	minFreq := config.Tuning.Frequency(dissonaut.MinPitch)
	worstCase := int(math.Round(float64(config.SampleRate)/minFreq)) + 1
	p := &Pool{
		config:   config,
		envelope: config.Envelope,
		live:     make([]*Voice, 0, config.MaxVoices),
		free:     make([]*Voice, 0, config.MaxVoices),
		scratch:  make([]float32, worstCase),
		rng:      newNoise(),
	}
	for i := 0; i < config.MaxVoices; i++ {
		p.free = append(p.free, &Voice{backing: make([]float32, worstCase)})
	}
	return p, nil
}

// SetEnvelope replaces the parameters used for voices triggered from now on.
// Voices already sounding keep the envelope they were created with.
func (p *Pool) SetEnvelope(params dissonaut.EnvelopeParams) {
	p.envelope = params
}

// NoteOn triggers a new voice. An already sounding voice on the same pitch
// is forced into release first, so retriggers never cut a string dead. When
// the pool is full, the voice with the earliest start time is stolen, the
// lowest pitch winning ties.
func (p *Pool) NoteOn(pitch dissonaut.Pitch, velocity float32) {
	for _, v := range p.live {
		if v.pitch == pitch {
			v.env.Release()
		}
	}
	if len(p.live) == cap(p.live) {
		p.evict()
	}
	v := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	v.pluck(pitch, velocity, p.now, &p.config, p.envelope, p.scratch, &p.rng)
	p.couple(v, velocity)
	p.live = append(p.live, v)
}

// NoteOff releases the newest sounding voice on the pitch. Voices already
// releasing are left alone; their release continues undisturbed.
func (p *Pool) NoteOff(pitch dissonaut.Pitch) {
	var target *Voice
	for _, v := range p.live {
		if v.pitch != pitch {
			continue
		}
		if v.env.Phase() == PhaseRelease || v.env.Phase() == PhaseDone {
			continue
		}
		if target == nil || v.start > target.start {
			target = v
		}
	}
	if target != nil {
		target.env.Release()
	}
}

// ReleaseAll sends every sounding voice into release.
func (p *Pool) ReleaseAll() {
	for _, v := range p.live {
		v.env.Release()
	}
}

// AdvanceBlock renders one block of all live voices mixed into dst, which is
// zeroed first. Voices whose envelope finished are swept back to the free
// list at the end of the block.
func (p *Pool) AdvanceBlock(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
	for _, v := range p.live {
		v.env.SetBlockJitter(p.rng.next())
		v.renderTo(dst)
	}
	p.now += uint64(len(dst))
	for i := 0; i < len(p.live); {
		if p.live[i].env.Phase() == PhaseDone {
			p.release(i)
		} else {
			i++
		}
	}
}

// Active returns the number of live voices.
func (p *Pool) Active() int { return len(p.live) }

// Levels fills dst with the current envelope level of each live voice,
// scaled by velocity, and returns the voice count.
func (p *Pool) Levels(dst *[MaxVoices]float32) int {
	for i, v := range p.live {
		dst[i] = v.env.Level() * v.velocity
	}
	return len(p.live)
}

func (p *Pool) evict() {
	oldest := 0
	for i, v := range p.live[1:] {
		o := p.live[oldest]
		if v.start < o.start || (v.start == o.start && v.pitch < o.pitch) {
			oldest = i + 1
		}
	}
	p.release(oldest)
}

// release moves live voice i back to the free list, preserving the order of
// the remaining live voices.
func (p *Pool) release(i int) {
	v := p.live[i]
	copy(p.live[i:], p.live[i+1:])
	p.live = p.live[:len(p.live)-1]
	p.free = append(p.free, v)
}

// couple injects excitation into other strings that are harmonically close
// to the newly plucked one, imitating sympathetic resonance through a shared
// bridge. The injection scales with the global coupling coefficient, the
// triggering velocity and the closeness score.
func (p *Pool) couple(plucked *Voice, velocity float32) {
	coupling := p.config.String.Coupling
	if coupling <= 0 {
		return
	}
	freq := p.config.Tuning.Frequency(plucked.pitch)
	for _, v := range p.live {
		other := p.config.Tuning.Frequency(v.pitch)
		ratio := freq / other
		if ratio < 1 {
			ratio = 1 / ratio
		}
		closeness := harmonicCloseness(ratio)
		if closeness <= p.config.String.CouplingThreshold {
			continue
		}
		v.excite(float32(coupling*closeness)*velocity, &p.rng)
	}
}

// harmonicCloseness scores how close a frequency ratio r >= 1 is to a small
// integer ratio, 1 for unison, falling off with both the deviation and the
// size of the integers involved. Ratios not near any small integer ratio
// score 0.
func harmonicCloseness(r float64) float64 {
	const tolerance = 0.015
	best := 0.0
	for m := 1; m <= 3; m++ {
		rm := r * float64(m)
		k := math.Round(rm)
		if k < 1 || k > 8 {
			continue
		}
		dev := math.Abs(rm-k) / rm
		if dev >= tolerance {
			continue
		}
		score := (1 - dev/tolerance) / math.Max(float64(m), k)
		if score > best {
			best = score
		}
	}
	return best
}
