package synth

import (
	"fmt"
	"math"

	"github.com/dissonaut/dissonaut"
)

// Voice is one sounding string: a Karplus-Strong feedback delay line with a
// loop loss filter, a dispersion allpass modeling string stiffness and a
// two-pole body resonance. The excitation buffer is allocated once, at pool
// construction, to the longest delay any supported pitch needs; plucking
// never allocates.
type Voice struct {
	pitch    dissonaut.Pitch
	velocity float32
	start    uint64
	env      Envelope

	backing []float32
	buf     []float32
	pos     int

	damping    float32
	brightness float32

	dispersion  float32
	dispersionZ float32

	bodyB0, bodyA1, bodyA2 float32
	bodyY1, bodyY2         float32
}

// pluck resets the voice for a new note. The excitation is broadband noise
// shaped by a feedforward comb whose delay corresponds to the pick position
// along the string, normalized to unit peak; velocity is applied when the
// voice is mixed, not stored in the buffer.
func (v *Voice) pluck(pitch dissonaut.Pitch, velocity float32, start uint64, config *dissonaut.Config, envelope dissonaut.EnvelopeParams, scratch []float32, rng *noise) {
	freq := config.Tuning.Frequency(pitch)
	if freq <= 0 || config.SampleRate <= 0 {
		panic(fmt.Sprintf("pluck: invalid frequency %v at sample rate %d", freq, config.SampleRate))
	}
	length := int(math.Round(float64(config.SampleRate) / freq))
	if length < 2 {
		length = 2
	}
	v.pitch = pitch
	v.velocity = velocity
	v.start = start
	v.env = NewEnvelope(envelope, config.SampleRate)
	v.buf = v.backing[:length]
	v.pos = 0
	v.dispersionZ = 0
	v.bodyY1, v.bodyY2 = 0, 0

	v.damping = float32(config.String.Damping)
	v.brightness = float32(config.String.Brightness)
	v.dispersion = dispersionCoeff(config.String.Stiffness, pitch)

	sr := float64(config.SampleRate)
	f0 := config.String.BodyFreq
	if f0 > sr*0.49 {
		f0 = sr * 0.49
	}
	bw := f0 / config.String.BodyQ
	r := math.Exp(-math.Pi * bw / sr)
	w0 := 2 * math.Pi * f0 / sr
	v.bodyB0 = float32(1 - r)
	v.bodyA1 = float32(2 * r * math.Cos(w0))
	v.bodyA2 = float32(-(r * r))

	for i := 0; i < length; i++ {
		scratch[i] = rng.next()
	}
	d := int(math.Round(float64(length) * config.String.PickPosition))
	if d < 1 {
		d = 1
	}
	if d > length-1 {
		d = length - 1
	}
	var peak float32
	for i := 0; i < length; i++ {
		s := scratch[i] - scratch[(i+length-d)%length]
		v.buf[i] = s
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak > 0 {
		scale := 1 / peak
		for i := range v.buf {
			v.buf[i] *= scale
		}
	}
}

// next advances the string one sample and returns its output, before
// envelope and velocity scaling.
func (v *Voice) next() float32 {
	s := v.buf[v.pos]
	nextPos := v.pos + 1
	if nextPos == len(v.buf) {
		nextPos = 0
	}
	sp := v.buf[nextPos]
	out := v.damping * (s + v.brightness*(sp-s))

	ap := -v.dispersion*out + v.dispersionZ
	v.dispersionZ = out + v.dispersion*ap

	body := v.bodyB0*ap + v.bodyA1*v.bodyY1 + v.bodyA2*v.bodyY2
	v.bodyY2 = v.bodyY1
	v.bodyY1 = body

	if ap < 1e-24 && ap > -1e-24 {
		ap = 0
	}
	v.buf[v.pos] = ap
	v.pos = nextPos
	return 0.7*ap + 0.3*body
}

// renderTo mixes the voice's next len(dst) samples into dst.
func (v *Voice) renderTo(dst []float32) {
	for i := range dst {
		gain := v.env.Next()
		if v.env.phase == PhaseDone {
			return
		}
		dst[i] += gain * v.velocity * v.next()
	}
}

// excite injects broadband noise into the excitation buffer, used for
// sympathetic coupling between strings.
func (v *Voice) excite(amount float32, rng *noise) {
	for i := range v.buf {
		v.buf[i] += amount * rng.next()
	}
}

// noise is a xorshift generator producing uniform samples in -1..1. The
// render context owns one; it never needs cryptographic quality, only speed
// and a flat spectrum.
type noise struct {
	state uint32
}

func newNoise() noise { return noise{state: 0x9e3779b9} }

func (n *noise) next() float32 {
	n.state ^= n.state << 13
	n.state ^= n.state >> 17
	n.state ^= n.state << 5
	return float32(int32(n.state)) / (1 << 31)
}
