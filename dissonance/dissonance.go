// Package dissonance implements a psychoacoustic roughness model for sets of
// simultaneously sounding pitches, in the Plomp-Levelt tradition: the
// dissonance of a set of tones is the sum of the roughness contributions of
// all pairs of their overtone partials, where the roughness of a partial pair
// peaks when their distance is a fraction of the critical bandwidth and
// vanishes once they are clearly resolved.
//
// The model is pure and deterministic. It is meant to be called from a
// non-real-time context at interactive rates; the inner partial-pair loops
// are vectorized so that redrawing a visualization every frame is cheap.
package dissonance

import (
	"fmt"
	"math"
	"sort"

	"github.com/dissonaut/dissonaut"
	"github.com/viterin/vek/vek32"
)

const (
	// DefaultPartials is the number of partials considered per tone.
	DefaultPartials = 6
	// DefaultRefFreq is the frequency assigned to pitch class 0, middle C.
	DefaultRefFreq = 261.63
	// normFactor scales raw roughness sums to a 0..1 range for display.
	normFactor = 15
)

// Model computes dissonance scores. The zero value is not useful; use
// NewModel and override fields as needed.
type Model struct {
	Partials int     // partials per tone, amplitudes decaying as 1/n
	RefFreq  float64 // frequency of pitch class 0
}

func NewModel() Model {
	return Model{Partials: DefaultPartials, RefFreq: DefaultRefFreq}
}

// CriticalBandwidth returns the width in Hz of the critical band around f,
// using Zwicker's approximation.
func CriticalBandwidth(f float64) float64 {
	return 24.7 * (4.37*f/1000 + 1)
}

// PairRoughness is the roughness contribution of two partials with
// frequencies f1, f2 and amplitudes a1, a2. It is zero when the frequencies
// coincide, peaks when their distance is roughly a quarter of the critical
// bandwidth at the lower frequency and decays to zero once the distance
// exceeds the bandwidth. Lower register pairs weigh more.
func PairRoughness(f1, a1, f2, a2 float64) float64 {
	fmin := math.Min(f1, f2)
	s := math.Abs(f1-f2) / CriticalBandwidth(fmin)
	return a1 * a2 * (math.Exp(-3.5*s) - math.Exp(-5.75*s)) * math.Pow(fmin, -0.25)
}

// NormalizeRatio folds a frequency ratio into [1, 2). Ratios below 1 are
// inverted octave by octave rather than flipped, so the result depends only
// on the pitch-class distance. Panics on non-positive ratios.
func NormalizeRatio(r float64) float64 {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		panic(fmt.Sprintf("NormalizeRatio: invalid ratio %v", r))
	}
	for r < 1 {
		r *= 2
	}
	for r >= 2 {
		r /= 2
	}
	return r
}

// Dissonance returns the total roughness of the given pitches sounding
// together. Pitches are reduced to pitch classes and deduplicated first, so
// unisons and octave doublings never add roughness; fewer than two distinct
// classes give exactly 0. Only partial pairs belonging to different tones
// contribute, so the score measures the interaction between the tones, not
// the inherent roughness of a single tone's spectrum.
func (m Model) Dissonance(pitches []dissonaut.Pitch) float64 {
	var seen [12]bool
	fundamentals := make([]float64, 0, 12)
	for _, p := range pitches {
		c := p.Class()
		if !seen[c] {
			seen[c] = true
			fundamentals = append(fundamentals, m.RefFreq*math.Exp2(float64(c)/12))
		}
	}
	return m.toneDissonance(fundamentals)
}

// DissonanceNormalized is Dissonance scaled into 0..1 for display, clamped
// at 1.
func (m Model) DissonanceNormalized(pitches []dissonaut.Pitch) float64 {
	return math.Min(1, normFactor*m.Dissonance(pitches))
}

// RatioDissonance returns the dissonance of two tones whose fundamentals are
// in the given frequency ratio. The ratio is normalized into [1, 2) and then
// folded to its inversion when it exceeds the tritone, so an interval and
// its inversion score the same: a major sixth is as rough as a minor third.
func (m Model) RatioDissonance(ratio float64) float64 {
	r := NormalizeRatio(ratio)
	if r > math.Sqrt2 {
		r = 2 / r
	}
	return m.toneDissonance([]float64{m.RefFreq, m.RefFreq * r})
}

// IntervalDissonance returns the dissonance of an equal-tempered interval of
// the given width. The width may be any number of semitones; it wraps at the
// octave, so 13 semitones score the same as 1, and inversions are
// equivalent, so 11 semitones also score the same as 1.
func (m Model) IntervalDissonance(semitones int) float64 {
	if ((semitones%12)+12)%12 == 0 {
		return 0
	}
	return m.RatioDissonance(math.Exp2(float64(semitones) / 12))
}

// toneDissonance sums cross-tone partial-pair roughness for the given
// fundamental frequencies. It computes the total roughness of the merged
// spectrum and subtracts each tone's own spectrum roughness; roughness is
// additive over pairs, so the difference is exactly the sum over pairs of
// partials from different tones.
func (m Model) toneDissonance(fundamentals []float64) float64 {
	if len(fundamentals) < 2 {
		return 0
	}
	for _, f := range fundamentals {
		if f <= 0 {
			panic(fmt.Sprintf("toneDissonance: non-positive fundamental %v", f))
		}
	}
	n := len(fundamentals) * m.Partials
	merged := spectrum{make([]float32, 0, n), make([]float32, 0, n)}
	tone := spectrum{make([]float32, m.Partials), make([]float32, m.Partials)}
	scratch := newRoughnessScratch(n)
	total := 0.0
	for _, f0 := range fundamentals {
		for i := 0; i < m.Partials; i++ {
			tone.freqs[i] = float32(f0 * float64(i+1))
			tone.amps[i] = 1 / float32(i+1)
		}
		total -= scratch.roughness(tone)
		merged.freqs = append(merged.freqs, tone.freqs...)
		merged.amps = append(merged.amps, tone.amps...)
	}
	sort.Sort(merged)
	return total + scratch.roughness(merged)
}

// spectrum is a set of partials, kept as parallel float32 slices so the
// roughness kernel can run over plain vectors. Sorting orders by frequency.
type spectrum struct {
	freqs, amps []float32
}

func (s spectrum) Len() int           { return len(s.freqs) }
func (s spectrum) Less(i, j int) bool { return s.freqs[i] < s.freqs[j] }
func (s spectrum) Swap(i, j int) {
	s.freqs[i], s.freqs[j] = s.freqs[j], s.freqs[i]
	s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
}

type roughnessScratch struct {
	s, e []float32
}

func newRoughnessScratch(n int) *roughnessScratch {
	return &roughnessScratch{s: make([]float32, n), e: make([]float32, n)}
}

// roughness sums PairRoughness over all unordered partial pairs of an
// ascending spectrum. Because the spectrum is sorted, the lower frequency of
// every pair involving partial i and a later partial is freqs[i], so the
// whole inner loop works on one critical bandwidth and one register weight.
func (s *roughnessScratch) roughness(sp spectrum) float64 {
	total := 0.0
	for i := 0; i+1 < len(sp.freqs); i++ {
		tailF := sp.freqs[i+1:]
		tailA := sp.amps[i+1:]
		st := s.s[:len(tailF)]
		et := s.e[:len(tailF)]
		fmin := float64(sp.freqs[i])
		cbw := float32(CriticalBandwidth(fmin))
		vek32.SubNumber_Into(st, tailF, sp.freqs[i])
		vek32.MulNumber_Inplace(st, -3.5/cbw)
		vek32.Exp_Into(et, st)
		vek32.MulNumber_Inplace(st, 5.75/3.5)
		vek32.Exp_Inplace(st)
		vek32.Sub_Inplace(et, st)
		vek32.Mul_Inplace(et, tailA)
		total += float64(sp.amps[i]) * math.Pow(fmin, -0.25) * float64(vek32.Sum(et))
	}
	return total
}
