package dissonance

import (
	"fmt"
	"math"
)

// Interval names the distance between two pitch classes within one octave.
type Interval int

const (
	Unison Interval = iota
	MinorSecond
	MajorSecond
	MinorThird
	MajorThird
	PerfectFourth
	Tritone
	PerfectFifth
	MinorSixth
	MajorSixth
	MinorSeventh
	MajorSeventh
	Octave
	NumIntervals
)

var intervalNames = [NumIntervals]string{
	"unison", "minor second", "major second", "minor third", "major third",
	"perfect fourth", "tritone", "perfect fifth", "minor sixth",
	"major sixth", "minor seventh", "major seventh", "octave",
}

// justRatios are the just intonation approximations of each interval, as
// numerator/denominator pairs.
var justRatios = [NumIntervals][2]int{
	{1, 1}, {16, 15}, {9, 8}, {6, 5}, {5, 4}, {4, 3}, {45, 32}, {3, 2},
	{8, 5}, {5, 3}, {9, 5}, {15, 8}, {2, 1},
}

// IntervalFromSemitones wraps any semitone distance into one octave and
// returns the corresponding interval. Distances that are a multiple of 12
// map to Unison.
func IntervalFromSemitones(semitones int) Interval {
	return Interval(((semitones % 12) + 12) % 12)
}

func (i Interval) valid() bool { return i >= Unison && i < NumIntervals }

func (i Interval) String() string {
	if !i.valid() {
		return fmt.Sprintf("Interval(%d)", int(i))
	}
	return intervalNames[i]
}

func (i Interval) Semitones() int { return int(i) }

// JustRatio returns the just intonation frequency ratio of the interval.
func (i Interval) JustRatio() (num, den int) {
	if !i.valid() {
		panic(fmt.Sprintf("JustRatio: invalid interval %d", int(i)))
	}
	return justRatios[i][0], justRatios[i][1]
}

// TemperedRatio returns the equal temperament frequency ratio of the
// interval.
func (i Interval) TemperedRatio() float64 {
	return math.Exp2(float64(i.Semitones()) / 12)
}

// TemperedJustErrorCents returns how far the just intonation ratio is from
// the equal-tempered one, in cents. Positive means just intonation is
// sharper.
func (i Interval) TemperedJustErrorCents() float64 {
	num, den := i.JustRatio()
	justCents := 1200 * math.Log2(float64(num)/float64(den))
	temperedCents := 100 * float64(i.Semitones())
	return justCents - temperedCents
}

// Between returns the interval separating two intervals above a common root,
// wrapped into one octave. A perfect fifth and a major third above the same
// root are a minor third apart.
func Between(a, b Interval) Interval {
	return IntervalFromSemitones(a.Semitones() - b.Semitones())
}

// RatioComplexity is a quick consonance heuristic based on the complexity of
// the just ratio and the tempered tuning error, in 0..1. An interval is
// scored as the more consonant of itself and its inversion, since within one
// octave the two are interchangeable. It orders the twelve intervals the way
// a listener would rank them but carries none of the partial-interaction
// detail of Model; use Model for the actual roughness score.
func (i Interval) RatioComplexity() float64 {
	if i == Octave {
		i = Unison
	}
	direct := i.ratioComplexity()
	inverted := IntervalFromSemitones(12 - i.Semitones()).ratioComplexity()
	return math.Min(direct, inverted)
}

func (i Interval) ratioComplexity() float64 {
	num, den := i.JustRatio()
	base := math.Min(math.Log(float64(num*den))/20, 1)
	tuningError := math.Abs(i.TemperedJustErrorCents()) / 20
	return base + 0.3*(tuningError/15)
}
