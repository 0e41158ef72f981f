package dissonance_test

import (
	"math"
	"testing"

	"github.com/dissonaut/dissonaut/dissonance"
)

func TestTemperedJustErrorCents(t *testing.T) {
	for _, c := range []struct {
		interval dissonance.Interval
		cents    float64
	}{
		{dissonance.Unison, 0},
		{dissonance.Octave, 0},
		{dissonance.PerfectFifth, 1.955},
		{dissonance.PerfectFourth, -1.955},
		{dissonance.MajorSecond, 3.910},
		{dissonance.MajorThird, -13.686},
		{dissonance.MajorSixth, -15.641},
		{dissonance.MajorSeventh, -11.731},
		{dissonance.MinorSecond, 11.731},
		{dissonance.MinorThird, 15.641},
		{dissonance.MinorSixth, 13.686},
		{dissonance.MinorSeventh, 17.596},
		{dissonance.Tritone, -9.776},
	} {
		got := c.interval.TemperedJustErrorCents()
		if math.Abs(got-c.cents) > 0.01 {
			t.Errorf("%v: error %v cents, expected %v", c.interval, got, c.cents)
		}
	}
}

func TestIntervalFromSemitones(t *testing.T) {
	for _, c := range []struct {
		semitones int
		interval  dissonance.Interval
	}{
		{0, dissonance.Unison},
		{7, dissonance.PerfectFifth},
		{12, dissonance.Unison},
		{19, dissonance.PerfectFifth},
		{-5, dissonance.PerfectFifth},
		{-12, dissonance.Unison},
	} {
		if got := dissonance.IntervalFromSemitones(c.semitones); got != c.interval {
			t.Errorf("IntervalFromSemitones(%d) = %v, expected %v", c.semitones, got, c.interval)
		}
	}
}

func TestBetween(t *testing.T) {
	got := dissonance.Between(dissonance.PerfectFifth, dissonance.MajorThird)
	if got != dissonance.MinorThird {
		t.Errorf("Between(fifth, major third) = %v, expected minor third", got)
	}
	got = dissonance.Between(dissonance.MajorThird, dissonance.PerfectFifth)
	if got != dissonance.MajorSixth {
		t.Errorf("Between(major third, fifth) = %v, expected major sixth", got)
	}
}

func TestRatioComplexityOrdering(t *testing.T) {
	unison := dissonance.Unison.RatioComplexity()
	if unison != 0 {
		t.Errorf("unison complexity %v, expected 0", unison)
	}
	if oct := dissonance.Octave.RatioComplexity(); oct != unison {
		t.Errorf("octave complexity %v should equal unison %v", oct, unison)
	}
	fifth := dissonance.PerfectFifth.RatioComplexity()
	tritone := dissonance.Tritone.RatioComplexity()
	for i := dissonance.MinorSecond; i < dissonance.Octave; i++ {
		c := i.RatioComplexity()
		if c <= unison {
			t.Errorf("%v complexity %v should be above unison", i, c)
		}
		if c < fifth {
			t.Errorf("%v complexity %v should not be below the perfect fifth %v", i, c, fifth)
		}
		if c > tritone {
			t.Errorf("%v complexity %v should not be above the tritone %v", i, c, tritone)
		}
	}
}

func TestJustRatios(t *testing.T) {
	for _, c := range []struct {
		interval dissonance.Interval
		num, den int
	}{
		{dissonance.PerfectFifth, 3, 2},
		{dissonance.PerfectFourth, 4, 3},
		{dissonance.MajorThird, 5, 4},
		{dissonance.MinorSeventh, 9, 5},
		{dissonance.Tritone, 45, 32},
	} {
		num, den := c.interval.JustRatio()
		if num != c.num || den != c.den {
			t.Errorf("%v ratio %d/%d, expected %d/%d", c.interval, num, den, c.num, c.den)
		}
	}
}
