package synth

import (
	"testing"

	"github.com/dissonaut/dissonaut"
)

func TestInharmonicityBRange(t *testing.T) {
	for pitch := dissonaut.MinPitch; pitch <= dissonaut.MaxPitch; pitch++ {
		b := InharmonicityB(pitch)
		if b <= 0 || b > 0.01 {
			t.Errorf("pitch %d: coefficient %v outside the typical piano range", pitch, b)
		}
	}
}

func TestPartialFrequencySharpening(t *testing.T) {
	const b = 0.001
	const fundamental = 440.0
	if got := PartialFrequency(b, fundamental, 1); got != fundamental {
		t.Errorf("first partial %v, expected the fundamental exactly", got)
	}
	prevDeviation := 0.0
	for n := 2; n <= 8; n++ {
		deviation := PartialFrequency(b, fundamental, n) - float64(n)*fundamental
		if deviation <= prevDeviation {
			t.Errorf("partial %d deviation %v did not grow past %v", n, deviation, prevDeviation)
		}
		prevDeviation = deviation
	}
}

func TestDispersionCoeffBounds(t *testing.T) {
	for pitch := dissonaut.MinPitch; pitch <= dissonaut.MaxPitch; pitch++ {
		for _, stiffness := range []float64{0, 0.5, 1} {
			c := dispersionCoeff(stiffness, pitch)
			if c < 0 || c > 0.85 {
				t.Errorf("pitch %d stiffness %v: coefficient %v outside 0..0.85", pitch, stiffness, c)
			}
		}
	}
	if c := dispersionCoeff(0, 60); c != 0 {
		t.Errorf("zero stiffness gave coefficient %v", c)
	}
}
