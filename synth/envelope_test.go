package synth

import (
	"testing"

	"github.com/dissonaut/dissonaut"
)

func TestEnvelopePhaseOrder(t *testing.T) {
	params := dissonaut.EnvelopeParams{Attack: 0.001, Decay: 0.001, Sustain: 0.5, Release: 0.001}
	e := NewEnvelope(params, 1000)
	if e.Phase() != PhaseAttack {
		t.Fatalf("initial phase %v, expected Attack", e.Phase())
	}
	prev := float32(0)
	for e.Phase() == PhaseAttack {
		g := e.Next()
		if g < prev {
			t.Fatalf("attack gain decreased from %v to %v", prev, g)
		}
		prev = g
	}
	if e.Phase() != PhaseDecay {
		t.Fatalf("after attack phase %v, expected Decay", e.Phase())
	}
	for e.Phase() == PhaseDecay {
		g := e.Next()
		if g > prev {
			t.Fatalf("decay gain increased from %v to %v", prev, g)
		}
		prev = g
	}
	if e.Phase() != PhaseSustain {
		t.Fatalf("after decay phase %v, expected Sustain", e.Phase())
	}
	for i := 0; i < 100; i++ {
		if g := e.Next(); g != 0.5 {
			t.Fatalf("sustain gain %v, expected 0.5", g)
		}
	}
	e.Release()
	if e.Phase() != PhaseRelease {
		t.Fatalf("after Release phase %v, expected Release", e.Phase())
	}
	prev = 0.5
	for e.Phase() == PhaseRelease {
		g := e.Next()
		if g > prev {
			t.Fatalf("release gain increased from %v to %v", prev, g)
		}
		prev = g
	}
	if e.Phase() != PhaseDone {
		t.Fatalf("final phase %v, expected Done", e.Phase())
	}
	if g := e.Next(); g != 0 {
		t.Fatalf("done gain %v, expected 0", g)
	}
}

func TestEnvelopeZeroDurations(t *testing.T) {
	e := NewEnvelope(dissonaut.EnvelopeParams{Sustain: 0.25}, 44100)
	e.Next()
	e.Next()
	if e.Phase() != PhaseSustain {
		t.Fatalf("zero attack and decay should reach Sustain in two samples, got %v", e.Phase())
	}
	e.Release()
	e.Next()
	if e.Phase() != PhaseDone {
		t.Fatalf("zero release should reach Done in one sample, got %v", e.Phase())
	}
}

func TestEnvelopeReleaseDuringAttackStillSounds(t *testing.T) {
	// A release before the first sample has been advanced must not kill the
	// note at level zero; the attack plays out first, then the release.
	const sampleRate = 1000
	params := dissonaut.EnvelopeParams{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.05}
	e := NewEnvelope(params, sampleRate)
	e.Release()
	if e.Phase() != PhaseAttack {
		t.Fatalf("phase %v after an immediate release, expected the attack to keep going", e.Phase())
	}
	var peak float32
	samples := 0
	for e.Phase() != PhaseDone {
		if g := e.Next(); g > peak {
			peak = g
		}
		samples++
		if samples > 10*sampleRate {
			t.Fatal("envelope never finished")
		}
	}
	if peak < 1 {
		t.Errorf("peak level %v, expected the attack to reach 1 before releasing", peak)
	}
	expected := int((params.Attack + params.Release) * sampleRate)
	if samples < expected-2 || samples > expected+2 {
		t.Errorf("attack plus release took %d samples, expected about %d", samples, expected)
	}
}

func TestEnvelopeReleaseDuration(t *testing.T) {
	// The release ramp takes the configured time no matter which level it
	// starts from.
	const sampleRate = 1000
	for _, sustain := range []float64{1, 0.5, 0.1} {
		e := NewEnvelope(dissonaut.EnvelopeParams{Sustain: sustain, Release: 0.1}, sampleRate)
		e.Next()
		e.Next()
		e.Release()
		samples := 0
		for e.Phase() != PhaseDone {
			e.Next()
			samples++
			if samples > 10*sampleRate {
				t.Fatal("release never finished")
			}
		}
		expected := int(0.1 * sampleRate)
		if samples < expected-1 || samples > expected+1 {
			t.Errorf("sustain %v: release took %d samples, expected about %d", sustain, samples, expected)
		}
	}
}

func TestEnvelopeJitterIsMeanPreserving(t *testing.T) {
	params := dissonaut.EnvelopeParams{Sustain: 0.5, Jitter: 0.2}
	up := NewEnvelope(params, 44100)
	down := NewEnvelope(params, 44100)
	up.Next()
	up.Next()
	down.Next()
	down.Next()
	up.SetBlockJitter(1)
	down.SetBlockJitter(-1)
	sum := up.Next() + down.Next()
	if sum < 1-1e-6 || sum > 1+1e-6 {
		t.Errorf("symmetric jitter gains summed to %v, expected 1", sum)
	}
}
