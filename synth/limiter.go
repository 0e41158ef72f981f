package synth

import (
	"github.com/chewxy/math32"
	"github.com/dissonaut/dissonaut"
)

// Limiter is a peak limiter: it follows the signal magnitude with separate
// attack and release time constants and reduces gain so the output never
// exceeds the threshold by more than the configured tolerance.
type Limiter struct {
	threshold     float32 // linear
	ceiling       float32 // threshold * (1 + tolerance), hard bound
	attackCoef    float32
	releaseCoef   float32
	envelope      float32
	gainReduction float32
}

func NewLimiter(params dissonaut.LimiterParams, sampleRate int) *Limiter {
	l := &Limiter{gainReduction: 1}
	l.SetParams(params, sampleRate)
	return l
}

// SetParams recomputes the coefficients, keeping the envelope follower state
// so a parameter change does not cause a gain jump.
func (l *Limiter) SetParams(params dissonaut.LimiterParams, sampleRate int) {
	sr := float32(sampleRate)
	l.threshold = math32.Pow(10, float32(params.Threshold)/20)
	l.ceiling = l.threshold * (1 + float32(params.Tolerance))
	l.attackCoef = math32.Exp(-1 / (sr * float32(params.Attack)))
	l.releaseCoef = math32.Exp(-1 / (sr * float32(params.Release)))
}

// Process limits the buffer in place.
func (l *Limiter) Process(buf []float32) {
	for i, x := range buf {
		a := math32.Abs(x)
		if a > l.envelope {
			l.envelope = l.attackCoef*(l.envelope-a) + a
		} else {
			l.envelope = l.releaseCoef*(l.envelope-a) + a
		}
		if l.envelope > l.threshold {
			l.gainReduction = l.threshold / l.envelope
		} else {
			l.gainReduction = 1
		}
		y := x * l.gainReduction
		if y > l.ceiling {
			y = l.ceiling
		} else if y < -l.ceiling {
			y = -l.ceiling
		}
		buf[i] = y
	}
}

// GainReductionDB reports the current gain reduction in dB, for metering.
func (l *Limiter) GainReductionDB() float32 {
	return 20 * math32.Log10(l.gainReduction)
}
