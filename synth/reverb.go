package synth

import "github.com/dissonaut/dissonaut"

// Schroeder reverberator tuning. The comb delays are mutually detuned so
// their echo patterns do not reinforce each other.
var (
	combDelaysMs    = [4]float32{29.7, 37.1, 41.1, 43.7}
	allpassDelaysMs = [2]float32{5.0, 1.7}
)

const (
	allpassFeedback = 0.5
	maxCombFeedback = 0.98
)

type comb struct {
	delay    []float32
	index    int
	feedback float32
	damping  float32
	store    float32
}

func (c *comb) process(input float32) float32 {
	output := c.delay[c.index]
	c.store = output*(1-c.damping) + c.store*c.damping
	c.delay[c.index] = input + c.store*c.feedback
	c.index++
	if c.index == len(c.delay) {
		c.index = 0
	}
	return output
}

type allpass struct {
	delay []float32
	index int
}

func (a *allpass) process(input float32) float32 {
	delayed := a.delay[a.index]
	output := -input*allpassFeedback + delayed
	a.delay[a.index] = input + delayed*allpassFeedback
	a.index++
	if a.index == len(a.delay) {
		a.index = 0
	}
	return output
}

// Reverb is a Schroeder reverberator: four damped feedback combs in parallel
// followed by two allpass diffusers, mixed with the dry signal.
type Reverb struct {
	wet, dry  float32
	combs     [4]comb
	allpasses [2]allpass
}

func NewReverb(params dissonaut.ReverbParams, sampleRate int) *Reverb {
	r := &Reverb{}
	for i := range r.combs {
		r.combs[i].delay = make([]float32, int(combDelaysMs[i]*0.001*float32(sampleRate)))
	}
	for i := range r.allpasses {
		r.allpasses[i].delay = make([]float32, int(allpassDelaysMs[i]*0.001*float32(sampleRate)))
	}
	r.SetParams(params)
	return r
}

// SetParams applies new parameters without clearing the delay lines, so the
// tail carries over a parameter change. The comb feedback is capped strictly
// below 1 so the network stays stable for every allowed room size.
func (r *Reverb) SetParams(params dissonaut.ReverbParams) {
	r.wet = float32(params.Wet)
	r.dry = float32(params.Dry)
	feedback := float32(params.RoomSize*0.6 + 0.4)
	if feedback > maxCombFeedback {
		feedback = maxCombFeedback
	}
	damping := float32(params.Damp)
	for i := range r.combs {
		r.combs[i].feedback = feedback
		r.combs[i].damping = damping
	}
}

// Process filters the buffer in place.
func (r *Reverb) Process(buf []float32) {
	for i, x := range buf {
		var sum float32
		for j := range r.combs {
			sum += r.combs[j].process(x)
		}
		sum *= 1.0 / float32(len(r.combs))
		for j := range r.allpasses {
			sum = r.allpasses[j].process(sum)
		}
		buf[i] = r.dry*x + r.wet*sum
	}
}
