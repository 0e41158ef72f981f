package synth

import (
	"math"

	"github.com/dissonaut/dissonaut"
)

// Young's modulus of steel in Pa.
const youngsModulusSteel = 2e11

// stringScale approximates diameter (m), speaking length (m) and tension (N)
// of a piano string for a pitch, following typical grand piano scaling: long
// thick low-tension strings in the bass, short thin high-tension strings in
// the treble, with wound bass strings behaving effectively stiffer.
func stringScale(pitch dissonaut.Pitch) (diameter, length, tension float64) {
	ratio := float64(pitch-dissonaut.MinPitch) / float64(dissonaut.MaxPitch-dissonaut.MinPitch)
	length = 2 * (1 - 0.95*ratio)
	diameter = (1 - 0.47*ratio) * 0.001
	if ratio < 0.3 {
		diameter *= 1.5
	}
	tension = 100 + 100*ratio
	return
}

// InharmonicityB returns the inharmonicity coefficient
// B = pi^3 d^4 E / (64 T L^2) for the string a pitch would be played on.
func InharmonicityB(pitch dissonaut.Pitch) float64 {
	d, l, t := stringScale(pitch)
	return math.Pow(math.Pi, 3) * math.Pow(d, 4) * youngsModulusSteel / (64 * t * l * l)
}

// PartialFrequency returns the frequency of the nth partial of a string with
// inharmonicity coefficient b: f_n = n f0 sqrt(1 + B n^2). The fundamental
// is returned exactly.
func PartialFrequency(b, fundamental float64, n int) float64 {
	if n <= 1 {
		return fundamental
	}
	nf := float64(n)
	return nf * fundamental * math.Sqrt(1+b*nf*nf)
}

// dispersionCoeff maps the stiffness parameter and the pitch's register to
// the magnitude of the dispersion allpass coefficient. The register scaling
// follows InharmonicityB relative to a typical mid-range string coefficient.
func dispersionCoeff(stiffness float64, pitch dissonaut.Pitch) float32 {
	const typicalB = 1e-3
	amount := stiffness * math.Sqrt(InharmonicityB(pitch)/typicalB)
	if amount > 1 {
		amount = 1
	}
	return float32(0.85 * amount)
}
