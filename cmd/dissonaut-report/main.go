// Command dissonaut-report prints a text report of the dissonance model:
// the roughness of every interval within the octave, the just ratios and
// their tempered errors, and the string inharmonicity across the registers.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/dissonaut/dissonaut"
	"github.com/dissonaut/dissonaut/dissonance"
	"github.com/dissonaut/dissonaut/synth"
	"github.com/dissonaut/dissonaut/version"
)

type (
	intervalRow struct {
		Interval   dissonance.Interval
		JustNum    int
		JustDen    int
		ErrorCents float64
		Complexity float64
		Dissonance float64
	}

	chordRow struct {
		Name       string
		Pitches    []dissonaut.Pitch
		Dissonance float64
	}

	registerRow struct {
		Pitch     dissonaut.Pitch
		Frequency float64
		B         float64
		Partial2  float64 // sharpening of the 2nd partial, cents
		Partial6  float64 // sharpening of the 6th partial, cents
	}

	reportData struct {
		Partials  int
		RefFreq   float64
		Intervals []intervalRow
		Chords    []chordRow
		Registers []registerRow
	}
)

const reportTemplate = `{{ "dissonance report" | upper }} ({{ .Partials }} partials, {{ printf "%.2f" .RefFreq }} Hz reference)

{{ "intervals within the octave" | title }}
{{ repeat 60 "-" }}
{{ printf "%-18v %6v %9v %11v %11v" "interval" "just" "error" "complexity" "roughness" }}
{{- range .Intervals }}
{{ printf "%-18v %3d/%-3d %8.2fc %11.3f %11.3f" (.Interval.String | title) .JustNum .JustDen .ErrorCents .Complexity .Dissonance }}
{{- end }}

{{ "chords (normalized roughness)" | title }}
{{ repeat 60 "-" }}
{{- range .Chords }}
{{ printf "%-18v %v %8.3f" .Name .Pitches .Dissonance }}
{{- end }}

{{ "string inharmonicity per register" | title }}
{{ repeat 60 "-" }}
{{ printf "%-6v %10v %12v %10v %10v" "pitch" "freq" "B" "+2nd" "+6th" }}
{{- range .Registers }}
{{ printf "%-6v %9.2f %12.2e %9.2fc %9.2fc" .Pitch .Frequency .B .Partial2 .Partial6 }}
{{- end }}
`

func main() {
	partials := flag.Int("partials", dissonance.DefaultPartials, "Number of harmonic partials per tone.")
	refFreq := flag.Float64("ref", dissonance.DefaultRefFreq, "Reference frequency of the lowest fundamental, in Hz.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	model := dissonance.Model{Partials: *partials, RefFreq: *refFreq}
	data := reportData{Partials: *partials, RefFreq: *refFreq}
	for i := dissonance.Unison; i < dissonance.NumIntervals; i++ {
		num, den := i.JustRatio()
		data.Intervals = append(data.Intervals, intervalRow{
			Interval:   i,
			JustNum:    num,
			JustDen:    den,
			ErrorCents: i.TemperedJustErrorCents(),
			Complexity: i.RatioComplexity(),
			Dissonance: model.IntervalDissonance(i.Semitones()),
		})
	}
	for _, c := range []chordRow{
		{Name: "major triad", Pitches: []dissonaut.Pitch{60, 64, 67}},
		{Name: "minor triad", Pitches: []dissonaut.Pitch{60, 63, 67}},
		{Name: "dominant 7th", Pitches: []dissonaut.Pitch{60, 64, 67, 70}},
		{Name: "diminished", Pitches: []dissonaut.Pitch{60, 63, 66}},
		{Name: "cluster", Pitches: []dissonaut.Pitch{60, 61, 62}},
	} {
		c.Dissonance = model.DissonanceNormalized(c.Pitches)
		data.Chords = append(data.Chords, c)
	}
	tuning := dissonaut.DefaultConfig().Tuning
	for pitch := dissonaut.MinPitch; pitch <= dissonaut.MaxPitch; pitch += 12 {
		f := tuning.Frequency(pitch)
		b := synth.InharmonicityB(pitch)
		data.Registers = append(data.Registers, registerRow{
			Pitch:     pitch,
			Frequency: f,
			B:         b,
			Partial2:  sharpeningCents(b, f, 2),
			Partial6:  sharpeningCents(b, f, 6),
		})
	}
	tmpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(reportTemplate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not parse the report template: %v\n", err)
		os.Exit(1)
	}
	if err := tmpl.Execute(os.Stdout, data); err != nil {
		fmt.Fprintf(os.Stderr, "could not render the report: %v\n", err)
		os.Exit(1)
	}
}

// sharpeningCents is how many cents partial n lands above the harmonic n*f.
func sharpeningCents(b, fundamental float64, n int) float64 {
	stretched := synth.PartialFrequency(b, fundamental, n)
	harmonic := float64(n) * fundamental
	return 1200 * math.Log2(stretched/harmonic)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Dissonaut command line utility for printing dissonance and inharmonicity tables.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
