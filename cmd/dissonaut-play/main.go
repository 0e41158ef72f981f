package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dissonaut/dissonaut"
	"github.com/dissonaut/dissonaut/engine"
	"github.com/dissonaut/dissonaut/engine/gomidi"
	"github.com/dissonaut/dissonaut/oto"
	"github.com/dissonaut/dissonaut/synth"
	"github.com/dissonaut/dissonaut/version"
)

func main() {
	preset := flag.String("p", "", "Load synth parameters from a .yml preset file.")
	chord := flag.String("chord", "60,64,67", "Comma-separated MIDI note numbers to play.")
	duration := flag.Float64("dur", 3, "How long the notes are held, in seconds.")
	rawOut := flag.Bool("r", false, "Render the chord offline and save it as a .raw stereo float32 file instead of playing.")
	wavOut := flag.Bool("w", false, "Render the chord offline and save it as a .wav file instead of playing.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	directory := flag.String("o", "", "Directory where to output the rendered file. Created if needed. Defaults to the working directory.")
	midiPrefix := flag.String("midi", "", "Open the first MIDI input whose name starts with this prefix and play it live.")
	firstMidi := flag.Bool("f", false, "Open the first available MIDI input and play it live.")
	listMidi := flag.Bool("l", false, "List the available MIDI inputs and exit.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	config := dissonaut.DefaultConfig()
	if *preset != "" {
		presetBytes, err := os.ReadFile(*preset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read preset %v: %v\n", *preset, err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(presetBytes, &config); err != nil {
			fmt.Fprintf(os.Stderr, "could not parse preset %v: %v\n", *preset, err)
			os.Exit(1)
		}
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *listMidi {
		midiContext := gomidi.NewContext(nil)
		defer midiContext.Close()
		midiContext.InputDevices(func(device gomidi.RTMIDIDevice) bool {
			fmt.Println(device)
			return true
		})
		os.Exit(0)
	}
	pitches, err := parseChord(*chord)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not parse chord: %v\n", err)
		os.Exit(1)
	}
	if *rawOut || *wavOut {
		if err := renderOffline(config, pitches, *duration, *rawOut, *wavOut, *pcm, *stdout, *directory, *preset); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := playLive(config, pitches, *duration, *midiPrefix, *firstMidi); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func parseChord(chord string) ([]dissonaut.Pitch, error) {
	var pitches []dissonaut.Pitch
	for _, field := range strings.Split(chord, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		note, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%q is not a MIDI note number: %v", field, err)
		}
		pitch := dissonaut.Pitch(note)
		if !pitch.Valid() {
			return nil, fmt.Errorf("note %d outside %d..%d", note, dissonaut.MinPitch, dissonaut.MaxPitch)
		}
		pitches = append(pitches, pitch)
	}
	return pitches, nil
}

func renderOffline(config dissonaut.Config, pitches []dissonaut.Pitch, duration float64, rawOut, wavOut, pcm, stdout bool, directory, preset string) error {
	renderer, err := synth.NewStrings(config)
	if err != nil {
		return fmt.Errorf("could not create synth: %v", err)
	}
	var events []dissonaut.NoteEvent
	for _, pitch := range pitches {
		events = append(events,
			dissonaut.NoteEvent{When: 0, On: true, Pitch: pitch, Velocity: 0.8},
			dissonaut.NoteEvent{When: duration, On: false, Pitch: pitch})
	}
	// Leave room after the note offs for the release and the reverb tail.
	buffer, err := dissonaut.Play(renderer, config, events, duration+config.Envelope.Release+2)
	if err != nil {
		return fmt.Errorf("rendering failed: %v", err)
	}
	name := "chord"
	if preset != "" {
		_, name = filepath.Split(preset)
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if rawOut {
		raw, err := dissonaut.Raw(buffer, pcm)
		if err != nil {
			return fmt.Errorf("could not generate .raw file: %v", err)
		}
		if err := output(name+".raw", raw, stdout, directory); err != nil {
			return fmt.Errorf("error outputting .raw file: %v", err)
		}
	}
	if wavOut {
		wav, err := dissonaut.Wav(buffer, config.SampleRate, pcm)
		if err != nil {
			return fmt.Errorf("could not generate .wav file: %v", err)
		}
		if err := output(name+".wav", wav, stdout, directory); err != nil {
			return fmt.Errorf("error outputting .wav file: %v", err)
		}
	}
	return nil
}

func output(name string, contents []byte, stdout bool, directory string) error {
	if stdout {
		os.Stdout.Write(contents)
		return nil
	}
	dir := directory
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
		}
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %v", dir, err)
	}
	f := filepath.Join(dir, name)
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %v", f, err)
	}
	return nil
}

func playLive(config dissonaut.Config, pitches []dissonaut.Pitch, duration float64, midiPrefix string, firstMidi bool) error {
	audioContext, err := oto.NewContext(config.SampleRate, config.BlockSize)
	if err != nil {
		return fmt.Errorf("could not acquire oto AudioContext: %v", err)
	}
	defer audioContext.Close()
	bridge, err := engine.NewBridge(config, audioContext)
	if err != nil {
		return fmt.Errorf("could not create engine: %v", err)
	}
	// Audio starts on an explicit gesture, not as a side effect of launching.
	fmt.Println("Press enter to start audio.")
	bufio.NewReader(os.Stdin).ReadString('\n')
	if err := bridge.Start(); err != nil {
		return fmt.Errorf("could not start engine: %v", err)
	}
	defer bridge.Close()
	midiContext := gomidi.NewContext(bridge)
	defer midiContext.Close()
	if err := midiContext.TryToOpenBy(midiPrefix, firstMidi); err != nil {
		return fmt.Errorf("could not open MIDI input: %v", err)
	}
	if midiContext.HasDeviceOpen() {
		fmt.Println("Playing MIDI input; press enter to quit.")
		bufio.NewReader(os.Stdin).ReadString('\n')
		return nil
	}
	for _, pitch := range pitches {
		if err := bridge.Send(dissonaut.NoteOn(pitch, 0.8)); err != nil {
			return fmt.Errorf("could not send note on: %v", err)
		}
	}
	time.Sleep(time.Duration(duration * float64(time.Second)))
	for _, pitch := range pitches {
		if err := bridge.Send(dissonaut.NoteOff(pitch)); err != nil {
			return fmt.Errorf("could not send note off: %v", err)
		}
	}
	// Let the release and the reverb tail play out before shutting down.
	time.Sleep(time.Duration((config.Envelope.Release + 2) * float64(time.Second)))
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Dissonaut command line utility for playing chords and MIDI input through the string synth.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
