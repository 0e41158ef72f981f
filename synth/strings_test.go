package synth

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/dissonaut/dissonaut"
)

func TestRenderBlockKeepAlive(t *testing.T) {
	s, err := NewStrings(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	buffer := make(dissonaut.AudioBuffer, 128)
	if !s.RenderBlock(buffer) {
		t.Fatal("RenderBlock returned false before shutdown")
	}
	s.HandleMessage(dissonaut.NoteOn(60, 1))
	if !s.RenderBlock(buffer) {
		t.Fatal("RenderBlock returned false while a note sounds")
	}
	s.HandleMessage(dissonaut.Shutdown())
	if s.RenderBlock(buffer) {
		t.Fatal("RenderBlock returned true after shutdown")
	}
	for i, frame := range buffer {
		if frame[0] != 0 || frame[1] != 0 {
			t.Fatalf("frame %d is %v after shutdown, expected silence", i, frame)
		}
	}
}

func TestRenderBlockChunksOddLengths(t *testing.T) {
	config := testConfig()
	config.BlockSize = 64
	s, err := NewStrings(config)
	if err != nil {
		t.Fatal(err)
	}
	s.HandleMessage(dissonaut.NoteOn(69, 1))
	buffer := make(dissonaut.AudioBuffer, 200) // not a multiple of the block size
	if !s.RenderBlock(buffer) {
		t.Fatal("RenderBlock returned false")
	}
	var total float64
	for _, frame := range buffer {
		total += float64(frame[0]) * float64(frame[0])
	}
	if total == 0 {
		t.Error("no sound rendered across chunk boundaries")
	}
}

func TestLimiterCeilingUnderMaxPolyphony(t *testing.T) {
	config := testConfig()
	config.MaxVoices = dissonaut.MaxVoiceLimit
	s, err := NewStrings(config)
	if err != nil {
		t.Fatal(err)
	}
	pitch := dissonaut.Pitch(40)
	for i := 0; i < config.MaxVoices; i++ {
		s.HandleMessage(dissonaut.NoteOn(pitch, 1)) // 40..102, all within range
		pitch += 2
	}
	if pitch-2 > dissonaut.MaxPitch {
		t.Fatalf("pitch walk left the valid range at %d", pitch-2)
	}
	params := config.Effects.Limiter
	ceiling := math32.Pow(10, float32(params.Threshold)/20) * (1 + float32(params.Tolerance))
	buffer := make(dissonaut.AudioBuffer, config.BlockSize)
	for block := 0; block < 200; block++ {
		s.RenderBlock(buffer)
		for i, frame := range buffer {
			if math32.Abs(frame[0]) > ceiling || math32.Abs(frame[1]) > ceiling {
				t.Fatalf("block %d frame %d is %v, above the ceiling %v", block, i, frame, ceiling)
			}
		}
	}
}

func TestRenderBlockDoesNotAllocate(t *testing.T) {
	s, err := NewStrings(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, pitch := range []dissonaut.Pitch{60, 64, 67, 72} {
		s.HandleMessage(dissonaut.NoteOn(pitch, 1))
	}
	buffer := make(dissonaut.AudioBuffer, 128)
	allocs := testing.AllocsPerRun(100, func() {
		s.RenderBlock(buffer)
	})
	if allocs != 0 {
		t.Errorf("RenderBlock allocated %v times per run", allocs)
	}
}

func TestSetEffectsTakesEffect(t *testing.T) {
	config := testConfig()
	s, err := NewStrings(config)
	if err != nil {
		t.Fatal(err)
	}
	effects := config.Effects
	effects.Reverb.Wet = 0
	effects.Reverb.Dry = 0
	s.HandleMessage(dissonaut.SetEffects(effects))
	s.HandleMessage(dissonaut.NoteOn(69, 1))
	buffer := make(dissonaut.AudioBuffer, config.BlockSize)
	var total float64
	for i := 0; i < 20; i++ {
		s.RenderBlock(buffer)
		for _, frame := range buffer {
			total += float64(frame[0]) * float64(frame[0])
		}
	}
	if total != 0 {
		t.Errorf("zero wet and dry mix still produced energy %v", total)
	}
}

func TestLevels(t *testing.T) {
	config := testConfig()
	config.Envelope = dissonaut.EnvelopeParams{Sustain: 1}
	s, err := NewStrings(config)
	if err != nil {
		t.Fatal(err)
	}
	var levels [MaxVoices]float32
	if n := s.Levels(&levels); n != 0 {
		t.Fatalf("silent synth reported %d voices", n)
	}
	s.HandleMessage(dissonaut.NoteOn(60, 0.5))
	s.HandleMessage(dissonaut.NoteOn(67, 1))
	buffer := make(dissonaut.AudioBuffer, config.BlockSize)
	s.RenderBlock(buffer)
	n := s.Levels(&levels)
	if n != 2 {
		t.Fatalf("Levels reported %d voices, expected 2", n)
	}
	if levels[0] <= 0 || levels[1] <= 0 {
		t.Errorf("sounding voices reported levels %v and %v", levels[0], levels[1])
	}
	if levels[0] >= levels[1] {
		t.Errorf("half velocity voice level %v should be below full velocity %v", levels[0], levels[1])
	}
}
