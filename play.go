package dissonaut

import (
	"errors"
	"sort"
)

// NoteEvent is a single scheduled note on or off, used by Play to drive a
// Renderer offline.
type NoteEvent struct {
	When     float64 // seconds from the start of rendering
	On       bool
	Pitch    Pitch
	Velocity float64 // only meaningful when On
}

// Play renders duration seconds of audio offline, delivering the events to
// the renderer at block granularity: every event is handled just before the
// block containing its timestamp is rendered. The events may be given in any
// order. Play returns the rendered buffer, which may be shorter than
// requested if the renderer stops early.
func Play(renderer Renderer, config Config, events []NoteEvent, duration float64) (AudioBuffer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if duration < 0 {
		return nil, errors.New("Play: duration should be non-negative")
	}
	sorted := make([]NoteEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].When < sorted[j].When
	})
	frames := int(duration * float64(config.SampleRate))
	buffer := make(AudioBuffer, frames)
	block := make(AudioBuffer, config.BlockSize)
	pos, next := 0, 0
	for pos < frames {
		blockEnd := pos + config.BlockSize
		for next < len(sorted) {
			frame := int(sorted[next].When * float64(config.SampleRate))
			if frame >= blockEnd {
				break
			}
			e := sorted[next]
			if e.On {
				renderer.HandleMessage(NoteOn(e.Pitch, e.Velocity))
			} else {
				renderer.HandleMessage(NoteOff(e.Pitch))
			}
			next++
		}
		n := frames - pos
		if n > config.BlockSize {
			n = config.BlockSize
		}
		if !renderer.RenderBlock(block[:n]) {
			return buffer[:pos], nil
		}
		copy(buffer[pos:], block[:n])
		pos = blockEnd
	}
	return buffer, nil
}
