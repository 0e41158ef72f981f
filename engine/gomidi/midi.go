// Package gomidi feeds MIDI note events into an engine.Bridge through the
// rtmidi driver.
package gomidi

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dissonaut/dissonaut"
	"github.com/dissonaut/dissonaut/engine"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type (
	RTMIDIContext struct {
		driver    *rtmididrv.Driver
		currentIn drivers.In
		stop      func()
		bridge    *engine.Bridge
		dropped   int
	}

	RTMIDIDevice struct {
		context *RTMIDIContext
		in      drivers.In
	}
)

// NewContext opens the MIDI driver. A nil driver just means no MIDI input is
// available; everything else keeps working.
func NewContext(bridge *engine.Bridge) *RTMIDIContext {
	m := &RTMIDIContext{bridge: bridge}
	m.driver, _ = rtmididrv.New()
	return m
}

func (c *RTMIDIContext) InputDevices(yield func(RTMIDIDevice) bool) {
	if c.driver == nil {
		return
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return
	}
	for _, in := range ins {
		if !yield(RTMIDIDevice{context: c, in: in}) {
			break
		}
	}
}

// Open an input device while closing the currently open if necessary.
func (d RTMIDIDevice) Open() error {
	c := d.context
	if c.currentIn == d.in {
		return nil
	}
	if c.driver == nil {
		return errors.New("no driver available")
	}
	c.closeCurrent()
	c.currentIn = d.in
	if err := d.in.Open(); err != nil {
		c.currentIn = nil
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stop, err := midi.ListenTo(d.in, c.HandleMessage)
	if err != nil {
		d.in.Close()
		c.currentIn = nil
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	c.stop = stop
	return nil
}

func (d RTMIDIDevice) String() string {
	return d.in.String()
}

// TryToOpenBy opens the first input device whose name starts with namePrefix,
// or simply the first device if takeFirst is set.
func (c *RTMIDIContext) TryToOpenBy(namePrefix string, takeFirst bool) error {
	if namePrefix == "" && !takeFirst {
		return nil
	}
	var opened error
	found := false
	c.InputDevices(func(device RTMIDIDevice) bool {
		if takeFirst || strings.HasPrefix(device.String(), namePrefix) {
			found = true
			opened = device.Open()
			return false
		}
		return true
	})
	if !found {
		if takeFirst {
			return errors.New("could not find any MIDI input")
		}
		return fmt.Errorf("could not find any MIDI input starting with %q", namePrefix)
	}
	return opened
}

// HandleMessage translates note events into control messages. It runs on the
// driver's callback goroutine; the bridge is safe to call from here. Keys
// outside the supported range come from the outside world, not from a bug,
// so they are filtered rather than panicking; a full queue drops the event,
// since a stale note would be worse than a missing one.
func (c *RTMIDIContext) HandleMessage(msg midi.Message, timestampms int32) {
	var channel, key, velocity uint8
	isNoteOn := msg.GetNoteOn(&channel, &key, &velocity)
	isNoteOff := !isNoteOn && msg.GetNoteOff(&channel, &key, &velocity)
	if !isNoteOn && !isNoteOff {
		return
	}
	pitch := dissonaut.Pitch(key)
	if !pitch.Valid() {
		return
	}
	var cm dissonaut.ControlMessage
	if isNoteOn && velocity > 0 {
		cm = dissonaut.NoteOn(pitch, velocityCurve(velocity))
	} else {
		cm = dissonaut.NoteOff(pitch)
	}
	if c.bridge.Send(cm) != nil {
		c.dropped++
	}
}

// Dropped returns how many events were lost to a full or unready queue.
func (c *RTMIDIContext) Dropped() int { return c.dropped }

func (c *RTMIDIContext) HasDeviceOpen() bool {
	return c.currentIn != nil && c.currentIn.IsOpen()
}

func (c *RTMIDIContext) closeCurrent() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.HasDeviceOpen() {
		c.currentIn.Close()
	}
	c.currentIn = nil
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	c.closeCurrent()
	c.driver.Close()
}

// velocityCurve maps 0..127 to 0..1 with a mild power curve, so soft
// playing keeps more presence than a linear map would give it.
func velocityCurve(velocity uint8) float64 {
	return math.Pow(float64(velocity)/127, 0.8)
}
