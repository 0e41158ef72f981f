package dissonaut

import "fmt"

// MessageKind discriminates the control messages delivered from the control
// context to the render context.
type MessageKind int

const (
	KindNoteOn MessageKind = iota
	KindNoteOff
	KindSetEnvelope
	KindSetEffects
	KindShutdown
)

func (k MessageKind) String() string {
	switch k {
	case KindNoteOn:
		return "NoteOn"
	case KindNoteOff:
		return "NoteOff"
	case KindSetEnvelope:
		return "SetEnvelope"
	case KindSetEffects:
		return "SetEffects"
	case KindShutdown:
		return "Shutdown"
	}
	return fmt.Sprintf("MessageKind(%d)", int(k))
}

// ControlMessage is a single command for the render context. Construct them
// with NoteOn, NoteOff, SetEnvelope, SetEffects or Shutdown; a malformed
// message is a programming error and the constructors panic on one.
type ControlMessage struct {
	Kind     MessageKind
	Pitch    Pitch
	Velocity float64
	Envelope EnvelopeParams
	Effects  EffectParams
}

func NoteOn(pitch Pitch, velocity float64) ControlMessage {
	if !pitch.Valid() {
		panic(fmt.Sprintf("NoteOn: pitch %d outside %d..%d", pitch, MinPitch, MaxPitch))
	}
	if velocity < 0 || velocity > 1 {
		panic(fmt.Sprintf("NoteOn: velocity %v outside 0..1", velocity))
	}
	return ControlMessage{Kind: KindNoteOn, Pitch: pitch, Velocity: velocity}
}

func NoteOff(pitch Pitch) ControlMessage {
	if !pitch.Valid() {
		panic(fmt.Sprintf("NoteOff: pitch %d outside %d..%d", pitch, MinPitch, MaxPitch))
	}
	return ControlMessage{Kind: KindNoteOff, Pitch: pitch}
}

func SetEnvelope(params EnvelopeParams) ControlMessage {
	if err := params.Validate(); err != nil {
		panic(fmt.Sprintf("SetEnvelope: %v", err))
	}
	return ControlMessage{Kind: KindSetEnvelope, Envelope: params}
}

func SetEffects(params EffectParams) ControlMessage {
	if err := params.Validate(); err != nil {
		panic(fmt.Sprintf("SetEffects: %v", err))
	}
	return ControlMessage{Kind: KindSetEffects, Effects: params}
}

// Shutdown tells the render context to fade out and stop rendering. It is
// delivered by the engine during Close; sending it through the normal Send
// path is rejected there.
func Shutdown() ControlMessage {
	return ControlMessage{Kind: KindShutdown}
}

// Check validates an already constructed message, for messages that crossed
// a trust boundary (e.g. deserialized ones).
func (m ControlMessage) Check() error {
	switch m.Kind {
	case KindNoteOn:
		if !m.Pitch.Valid() {
			return fmt.Errorf("pitch %d outside %d..%d", m.Pitch, MinPitch, MaxPitch)
		}
		if m.Velocity < 0 || m.Velocity > 1 {
			return fmt.Errorf("velocity %v outside 0..1", m.Velocity)
		}
	case KindNoteOff:
		if !m.Pitch.Valid() {
			return fmt.Errorf("pitch %d outside %d..%d", m.Pitch, MinPitch, MaxPitch)
		}
	case KindSetEnvelope:
		return m.Envelope.Validate()
	case KindSetEffects:
		return m.Effects.Validate()
	case KindShutdown:
	default:
		return fmt.Errorf("unknown message kind %d", int(m.Kind))
	}
	return nil
}
