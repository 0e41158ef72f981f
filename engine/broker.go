package engine

import (
	"time"

	"github.com/dissonaut/dissonaut"
	"github.com/dissonaut/dissonaut/synth"
)

type (
	// Broker carries the messages between the control context and the render
	// context. It is strictly one producer per channel: the bridge is the
	// sole sender on ToRenderer and the render context the sole sender on
	// ToControl. The channels are the only mutable state the two contexts
	// share; everything else crossing the boundary is an immutable Config.
	//
	// FinishedRenderer is never sent to, only closed, when the render
	// context has consumed a shutdown message and stopped; waiting for it
	// should be combined with a timeout:
	//    select {
	//      case <-FinishedRenderer:
	//      case <-time.After(3 * time.Second):
	//    }
	Broker struct {
		ToRenderer chan dissonaut.ControlMessage
		ToControl  chan MsgToControl

		FinishedRenderer chan struct{}
	}

	// MsgToControl is a message from the render context to the control
	// context. The frequently sent voice levels are not boxed to avoid
	// allocations; infrequent messages (ReadyMsg, Alert) travel in Data.
	MsgToControl struct {
		HasLevels bool
		Levels    [synth.MaxVoices]float32
		NumVoices int

		Data any
	}

	// ReadyMsg acknowledges that the render context has started rendering
	// and is consuming messages.
	ReadyMsg struct{}

	// Alert is a runtime diagnostic from the render context, routed to the
	// control plane instead of a logger so the render path never does I/O.
	Alert struct {
		Name     string
		Message  string
		Priority AlertPriority
	}

	AlertPriority int
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

// Queue capacities. The renderer queue bounds how many control messages can
// pile up between two blocks; when it is full, Bridge.Send reports the
// overflow to the caller instead of blocking or dropping.
const (
	toRendererCapacity = 512
	toControlCapacity  = 1024
)

func NewBroker() *Broker {
	return &Broker{
		ToRenderer:       make(chan dissonaut.ControlMessage, toRendererCapacity),
		ToControl:        make(chan MsgToControl, toControlCapacity),
		FinishedRenderer: make(chan struct{}),
	}
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Returns true if the value was sent,
// false otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from
// a channel, or timing out after t. ok will be false if the timeout occurred
// or if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
