// Package engine is the control plane: it owns the lifecycle of the render
// context, the message broker between the two contexts and the adapter
// driving the host audio output.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dissonaut/dissonaut"
	"github.com/dissonaut/dissonaut/synth"
)

// BridgeState is the lifecycle state of the render context as seen by the
// control plane. Transitions are monotonic: a bridge never returns to an
// earlier state, and the only terminal states are Closed and Failed.
type BridgeState int

const (
	StateUninitialized BridgeState = iota
	StateInitializing
	StateReady
	StateShuttingDown
	StateClosed
	StateFailed
)

func (s BridgeState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitializing:
		return "Initializing"
	case StateReady:
		return "Ready"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateClosed:
		return "Closed"
	case StateFailed:
		return "Failed"
	}
	return fmt.Sprintf("BridgeState(%d)", int(s))
}

var (
	// ErrQueueFull is returned by Send when the renderer queue is full. The
	// caller decides whether to retry, drop or slow down; the bridge never
	// drops a message silently and never blocks the render context.
	ErrQueueFull = errors.New("message queue is full")
	// ErrInvalidState is returned for operations not allowed in the current
	// lifecycle state.
	ErrInvalidState = errors.New("operation not allowed in this state")
	// ErrClosed is returned by Send after the bridge has begun shutting
	// down.
	ErrClosed = errors.New("bridge is closed")
)

// maxPendingMessages bounds how many messages can be queued before the
// render context acknowledges startup. A user can at most press a handful of
// keys in that window.
const maxPendingMessages = 128

// readyTimeout is how long Start waits for the render context's
// acknowledgment, and Close for its shutdown.
const readyTimeout = 3 * time.Second

// Bridge owns the control side of the context boundary: it starts and stops
// the render context through an AudioContext, queues messages submitted
// before the context is ready and delivers them in order once it is. All
// methods are safe to call from multiple control goroutines (UI and MIDI);
// the mutex is on the control side only and is never touched by the render
// context.
type Bridge struct {
	mutex   sync.Mutex
	state   BridgeState
	err     error
	config  dissonaut.Config
	host    dissonaut.AudioContext
	broker  *Broker
	handle  dissonaut.CloserWaiter
	pending []dissonaut.ControlMessage
}

func NewBridge(config dissonaut.Config, host dissonaut.AudioContext) (*Bridge, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("NewBridge: %v", err)
	}
	return &Bridge{
		config: config,
		host:   host,
		broker: NewBroker(),
	}, nil
}

// State returns the current lifecycle state.
func (b *Bridge) State() BridgeState {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.state
}

// Err returns the failure that put the bridge in the Failed state, or nil.
func (b *Bridge) Err() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.err
}

// Start creates the render context and blocks until it acknowledges that it
// is rendering, then flushes the messages queued so far in submission order.
// On failure the bridge moves to the Failed state and the error stays
// observable through Err. Start must be called from the Uninitialized state;
// hosts typically gate the call on a user gesture.
func (b *Bridge) Start() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.state != StateUninitialized {
		return fmt.Errorf("Start in state %v: %w", b.state, ErrInvalidState)
	}
	b.state = StateInitializing
	s, err := synth.NewStrings(b.config)
	if err != nil {
		return b.fail(fmt.Errorf("creating synth: %v", err))
	}
	handle, err := b.host.Start(NewPlayer(s, b.broker))
	if err != nil {
		return b.fail(fmt.Errorf("starting render context: %v", err))
	}
	b.handle = handle
	if !b.awaitReady() {
		handle.Close()
		return b.fail(errors.New("render context did not acknowledge startup"))
	}
	b.state = StateReady
	for _, msg := range b.pending {
		// the queue is empty and larger than the pending buffer, so this
		// cannot overflow
		TrySend(b.broker.ToRenderer, msg)
	}
	b.pending = nil
	return nil
}

func (b *Bridge) awaitReady() bool {
	deadline := time.Now().Add(readyTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		msg, ok := TimeoutReceive(b.broker.ToControl, remaining)
		if !ok {
			return false
		}
		if _, ready := msg.Data.(ReadyMsg); ready {
			return true
		}
	}
}

func (b *Bridge) fail(err error) error {
	b.state = StateFailed
	b.err = err
	return err
}

// Send submits one control message to the render context. Before the
// context is ready the message is queued; once ready it goes straight to
// the renderer queue. A full queue surfaces as ErrQueueFull without
// blocking. Shutdown is not accepted here; use Close.
func (b *Bridge) Send(msg dissonaut.ControlMessage) error {
	if msg.Kind == dissonaut.KindShutdown {
		return fmt.Errorf("shutdown is delivered by Close: %w", ErrInvalidState)
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	switch b.state {
	case StateUninitialized, StateInitializing:
		if len(b.pending) >= maxPendingMessages {
			return ErrQueueFull
		}
		b.pending = append(b.pending, msg)
		return nil
	case StateReady:
		if !TrySend(b.broker.ToRenderer, msg) {
			return ErrQueueFull
		}
		return nil
	case StateFailed:
		return b.err
	default:
		return ErrClosed
	}
}

// Poll receives one message from the render context without blocking, for
// the UI to pick up voice levels and alerts.
func (b *Bridge) Poll() (MsgToControl, bool) {
	select {
	case msg := <-b.broker.ToControl:
		return msg, true
	default:
		return MsgToControl{}, false
	}
}

// Close delivers the shutdown sentinel, waits for the render context to
// finish and releases the audio output. Close is only valid from the Ready
// state; the bridge ends up Closed even if the render context fails to
// acknowledge in time, in which case the timeout is returned.
func (b *Bridge) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.state != StateReady {
		return fmt.Errorf("Close in state %v: %w", b.state, ErrInvalidState)
	}
	b.state = StateShuttingDown
	var err error
	if !b.sendShutdown() {
		err = errors.New("could not deliver shutdown to the render context")
	} else {
		select {
		case <-b.broker.FinishedRenderer:
		case <-time.After(readyTimeout):
			err = errors.New("render context did not finish in time")
		}
	}
	if closeErr := b.handle.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	b.handle.Wait()
	b.state = StateClosed
	return err
}

// sendShutdown retries briefly in case the renderer queue is momentarily
// full; the renderer drains it every block, so a couple of block periods is
// plenty.
func (b *Bridge) sendShutdown() bool {
	for i := 0; i < 100; i++ {
		if TrySend(b.broker.ToRenderer, dissonaut.Shutdown()) {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
