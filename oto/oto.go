// Package oto gives a dissonaut.AudioContext on top of the ebitengine/oto
// library. Oto pulls samples through an io.Reader from its own ring buffer
// goroutine; that Read callback is the host's periodic render invocation, so
// the renderer runs exactly there, block by block.
package oto

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/dissonaut/dissonaut"
	"github.com/ebitengine/oto/v3"
)

const bytesPerFrame = 8 // stereo float32

type Context struct {
	context   *oto.Context
	blockSize int
}

// NewContext opens the audio device and waits until it is ready. There can
// be only one oto context per process.
func NewContext(sampleRate, blockSize int) (*Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, blockSize: blockSize}, nil
}

// Start begins pulling audio from the renderer.
func (c *Context) Start(r dissonaut.Renderer) (dissonaut.CloserWaiter, error) {
	s := &stream{
		renderer: r,
		block:    make(dissonaut.AudioBuffer, c.blockSize),
	}
	player := c.context.NewPlayer(s)
	player.SetBufferSize(4 * c.blockSize * bytesPerFrame)
	player.Play()
	return &handle{player: player}, nil
}

// Close suspends the device. An oto context cannot be destroyed; suspending
// stops its goroutines from burning cycles once we are done with it.
func (c *Context) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// stream adapts the renderer to the io.Reader oto pulls from. Reads are
// served in chunks of the configured block size through a preallocated
// buffer; once the renderer reports that it is done, the stream returns
// io.EOF and oto drains whatever is still buffered.
type stream struct {
	renderer dissonaut.Renderer
	block    dissonaut.AudioBuffer
	done     bool
}

func (s *stream) Read(p []byte) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	frames := len(p) / bytesPerFrame
	rendered := 0
	for rendered < frames {
		n := frames - rendered
		if n > len(s.block) {
			n = len(s.block)
		}
		alive := s.renderer.RenderBlock(s.block[:n])
		off := rendered * bytesPerFrame
		for i, frame := range s.block[:n] {
			binary.LittleEndian.PutUint32(p[off+i*bytesPerFrame:], math.Float32bits(frame[0]))
			binary.LittleEndian.PutUint32(p[off+i*bytesPerFrame+4:], math.Float32bits(frame[1]))
		}
		rendered += n
		if !alive {
			s.done = true
			break
		}
	}
	return rendered * bytesPerFrame, nil
}

type handle struct {
	player *oto.Player
	once   sync.Once
	err    error
}

func (h *handle) Close() error {
	h.once.Do(func() { h.err = h.player.Close() })
	return h.err
}

// Wait blocks until the player has stopped pulling samples.
func (h *handle) Wait() {
	for h.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}
