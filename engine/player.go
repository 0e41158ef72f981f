package engine

import (
	"github.com/dissonaut/dissonaut"
	"github.com/dissonaut/dissonaut/synth"
)

// Player runs inside the render context: every block it drains the control
// messages pending on the broker, hands them to the synthesizer and renders
// the block. It is handed to an AudioContext as the render callback and must
// never allocate, lock or block once rendering has started; all channel
// operations on the hot path are non-blocking.
type Player struct {
	synth  *synth.Strings
	broker *Broker

	scratch   []dissonaut.ControlMessage
	readySent bool
	finished  bool
}

func NewPlayer(s *synth.Strings, broker *Broker) *Player {
	return &Player{
		synth:   s,
		broker:  broker,
		scratch: make([]dissonaut.ControlMessage, 0, toRendererCapacity),
	}
}

// HandleMessage hands one message straight to the synthesizer, bypassing the
// broker. It exists for driving the player synchronously, offline; the audio
// path delivers messages through the broker only.
func (p *Player) HandleMessage(msg dissonaut.ControlMessage) {
	p.synth.HandleMessage(msg)
}

// RenderBlock drains pending messages, renders the next block and posts the
// voice levels to the control context. The first call acknowledges startup
// with a ReadyMsg. After a shutdown message has been consumed, the player
// closes FinishedRenderer and keeps reporting false.
func (p *Player) RenderBlock(buffer dissonaut.AudioBuffer) bool {
	if p.finished {
		for i := range buffer {
			buffer[i] = [2]float32{}
		}
		return false
	}
	if !p.readySent {
		p.readySent = true
		TrySend(p.broker.ToControl, MsgToControl{Data: ReadyMsg{}})
	}
	p.drainMessages()
	alive := p.synth.RenderBlock(buffer)
	if !alive {
		p.finished = true
		close(p.broker.FinishedRenderer)
		return false
	}
	msg := MsgToControl{HasLevels: true}
	msg.NumVoices = p.synth.Levels(&msg.Levels)
	TrySend(p.broker.ToControl, msg)
	return true
}

// drainMessages empties the renderer queue and applies the messages in
// submission order. Superseded SetEnvelope and SetEffects updates are
// coalesced so only the last of each kind takes effect; everything queued
// after a shutdown message stays unprocessed.
func (p *Player) drainMessages() {
	msgs := p.scratch[:0]
loop:
	for len(msgs) < cap(msgs) {
		select {
		case msg := <-p.broker.ToRenderer:
			msgs = append(msgs, msg)
			if msg.Kind == dissonaut.KindShutdown {
				break loop
			}
		default:
			break loop
		}
	}
	lastEnvelope, lastEffects := -1, -1
	for i, msg := range msgs {
		switch msg.Kind {
		case dissonaut.KindSetEnvelope:
			lastEnvelope = i
		case dissonaut.KindSetEffects:
			lastEffects = i
		}
	}
	for i, msg := range msgs {
		switch msg.Kind {
		case dissonaut.KindSetEnvelope:
			if i != lastEnvelope {
				continue
			}
		case dissonaut.KindSetEffects:
			if i != lastEffects {
				continue
			}
		case dissonaut.KindNoteOn:
			if p.synth.Full() {
				TrySend(p.broker.ToControl, MsgToControl{Data: Alert{
					Name:     "PolyphonyExceeded",
					Message:  "stealing the oldest voice",
					Priority: Info,
				}})
			}
		}
		p.synth.HandleMessage(msg)
	}
}
