package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
)

const (
	stateRunning    = "running"
	stateTerminated = "terminated"

	// A close frame arrived from the publisher.
	transitionClose = "close"
	// The read side failed without a close frame.
	transitionEnd = "end"
)

// publisher pumps text messages from one socket into its relay. Whatever
// ends the pump, entering the terminated state closes every subscriber in
// the room: there is a single broadcast source, so its departure ends the
// session.
type publisher struct {
	sock  socket
	relay *relay
	fsm   *fsm.FSM
	log   *logrus.Entry
}

func newPublisher(sock socket, r *relay) *publisher {
	p := &publisher{
		sock:  sock,
		relay: r,
		log: logger.WithFields(logrus.Fields{
			"room": r.name,
			"conn": uuid.New(),
			"role": "publisher",
		}),
	}
	p.fsm = fsm.NewFSM(
		stateRunning,
		fsm.Events{
			{Name: transitionClose, Src: []string{stateRunning}, Dst: stateTerminated},
			{Name: transitionEnd, Src: []string{stateRunning}, Dst: stateTerminated},
		},
		fsm.Callbacks{
			"enter_" + stateTerminated: func(_ context.Context, e *fsm.Event) {
				p.terminate(e)
			},
		},
	)
	return p
}

func (p *publisher) state() string {
	return p.fsm.Current()
}

// pump reads until the publisher goes away. Messages are broadcast in the
// order they are read; each broadcast completes before the next read.
func (p *publisher) pump(ctx context.Context) {
	incr("websockets", 1)
	defer decr("websockets", 1)

	for p.fsm.Is(stateRunning) {
		in, err := p.sock.next()
		switch {
		case err != nil:
			p.transition(ctx, transitionEnd, err)
		case in.kind == inboundClose:
			p.transition(ctx, transitionClose, in.code)
		case in.kind == inboundText:
			incr("conn.recv", 1)
			p.relay.broadcast(in.text)
		default:
			incr("relay.dropped", 1)
		}
	}
}

func (p *publisher) transition(ctx context.Context, name string, args ...interface{}) {
	if err := p.fsm.Event(ctx, name, args...); err != nil {
		p.log.WithError(err).Error("publisher transition")
	}
}

func (p *publisher) terminate(e *fsm.Event) {
	closed := p.relay.closeAll()
	entry := p.log.WithFields(logrus.Fields{
		"cause":  e.Event,
		"closed": closed,
	})
	if len(e.Args) > 0 {
		entry = entry.WithField("detail", e.Args[0])
	}
	entry.Info("publisher left")
	p.sock.close(websocket.CloseNormalClosure)
}
