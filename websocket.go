package main

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message or close frame to the peer.
	defaultWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	defaultPongWait = 30 * time.Second

	// Maximum message size allowed from peer.
	defaultReadLimit = 64 * 1024
)

type inboundKind int

const (
	inboundText inboundKind = iota
	inboundData
	inboundClose
)

// inbound is one event read from a socket.
type inbound struct {
	kind inboundKind
	text string
	code int
}

// socket is one established websocket connection. send and close are
// bounded by the write deadline; next blocks until the peer sends a frame,
// and returns an error once the connection is gone.
type socket interface {
	send(text string) error
	close(code int) error
	next() (inbound, error)
}

type socketOptions struct {
	writeWait time.Duration
	pongWait  time.Duration
	readLimit int64
}

// pingPeriod must be less than pongWait.
func (o socketOptions) pingPeriod() time.Duration {
	return (o.pongWait * 9) / 10
}

type wsSocket struct {
	ws        *websocket.Conn
	writeWait time.Duration
	pongWait  time.Duration
	ticker    *mTicker
	sub       *tickSub

	once sync.Once
}

func newSocket(ws *websocket.Conn, opts socketOptions, ticker *mTicker) *wsSocket {
	s := &wsSocket{
		ws:        ws,
		writeWait: opts.writeWait,
		pongWait:  opts.pongWait,
		ticker:    ticker,
	}
	if opts.readLimit > 0 {
		ws.SetReadLimit(opts.readLimit)
	}
	if s.pongWait > 0 && ticker != nil {
		s.extendReadDeadline()
		ws.SetPongHandler(func(string) error {
			s.extendReadDeadline()
			return nil
		})
		s.sub = ticker.subscribe()
		go s.keepalive(s.sub)
	}
	return s
}

func (s *wsSocket) extendReadDeadline() {
	s.ws.SetReadDeadline(time.Now().Add(s.pongWait))
}

// keepalive pings the peer on every shared tick. WriteControl may run
// concurrently with the data writes made under the relay lock.
func (s *wsSocket) keepalive(sub *tickSub) {
	for range sub.tick {
		deadline := time.Now().Add(s.writeWait)
		if err := s.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			return
		}
		incr("conn.ping", 1)
	}
}

func (s *wsSocket) send(text string) error {
	s.ws.SetWriteDeadline(time.Now().Add(s.writeWait))
	return s.ws.WriteMessage(websocket.TextMessage, []byte(text))
}

// close sends a close frame with code and no reason, then drops the
// connection. Only the first call has any effect.
func (s *wsSocket) close(code int) error {
	err := errAlreadyClosed
	s.once.Do(func() {
		if s.sub != nil {
			s.ticker.unsubscribe(s.sub)
		}
		msg := websocket.FormatCloseMessage(code, "")
		err = s.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.writeWait))
		if cerr := s.ws.Close(); err == nil {
			err = cerr
		}
	})
	return err
}

func (s *wsSocket) next() (inbound, error) {
	messageType, p, err := s.ws.ReadMessage()
	if err != nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			return inbound{kind: inboundClose, code: ce.Code}, nil
		}
		return inbound{}, err
	}
	if messageType != websocket.TextMessage {
		return inbound{kind: inboundData}, nil
	}
	return inbound{kind: inboundText, text: string(p)}, nil
}

var errAlreadyClosed = errors.New("socket already closed")
