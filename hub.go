package main

import (
	"sync"

	"github.com/gorilla/websocket"
)

// hub owns one relay per room name. A relay is created on first use and
// forgotten once no subscriber or publisher holds it.
type hub struct {
	defaultRoom string
	opts        socketOptions
	ticker      *mTicker

	mu     sync.Mutex
	relays map[string]*relay
}

func newHub(defaultRoom string, opts socketOptions) *hub {
	h := &hub{
		defaultRoom: defaultRoom,
		opts:        opts,
		relays:      make(map[string]*relay),
	}
	if opts.pongWait > 0 {
		h.ticker = newMTicker(opts.pingPeriod())
	}
	return h
}

func (h *hub) newSocket(ws *websocket.Conn) *wsSocket {
	return newSocket(ws, h.opts, h.ticker)
}

// acquire returns the relay for name and holds a reference to it until the
// matching release.
func (h *hub) acquire(name string) *relay {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.relays[name]
	if !ok {
		r = newRelay(name)
		h.relays[name] = r
		incr("rooms", 1)
	}
	r.refs++
	return r
}

func (h *hub) release(r *relay) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r.refs--
	if r.refs > 0 {
		return
	}
	if h.relays[r.name] == r {
		delete(h.relays, r.name)
		decr("rooms", 1)
	}
}

// lookup returns the relay for name without holding a reference.
func (h *hub) lookup(name string) (*relay, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.relays[name]
	return r, ok
}

func (h *hub) stats() (rooms, subscribers int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms = len(h.relays)
	for _, r := range h.relays {
		subscribers += r.count()
	}
	return rooms, subscribers
}

// stop closes every subscriber in every room and halts keepalive pings.
func (h *hub) stop() {
	h.mu.Lock()
	relays := make([]*relay, 0, len(h.relays))
	for _, r := range h.relays {
		relays = append(relays, r)
	}
	h.mu.Unlock()

	for _, r := range relays {
		r.closeAll()
	}
	if h.ticker != nil {
		h.ticker.stop()
	}
}
