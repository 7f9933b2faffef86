package main

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// relay is the state of one room: the live subscriber sockets keyed by
// connection id and a count of them. Every method holds mu for its full
// duration, so broadcasts never interleave with partial mutations.
type relay struct {
	name string

	mu          sync.Mutex
	sockets     map[uuid.UUID]socket
	connections int

	refs int // guarded by hub.mu
}

func newRelay(name string) *relay {
	return &relay{
		name:    name,
		sockets: make(map[uuid.UUID]socket),
	}
}

func (r *relay) insert(id uuid.UUID, s socket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sockets[id]; ok {
		return
	}
	r.sockets[id] = s
	r.connections++
	incr("subscribers", 1)
}

// remove reports whether id was registered.
func (r *relay) remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sockets[id]; !ok {
		return false
	}
	delete(r.sockets, id)
	r.connections--
	decr("subscribers", 1)
	return true
}

// broadcast sends text to every registered socket and returns how many
// sends succeeded. A failed send is logged and skipped; the socket stays
// registered until its own watcher sees it close.
func (r *relay) broadcast(text string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	sent := 0
	for id, s := range r.sockets {
		if err := s.send(text); err != nil {
			incr("relay.send.errors", 1)
			logger.WithFields(logrus.Fields{
				"room": r.name,
				"conn": id,
			}).WithError(err).Debug("send failed")
			continue
		}
		sent++
	}
	incr("relay.broadcasts", 1)
	return sent
}

// closeAll closes every socket with 1001 (going away) and empties the
// registry. It returns the number of sockets closed.
func (r *relay) closeAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.sockets)
	for id, s := range r.sockets {
		if err := s.close(websocket.CloseGoingAway); err != nil {
			logger.WithFields(logrus.Fields{
				"room": r.name,
				"conn": id,
			}).WithError(err).Debug("close failed")
		}
		delete(r.sockets, id)
	}
	r.connections = 0
	decr("subscribers", int64(n))
	incr("relay.closeall", 1)
	return n
}

func (r *relay) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connections
}
