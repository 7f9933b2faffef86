package main

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type subscriber struct {
	id    uuid.UUID
	sock  socket
	relay *relay
	log   *logrus.Entry
}

func newSubscriber(id uuid.UUID, sock socket, r *relay) *subscriber {
	return &subscriber{
		id:    id,
		sock:  sock,
		relay: r,
		log: logger.WithFields(logrus.Fields{
			"room": r.name,
			"conn": id,
			"role": "subscriber",
		}),
	}
}

// watch drains the socket until it closes or fails, then removes the
// subscriber from its relay. Anything the subscriber sends is discarded.
func (s *subscriber) watch() {
	incr("websockets", 1)
	defer decr("websockets", 1)

	for {
		in, err := s.sock.next()
		if err != nil {
			s.log.WithError(err).Debug("read ended")
			break
		}
		if in.kind == inboundClose {
			break
		}
	}

	if s.relay.remove(s.id) {
		s.log.Info("subscriber left")
	}
	s.sock.close(websocket.CloseNormalClosure)
}
