package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	roomLenMin = 1
	roomLenMax = 256
)

func newUpgrader(origin string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if origin == "" {
				return true
			}
			return r.Header.Get("Origin") == origin
		},
	}
}

type subscribeHandler struct {
	h        *hub
	upgrader *websocket.Upgrader
}

func (sh subscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	room, ok := roomFor(w, r, sh.h.defaultRoom)
	if !ok {
		return
	}
	id, err := uuid.NewRandom()
	if err != nil {
		http.Error(w, "Error: unable to allocate connection id.", http.StatusInternalServerError)
		return
	}
	// The upgrader writes its own error response on failure.
	ws, err := sh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithField("room", room).WithError(err).Debug("subscriber upgrade failed")
		return
	}

	rl := sh.h.acquire(room)
	sock := sh.h.newSocket(ws)
	sub := newSubscriber(id, sock, rl)
	rl.insert(id, sock)
	sub.log.Info("subscriber joined")

	go func() {
		defer sh.h.release(rl)
		sub.watch()
	}()
}

type publishHandler struct {
	h        *hub
	upgrader *websocket.Upgrader
}

func (ph publishHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	room, ok := roomFor(w, r, ph.h.defaultRoom)
	if !ok {
		return
	}
	ws, err := ph.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithField("room", room).WithError(err).Debug("publisher upgrade failed")
		return
	}

	rl := ph.h.acquire(room)
	pub := newPublisher(ph.h.newSocket(ws), rl)
	incr("publishers", 1)
	pub.log.Info("publisher joined")

	go func() {
		defer ph.h.release(rl)
		defer decr("publishers", 1)
		pub.pump(context.Background())
	}()
}

type statsHandler struct {
	h *hub
}

func (st statsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rooms, subscribers := st.h.stats()
	writeJSON(w, map[string]int{"rooms": rooms, "subscribers": subscribers})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Debug("write response")
	}
}

// roomFor returns the room named in the path, or def for the unprefixed
// routes. It writes a 400 and returns false for an invalid name.
func roomFor(w http.ResponseWriter, r *http.Request, def string) (string, bool) {
	room, ok := mux.Vars(r)["room"]
	if !ok {
		return def, true
	}
	if err := validateRoom(room); err != nil {
		sendBadRequestError(w, err.Error())
		return "", false
	}
	return room, true
}

func validateRoom(room string) error {
	if !utf8.ValidString(room) {
		return errors.New("Room must be valid Unicode (UTF-8).")
	}
	n := utf8.RuneCountInString(room)
	if !(roomLenMin <= n && n <= roomLenMax) {
		return fmt.Errorf("Room length must be %d-%d Unicode characters (UTF-8).",
			roomLenMin, roomLenMax)
	}
	return nil
}

func sendBadRequestError(w http.ResponseWriter, str string) {
	http.Error(w,
		fmt.Sprintf("Error: bad request. %s", str),
		http.StatusBadRequest)
}
