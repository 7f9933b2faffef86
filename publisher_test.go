package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomWith(n int) (*relay, []*fakeSocket) {
	r := newRelay("/monkey")
	subs := make([]*fakeSocket, n)
	for i := range subs {
		subs[i] = newFakeSocket()
		r.insert(uuid.New(), subs[i])
	}
	return r, subs
}

func TestPublisherPump(t *testing.T) {
	tests := []struct {
		name   string
		script []step
		want   []string
	}{
		{
			name:   "messages then close frame",
			script: []step{text("hello"), text("world"), closeFrame(websocket.CloseNormalClosure)},
			want:   []string{"hello", "world"},
		},
		{
			name:   "non-text frames are ignored",
			script: []step{text("a"), binary(), text("b"), closeFrame(websocket.CloseNormalClosure)},
			want:   []string{"a", "b"},
		},
		{
			name:   "read error without close frame",
			script: []step{text("a"), {err: errBrokenPipe}},
			want:   []string{"a"},
		},
		{
			name:   "script ends",
			script: []step{text("a")},
			want:   []string{"a"},
		},
		{
			name:   "empty text is relayed",
			script: []step{text(""), closeFrame(websocket.CloseGoingAway)},
			want:   []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, subs := roomWith(2)
			sock := newFakeSocket(tt.script...)
			p := newPublisher(sock, r)
			require.Equal(t, stateRunning, p.state())

			p.pump(context.Background())

			assert.Equal(t, stateTerminated, p.state())
			for _, s := range subs {
				assert.Equal(t, tt.want, s.received())
				assert.Equal(t, websocket.CloseGoingAway, s.closeCode())
			}
			assert.Equal(t, 0, r.count())
			assert.NotZero(t, sock.closeCode(), "publisher socket must be closed")
		})
	}
}

func TestPublisherNoSubscribers(t *testing.T) {
	r := newRelay("/monkey")
	p := newPublisher(newFakeSocket(text("nobody"), closeFrame(websocket.CloseNormalClosure)), r)

	p.pump(context.Background())

	assert.Equal(t, stateTerminated, p.state())
	assert.Equal(t, 0, r.count())
}

func TestPublisherSendFailure(t *testing.T) {
	r, subs := roomWith(3)
	subs[1].sendErr = errBrokenPipe
	p := newPublisher(newFakeSocket(text("x"), text("y")), r)

	p.pump(context.Background())

	assert.Equal(t, []string{"x", "y"}, subs[0].received())
	assert.Empty(t, subs[1].received())
	assert.Equal(t, []string{"x", "y"}, subs[2].received())
}
