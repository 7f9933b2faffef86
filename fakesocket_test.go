package main

import (
	"errors"
	"io"
	"sync"
)

// fakeSocket records what the relay sends and replays a script of inbound
// events. Once the script is exhausted next returns io.EOF.
type fakeSocket struct {
	mu      sync.Mutex
	sent    []string
	closes  []int
	sendErr error

	script []step
}

type step struct {
	in  inbound
	err error
}

func newFakeSocket(script ...step) *fakeSocket {
	return &fakeSocket{script: script}
}

func text(s string) step {
	return step{in: inbound{kind: inboundText, text: s}}
}

func binary() step {
	return step{in: inbound{kind: inboundData}}
}

func closeFrame(code int) step {
	return step{in: inbound{kind: inboundClose, code: code}}
}

func (f *fakeSocket) send(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSocket) close(code int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes = append(f.closes, code)
	if len(f.closes) > 1 {
		return errAlreadyClosed
	}
	return nil
}

func (f *fakeSocket) next() (inbound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.script) == 0 {
		return inbound{}, io.EOF
	}
	s := f.script[0]
	f.script = f.script[1:]
	return s.in, s.err
}

func (f *fakeSocket) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// closeCode returns the first close code, or 0 if never closed.
func (f *fakeSocket) closeCode() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.closes) == 0 {
		return 0
	}
	return f.closes[0]
}

var errBrokenPipe = errors.New("broken pipe")
