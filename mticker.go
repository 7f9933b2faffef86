package main

import (
	"sync"
	"time"
)

// mTicker is a single time.Ticker shared by every open socket. Each tick is
// offered to all subscriptions; a subscription that has not consumed the
// previous tick misses this one.
type mTicker struct {
	mux  sync.Mutex // Protects subs and stopped
	subs map[*tickSub]struct{}

	ticker  *time.Ticker
	stopCh  chan struct{}
	stopped bool
	dropped int
}

type tickSub struct {
	tick chan time.Time
}

func newMTicker(interval time.Duration) *mTicker {
	t := &mTicker{
		subs:   make(map[*tickSub]struct{}),
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
	}
	go t.run()
	return t
}

// subscribe returns a subscription whose tick channel is closed by
// unsubscribe or stop. Subscribing to a stopped ticker yields a closed
// channel.
func (t *mTicker) subscribe() *tickSub {
	t.mux.Lock()
	defer t.mux.Unlock()

	sub := &tickSub{tick: make(chan time.Time, 1)}
	if t.stopped {
		close(sub.tick)
		return sub
	}
	t.subs[sub] = struct{}{}
	return sub
}

func (t *mTicker) unsubscribe(sub *tickSub) {
	t.mux.Lock()
	defer t.mux.Unlock()

	if _, ok := t.subs[sub]; !ok {
		return
	}
	close(sub.tick)
	delete(t.subs, sub)
}

func (t *mTicker) len() int {
	t.mux.Lock()
	defer t.mux.Unlock()
	return len(t.subs)
}

// stop halts the ticker and closes every subscription.
func (t *mTicker) stop() {
	t.mux.Lock()
	defer t.mux.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	for sub := range t.subs {
		close(sub.tick)
		delete(t.subs, sub)
	}
	t.ticker.Stop()
	close(t.stopCh)
}

func (t *mTicker) run() {
	for {
		select {
		case tick := <-t.ticker.C:
			t.mux.Lock()
			for sub := range t.subs {
				select {
				case sub.tick <- tick:
				default:
					t.dropped++
				}
			}
			t.mux.Unlock()
		case <-t.stopCh:
			return
		}
	}
}
