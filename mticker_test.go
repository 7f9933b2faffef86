package main

import (
	"testing"
	"time"
)

func TestTickerSubscribe(t *testing.T) {
	ticker := newMTicker(time.Hour)
	defer ticker.stop()

	if ticker.len() != 0 {
		t.Fatal("Expectation: 0, Received:", ticker.len())
	}

	ticker.subscribe()
	if ticker.len() != 1 {
		t.Fatal("Expectation: 1, Received:", ticker.len())
	}
}

func TestTickerUnsubscribe(t *testing.T) {
	ticker := newMTicker(time.Hour)
	defer ticker.stop()
	sub := ticker.subscribe()

	ticker.unsubscribe(sub)
	if ticker.len() != 0 {
		t.Fatal("Expectation: 0, Received:", ticker.len())
	}

	_, ok := <-sub.tick
	if ok {
		t.Fatal("Expectation: tick channel should be closed, Received: open channel")
	}

	// A second unsubscribe must not close the channel again.
	ticker.unsubscribe(sub)
}

func TestTickerTick(t *testing.T) {
	ticker := newMTicker(10 * time.Millisecond)
	defer ticker.stop()
	sub1 := ticker.subscribe()
	sub2 := ticker.subscribe()
	sub3 := ticker.subscribe()

	t1, ok1 := <-sub1.tick
	t2, ok2 := <-sub2.tick
	t3, ok3 := <-sub3.tick

	if !ok1 || !ok2 || !ok3 {
		t.Fatal("Expectation: all subscriptions receive a tick, Received: closed channel")
	}
	// Ticks are buffered one deep, so the first tick each subscriber sees
	// is the same one unless it fell behind.
	if t1.IsZero() || t2.IsZero() || t3.IsZero() {
		t.Fatal("Expectation: non-zero ticks, Received:", t1, t2, t3)
	}
}

func TestTickerStop(t *testing.T) {
	ticker := newMTicker(time.Hour)
	sub1 := ticker.subscribe()
	sub2 := ticker.subscribe()

	ticker.stop()
	ticker.stop()

	_, ok1 := <-sub1.tick
	_, ok2 := <-sub2.tick
	if ok1 || ok2 {
		t.Fatal("Expectation: all tick channels should be closed, Received: open channel")
	}

	// Unsubscribing after stop is harmless.
	ticker.unsubscribe(sub1)

	sub3 := ticker.subscribe()
	if _, ok := <-sub3.tick; ok {
		t.Fatal("Expectation: subscription to stopped ticker is closed, Received: open channel")
	}
}
