package main

import (
	"io"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

type metrics struct {
	log  io.Writer
	reg  gometrics.Registry
	tick time.Duration
}

var m = &metrics{
	log:  io.Discard,
	reg:  gometrics.DefaultRegistry,
	tick: 60 * time.Second,
}

// startMetrics reports every counter as JSON to w once per tick. A zero
// tick disables periodic reports; finalMetrics still writes one.
func startMetrics(w io.Writer, tick time.Duration) {
	m.log = w
	m.tick = tick
	if m.tick > 0 {
		go gometrics.WriteJSON(m.reg, m.tick, m.log)
	}
}

func finalMetrics() {
	gometrics.WriteJSONOnce(m.reg, m.log)
}

func incr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, m.reg).Inc(i)
}

func decr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, m.reg).Dec(i)
}

func counter(name string) int64 {
	return gometrics.GetOrRegisterCounter(name, m.reg).Count()
}
