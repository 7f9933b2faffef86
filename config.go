package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

type config struct {
	addr   string
	origin string
	room   string

	stopTimeout time.Duration
	killTimeout time.Duration

	writeWait time.Duration
	pongWait  time.Duration
	readLimit int

	metricsTick time.Duration
	logLevel    string
	logFormat   string
}

func defaultConfig() config {
	return config{
		addr:        "127.0.0.1:8081",
		room:        "relay",
		stopTimeout: 10 * time.Second,
		killTimeout: 1 * time.Second,
		writeWait:   defaultWriteWait,
		pongWait:    defaultPongWait,
		readLimit:   defaultReadLimit,
		metricsTick: 60 * time.Second,
		logLevel:    "info",
		logFormat:   "text",
	}
}

func (c config) socketOptions() socketOptions {
	return socketOptions{
		writeWait: c.writeWait,
		pongWait:  c.pongWait,
		readLimit: int64(c.readLimit),
	}
}

func flags() []cli.Flag {
	d := defaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Value:   d.addr,
			Usage:   "http service address",
			Sources: cli.EnvVars("WSRELAY_ADDR"),
		},
		&cli.StringFlag{
			Name:    "origin",
			Usage:   "websocket server checks Origin headers against this scheme://host[:port]",
			Sources: cli.EnvVars("WSRELAY_ORIGIN"),
		},
		&cli.StringFlag{
			Name:    "room",
			Value:   d.room,
			Usage:   "room served by /subscriber and /publisher",
			Sources: cli.EnvVars("WSRELAY_ROOM"),
		},
		&cli.DurationFlag{
			Name:    "stop-timeout",
			Value:   d.stopTimeout,
			Usage:   "stop timeout",
			Sources: cli.EnvVars("WSRELAY_STOP_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "kill-timeout",
			Value:   d.killTimeout,
			Usage:   "kill timeout",
			Sources: cli.EnvVars("WSRELAY_KILL_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "write-wait",
			Value:   d.writeWait,
			Usage:   "time allowed to write a message to a peer",
			Sources: cli.EnvVars("WSRELAY_WRITE_WAIT"),
		},
		&cli.DurationFlag{
			Name:    "pong-wait",
			Value:   d.pongWait,
			Usage:   "time allowed to read the next pong from a peer, 0 disables pings",
			Sources: cli.EnvVars("WSRELAY_PONG_WAIT"),
		},
		&cli.IntFlag{
			Name:    "read-limit",
			Value:   int64(d.readLimit),
			Usage:   "maximum message size in bytes accepted from a peer",
			Sources: cli.EnvVars("WSRELAY_READ_LIMIT"),
		},
		&cli.DurationFlag{
			Name:    "metrics-tick",
			Value:   d.metricsTick,
			Usage:   "metrics: duration between reports, 0 disables",
			Sources: cli.EnvVars("WSRELAY_METRICS_TICK"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   d.logLevel,
			Usage:   "panic, fatal, error, warn, info, debug or trace",
			Sources: cli.EnvVars("WSRELAY_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   d.logFormat,
			Usage:   "text or json",
			Sources: cli.EnvVars("WSRELAY_LOG_FORMAT"),
		},
	}
}

func configFromCommand(cmd *cli.Command) config {
	return config{
		addr:        cmd.String("addr"),
		origin:      cmd.String("origin"),
		room:        cmd.String("room"),
		stopTimeout: cmd.Duration("stop-timeout"),
		killTimeout: cmd.Duration("kill-timeout"),
		writeWait:   cmd.Duration("write-wait"),
		pongWait:    cmd.Duration("pong-wait"),
		readLimit:   int(cmd.Int("read-limit")),
		metricsTick: cmd.Duration("metrics-tick"),
		logLevel:    cmd.String("log-level"),
		logFormat:   cmd.String("log-format"),
	}
}
