// Command wsrelay is a WebSocket broadcast relay.
//
//	wsrelay --addr=:8081
//
// A publisher connects to /publisher and sends text messages. Every
// subscriber connected to /subscriber receives each message, unmodified,
// in the order the publisher sent it. When the publisher goes away every
// subscriber is closed with 1001 (going away).
//
// Independent rooms are addressed as /{room}/publisher and
// /{room}/subscriber. Nothing is stored: a subscriber sees only messages
// published while it is connected.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookgo/httpdown"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithError(err).Warn("unable to load .env")
	}

	cmd := &cli.Command{
		Name:   "wsrelay",
		Usage:  "relay websocket messages from a publisher to its subscribers",
		Flags:  flags(),
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.WithError(err).Fatal("wsrelay")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromCommand(cmd)
	if err := configureLogger(cfg.logLevel, cfg.logFormat); err != nil {
		return err
	}

	metricsLog := logger.WriterLevel(logrus.InfoLevel)
	defer metricsLog.Close()
	startMetrics(metricsLog, cfg.metricsTick)

	h := newHub(cfg.room, cfg.socketOptions())
	server := &http.Server{
		Addr:    cfg.addr,
		Handler: newHandler(h, cfg.origin),
	}
	hd := &httpdown.HTTP{
		StopTimeout: cfg.stopTimeout,
		KillTimeout: cfg.killTimeout,
	}
	srv, err := hd.ListenAndServe(server)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.addr, err)
	}
	logger.WithField("addr", cfg.addr).Info("relay listening")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("relay stopping")
		// Upgraded connections are hijacked and invisible to the server.
		h.stop()
		if err := srv.Stop(); err != nil {
			logger.WithError(err).Warn("stop")
		}
	}()

	err = srv.Wait()
	h.stop()
	finalMetrics()
	return err
}

func newHandler(h *hub, origin string) http.Handler {
	upgrader := newUpgrader(origin)
	subscribe := subscribeHandler{h: h, upgrader: upgrader}
	publish := publishHandler{h: h, upgrader: upgrader}

	handler := mux.NewRouter()
	handler.Use(logRequests)

	handler.Methods("GET").Path("/healthz").HandlerFunc(healthHandler)
	handler.Methods("GET").Path("/stats").Handler(statsHandler{h: h})

	// Default room
	handler.Methods("GET").Path("/subscriber").Handler(subscribe)
	handler.Methods("GET").Path("/publisher").Handler(publish)

	// Named rooms
	handler.Methods("GET").Path("/{room}/subscriber").Handler(subscribe)
	handler.Methods("GET").Path("/{room}/publisher").Handler(publish)

	return handler
}
