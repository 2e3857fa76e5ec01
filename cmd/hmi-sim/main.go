// Command hmi-sim serves a simulated pro1003 heat chamber on the WebHMI
// endpoint the operator client is configured to follow. It is a bench tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/heat-chamber/hmi/internal/config"
	"github.com/heat-chamber/hmi/internal/sim"
)

func main() {
	if err := run(); err != nil {
		slog.Error("hmi-sim failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{TimeFormat: time.DateTime}))
	slog.SetDefault(log)

	addr, path, err := listenAddress(cfg.Server.URI)
	if err != nil {
		return err
	}
	if v := os.Getenv("HMI_SIM_ADDR"); v != "" {
		addr = v
	}

	scale := 1.0
	if v := os.Getenv("HMI_SIM_TIMESCALE"); v != "" {
		if scale, err = strconv.ParseFloat(v, 64); err != nil || scale <= 0 {
			return fmt.Errorf("invalid HMI_SIM_TIMESCALE %q", v)
		}
	}

	chamber := sim.NewChamber(sim.DefaultOptions())
	defer chamber.Close()

	server := sim.NewServer(chamber, sim.ServerOptions{
		ServerID:     cfg.Server.ID,
		NetworkID:    cfg.Server.NetID,
		DeviceID:     cfg.Server.DevID,
		TimeScale:    scale,
		WriteTimeout: cfg.Link.WriteTimeout,
		Logger:       log,
	})

	mux := http.NewServeMux()
	mux.Handle(path, server)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 2)
	go func() {
		log.Info("serving simulated chamber", "addr", addr, "path", path, "server", cfg.Server.ID, "timescale", scale)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	go func() { errs <- server.Run(ctx) }()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errs:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("stopping HTTP server", "error", err)
	}
	return runErr
}

// listenAddress derives the listen address and handler path from the
// WebSocket URI the client dials.
func listenAddress(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("parse server uri: %w", err)
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "wss" {
			port = "443"
		}
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return ":" + port, path, nil
}
