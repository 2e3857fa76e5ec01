// Command hmi runs the pro1003 heat-chamber operator client: it follows the
// WebHMI server over a WebSocket and serves the page to operators over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/heat-chamber/hmi/internal/api"
	"github.com/heat-chamber/hmi/internal/app"
	"github.com/heat-chamber/hmi/internal/audit"
	"github.com/heat-chamber/hmi/internal/auth"
	"github.com/heat-chamber/hmi/internal/chart"
	"github.com/heat-chamber/hmi/internal/config"
	"github.com/heat-chamber/hmi/internal/telemetry"
	"github.com/heat-chamber/hmi/internal/wshmi"
)

// Version is the client version reported at startup.
const Version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("hmi failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Step 1: Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := newLogger(cfg.Log.Level)
	slog.SetDefault(log)
	log.Info("starting pro1003 HMI", "version", Version, "server", cfg.Server.URI, "id", cfg.Server.ID)

	// Step 2: Telemetry hub
	var state *app.State
	hub := telemetry.NewHub(telemetry.Options{
		Heartbeat:  cfg.Telemetry.Heartbeat,
		BufferSize: cfg.Telemetry.BufferSize,
		Snapshot:   func() interface{} { return state.Page() },
	})
	defer hub.Stop()

	// Step 3: Audit trail
	auditLogger, err := audit.NewLogger(audit.Options{
		Dir:        cfg.Log.AuditDir,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("initialize audit logger: %w", err)
	}
	defer func() {
		if err := auditLogger.Close(); err != nil {
			log.Warn("closing audit logger", "error", err)
		}
	}()
	log.Info("audit trail opened", "path", auditLogger.FilePath())

	// Step 4: WebHMI link
	link := wshmi.New(wshmi.Options{
		URI:              cfg.Server.URI,
		ServerID:         cfg.Server.ID,
		NetworkID:        cfg.Server.NetID,
		DeviceID:         cfg.Server.DevID,
		ReconnectInitial: cfg.Link.ReconnectInitial,
		ReconnectMax:     cfg.Link.ReconnectMax,
		Watchdog:         cfg.Link.Watchdog,
		WriteTimeout:     cfg.Link.WriteTimeout,
		AutoReconnect:    cfg.Link.AutoReconnect,
		Logger:           log,
	})

	// Step 5: Page state
	canvas := chart.NewCanvas(cfg.Chart.Width, cfg.Chart.Height)
	state, err = app.Init(cfg, app.Deps{
		Link:      link,
		Publisher: hub,
		Auditor:   auditLogger,
		Renderer:  canvas,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("initialize page: %w", err)
	}
	state.Redraw()

	// Step 6: API server
	var mw *auth.Middleware
	if cfg.Auth.Algorithm != "" {
		verifier, err := auth.NewVerifier(auth.VerifierConfig{
			Algorithm:    cfg.Auth.Algorithm,
			SecretKey:    cfg.Auth.Secret,
			PublicKeyPEM: cfg.Auth.PublicKeyPEM,
		})
		if err != nil {
			return fmt.Errorf("initialize auth: %w", err)
		}
		mw = auth.NewMiddleware(verifier)
		log.Info("bearer authentication enabled", "algorithm", cfg.Auth.Algorithm)
	}
	server := api.NewServer(api.Options{
		Page:         state,
		Frames:       canvas,
		Telemetry:    hub,
		Auth:         mw,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Logger:       log,
	})

	// Step 7: Run
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SIGHUP rotates the audit trail.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				if err := auditLogger.Rotate(); err != nil {
					log.Warn("rotating audit trail", "error", err)
					continue
				}
				log.Info("audit trail rotated", "path", auditLogger.FilePath())
			case <-ctx.Done():
				return
			}
		}
	}()

	errs := make(chan error, 3)
	go func() { errs <- server.Start(cfg.HTTP.Addr) }()
	go func() { errs <- link.Run(ctx) }()
	go func() { errs <- state.Run(ctx) }()
	log.Info("started", "health", "http://localhost"+cfg.HTTP.Addr+"/api/v1/health")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errs:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
		log.Warn("component stopped, shutting down", "error", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Stop()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Warn("stopping HTTP server", "error", err)
	}
	log.Info("shutdown complete")
	return runErr
}

// newLogger returns a colorized slog logger at the named level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      lvl,
		TimeFormat: time.DateTime,
	}))
}
