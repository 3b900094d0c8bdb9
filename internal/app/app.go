// Package app owns the application lifecycle: it wires the scan pipeline and
// its collaborators from configuration and runs the selected operating mode.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/server"
	"github.com/predmarkets/arbscan/internal/server/handler"
	"github.com/predmarkets/arbscan/internal/server/ws"
)

// App is the root application object.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	closers []func()
}

// New creates an App from the given configuration and logger.
func New(cfg *config.Config, log *slog.Logger) *App {
	return &App{
		cfg: cfg,
		log: log.With("component", "app"),
	}
}

// Run wires all dependencies, runs the configured mode, and blocks until the
// context is cancelled or the mode finishes. Cleanup runs on return.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting",
		"mode", a.cfg.Mode,
		"log_level", a.cfg.LogLevel)

	deps, cleanup, err := Wire(ctx, a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)
	defer a.Close()

	switch strings.ToLower(a.cfg.Mode) {
	case "scan":
		return a.scanMode(ctx, deps)
	case "daemon":
		return a.daemonMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down resources in reverse registration order. Safe to call
// more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// scanMode runs exactly one cycle and writes the result to stdout as JSON.
func (a *App) scanMode(ctx context.Context, deps *Dependencies) error {
	result, err := deps.Scanner.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("app: scan: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("app: encode result: %w", err)
	}
	return nil
}

// daemonMode scans on the configured interval and, when enabled, serves the
// HTTP + WebSocket API alongside.
func (a *App) daemonMode(ctx context.Context, deps *Dependencies) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.Server.Enabled {
		wsHub := ws.NewHub(a.log)
		deps.Scanner.AddPublisher(wsHub)

		handlers := server.Handlers{
			Health:        handler.NewHealthHandler(a.log),
			Opportunities: handler.NewOpportunityHandler(a.log, deps.Latest, deps.OpportunityStore),
			Diagnostics:   handler.NewDiagnosticsHandler(a.log, deps.Latest),
			Pairs:         handler.NewPairHandler(a.log, deps.PairStore),
			Scan:          handler.NewScanHandler(a.log, deps.Scanner),
		}
		srv := server.NewServer(server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
		}, handlers, wsHub, a.log)

		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return deps.Scanner.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
