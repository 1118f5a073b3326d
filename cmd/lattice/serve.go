package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lattice-dev/lattice/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		maxSessions int
		idleTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo application",
		Long: `Start an HTTP server hosting the built-in demo application.

The page is rendered server-side on first load; interactions are
streamed over WebSocket at /ws. Prometheus metrics are exported
at /metrics.

Examples:
  lattice serve
  lattice serve --addr=:3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, maxSessions, idleTimeout)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "Maximum concurrent sessions (0 = unlimited)")
	cmd.Flags().DurationVar(&idleTimeout, "idle-timeout", 5*time.Minute, "Idle time before a session is pruned")

	return cmd
}

func runServe(addr string, maxSessions int, idleTimeout time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := server.DefaultConfig()
	cfg.Address = addr
	cfg.Title = "Lattice Demo"
	cfg.MaxSessions = maxSessions
	cfg.Session.IdleTimeout = idleTimeout
	cfg.Logger = logger

	srv := server.New(demoApp(), nil, cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
