// Package main implements the process that runs a single-reader cluster
// log subscriber against an in-memory demo transport and archive.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	apppkg "github.com/i-melnichenko/clustersub/internal/app"
	"github.com/i-melnichenko/clustersub/internal/archive"
	"github.com/i-melnichenko/clustersub/internal/observability/metrics"
	"github.com/i-melnichenko/clustersub/internal/sink"
	"github.com/i-melnichenko/clustersub/internal/subscriber"
	"github.com/i-melnichenko/clustersub/internal/transport"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "clustersub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := apppkg.LoadConfigFromEnv()
	if err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg.LogLevel))
	logger := slog.Default()

	promMetrics, err := metrics.NewPrometheus(nil)
	if err != nil {
		return err
	}

	dataSub := transport.NewMemoryDataTransport()
	controlSub := transport.NewMemoryControlTransport()
	leaderArchive := archive.NewFileArchive(cfg.ArchiveDir)

	sub, err := subscriber.New(
		dataSub,
		controlSub,
		leaderArchive,
		cfg.ClusterStreamID,
		subscriber.WithLogger(logger),
		subscriber.WithMetrics(promMetrics),
	)
	if err != nil {
		return err
	}

	handler := sink.NewOrdered()

	app, err := apppkg.New(cfg, logger, sub, handler.Handle)
	if err != nil {
		_ = sub.Close()
		return err
	}
	defer app.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return app.Run(ctx)
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}
