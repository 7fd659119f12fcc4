// Package app wires a Subscriber, its transports, and its archive together
// into a runnable process: poll loop, metrics endpoint, pprof endpoint, and
// tracing.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/i-melnichenko/clustersub/internal/subscriber"
)

// Logger is the logging interface required by App.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// App wires a Subscriber and a fragment handler into a runnable process.
// All dependencies are injected; App does not construct transports itself.
type App struct {
	config  Config
	logger  Logger
	sub     *subscriber.Subscriber
	handler subscriber.FragmentHandler
}

// New validates dependencies and constructs a runnable application.
func New(
	cfg Config,
	logger Logger,
	sub *subscriber.Subscriber,
	handler subscriber.FragmentHandler,
) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, fmt.Errorf("app: nil logger")
	}
	if sub == nil {
		return nil, fmt.Errorf("app: nil subscriber")
	}
	if handler == nil {
		return nil, fmt.Errorf("app: nil fragment handler")
	}
	return &App{
		config:  cfg,
		logger:  logger,
		sub:     sub,
		handler: handler,
	}, nil
}

// Stop closes the underlying subscriber.
func (a *App) Stop() {
	if err := a.sub.Close(); err != nil {
		a.logger.Warn("subscriber close failed", "error", err)
	}
}

// Run starts tracing, the metrics/pprof endpoints, and the poll loop, and
// blocks until ctx is canceled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	shutdownTracing, err := a.initTracing(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			a.logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	metricsSrv, metricsLis, err := a.metricsServer()
	if err != nil {
		return err
	}
	pprofSrv, pprofLis, err := a.pprofServer()
	if err != nil {
		return err
	}

	a.logger.Info(
		"subscriber started",
		"node_id", a.config.NodeID,
		"cluster_stream_id", a.config.ClusterStreamID,
		"poll_interval", a.config.PollInterval,
	)

	return a.serve(ctx, metricsSrv, metricsLis, pprofSrv, pprofLis)
}

// serve starts the metrics/pprof HTTP servers (when configured) and the
// poll loop as goroutines, and blocks until ctx is canceled or one of them
// reports a fatal error.
func (a *App) serve(ctx context.Context, metricsSrv *http.Server, metricsLis net.Listener, pprofSrv *http.Server, pprofLis net.Listener) error {
	errCh := make(chan error, 3)

	if metricsSrv != nil {
		go func() {
			if err := metricsSrv.Serve(metricsLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics serve: %w", err)
			}
		}()
	}
	if pprofSrv != nil {
		go func() {
			if err := pprofSrv.Serve(pprofLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("pprof serve: %w", err)
			}
		}()
	}

	go a.runPollLoop(ctx, errCh)

	select {
	case <-ctx.Done():
		shutdownHTTPServer(metricsSrv, a.logger, "metrics server")
		shutdownHTTPServer(pprofSrv, a.logger, "pprof server")
		return nil
	case err := <-errCh:
		shutdownHTTPServer(metricsSrv, a.logger, "metrics server")
		shutdownHTTPServer(pprofSrv, a.logger, "pprof server")
		return err
	}
}

// runPollLoop calls Poll on a fixed interval until ctx is canceled.
func (a *App) runPollLoop(ctx context.Context, errCh chan<- error) {
	ticker := time.NewTicker(a.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sub.Poll(a.handler, a.config.PollLimit)
			if err := a.sub.LastErr(); err != nil {
				a.logger.Warn("poll reported an error", "error", err)
			}
		}
	}
}
