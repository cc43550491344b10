// Package app wires configuration, logging, metrics and the web server into
// a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/veeox/veeox/api"
	"github.com/veeox/veeox/config"
	"github.com/veeox/veeox/core/observability"
	"github.com/veeox/veeox/pkg/logger"
	"github.com/veeox/veeox/web"
)

// metricsReadHeaderTimeout bounds header reads on the metrics listener
const metricsReadHeaderTimeout = 5 * time.Second

// App is the application instance
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	monitor *observability.Monitor
	tracer  trace.Tracer
	server  *web.Server
}

// Option configures an App
type Option func(*App)

// WithLogger replaces the logger built from the config
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithTracer sets the tracer used for request spans; by default the global
// provider is used
func WithTracer(t trace.Tracer) Option {
	return func(a *App) { a.tracer = t }
}

// New creates an application instance from cfg with the default routes
// registered
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		monitor: observability.NewMonitor(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		l, err := logger.New(logger.Config{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			Output: os.Stderr,
		})
		if err != nil {
			return nil, err
		}
		a.logger = l
	}

	a.server = web.NewServer(
		web.WithLogger(a.logger),
		web.WithMonitor(a.monitor),
		web.WithLimits(web.Limits{
			MaxHeaderBytes: cfg.MaxHeaderBytes,
			MaxBodyBytes:   cfg.MaxBodyBytes,
		}),
		web.WithTimeouts(cfg.ReadTimeout, cfg.WriteTimeout, cfg.IdleTimeout),
		web.WithReusePort(cfg.ReusePort),
	)

	a.server.Use(
		web.Recovery(a.logger),
		web.RequestID(),
		web.Tracing(a.tracer),
		web.Logger(a.logger),
		web.Metrics(a.monitor),
	)
	if len(cfg.CORSOrigins) > 0 {
		a.server.Use(web.CORS(cfg.CORSOrigins...))
	}
	if cfg.RateLimit > 0 {
		a.server.Use(web.RateLimiter(cfg.RateLimit))
	}

	a.registerRoutes()
	return a, nil
}

// Server returns the web server for additional route registration
func (a *App) Server() *web.Server {
	return a.server
}

// Monitor returns the metrics monitor
func (a *App) Monitor() *observability.Monitor {
	return a.monitor
}

// Logger returns the application logger
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run listens on the configured addresses and serves until ctx is done,
// then shuts down within the configured shutdown timeout
func (a *App) Run(ctx context.Context) error {
	ln, err := a.server.Listen(ctx, a.cfg.Addr)
	if err != nil {
		return err
	}

	var metricsLn net.Listener
	if a.cfg.MetricsAddr != "" {
		metricsLn, err = net.Listen("tcp", a.cfg.MetricsAddr)
		if err != nil {
			ln.Close()
			return fmt.Errorf("listen %s: %w", a.cfg.MetricsAddr, err)
		}
	}

	return a.Serve(ctx, ln, metricsLn)
}

// Serve serves HTTP on ln and metrics on metricsLn (nil disables metrics)
// until ctx is done or a server fails
func (a *App) Serve(ctx context.Context, ln, metricsLn net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	var shutdowns []func(context.Context) error

	if a.cfg.H2C {
		hs := &http.Server{
			Handler:        a.server.H2CHandler(web.H2Config{IdleTimeout: a.cfg.IdleTimeout}),
			ReadTimeout:    a.cfg.ReadTimeout,
			WriteTimeout:   a.cfg.WriteTimeout,
			IdleTimeout:    a.cfg.IdleTimeout,
			MaxHeaderBytes: a.cfg.MaxHeaderBytes,
			ErrorLog:       slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
		}
		shutdowns = append(shutdowns, hs.Shutdown)
		g.Go(func() error {
			a.logger.InfoContext(gctx, "server listening", slog.String("addr", ln.Addr().String()), slog.Bool("h2c", true))
			if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	} else {
		shutdowns = append(shutdowns, a.server.Shutdown)
		g.Go(func() error {
			// Shutdown, not ctx, ends serving
			if err := a.server.Serve(context.WithoutCancel(gctx), ln); !errors.Is(err, web.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if metricsLn != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.monitor.Handler())
		ms := &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: metricsReadHeaderTimeout,
		}
		shutdowns = append(shutdowns, ms.Shutdown)
		g.Go(func() error {
			a.logger.InfoContext(gctx, "metrics listening", slog.String("addr", metricsLn.Addr().String()))
			if err := ms.Serve(metricsLn); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down", slog.Duration("timeout", a.cfg.ShutdownTimeout))

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, shutdown := range shutdowns {
			if err := shutdown(sctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	a.logger.Info("starting", slog.String("version", api.Version), slog.String("env", a.cfg.Env))
	return g.Wait()
}
