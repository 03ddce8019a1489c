package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"crpt-hq/ismp/pkg/cli"
	"crpt-hq/ismp/pkg/config"
	"crpt-hq/ismp/pkg/limits/ratelimit"
	sectls "crpt-hq/ismp/pkg/security/tls"
	"crpt-hq/ismp/pkg/server"
	"crpt-hq/ismp/pkg/submitter"
	"crpt-hq/ismp/pkg/telemetry/health"
	"crpt-hq/ismp/pkg/telemetry/metrics"
	"crpt-hq/ismp/pkg/telemetry/tracing"

	"golang.org/x/sync/errgroup"
)

// app is the set of long-lived components built from configuration.
// Every command that talks to the registry shares one app, and therefore
// one limiter.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	limiter   ratelimit.Limiter
	collector *metrics.Collector
	tracer    *tracing.Tracer
	transport *submitter.HTTPTransport
	submitter *submitter.Submitter
	checker   *health.Checker

	// stopReload ends the client certificate reloader, if any.
	stopReload context.CancelFunc
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, checker: health.New(2 * time.Second)}

	var (
		observer ratelimit.Observer
		recorder submitter.Recorder
	)
	if cfg.Telemetry.Metrics.Enabled {
		a.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		observer = a.collector
		recorder = a.collector
	}

	limiter, err := ratelimit.New(ratelimit.Config{
		Strategy: ratelimit.Strategy(cfg.Limits.Strategy),
		Limit:    cfg.Limits.RequestLimit,
		Window:   cfg.Limits.Window,
		Observer: observer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}
	a.limiter = limiter
	if a.collector != nil {
		a.collector.WatchLimiter(limiter)
	}

	a.tracer, err = tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	httpCfg := submitter.HTTPConfigFrom(cfg.Registry)
	tlsCfg := sectls.ClientConfigFrom(cfg.Registry.TLS)
	httpCfg.TLS, err = a.clientTLS(&tlsCfg)
	if err != nil {
		_ = a.tracer.Shutdown(context.Background())
		return nil, cli.NewConfigError("registry.tls", err.Error())
	}

	a.transport, err = submitter.NewHTTPTransport(httpCfg, logger)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	a.submitter, err = submitter.New(limiter, a.transport, submitter.Options{
		Logger:  logger,
		Metrics: recorder,
		Tracer:  a.tracer.Tracer(),
	})
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	a.checker.RegisterCheck("config", func(context.Context) error {
		return config.Validate(cfg)
	})
	a.checker.RegisterCheck("limiter", func(context.Context) error {
		if stats := limiter.Stats(); stats.Limit <= 0 {
			return errors.New("rate limiter has no capacity")
		}
		return nil
	})
	return a, nil
}

// clientTLS builds the registry TLS configuration and starts the client
// certificate reloader when one is configured.
func (a *app) clientTLS(cfg *sectls.ClientConfig) (*tls.Config, error) {
	if !cfg.Customized() {
		return nil, nil
	}

	tlsConfig, reloader, err := cfg.Build(a.logger)
	if err != nil {
		return nil, err
	}
	if reloader == nil {
		return tlsConfig, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := reloader.Start(ctx); err != nil {
		cancel()
		return nil, err
	}
	a.stopReload = cancel
	a.checker.RegisterCheck("client_certificate", reloader.Check)
	return tlsConfig, nil
}

// checkInbox registers a readiness check for the spool inbox.
func (a *app) checkInbox(inbox string) {
	a.checker.RegisterCheck("spool_inbox", func(context.Context) error {
		info, err := os.Stat(inbox)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", inbox)
		}
		return nil
	})
}

// serveTelemetry runs the metrics and health server in g when metrics are
// enabled. The server stops when ctx is canceled.
func (a *app) serveTelemetry(ctx context.Context, g *errgroup.Group) error {
	if a.collector == nil {
		return nil
	}

	cfg := server.ConfigFrom(&a.cfg.Telemetry.Metrics)
	cfg.Version, cfg.Commit, cfg.BuildTime = Version, GitCommit, BuildDate

	srv := server.New(cfg, a.collector.Handler(), a.checker, a.logger)
	if err := srv.Listen(); err != nil {
		return err
	}
	g.Go(func() error {
		return srv.Run(ctx)
	})
	return nil
}

// Close releases idle connections and flushes pending spans.
func (a *app) Close(ctx context.Context) error {
	if a.stopReload != nil {
		a.stopReload()
	}
	if a.transport != nil {
		_ = a.transport.Close()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to flush traces: %w", err)
	}
	return nil
}
