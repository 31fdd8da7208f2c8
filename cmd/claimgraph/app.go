package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/analytics"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/config"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/metrics"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/narrative"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/sink"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// app owns the process-wide clients. Commands build one and close it on exit.
type app struct {
	cfg       *config.Config
	driver    neo4j.DriverWithContext
	db        *database.Neo4jService
	analytics *analytics.Analytics
	metrics   *metrics.Prometheus
	sink      *sink.PostgresSink
	fraud     *fraud.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	driver, err := database.NewDriver(cfg.URI, cfg.Username, cfg.Password)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, driver: driver}

	a.db, err = database.NewNeo4jService(driver, cfg.Database)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	a.analytics = analytics.NewAnalytics(cfg.AnalyticsEndpoint, nil)
	if !cfg.Telemetry {
		a.analytics.Disable()
	}

	opts := []fraud.Option{fraud.WithAnalytics(a.analytics)}

	if cfg.MetricsAddr != "" {
		a.metrics = metrics.NewPrometheus()
		opts = append(opts, fraud.WithMetrics(a.metrics))
	}

	if cfg.SinkDSN != "" {
		a.sink, err = sink.Open(ctx, cfg.SinkDSN)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("failed to open result sink: %w", err)
		}
		if err := a.sink.EnsureSchema(ctx); err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("failed to prepare result sink: %w", err)
		}
		opts = append(opts, fraud.WithSink(a.sink))
	}

	if cfg.LLMAPIKey != "" {
		analyzer, err := narrative.NewOpenAIAnalyzer(narrative.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL), cfg.LLMModel)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		opts = append(opts, fraud.WithAnalyzer(analyzer))
	}

	a.fraud, err = fraud.NewService(a.db, opts...)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

// serveMetrics runs the /metrics endpoint until ctx ends. It is a no-op without METRICS_ADDR.
func (a *app) serveMetrics(ctx context.Context) {
	if a.metrics == nil {
		return
	}
	go func() {
		if err := a.metrics.Serve(ctx, a.cfg.MetricsAddr); err != nil {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
}

func (a *app) close(ctx context.Context) {
	var errs []error
	if a.sink != nil {
		errs = append(errs, a.sink.Close())
	}
	if a.driver != nil {
		errs = append(errs, a.driver.Close(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("failed to close clients", "error", err)
	}
}
