package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "claimgraph"

// Recorder receives operational measurements from the fraud service.
type Recorder interface {
	ObserveIngest(d time.Duration, err error)
	ObserveCheck(d time.Duration, recommendation string, err error)
	ObserveScan(d time.Duration, patterns, failed int, err error)
	IncFlag(rule string)
}

// Prometheus records into a prometheus registry.
type Prometheus struct {
	registry *prometheus.Registry

	ingestTotal    *prometheus.CounterVec
	ingestDuration prometheus.Histogram
	checkTotal     *prometheus.CounterVec
	checkDuration  prometheus.Histogram
	flagsTotal     *prometheus.CounterVec
	scanDuration   prometheus.Histogram
	scanPatterns   prometheus.Gauge
	scanFailures   *prometheus.CounterVec
}

// NewPrometheus registers the claimgraph collectors on a fresh registry.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		ingestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "claims_total",
			Help:      "Claims ingested by result",
		}, []string{"result"}),
		ingestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Claim merge duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		checkTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "claims_total",
			Help:      "Real-time fraud checks by recommendation",
		}, []string{"recommendation"}),
		checkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "duration_seconds",
			Help:      "Real-time fraud check duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		flagsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "flags_total",
			Help:      "Real-time rule hits by rule",
		}, []string{"rule"}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Batch pattern scan duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		scanPatterns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "patterns_detected",
			Help:      "Patterns with matches in the last batch scan",
		}),
		scanFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "failures_total",
			Help:      "Batch scan failures by kind",
		}, []string{"kind"}),
	}
}

func (p *Prometheus) ObserveIngest(d time.Duration, err error) {
	p.ingestDuration.Observe(d.Seconds())
	p.ingestTotal.WithLabelValues(result(err)).Inc()
}

func (p *Prometheus) ObserveCheck(d time.Duration, recommendation string, err error) {
	p.checkDuration.Observe(d.Seconds())
	if err != nil {
		recommendation = "error"
	}
	p.checkTotal.WithLabelValues(recommendation).Inc()
}

func (p *Prometheus) ObserveScan(d time.Duration, patterns, failed int, err error) {
	p.scanDuration.Observe(d.Seconds())
	if err != nil {
		p.scanFailures.WithLabelValues("scan").Inc()
		return
	}
	p.scanPatterns.Set(float64(patterns))
	if failed > 0 {
		p.scanFailures.WithLabelValues("detector").Add(float64(failed))
	}
}

func (p *Prometheus) IncFlag(rule string) {
	p.flagsTotal.WithLabelValues(rule).Inc()
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler exposes the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (p *Prometheus) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("metrics server shutdown failed", "error", err)
		}
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Noop discards every measurement.
type Noop struct{}

func (Noop) ObserveIngest(time.Duration, error)         {}
func (Noop) ObserveCheck(time.Duration, string, error)  {}
func (Noop) ObserveScan(time.Duration, int, int, error) {}
func (Noop) IncFlag(string)                             {}
