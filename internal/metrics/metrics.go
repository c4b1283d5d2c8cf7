// Package metrics exposes frame and entity counters for a running session
// on a private Prometheus registry.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "beatsprite"

// Metrics is the set of session collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	composeSeconds prometheus.Histogram
	entities       prometheus.Gauge
	spawns         prometheus.Counter
	ticks          *prometheus.CounterVec
}

// New registers the session collectors plus the Go runtime collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		composeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_compose_seconds",
			Help:      "Time spent composing one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Live entities in the registry.",
		}),
		spawns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emitter_spawns_total",
			Help:      "Emitter spawn events.",
		}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Session ticks by state.",
		}, []string{"state"}),
	}
	m.registry.MustRegister(
		m.composeSeconds,
		m.entities,
		m.spawns,
		m.ticks,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveCompose records one compose duration.
func (m *Metrics) ObserveCompose(d time.Duration) {
	if m == nil {
		return
	}
	m.composeSeconds.Observe(d.Seconds())
}

// SetEntities records the registry size.
func (m *Metrics) SetEntities(n int) {
	if m == nil {
		return
	}
	m.entities.Set(float64(n))
}

// AddSpawns adds n spawn events.
func (m *Metrics) AddSpawns(n uint64) {
	if m == nil || n == 0 {
		return
	}
	m.spawns.Add(float64(n))
}

// CountTick counts one tick in state.
func (m *Metrics) CountTick(state string) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(state).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen metrics %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics endpoint listening", slog.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}
