package main

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

// Metrics counts search work. A nil *Metrics records nothing.
type Metrics struct {
	shapes    *prometheus.CounterVec
	plans     *prometheus.CounterVec
	nodes     prometheus.Counter
	solutions prometheus.Counter
	initLen   prometheus.Gauge
	best      prometheus.Gauge
}

// NewMetrics registers the search metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		shapes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bfcrunch",
			Name:      "shapes_total",
			Help:      "Shapes simulated, by how the counted loop ended.",
		}, []string{"termination"}),
		plans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bfcrunch",
			Name:      "plans_total",
			Help:      "Emission planning attempts, by outcome.",
		}, []string{"outcome"}),
		nodes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "bfcrunch",
			Name:      "planner_nodes_total",
			Help:      "Planner search nodes expanded.",
		}),
		solutions: f.NewCounter(prometheus.CounterOpts{
			Namespace: "bfcrunch",
			Name:      "solutions_total",
			Help:      "Solutions reported.",
		}),
		initLen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "bfcrunch",
			Name:      "init_length",
			Help:      "Prefix length currently being searched.",
		}),
		best: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "bfcrunch",
			Name:      "best_length",
			Help:      "Shortest program length reported so far.",
		}),
	}
}

func (m *Metrics) shape(t Termination) {
	if m != nil {
		m.shapes.WithLabelValues(t.String()).Inc()
	}
}

func (m *Metrics) plan(r PlanResult) {
	if m != nil {
		m.plans.WithLabelValues(r.Outcome.String()).Inc()
		m.nodes.Add(float64(r.Nodes))
	}
}

func (m *Metrics) solution(length int) {
	if m != nil {
		m.solutions.Inc()
		m.best.Set(float64(length))
	}
}

func (m *Metrics) length(l int) {
	if m != nil {
		m.initLen.Set(float64(l))
	}
}

// ServeMetrics exposes reg on addr under /metrics until ctx is done.
func ServeMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		log.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", "err", err)
		}
	}()
}
