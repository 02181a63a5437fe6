package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver turns graph events into Prometheus series. It understands
// the event names emitted by orchestrate/state and ignores everything else.
type MetricsObserver struct {
	stages    *prometheus.CounterVec
	durations *prometheus.HistogramVec
	routes    *prometheus.CounterVec
	runs      *prometheus.CounterVec
}

// NewMetricsObserver creates the collectors and registers them with reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	m := &MetricsObserver{
		stages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "router_stage_executions_total",
				Help: "Stage executions by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "router_stage_duration_seconds",
				Help:    "Stage execution latency.",
				Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
			},
			[]string{"stage"},
		),
		routes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "router_route_decisions_total",
				Help: "Labels selected by decision stages.",
			},
			[]string{"decision", "label", "fallback"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "router_runs_total",
				Help: "Completed graph runs by outcome.",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.stages, m.durations, m.routes, m.runs} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *MetricsObserver) OnEvent(ctx context.Context, event Event) {
	switch event.Type {
	case "node.complete":
		stage, _ := event.Data["node"].(string)
		outcome := "ok"
		if failed, _ := event.Data["error"].(bool); failed {
			outcome = "error"
		}
		m.stages.WithLabelValues(stage, outcome).Inc()
		if d, ok := event.Data["duration"].(time.Duration); ok {
			m.durations.WithLabelValues(stage).Observe(d.Seconds())
		}
	case "decision.route":
		decision, _ := event.Data["node"].(string)
		label, _ := event.Data["label"].(string)
		fallback := "false"
		if fb, _ := event.Data["fallback"].(bool); fb {
			fallback = "true"
		}
		m.routes.WithLabelValues(decision, label, fallback).Inc()
	case "graph.complete":
		m.runs.WithLabelValues("ok").Inc()
	case "graph.failed":
		m.runs.WithLabelValues("error").Inc()
	}
}
