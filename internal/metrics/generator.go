// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics provides Prometheus metrics for devcontainer generation runs.
//
// The generator is a short-lived CLI, so metrics live in a dedicated
// registry and are exported as a node-exporter textfile rather than served
// over HTTP.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for RunsTotal.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Generator holds the metrics recorded by one generator instance.
type Generator struct {
	registry *prometheus.Registry

	// RunsTotal counts generator runs by result and failing stage.
	RunsTotal *prometheus.CounterVec
	// RunDuration observes wall time per run.
	RunDuration prometheus.Histogram
	// Substitutions reports the placeholder replacements of the last run.
	Substitutions prometheus.Gauge
	// OverlayWarnings reports skipped or overridden .env lines of the last run.
	OverlayWarnings prometheus.Gauge
	// LastSuccess is the unix time of the last successful write.
	LastSuccess prometheus.Gauge
}

// NewGenerator registers the generator metrics on a fresh registry.
func NewGenerator() *Generator {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Generator{
		registry: reg,
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "devcontainer_init_runs_total",
			Help: "Total number of generator runs, by result and failing stage.",
		}, []string{"result", "stage"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "devcontainer_init_run_duration_seconds",
			Help:    "Duration of generator runs in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		Substitutions: f.NewGauge(prometheus.GaugeOpts{
			Name: "devcontainer_init_substitutions",
			Help: "Number of placeholder substitutions performed by the last run.",
		}),
		OverlayWarnings: f.NewGauge(prometheus.GaugeOpts{
			Name: "devcontainer_init_overlay_warnings",
			Help: "Number of overlay lines skipped or overridden in the last run.",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "devcontainer_init_last_success_timestamp_seconds",
			Help: "Unix time of the last successful generation.",
		}),
	}
}

// Gatherer exposes the underlying registry.
func (g *Generator) Gatherer() prometheus.Gatherer {
	return g.registry
}

// RecordSuccess records a completed run.
func (g *Generator) RecordSuccess(d time.Duration, substitutions, warnings int, at time.Time) {
	g.RunsTotal.WithLabelValues(ResultSuccess, "done").Inc()
	g.RunDuration.Observe(d.Seconds())
	g.Substitutions.Set(float64(substitutions))
	g.OverlayWarnings.Set(float64(warnings))
	g.LastSuccess.Set(float64(at.Unix()))
}

// RecordFailure records a run that failed in stage.
func (g *Generator) RecordFailure(d time.Duration, stage string) {
	g.RunsTotal.WithLabelValues(ResultFailure, stage).Inc()
	g.RunDuration.Observe(d.Seconds())
}

// WriteTextfile writes the current metrics to path in the Prometheus text
// format. The write is atomic.
func (g *Generator) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
