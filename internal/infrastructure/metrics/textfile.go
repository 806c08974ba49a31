// Package metrics exports build counters in the node-exporter textfile format.
// Builds are short-lived batch runs, so nothing is served over HTTP.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/ports"
)

const namespace = "featured_selector"

// TextfileSink rewrites one textfile per build.
type TextfileSink struct {
	path     string
	registry *prometheus.Registry

	items       *prometheus.GaugeVec
	featured    *prometheus.GaugeVec
	duration    prometheus.Gauge
	lastRun     *prometheus.GaugeVec
	buildsTotal *prometheus.CounterVec
}

var _ ports.MetricsSink = (*TextfileSink)(nil)

// NewTextfileSink registers the build metrics on a private registry.
func NewTextfileSink(path string) *TextfileSink {
	s := &TextfileSink{
		path:     path,
		registry: prometheus.NewRegistry(),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items",
			Help:      "Items seen by the last build, by approval stage.",
		}, []string{"stage"}),
		featured: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "featured_items",
			Help:      "Items published by the last build, by section.",
		}, []string{"section"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall time of the last build.",
		}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time the last build finished, by outcome.",
		}, []string{"outcome"}),
		buildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Builds run by this process, by outcome.",
		}, []string{"outcome"}),
	}
	s.registry.MustRegister(s.items, s.featured, s.duration, s.lastRun, s.buildsTotal)
	return s
}

// RecordBuild updates the gauges from report and rewrites the textfile.
func (s *TextfileSink) RecordBuild(report domain.BuildReport) error {
	stages := map[string]int{
		"raw":       report.Raw,
		"duplicate": report.Duplicates,
		"invalid":   report.Invalid,
		"vetoed":    report.Vetoed,
		"unjudged":  report.Unjudged,
		"approved":  report.Approved,
		"fallback":  report.Fallback,
	}
	for stage, n := range stages {
		s.items.WithLabelValues(stage).Set(float64(n))
	}
	s.featured.WithLabelValues("all").Set(float64(report.Featured))
	s.featured.WithLabelValues("oddities").Set(float64(report.Oddities))
	s.duration.Set(report.Duration.Seconds())
	s.lastRun.WithLabelValues(string(report.Outcome)).Set(float64(report.FinishedAt.Unix()))
	s.buildsTotal.WithLabelValues(string(report.Outcome)).Inc()

	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(s.path, s.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
