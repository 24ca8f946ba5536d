// Package metrics exports per-frame simulation health as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-orrery/internal/scene"
)

const namespace = "orrery"

// Collector holds the scene metrics. Each collector owns its registry so
// several can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	framesTotal   prometheus.Counter
	frameDuration prometheus.Histogram
	eventsTotal   *prometheus.CounterVec
	selected      *prometheus.GaugeVec
	transitioning prometheus.Gauge
	drift         *prometheus.GaugeVec
	secondsPerYr  prometheus.Gauge
	simSeconds    prometheus.Gauge
}

// NewCollector creates and registers the scene metrics.
func NewCollector() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		framesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Total number of simulated frames",
			},
		),
		frameDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "frame_duration_seconds",
				Help:      "Time spent computing one frame",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Selection and time-scale events",
			},
			[]string{"type"},
		),
		selected: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "selected",
				Help:      "1 for the body the camera follows",
			},
			[]string{"body"},
		),
		transitioning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "camera_transitioning",
				Help:      "1 while the camera eases toward a new selection",
			},
		),
		drift: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "orbit_radius_drift_ratio",
				Help:      "Relative error between orbit radius and configured distance",
			},
			[]string{"body"},
		),
		secondsPerYr: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "time_scale_seconds_per_year",
				Help:      "Real seconds per simulated year",
			},
		),
		simSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "simulated_seconds",
				Help:      "Simulated time elapsed",
			},
		),
	}

	m.registry.MustRegister(
		m.framesTotal,
		m.frameDuration,
		m.eventsTotal,
		m.selected,
		m.transitioning,
		m.drift,
		m.secondsPerYr,
		m.simSeconds,
	)
	return m
}

// ObserveFrame records one computed frame.
func (m *Collector) ObserveFrame(f scene.Frame, duration time.Duration) {
	m.framesTotal.Inc()
	m.frameDuration.Observe(duration.Seconds())
	m.simSeconds.Set(f.SimSeconds)

	if f.Selection.Phase == "transitioning" {
		m.transitioning.Set(1)
	} else {
		m.transitioning.Set(0)
	}

	for _, b := range f.Bodies {
		m.drift.WithLabelValues(b.Name).Set(b.Drift)
		if b.Selected {
			m.selected.WithLabelValues(b.Name).Set(1)
		} else {
			m.selected.WithLabelValues(b.Name).Set(0)
		}
	}
}

// RecordEvent counts a scene event. It matches the scene's event hook.
func (m *Collector) RecordEvent(ev scene.Event) {
	m.eventsTotal.WithLabelValues(string(ev.Kind)).Inc()
}

// SetSecondsPerYear records the current slider value.
func (m *Collector) SetSecondsPerYear(v float64) {
	m.secondsPerYr.Set(v)
}

// Registry returns the collector's registry.
func (m *Collector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics handler for this collector.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
