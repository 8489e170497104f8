// Package metrics exports job run metrics in the Prometheus format.
package metrics

import (
	"context"
	"net/http"

	"rta-sync/internal/extraction/scheduler"
	"rta-sync/internal/shared/eventbus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rta_sync"

// Recorder turns run reports into Prometheus series. It owns its registry so
// tests and multiple instances never collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	items    *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
}

// NewRecorder registers the job metrics on registry, or on a fresh registry when nil.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	r := &Recorder{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Finished job runs by outcome.",
		}, []string{"job", "kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of finished job runs.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		}, []string{"job", "kind"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_items_total",
			Help:      "Per-run tallies such as inserted or deleted records.",
		}, []string{"job", "counter"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_in_flight",
			Help:      "Dispatched runs that have not finished.",
		}, []string{"job"}),
	}
	registry.MustRegister(r.runs, r.duration, r.items, r.inFlight)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Dispatched marks a run as started
func (r *Recorder) Dispatched(report scheduler.RunReport) {
	r.inFlight.WithLabelValues(report.Job).Inc()
}

// Finished records the outcome of a run
func (r *Recorder) Finished(report scheduler.RunReport) {
	status := "succeeded"
	if !report.Succeeded() {
		status = "failed"
	}
	kind := string(report.Kind)

	r.inFlight.WithLabelValues(report.Job).Dec()
	r.runs.WithLabelValues(report.Job, kind, status).Inc()
	r.duration.WithLabelValues(report.Job, kind).Observe(report.Duration.Seconds())
	for counter, n := range report.Counts {
		if n > 0 {
			r.items.WithLabelValues(report.Job, counter).Add(float64(n))
		}
	}
}

// Subscribe feeds the recorder from job lifecycle events
func (r *Recorder) Subscribe(bus eventbus.EventBusInterface) {
	bus.SubscribeAll(eventbus.JobEventTypes, func(ctx context.Context, event eventbus.Event) error {
		report, ok := event.Data().(scheduler.RunReport)
		if !ok {
			return nil
		}
		if event.Type() == eventbus.EventTypeJobDispatched {
			r.Dispatched(report)
		} else {
			r.Finished(report)
		}
		return nil
	})
}

// Handler serves the registry in the exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
