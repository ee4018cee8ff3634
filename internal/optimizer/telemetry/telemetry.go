// Package telemetry exposes a Prometheus view over a run's generation
// progress: a private registry, a promhttp handler, and typed setters
// instead of global collectors.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
)

// Recorder observes an optimizer run's progress events as a side effect,
// never a blocking dependency of the engine's generation loop.
type Recorder struct {
	registry        *prometheus.Registry
	handler         http.Handler
	generationGauge prometheus.Gauge
	fitnessGauge    prometheus.Gauge
	runDuration     prometheus.Histogram
	runsTotal       *prometheus.CounterVec
}

// NewRecorder registers the optimizer's collectors on a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	generationGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimizer_current_generation",
		Help: "Generation index of the most recently completed evolution step",
	})
	fitnessGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimizer_best_fitness",
		Help: "Best fitness observed in the most recently completed generation",
	})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_run_duration_seconds",
		Help:    "Wall-clock duration of a full optimizer run",
		Buckets: prometheus.DefBuckets,
	})
	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_runs_total",
		Help: "Total optimizer runs by terminal status",
	}, []string{"status"})

	registry.MustRegister(generationGauge, fitnessGauge, runDuration, runsTotal)

	return &Recorder{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		generationGauge: generationGauge,
		fitnessGauge:    fitnessGauge,
		runDuration:     runDuration,
		runsTotal:       runsTotal,
	}
}

// Handler exposes the Prometheus scrape endpoint for cmd/server.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Sink adapts the Recorder into an optimizer.ProgressSink, so a run can be
// wired straight in: optimizer.Run(ctx, input, RunConfig{ProgressSink: rec.Sink()}, logger).
func (r *Recorder) Sink() optimizer.ProgressSink {
	return optimizer.ProgressFunc(func(e optimizer.GenerationEvent) {
		if r == nil {
			return
		}
		r.generationGauge.Set(float64(e.Generation))
		r.fitnessGauge.Set(e.BestFitness)
	})
}

// ObserveRun records a completed run's wall-clock duration and terminal status.
func (r *Recorder) ObserveRun(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.runDuration.Observe(duration.Seconds())
	r.runsTotal.WithLabelValues(status).Inc()
}
