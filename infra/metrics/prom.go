package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/dineshvn/metroplan/core/metrics"
)

// PromSink records schedule generations in Prometheus metrics.
type PromSink struct {
	generations *prometheus.CounterVec
	fallbacks   prometheus.Counter
	persistErrs prometheus.Counter
	duration    *prometheus.HistogramVec
	tripsServed prometheus.Gauge
}

// NewPromSink registers generation metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generations_total",
		Help: "Total schedule generation runs",
	}, []string{"mode", "source", "solver_status"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_solver_fallbacks_total",
		Help: "Pipeline failures recovered by the synthetic generator",
	})
	persistErrs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_persistence_failures_total",
		Help: "Non-fatal snapshot store write failures",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "Wall time of one generation run",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode", "source"})
	tripsServed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_trips_serviced",
		Help: "Trips serviced by the most recent schedule",
	})

	for _, c := range []prometheus.Collector{generations, fallbacks, persistErrs, duration, tripsServed} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{
		generations: generations,
		fallbacks:   fallbacks,
		persistErrs: persistErrs,
		duration:    duration,
		tripsServed: tripsServed,
	}, nil
}

// RecordGeneration updates counters for one generation run.
func (s *PromSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	s.generations.WithLabelValues(ev.Mode, ev.Source, ev.SolverStatus).Inc()
	s.duration.WithLabelValues(ev.Mode, ev.Source).Observe(ev.Duration.Seconds())
	s.tripsServed.Set(float64(ev.TripsServiced))
	if ev.Fallback {
		s.fallbacks.Inc()
	}
	return nil
}

// RecordPersistenceFailure counts a failed snapshot write.
func (s *PromSink) RecordPersistenceFailure(string) error {
	s.persistErrs.Inc()
	return nil
}

// StartPromServer exposes Prometheus metrics on the given address until the
// context is canceled. A dedicated ServeMux avoids interfering with the API
// handlers.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
