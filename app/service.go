package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/exp/rand"

	apischedule "github.com/dineshvn/metroplan/api/schedule"
	"github.com/dineshvn/metroplan/config"
	coremetrics "github.com/dineshvn/metroplan/core/metrics"
	"github.com/dineshvn/metroplan/core/schedule"
	"github.com/dineshvn/metroplan/core/solver"
	corestore "github.com/dineshvn/metroplan/core/store"
	"github.com/dineshvn/metroplan/infra/files"
	"github.com/dineshvn/metroplan/infra/logger"
	"github.com/dineshvn/metroplan/infra/metrics"
	"github.com/dineshvn/metroplan/infra/notify"
	"github.com/dineshvn/metroplan/infra/procexec"
	infrastore "github.com/dineshvn/metroplan/infra/store"
	"github.com/dineshvn/metroplan/internal/eventbus"
)

// Service wires the schedule orchestrator, its collaborators and the HTTP
// surface.
type Service struct {
	Orchestrator *schedule.Orchestrator
	handler      *apischedule.Handler
	bus          *eventbus.Bus
	store        corestore.Store
	notifier     *notify.MQTTNotifier
	cfg          *config.Config
	log          logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	mode := schedule.ParseExecutionMode(cfg.Mode)

	var st corestore.Store
	if cfg.Store.Path != "" {
		sqlStore, err := infrastore.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			// The store is optional: reads degrade to files and the
			// synthetic history series.
			logg.Errorf("snapshot store unavailable, running without persistence: %v", err)
		} else {
			st = sqlStore
		}
	}

	exchange := files.NewExchange(cfg.Solver.WorkDir)
	var pipeline schedule.PipelineSolver
	if mode == schedule.ModeLocal {
		runner := procexec.New(logger.New("procexec"))
		pipeline = solver.NewInvoker(cfg.Solver, runner, exchange, logger.New("solver"))
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	seed := cfg.RandSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	bus := eventbus.New()
	generator := schedule.NewSyntheticGenerator(rand.NewSource(seed))
	orch := schedule.NewOrchestrator(mode, pipeline, generator, st, exchange,
		bus, sink, logger.New("orchestrator"), rand.NewSource(seed+1))

	svc := &Service{
		Orchestrator: orch,
		handler:      apischedule.NewHandler(orch, logger.New("api")),
		bus:          bus,
		store:        st,
		cfg:          cfg,
		log:          logg,
	}
	if cfg.Notify.Enabled {
		notifier, err := notify.NewMQTTNotifier(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		svc.notifier = notifier
	}
	return svc, nil
}

// Run serves the API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.notifier != nil {
		go s.notifier.Run(ctx, s.bus)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.handler.Mux()}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("schedule API listening on %s (mode %s)", s.cfg.HTTP.Addr, s.cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.notifier != nil {
		s.notifier.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
