package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/dineshvn/metroplan/core/logger"
	coremetrics "github.com/dineshvn/metroplan/core/metrics"
	"github.com/dineshvn/metroplan/core/model"
	corestore "github.com/dineshvn/metroplan/core/store"
	"github.com/dineshvn/metroplan/internal/eventbus"
)

// PipelineSolver runs the external optimization pipeline for a planning date.
type PipelineSolver interface {
	Solve(ctx context.Context, planningDate string) (*model.InputData, *model.ScheduleSnapshot, error)
}

// Generator produces a synthetic snapshot when the pipeline is unavailable
// or fails.
type Generator interface {
	Generate(planningDate string, weights map[string]float64) (*model.ScheduleSnapshot, map[string]float64)
}

// ExchangeReader locates the file-based exchange documents for a date.
type ExchangeReader interface {
	HasDocuments(planningDate string) bool
	ReadInput(planningDate string) (*model.InputData, error)
	ReadSolution(planningDate string) (*model.ScheduleSnapshot, error)
}

// GenerateRequest carries the client parameters of one generation run.
type GenerateRequest struct {
	PlanningDate      string
	ConstraintWeights map[string]float64
}

// Result bundles a snapshot with its derived analyses.
type Result struct {
	Snapshot           *model.ScheduleSnapshot
	ConstraintsApplied []model.Constraint
	AuditTrail         []model.AuditEvent
	Weights            map[string]float64
	Source             string
}

// SnapshotPublished is emitted on the event bus after each generation run.
type SnapshotPublished struct {
	PlanningDate    string
	SolverStatus    string
	TotalTrainsUsed int
	TripsServiced   int
	TripsUnserviced int
	Source          string
}

const historyLimit = 10

// Orchestrator coordinates one generation run: mode selection, pipeline
// invocation with synthetic fallback, derived analyses, persistence and
// event publication. Runs share no mutable state and may execute
// concurrently; the placeholder-history source is the one exception and
// is guarded by rngMu.
type Orchestrator struct {
	mode      ExecutionMode
	solver    PipelineSolver
	generator Generator
	store     corestore.Store
	exchange  ExchangeReader
	bus       eventbus.EventBus
	sink      coremetrics.MetricsSink
	log       logger.Logger
	rngMu     sync.Mutex
	rng       *rand.Rand
}

// NewOrchestrator wires an orchestrator. The store and exchange may be nil;
// their read paths then degrade as documented on History and Detail. A nil
// solver forces synthetic generation regardless of mode.
func NewOrchestrator(mode ExecutionMode, solver PipelineSolver, generator Generator,
	st corestore.Store, exchange ExchangeReader, bus eventbus.EventBus,
	sink coremetrics.MetricsSink, log logger.Logger, src rand.Source) *Orchestrator {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Orchestrator{
		mode:      mode,
		solver:    solver,
		generator: generator,
		store:     st,
		exchange:  exchange,
		bus:       bus,
		sink:      sink,
		log:       log,
		rng:       rand.New(src),
	}
}

// Generate produces the schedule for the requested date. Pipeline failures
// are absorbed: the run always completes with a valid snapshot unless the
// request itself is invalid.
func (o *Orchestrator) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	if req.PlanningDate == "" {
		return nil, &ValidationError{Field: "planning_date"}
	}
	runID := uuid.NewString()
	start := time.Now()

	var (
		input    *model.InputData
		solution *model.ScheduleSnapshot
		weights  map[string]float64
		source   = coremetrics.SourceSynthetic
		fallback bool
	)
	if o.mode == ModeLocal && o.solver != nil {
		in, sol, err := o.solver.Solve(ctx, req.PlanningDate)
		if err != nil {
			// Never escalated: the pipeline is best-effort and the
			// synthetic generator covers for it.
			o.log.Warnf("run %s: pipeline failed, falling back to synthetic generation: %v", runID, err)
			fallback = true
		} else {
			input, solution = in, sol
			source = coremetrics.SourcePipeline
			weights = mergedWeights(req.ConstraintWeights)
		}
	}
	if solution == nil {
		solution, weights = o.generator.Generate(req.PlanningDate, req.ConstraintWeights)
		input = solution.InputData
	}
	if solution.TripAssignments == nil {
		solution.TripAssignments = make([]model.TripAssignment, 0)
	}
	solution.InputData = input

	constraints := AnalyzeConstraints(solution.InductionRanking)
	audit := SynthesizeAuditTrail(input, solution)
	res := &Result{
		Snapshot:           solution,
		ConstraintsApplied: constraints,
		AuditTrail:         audit,
		Weights:            weights,
		Source:             source,
	}

	// A canceled request must not persist a partial snapshot.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.persist(ctx, runID, res)

	if o.bus != nil {
		o.bus.Publish(SnapshotPublished{
			PlanningDate:    solution.PlanningDate,
			SolverStatus:    solution.SolverStatus,
			TotalTrainsUsed: solution.TotalTrainsUsed,
			TripsServiced:   solution.TripsServiced,
			TripsUnserviced: solution.TripsUnserviced,
			Source:          source,
		})
	}
	if err := o.sink.RecordGeneration(coremetrics.GenerationEvent{
		PlanningDate:    solution.PlanningDate,
		Mode:            o.mode.String(),
		Source:          source,
		SolverStatus:    solution.SolverStatus,
		TotalTrainsUsed: solution.TotalTrainsUsed,
		TripsServiced:   solution.TripsServiced,
		TripsUnserviced: solution.TripsUnserviced,
		Duration:        time.Since(start),
		Fallback:        fallback,
		Time:            time.Now().UTC(),
	}); err != nil {
		o.log.Warnf("run %s: metrics sink: %v", runID, err)
	}
	o.log.Infof("run %s: schedule for %s generated from %s (%d trains, %d/%d trips)",
		runID, solution.PlanningDate, source, solution.TotalTrainsUsed,
		solution.TripsServiced, solution.TripsServiced+solution.TripsUnserviced)
	return res, nil
}

// persist upserts the snapshot. Failures are logged and counted but never
// fail the request; the caller still receives the freshly computed schedule.
func (o *Orchestrator) persist(ctx context.Context, runID string, res *Result) {
	if o.store == nil {
		return
	}
	rec := corestore.Record{
		PlanningDate:       res.Snapshot.PlanningDate,
		SolverStatus:       res.Snapshot.SolverStatus,
		TotalTrainsUsed:    res.Snapshot.TotalTrainsUsed,
		TripsServiced:      res.Snapshot.TripsServiced,
		TripsUnserviced:    res.Snapshot.TripsUnserviced,
		InductionRanking:   res.Snapshot.InductionRanking,
		TripAssignments:    res.Snapshot.TripAssignments,
		InputData:          res.Snapshot.InputData,
		ConstraintsApplied: res.ConstraintsApplied,
		AuditTrail:         res.AuditTrail,
		CreatedAt:          time.Now().UTC(),
	}
	if err := o.store.Upsert(ctx, rec); err != nil {
		o.log.Errorf("run %s: persist snapshot %s: %v", runID, rec.PlanningDate, err)
		if rec, ok := o.sink.(coremetrics.PersistenceFailureRecorder); ok {
			_ = rec.RecordPersistenceFailure(res.Snapshot.PlanningDate)
		}
	}
}

// History lists up to ten schedule summaries, newest first. Without a
// reachable store holding records, a plausible placeholder series covering
// the ten most recent days is synthesized instead.
func (o *Orchestrator) History(ctx context.Context) ([]corestore.HistoryEntry, error) {
	if o.store != nil {
		entries, err := o.store.History(ctx, historyLimit)
		if err != nil {
			o.log.Warnf("history query failed, serving placeholder series: %v", err)
		} else if len(entries) > 0 {
			return entries, nil
		}
	}
	return o.placeholderHistory(), nil
}

func (o *Orchestrator) placeholderHistory() []corestore.HistoryEntry {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	entries := make([]corestore.HistoryEntry, historyLimit)
	for i := range entries {
		day := today.AddDate(0, 0, -i)
		used := 15 + o.rng.Intn(8)
		serviced := used * TripsPerTrain
		if serviced > DailyTripDemand {
			serviced = DailyTripDemand
		}
		entries[i] = corestore.HistoryEntry{
			PlanningDate:    day.Format("2006-01-02"),
			SolverStatus:    "OPTIMAL",
			TotalTrainsUsed: used,
			TripsServiced:   serviced,
			TripsUnserviced: DailyTripDemand - serviced,
			CreatedAt:       day.Add(4 * time.Hour),
		}
	}
	return entries
}

// Detail returns the full schedule for a date: file-exchange documents take
// priority, then the persisted record. Unlike History there is no synthetic
// fallback; a miss on every path is ErrNotFound.
func (o *Orchestrator) Detail(ctx context.Context, planningDate string) (*Result, error) {
	if planningDate == "" {
		return nil, &ValidationError{Field: "planning_date"}
	}
	if o.exchange != nil && o.exchange.HasDocuments(planningDate) {
		input, err := o.exchange.ReadInput(planningDate)
		if err == nil {
			solution, serr := o.exchange.ReadSolution(planningDate)
			if serr == nil {
				solution.InputData = input
				return &Result{
					Snapshot:           solution,
					ConstraintsApplied: AnalyzeConstraints(solution.InductionRanking),
					AuditTrail:         SynthesizeAuditTrail(input, solution),
				}, nil
			}
			err = serr
		}
		o.log.Warnf("exchange documents for %s unreadable, trying store: %v", planningDate, err)
	}
	if o.store != nil {
		rec, err := o.store.Get(ctx, planningDate)
		if err == nil {
			return resultFromRecord(rec), nil
		}
		if !errors.Is(err, corestore.ErrNoRecord) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func resultFromRecord(rec *corestore.Record) *Result {
	return &Result{
		Snapshot: &model.ScheduleSnapshot{
			PlanningDate:     rec.PlanningDate,
			SolverStatus:     rec.SolverStatus,
			TotalTrainsUsed:  rec.TotalTrainsUsed,
			TripsServiced:    rec.TripsServiced,
			TripsUnserviced:  rec.TripsUnserviced,
			InductionRanking: rec.InductionRanking,
			TripAssignments:  rec.TripAssignments,
			InputData:        rec.InputData,
		},
		ConstraintsApplied: rec.ConstraintsApplied,
		AuditTrail:         rec.AuditTrail,
	}
}

func mergedWeights(overrides map[string]float64) map[string]float64 {
	weights := DefaultConstraintWeights()
	for k, v := range overrides {
		weights[k] = v
	}
	return weights
}
