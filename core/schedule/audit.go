package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/dineshvn/metroplan/core/model"
)

// Audit event tags in emission order.
const (
	EventGenerationStarted   = "SCHEDULE_GENERATION_STARTED"
	EventConstraintsApplied  = "CONSTRAINTS_APPLIED"
	EventOptimizationDone    = "OPTIMIZATION_COMPLETED"
	EventServiceGapsDetected = "SERVICE_GAPS_DETECTED"
	EventInductionGenerated  = "INDUCTION_LIST_GENERATED"
)

// SynthesizeAuditTrail reconstructs the decision trail for a solved snapshot.
// All events share one timestamp captured here; the trail explains the run
// after the fact rather than tracing its stages live.
func SynthesizeAuditTrail(input *model.InputData, solution *model.ScheduleSnapshot) []model.AuditEvent {
	now := time.Now().UTC()
	fleetSize := FleetSize
	if input != nil && len(input.FleetDetails) > 0 {
		fleetSize = len(input.FleetDetails)
	}

	events := []model.AuditEvent{
		{
			Timestamp: now,
			Event:     EventGenerationStarted,
			Details:   fmt.Sprintf("Schedule generation started for %s with a fleet of %d trains", solution.PlanningDate, fleetSize),
		},
		{
			Timestamp: now,
			Event:     EventConstraintsApplied,
			Details:   fmt.Sprintf("6 constraint types evaluated across %d trains", fleetSize),
		},
		{
			Timestamp: now,
			Event:     EventOptimizationDone,
			Details: fmt.Sprintf("Solver finished with status %s: %d trains inducted, %d trips serviced",
				solution.SolverStatus, solution.TotalTrainsUsed, solution.TripsServiced),
		},
	}
	if solution.TripsUnserviced > 0 {
		events = append(events, model.AuditEvent{
			Timestamp: now,
			Event:     EventServiceGapsDetected,
			Details: fmt.Sprintf("%d trips could not be serviced: %s",
				solution.TripsUnserviced, strings.Join(solution.UnservicedTripIDs, ", ")),
		})
	}
	events = append(events, model.AuditEvent{
		Timestamp: now,
		Event:     EventInductionGenerated,
		Details:   fmt.Sprintf("Induction ranking generated for %d trains", len(solution.InductionRanking)),
	})
	return events
}
