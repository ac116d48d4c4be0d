package model

import "time"

// InductionRankingEntry assigns a readiness status to one fleet train.
// Status is a free-text tag; downstream analyses match on substrings such as
// "HELD FOR MAINTENANCE" or "High Failure Risk".
type InductionRankingEntry struct {
	TrainID        string  `json:"train_id"`
	Status         string  `json:"status"`
	FinalMileageKm int     `json:"final_mileage_km"`
	HealthScore    float64 `json:"health_score"`
}

// TripAssignment maps a serviced trip to the train that runs it.
type TripAssignment struct {
	TripID    string `json:"trip_id"`
	TrainID   string `json:"train_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Constraint statuses reported by the compliance analyzer.
const (
	ConstraintActive    = "ACTIVE"
	ConstraintSatisfied = "SATISFIED"
	ConstraintViolated  = "VIOLATED"
)

// Constraint summarizes how one scheduling rule applied to the day's plan.
type Constraint struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	TrainsAffected int    `json:"trains_affected"`
	Status         string `json:"status"`
}

// AuditEvent is one entry of the reconstructed decision trail.
type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	Details   string    `json:"details"`
}

// ScheduleSnapshot is the complete solved schedule for one planning date.
// TripAssignments must serialize as an explicit empty array when no detailed
// mapping exists; clients rely on the field being present.
type ScheduleSnapshot struct {
	PlanningDate      string                  `json:"planning_date"`
	SolverStatus      string                  `json:"solver_status"`
	TotalTrainsUsed   int                     `json:"total_trains_used"`
	TripsServiced     int                     `json:"trips_serviced"`
	TripsUnserviced   int                     `json:"trips_unserviced"`
	UnservicedTripIDs []string                `json:"unserviced_trip_ids"`
	InductionRanking  []InductionRankingEntry `json:"induction_ranking"`
	TripAssignments   []TripAssignment        `json:"trip_assignments"`
	InputData         *InputData              `json:"input_data,omitempty"`
}
