package store

import (
	"context"
	"errors"
	"time"

	"github.com/dineshvn/metroplan/core/model"
)

// ErrNoRecord is returned when no schedule row exists for a planning date.
var ErrNoRecord = errors.New("no schedule record")

// Record is the denormalized schedule row keyed by planning date.
// Re-generation for the same date overwrites the previous row.
type Record struct {
	PlanningDate       string
	SolverStatus       string
	TotalTrainsUsed    int
	TripsServiced      int
	TripsUnserviced    int
	InductionRanking   []model.InductionRankingEntry
	TripAssignments    []model.TripAssignment
	InputData          *model.InputData
	ConstraintsApplied []model.Constraint
	AuditTrail         []model.AuditEvent
	CreatedAt          time.Time
}

// HistoryEntry is the summary projection used by history listings.
type HistoryEntry struct {
	PlanningDate    string    `json:"planning_date"`
	SolverStatus    string    `json:"solver_status"`
	TotalTrainsUsed int       `json:"total_trains_used"`
	TripsServiced   int       `json:"trips_serviced"`
	TripsUnserviced int       `json:"trips_unserviced"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store persists schedule snapshots. Implementations must make Upsert safe
// under concurrent regeneration for the same date; last write wins.
type Store interface {
	Upsert(ctx context.Context, rec Record) error
	Get(ctx context.Context, planningDate string) (*Record, error)
	History(ctx context.Context, limit int) ([]HistoryEntry, error)
	Close() error
}
