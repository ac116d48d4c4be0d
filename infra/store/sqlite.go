package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dineshvn/metroplan/core/model"
	corestore "github.com/dineshvn/metroplan/core/store"
)

// assignmentBatchSize bounds multi-row inserts of trip assignments. Batches
// run sequentially and preserve row order.
const assignmentBatchSize = 100

// SQLiteStore persists schedule snapshots in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS schedules (
        planning_date TEXT PRIMARY KEY,
        solver_status TEXT,
        total_trains_used INTEGER,
        trips_serviced INTEGER,
        trips_unserviced INTEGER,
        induction_ranking TEXT,
        trip_assignments TEXT,
        input_data TEXT,
        constraints_applied TEXT,
        audit_trail TEXT,
        created_at INTEGER
    );
    CREATE TABLE IF NOT EXISTS trip_assignments (
        planning_date TEXT,
        row_idx INTEGER,
        trip_id TEXT,
        train_id TEXT,
        start_time TEXT,
        end_time TEXT,
        PRIMARY KEY(planning_date, row_idx)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Upsert writes the record, replacing any prior row for its planning date.
func (s *SQLiteStore) Upsert(ctx context.Context, rec corestore.Record) error {
	ranking, err := json.Marshal(rec.InductionRanking)
	if err != nil {
		return err
	}
	assignments, err := json.Marshal(rec.TripAssignments)
	if err != nil {
		return err
	}
	input, err := json.Marshal(rec.InputData)
	if err != nil {
		return err
	}
	constraints, err := json.Marshal(rec.ConstraintsApplied)
	if err != nil {
		return err
	}
	audit, err := json.Marshal(rec.AuditTrail)
	if err != nil {
		return err
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO schedules (planning_date, solver_status, total_trains_used,
            trips_serviced, trips_unserviced, induction_ranking, trip_assignments,
            input_data, constraints_applied, audit_trail, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(planning_date) DO UPDATE SET
            solver_status = excluded.solver_status,
            total_trains_used = excluded.total_trains_used,
            trips_serviced = excluded.trips_serviced,
            trips_unserviced = excluded.trips_unserviced,
            induction_ranking = excluded.induction_ranking,
            trip_assignments = excluded.trip_assignments,
            input_data = excluded.input_data,
            constraints_applied = excluded.constraints_applied,
            audit_trail = excluded.audit_trail,
            created_at = excluded.created_at`,
		rec.PlanningDate, rec.SolverStatus, rec.TotalTrainsUsed,
		rec.TripsServiced, rec.TripsUnserviced, string(ranking), string(assignments),
		string(input), string(constraints), string(audit), created.Unix())
	if err != nil {
		return err
	}
	return s.replaceAssignments(ctx, rec.PlanningDate, rec.TripAssignments)
}

// replaceAssignments rewrites the normalized assignment rows for the date in
// sequential fixed-size batches.
func (s *SQLiteStore) replaceAssignments(ctx context.Context, planningDate string, assignments []model.TripAssignment) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM trip_assignments WHERE planning_date = ?`, planningDate); err != nil {
		return err
	}
	for start := 0; start < len(assignments); start += assignmentBatchSize {
		end := start + assignmentBatchSize
		if end > len(assignments) {
			end = len(assignments)
		}
		batch := assignments[start:end]
		var sb strings.Builder
		sb.WriteString(`INSERT INTO trip_assignments (planning_date, row_idx, trip_id, train_id, start_time, end_time) VALUES `)
		args := make([]any, 0, len(batch)*6)
		for i, a := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?, ?, ?, ?)")
			args = append(args, planningDate, start+i, a.TripID, a.TrainID, a.StartTime, a.EndTime)
		}
		if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the record for the planning date, or ErrNoRecord.
func (s *SQLiteStore) Get(ctx context.Context, planningDate string) (*corestore.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT solver_status, total_trains_used, trips_serviced, trips_unserviced,
            induction_ranking, trip_assignments, input_data, constraints_applied,
            audit_trail, created_at
        FROM schedules WHERE planning_date = ?`, planningDate)

	rec := corestore.Record{PlanningDate: planningDate}
	var ranking, assignments, input, constraints, audit string
	var created int64
	err := row.Scan(&rec.SolverStatus, &rec.TotalTrainsUsed, &rec.TripsServiced,
		&rec.TripsUnserviced, &ranking, &assignments, &input, &constraints, &audit, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, corestore.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(created, 0).UTC()
	for _, doc := range []struct {
		data string
		dst  any
	}{
		{ranking, &rec.InductionRanking},
		{assignments, &rec.TripAssignments},
		{input, &rec.InputData},
		{constraints, &rec.ConstraintsApplied},
		{audit, &rec.AuditTrail},
	} {
		if err := json.Unmarshal([]byte(doc.data), doc.dst); err != nil {
			return nil, fmt.Errorf("unmarshal record %s: %w", planningDate, err)
		}
	}
	if rec.TripAssignments == nil {
		rec.TripAssignments = make([]model.TripAssignment, 0)
	}
	return &rec, nil
}

// History lists up to limit summaries, newest planning date first.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]corestore.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT planning_date, solver_status, total_trains_used, trips_serviced,
            trips_unserviced, created_at
        FROM schedules ORDER BY planning_date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []corestore.HistoryEntry
	for rows.Next() {
		var e corestore.HistoryEntry
		var created int64
		if err := rows.Scan(&e.PlanningDate, &e.SolverStatus, &e.TotalTrainsUsed,
			&e.TripsServiced, &e.TripsUnserviced, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(created, 0).UTC()
		res = append(res, e)
	}
	return res, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
