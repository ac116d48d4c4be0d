package files

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dineshvn/metroplan/core/model"
)

const (
	inputDir    = "daily_input"
	solutionDir = "daily_solution"
)

// Exchange reads and writes the per-date JSON documents the optimization
// pipeline exchanges through the filesystem:
//
//	daily_input/{date}_input_data.json
//	daily_solution/{date}_solution_details.json
type Exchange struct {
	baseDir string
}

// NewExchange roots the exchange at the pipeline workdir.
func NewExchange(baseDir string) *Exchange {
	return &Exchange{baseDir: baseDir}
}

// InputPath returns the input document path for the planning date.
func (e *Exchange) InputPath(planningDate string) string {
	return filepath.Join(e.baseDir, inputDir, planningDate+"_input_data.json")
}

// SolutionPath returns the solution document path for the planning date.
func (e *Exchange) SolutionPath(planningDate string) string {
	return filepath.Join(e.baseDir, solutionDir, planningDate+"_solution_details.json")
}

// HasDocuments reports whether both documents exist for the planning date.
func (e *Exchange) HasDocuments(planningDate string) bool {
	if _, err := os.Stat(e.InputPath(planningDate)); err != nil {
		return false
	}
	_, err := os.Stat(e.SolutionPath(planningDate))
	return err == nil
}

// ReadInput parses the input document for the planning date.
func (e *Exchange) ReadInput(planningDate string) (*model.InputData, error) {
	var input model.InputData
	if err := readJSON(e.InputPath(planningDate), &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// ReadSolution parses the solution document for the planning date.
func (e *Exchange) ReadSolution(planningDate string) (*model.ScheduleSnapshot, error) {
	var solution model.ScheduleSnapshot
	if err := readJSON(e.SolutionPath(planningDate), &solution); err != nil {
		return nil, err
	}
	if solution.TripAssignments == nil {
		solution.TripAssignments = make([]model.TripAssignment, 0)
	}
	return &solution, nil
}

// WriteInput persists the input document for its planning date.
func (e *Exchange) WriteInput(input *model.InputData) error {
	return writeJSON(e.InputPath(input.PlanningDate), input)
}

// WriteSolution persists the solution document for its planning date.
func (e *Exchange) WriteSolution(solution *model.ScheduleSnapshot) error {
	return writeJSON(e.SolutionPath(solution.PlanningDate), solution)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
