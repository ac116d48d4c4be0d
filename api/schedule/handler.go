package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dineshvn/metroplan/core/model"
	coreschedule "github.com/dineshvn/metroplan/core/schedule"
	corestore "github.com/dineshvn/metroplan/core/store"
	"github.com/dineshvn/metroplan/infra/logger"
)

type generateRequest struct {
	PlanningDate      string             `json:"planning_date"`
	FleetData         json.RawMessage    `json:"fleet_data,omitempty"`
	Constraints       json.RawMessage    `json:"constraints,omitempty"`
	ConstraintWeights map[string]float64 `json:"constraint_weights,omitempty"`
}

type generateResponse struct {
	Success            bool                    `json:"success"`
	PlanningDate       string                  `json:"planning_date"`
	InputData          *model.InputData        `json:"input_data"`
	Solution           *model.ScheduleSnapshot `json:"solution"`
	ConstraintsApplied []model.Constraint      `json:"constraints_applied"`
	AuditTrail         []model.AuditEvent      `json:"audit_trail"`
}

type detailResponse struct {
	PlanningDate       string                  `json:"planning_date"`
	Solution           *model.ScheduleSnapshot `json:"solution"`
	InputData          *model.InputData        `json:"input_data"`
	ConstraintsApplied []model.Constraint      `json:"constraints_applied"`
	AuditTrail         []model.AuditEvent      `json:"audit_trail"`
}

type historyResponse struct {
	Schedules []corestore.HistoryEntry `json:"schedules"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler exposes the schedule API.
type Handler struct {
	orch *coreschedule.Orchestrator
	log  logger.Logger
}

// NewHandler creates a Handler backed by the orchestrator.
func NewHandler(orch *coreschedule.Orchestrator, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{orch: orch, log: log}
}

// Mux returns a ServeMux with all schedule routes registered.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/schedule/generate", h.generate)
	mux.HandleFunc("/schedule/history", h.history)
	mux.HandleFunc("/schedule/", h.detail)
	return mux
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.orch.Generate(r.Context(), coreschedule.GenerateRequest{
		PlanningDate:      req.PlanningDate,
		ConstraintWeights: req.ConstraintWeights,
	})
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Success:            true,
		PlanningDate:       res.Snapshot.PlanningDate,
		InputData:          res.Snapshot.InputData,
		Solution:           bareSolution(res.Snapshot),
		ConstraintsApplied: res.ConstraintsApplied,
		AuditTrail:         res.AuditTrail,
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	entries, err := h.orch.History(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Schedules: entries})
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	planningDate := strings.TrimPrefix(r.URL.Path, "/schedule/")
	if planningDate == "" || strings.Contains(planningDate, "/") {
		writeError(w, http.StatusBadRequest, "missing required field: planning_date")
		return
	}
	res, err := h.orch.Detail(r.Context(), planningDate)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{
		PlanningDate:       res.Snapshot.PlanningDate,
		Solution:           bareSolution(res.Snapshot),
		InputData:          res.Snapshot.InputData,
		ConstraintsApplied: res.ConstraintsApplied,
		AuditTrail:         res.AuditTrail,
	})
}

// writeFailure maps orchestration errors onto the wire. Validation problems
// surface verbatim; anything unexpected becomes a generic 500 with the
// detail logged only.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	var vErr *coreschedule.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, coreschedule.ErrNotFound):
		writeError(w, http.StatusNotFound, "schedule not found")
	default:
		h.log.Errorf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// bareSolution strips the embedded input document so responses carry it once.
func bareSolution(snapshot *model.ScheduleSnapshot) *model.ScheduleSnapshot {
	s := *snapshot
	s.InputData = nil
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
