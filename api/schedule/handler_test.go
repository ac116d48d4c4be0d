package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	coreschedule "github.com/dineshvn/metroplan/core/schedule"
	corestore "github.com/dineshvn/metroplan/core/store"
	"github.com/dineshvn/metroplan/infra/files"
	"github.com/dineshvn/metroplan/infra/logger"
	infrastore "github.com/dineshvn/metroplan/infra/store"
)

func newTestHandler(t *testing.T, st corestore.Store) *Handler {
	t.Helper()
	gen := coreschedule.NewSyntheticGenerator(rand.NewSource(1))
	orch := coreschedule.NewOrchestrator(coreschedule.ModeManaged, nil, gen, st,
		files.NewExchange(t.TempDir()), nil, nil, logger.NopLogger{}, rand.NewSource(2))
	return NewHandler(orch, logger.NopLogger{})
}

func openMemStore(t *testing.T, name string) corestore.Store {
	t.Helper()
	st, err := infrastore.NewSQLiteStore("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestGenerate_PipelineUnavailable(t *testing.T) {
	h := newTestHandler(t, nil)
	body := strings.NewReader(`{"planning_date": "2024-01-15"}`)
	req := httptest.NewRequest(http.MethodPost, "/schedule/generate", body)
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success            bool            `json:"success"`
		PlanningDate       string          `json:"planning_date"`
		InputData          json.RawMessage `json:"input_data"`
		Solution           struct {
			SolverStatus     string            `json:"solver_status"`
			TripsServiced    int               `json:"trips_serviced"`
			TripsUnserviced  int               `json:"trips_unserviced"`
			InductionRanking []json.RawMessage `json:"induction_ranking"`
			TripAssignments  []json.RawMessage `json:"trip_assignments"`
		} `json:"solution"`
		ConstraintsApplied []json.RawMessage `json:"constraints_applied"`
		AuditTrail         []json.RawMessage `json:"audit_trail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "2024-01-15", resp.PlanningDate)
	assert.Equal(t, "OPTIMAL", resp.Solution.SolverStatus)
	assert.Len(t, resp.Solution.InductionRanking, 24)
	assert.GreaterOrEqual(t, resp.Solution.TripsUnserviced, 0)
	assert.LessOrEqual(t, resp.Solution.TripsUnserviced, 180)
	assert.Len(t, resp.ConstraintsApplied, 6)
	assert.NotEmpty(t, resp.InputData)
	// An empty assignment list must be serialized, not omitted.
	assert.NotNil(t, resp.Solution.TripAssignments)
	assert.Contains(t, rec.Body.String(), `"trip_assignments":[]`)
}

func TestGenerate_MissingPlanningDate(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/schedule/generate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "planning_date")
}

func TestGenerate_InvalidBody(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/schedule/generate", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/schedule/generate", nil)
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHistory_PlaceholderSeries(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/schedule/history", nil)
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Schedules []corestore.HistoryEntry `json:"schedules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Schedules, 10)
	for i, e := range resp.Schedules {
		want := time.Now().UTC().AddDate(0, 0, -i).Format("2006-01-02")
		assert.Equal(t, want, e.PlanningDate)
	}
}

func TestDetail_NotFound(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/schedule/2099-01-01", nil)
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "schedule not found", resp.Error)
}

func TestDetail_AfterGenerate(t *testing.T) {
	st := openMemStore(t, "detail_after_generate.db")
	h := newTestHandler(t, st)

	gen := httptest.NewRequest(http.MethodPost, "/schedule/generate",
		strings.NewReader(`{"planning_date": "2024-01-15"}`))
	genRec := httptest.NewRecorder()
	h.Mux().ServeHTTP(genRec, gen)
	require.Equal(t, http.StatusOK, genRec.Code)

	req := httptest.NewRequest(http.MethodGet, "/schedule/2024-01-15", nil)
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		PlanningDate string `json:"planning_date"`
		Solution     struct {
			InductionRanking []json.RawMessage `json:"induction_ranking"`
		} `json:"solution"`
		ConstraintsApplied []json.RawMessage `json:"constraints_applied"`
		AuditTrail         []json.RawMessage `json:"audit_trail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-01-15", resp.PlanningDate)
	assert.Len(t, resp.Solution.InductionRanking, 24)
	assert.Len(t, resp.ConstraintsApplied, 6)
	assert.NotEmpty(t, resp.AuditTrail)
}

type failingStore struct{}

func (failingStore) Upsert(context.Context, corestore.Record) error { return nil }

func (failingStore) Get(context.Context, string) (*corestore.Record, error) {
	return nil, errors.New("store unreachable")
}

func (failingStore) History(context.Context, int) ([]corestore.HistoryEntry, error) {
	return nil, errors.New("store unreachable")
}

func (failingStore) Close() error { return nil }

func TestDetail_StoreErrorIsGeneric500(t *testing.T) {
	h := newTestHandler(t, failingStore{})
	req := httptest.NewRequest(http.MethodGet, "/schedule/2024-01-15", nil)
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), "unreachable")
}
