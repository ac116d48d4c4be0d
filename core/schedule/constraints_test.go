package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineshvn/metroplan/core/model"
)

var constraintOrder = []string{
	"Service Readiness",
	"Predictive Health",
	"Mileage Balancing",
	"Cleaning & Detailing",
	"Branding Exposure",
	"Stabling Optimization",
}

func TestAnalyzeConstraints_FixedShape(t *testing.T) {
	out := AnalyzeConstraints(nil)
	require.Len(t, out, 6)
	for i, c := range out {
		assert.Equal(t, constraintOrder[i], c.Name)
		assert.Equal(t, model.ConstraintSatisfied, c.Status)
		assert.Zero(t, c.TrainsAffected)
	}
}

func TestAnalyzeConstraints_Counts(t *testing.T) {
	ranking := []model.InductionRankingEntry{
		{TrainID: "T01", Status: "IN SERVICE"},
		{TrainID: "T02", Status: "HELD FOR MAINTENANCE - High Failure Risk"},
		{TrainID: "T03", Status: "HELD FOR MAINTENANCE - FC Expired"},
		{TrainID: "T04", Status: "HELD (Telecom Cert Expired)"},
		{TrainID: "T05", Status: "CLEANING REQUIRED"},
		{TrainID: "T06", Status: "STANDBY (For Mileage Balancing)"},
		{TrainID: "T07", Status: "READY FOR SERVICE"},
	}
	out := AnalyzeConstraints(ranking)
	require.Len(t, out, 6)

	byName := map[string]model.Constraint{}
	for _, c := range out {
		byName[c.Name] = c
	}
	// T02 and T03 match "HELD FOR MAINTENANCE", T04 matches "Cert Expired".
	assert.Equal(t, 3, byName["Service Readiness"].TrainsAffected)
	assert.Equal(t, model.ConstraintActive, byName["Service Readiness"].Status)
	assert.Equal(t, 1, byName["Predictive Health"].TrainsAffected)
	assert.Equal(t, 1, byName["Mileage Balancing"].TrainsAffected)
	assert.Equal(t, 1, byName["Cleaning & Detailing"].TrainsAffected)
	assert.Equal(t, 0, byName["Branding Exposure"].TrainsAffected)
	assert.Equal(t, model.ConstraintSatisfied, byName["Branding Exposure"].Status)
	assert.Equal(t, 0, byName["Stabling Optimization"].TrainsAffected)
	assert.Equal(t, model.ConstraintSatisfied, byName["Stabling Optimization"].Status)
}

func TestAnalyzeConstraints_NeverViolated(t *testing.T) {
	ranking := []model.InductionRankingEntry{
		{Status: "HELD FOR MAINTENANCE - High Failure Risk"},
		{Status: "HELD FOR MAINTENANCE - High Failure Risk"},
	}
	for _, c := range AnalyzeConstraints(ranking) {
		assert.NotEqual(t, model.ConstraintViolated, c.Status)
	}
}

func TestAnalyzeConstraints_CountsAffectedTrainOnce(t *testing.T) {
	// One train matching both triggers of Service Readiness counts once.
	ranking := []model.InductionRankingEntry{
		{Status: "HELD FOR MAINTENANCE - Stock Cert Expired"},
	}
	out := AnalyzeConstraints(ranking)
	assert.Equal(t, 1, out[0].TrainsAffected)
}
