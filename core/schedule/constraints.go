package schedule

import (
	"strings"

	"github.com/dineshvn/metroplan/core/model"
)

// constraintSpec binds a reported constraint to the status substrings that
// mark a train as affected by it.
type constraintSpec struct {
	name        string
	description string
	triggers    []string
}

// Reported in this exact order. Branding Exposure and Stabling Optimization
// carry no triggers: the ranking does not yet encode enough data to derive
// them, so they always report zero affected trains.
var constraintSpecs = []constraintSpec{
	{
		name:        "Service Readiness",
		description: "Trains with open job cards or expired fitness certificates are withheld from revenue service",
		triggers:    []string{"HELD FOR MAINTENANCE", "Cert Expired"},
	},
	{
		name:        "Predictive Health",
		description: "Trains whose predicted failure risk exceeds the induction threshold are held back",
		triggers:    []string{"High Failure Risk"},
	},
	{
		name:        "Mileage Balancing",
		description: "High-mileage trains are rested to keep fleet wear within the target band",
		triggers:    []string{"Mileage Balancing"},
	},
	{
		name:        "Cleaning & Detailing",
		description: "Trains past the deep-clean interval are routed to the cleaning bays overnight",
		triggers:    []string{"CLEANING"},
	},
	{
		name:        "Branding Exposure",
		description: "Wrapped trains are prioritized to meet contracted advertisement exposure hours",
	},
	{
		name:        "Stabling Optimization",
		description: "Late-evening trips terminate where the next morning's departures begin, minimizing shunting",
	},
}

// AnalyzeConstraints derives the fixed six-entry compliance summary from a
// solved ranking. A constraint with at least one affected train reports
// ACTIVE, otherwise SATISFIED.
func AnalyzeConstraints(ranking []model.InductionRankingEntry) []model.Constraint {
	out := make([]model.Constraint, 0, len(constraintSpecs))
	for _, spec := range constraintSpecs {
		affected := 0
		for _, entry := range ranking {
			for _, trigger := range spec.triggers {
				if strings.Contains(entry.Status, trigger) {
					affected++
					break
				}
			}
		}
		status := model.ConstraintSatisfied
		if affected > 0 {
			status = model.ConstraintActive
		}
		out = append(out, model.Constraint{
			Name:           spec.name,
			Description:    spec.description,
			TrainsAffected: affected,
			Status:         status,
		})
	}
	return out
}
