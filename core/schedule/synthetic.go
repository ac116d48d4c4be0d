package schedule

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dineshvn/metroplan/core/model"
)

// Fleet and trip-demand constants of the managed depot.
const (
	FleetSize       = 24
	DailyTripDemand = 180
	TripsPerTrain   = 8
)

// Induction status tags emitted by the generator. Analyses downstream match
// on substrings of these values, so the wording is part of the contract.
const (
	StatusHeldHighRisk  = "HELD FOR MAINTENANCE - High Failure Risk"
	StatusHeldFCExpired = "HELD FOR MAINTENANCE - FC Expired"
	StatusCleaning      = "CLEANING REQUIRED"
	StatusInService     = "IN SERVICE"
	StatusReady         = "READY FOR SERVICE"
)

// DefaultConstraintWeights returns the objective weights applied when the
// caller does not override them.
func DefaultConstraintWeights() map[string]float64 {
	return map[string]float64{
		"serviceReadiness": 10000,
		"predictiveHealth": 5000,
		"cleaning":         500,
		"stabling":         300,
		"branding":         20,
		"mileage":          1,
	}
}

// SyntheticGenerator produces a complete schedule snapshot without invoking
// the optimization pipeline. The shape of its output is deterministic; the
// content is drawn from the provided random source so tests can seed it.
// Safe for concurrent use: the source is not, so draws are serialized.
type SyntheticGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSyntheticGenerator creates a generator backed by the given source.
func NewSyntheticGenerator(src rand.Source) *SyntheticGenerator {
	return &SyntheticGenerator{rng: rand.New(src)}
}

// Generate builds a snapshot for the planning date. Missing weights are
// filled from the defaults; the effective weights are returned alongside the
// snapshot.
func (g *SyntheticGenerator) Generate(planningDate string, weights map[string]float64) (*model.ScheduleSnapshot, map[string]float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	effective := DefaultConstraintWeights()
	for k, v := range weights {
		effective[k] = v
	}

	healthDist := distuv.Uniform{Min: 0.1, Max: 0.4, Src: g.rng}
	mileageDist := distuv.Uniform{Min: 100000, Max: 150000, Src: g.rng}

	fleet := make([]model.Train, FleetSize)
	ranking := make([]model.InductionRankingEntry, FleetSize)
	for i := 0; i < FleetSize; i++ {
		id := fmt.Sprintf("T%02d", i+1)
		health := healthDist.Rand()
		mileage := int(mileageDist.Rand())
		fleet[i] = g.trainRecord(id, planningDate, mileage, health)
		ranking[i] = model.InductionRankingEntry{
			TrainID:        id,
			Status:         g.status(health),
			FinalMileageKm: mileage,
			HealthScore:    health,
		}
	}
	sortRanking(ranking)

	used := 0
	for _, e := range ranking {
		if e.Status == StatusInService {
			used++
		}
	}
	serviced := used * TripsPerTrain
	if serviced > DailyTripDemand {
		serviced = DailyTripDemand
	}
	unserviced := DailyTripDemand - serviced
	var unservicedIDs []string
	if unserviced > 0 {
		unservicedIDs = []string{
			fmt.Sprintf("TRIP_%04d", DailyTripDemand-1),
			fmt.Sprintf("TRIP_%04d", DailyTripDemand),
		}
	}

	input := &model.InputData{
		PlanningDate:   planningDate,
		FleetDetails:   fleet,
		JobCards:       g.jobCards(fleet),
		AdContracts:    g.adContracts(fleet),
		DepotResources: model.DepotResources{CleaningBays: 4, DeepCleanThresholdDays: 7},
		TripDetails:    tripDemand(),
		NextDayStarts:  map[string]int{"TERM_A": 6, "TERM_B": 4},
	}

	return &model.ScheduleSnapshot{
		PlanningDate:      planningDate,
		SolverStatus:      "OPTIMAL",
		TotalTrainsUsed:   used,
		TripsServiced:     serviced,
		TripsUnserviced:   unserviced,
		UnservicedTripIDs: unservicedIDs,
		InductionRanking:  ranking,
		// Reserved for a detailed trip-to-train mapping; must stay an
		// explicit empty array on the wire.
		TripAssignments: make([]model.TripAssignment, 0),
		InputData:       input,
	}, effective
}

// status picks the readiness tag for one train. Checks run in priority
// order; the first match wins.
func (g *SyntheticGenerator) status(health float64) string {
	switch {
	case health > 0.35:
		return StatusHeldHighRisk
	case g.rng.Float64() < 0.10:
		return StatusHeldFCExpired
	case g.rng.Float64() < 0.05:
		return StatusCleaning
	case g.rng.Float64() < 0.80:
		return StatusInService
	default:
		return StatusReady
	}
}

func (g *SyntheticGenerator) trainRecord(id, planningDate string, mileage int, health float64) model.Train {
	base, err := time.Parse("2006-01-02", planningDate)
	if err != nil {
		base = time.Now()
	}
	day := 24 * time.Hour
	return model.Train{
		TrainID:               id,
		InitialMileageKm:      mileage,
		HealthScore:           health,
		LastDeepCleanDate:     base.Add(-time.Duration(1+g.rng.Intn(10)) * day).Format("2006-01-02"),
		TelecomCertExpiryDate: base.Add(time.Duration(g.rng.Intn(33)-2) * day).Format("2006-01-02"),
		StockCertExpiryDate:   base.Add(time.Duration(5+g.rng.Intn(56)) * day).Format("2006-01-02"),
		SignalCertExpiryKm:    mileage + 1000 + g.rng.Intn(4000),
	}
}

func (g *SyntheticGenerator) jobCards(fleet []model.Train) []model.JobCard {
	cards := make([]model.JobCard, 0, 3)
	for _, i := range g.rng.Perm(len(fleet))[:3] {
		cards = append(cards, model.JobCard{TrainID: fleet[i].TrainID, Status: "OPEN"})
	}
	return cards
}

func (g *SyntheticGenerator) adContracts(fleet []model.Train) []model.AdContract {
	contracts := make([]model.AdContract, 0, 5)
	for _, i := range g.rng.Perm(len(fleet))[:5] {
		contracts = append(contracts, model.AdContract{
			TrainID:            fleet[i].TrainID,
			ContractTotalHours: 100 + g.rng.Intn(100),
			HoursCompleted:     20 + g.rng.Intn(80),
		})
	}
	return contracts
}

// tripDemand lays out the fixed daily trip table: service from 05:00 with
// departures every six minutes, 50 minutes per run.
func tripDemand() []model.TripDetail {
	trips := make([]model.TripDetail, DailyTripDemand)
	dayStart := 5 * time.Hour
	for i := range trips {
		start := dayStart + time.Duration(i)*6*time.Minute
		end := start + 50*time.Minute
		terminalStart, terminalEnd := "TERM_A", "TERM_B"
		if i%2 == 1 {
			terminalStart, terminalEnd = "TERM_B", "TERM_A"
		}
		trips[i] = model.TripDetail{
			TripID:        fmt.Sprintf("TRIP_%04d", i+1),
			StartTime:     clock(start),
			EndTime:       clock(end),
			DistanceKm:    25.6,
			DurationHours: end.Hours() - start.Hours(),
			StopIDStart:   terminalStart,
			StopIDEnd:     terminalEnd,
			IsLateEvening: end > 22*time.Hour,
		}
	}
	return trips
}

func clock(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// sortRanking orders entries for presentation: held trains after everything
// else, then ascending health score within each partition.
func sortRanking(ranking []model.InductionRankingEntry) {
	sort.SliceStable(ranking, func(i, j int) bool {
		hi := strings.Contains(ranking[i].Status, "HELD")
		hj := strings.Contains(ranking[j].Status, "HELD")
		if hi != hj {
			return !hi
		}
		return ranking[i].HealthScore < ranking[j].HealthScore
	})
}
