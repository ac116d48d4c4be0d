package model

// Train describes one fleet unit as it enters planning for a given day.
// Calendar fields are ISO dates (YYYY-MM-DD) to match the exchange documents
// produced by the optimization pipeline.
type Train struct {
	TrainID               string  `json:"train_id"`
	InitialMileageKm      int     `json:"initial_mileage_km"`
	HealthScore           float64 `json:"health_score"`
	LastDeepCleanDate     string  `json:"last_deep_clean_date"`
	TelecomCertExpiryDate string  `json:"telecom_cert_expiry_date"`
	StockCertExpiryDate   string  `json:"stock_cert_expiry_date"`
	SignalCertExpiryKm    int     `json:"signal_cert_expiry_km"`
}

// JobCard is a maintenance work order. A train with an OPEN card cannot be
// inducted into service.
type JobCard struct {
	TrainID string `json:"train_id"`
	Status  string `json:"status"`
}

// AdContract tracks branding exposure commitments for a wrapped train.
type AdContract struct {
	TrainID            string `json:"train_id"`
	ContractTotalHours int    `json:"contract_total_hours"`
	HoursCompleted     int    `json:"hours_completed"`
}

// DepotResources bounds overnight depot activities.
type DepotResources struct {
	CleaningBays           int `json:"cleaning_bays"`
	DeepCleanThresholdDays int `json:"deep_clean_threshold_days"`
}

// TripDetail is one scheduled revenue trip for the planning date.
type TripDetail struct {
	TripID        string  `json:"trip_id"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	DistanceKm    float64 `json:"distance_km"`
	DurationHours float64 `json:"duration_hours"`
	StopIDStart   string  `json:"stop_id_start"`
	StopIDEnd     string  `json:"stop_id_end"`
	IsLateEvening bool    `json:"is_late_evening"`
}

// InputData is the consolidated fleet and trip-demand document handed to the
// solver and embedded in every snapshot for later read-back.
type InputData struct {
	PlanningDate   string         `json:"planning_date"`
	FleetDetails   []Train        `json:"fleet_details"`
	JobCards       []JobCard      `json:"job_cards"`
	AdContracts    []AdContract   `json:"ad_contracts"`
	DepotResources DepotResources `json:"depot_resources"`
	TripDetails    []TripDetail   `json:"trip_details"`
	NextDayStarts  map[string]int `json:"next_day_starts"`
}
