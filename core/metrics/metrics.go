package metrics

import "time"

// GenerationEvent describes one completed schedule generation run.
type GenerationEvent struct {
	PlanningDate    string
	Mode            string
	Source          string
	SolverStatus    string
	TotalTrainsUsed int
	TripsServiced   int
	TripsUnserviced int
	Duration        time.Duration
	Fallback        bool
	Time            time.Time
}

// Generation sources recorded in events.
const (
	SourcePipeline  = "pipeline"
	SourceSynthetic = "synthetic"
)

// MetricsSink records generation events for observability purposes.
type MetricsSink interface {
	RecordGeneration(ev GenerationEvent) error
}

// PersistenceFailureRecorder counts non-fatal store write failures.
type PersistenceFailureRecorder interface {
	RecordPersistenceFailure(planningDate string) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordGeneration(GenerationEvent) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheusEnabled"`
	PrometheusPort    string `json:"prometheusPort"`
	InfluxEnabled     bool   `json:"influxEnabled"`
	InfluxURL         string `json:"influxUrl"`
	InfluxToken       string `json:"influxToken"`
	InfluxOrg         string `json:"influxOrg"`
	InfluxBucket      string `json:"influxBucket"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
	if c.InfluxBucket == "" {
		c.InfluxBucket = "metroplan"
	}
}
