package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dineshvn/metroplan/core/metrics"
	"github.com/dineshvn/metroplan/core/solver"
	"github.com/dineshvn/metroplan/infra/notify"
)

// Config is the root service configuration.
type Config struct {
	// Mode selects schedule execution: "managed" (synthetic only) or
	// "local" (external pipeline with synthetic fallback).
	Mode     string         `json:"mode"`
	HTTP     HTTPConfig     `json:"http"`
	Store    StoreConfig    `json:"store"`
	Solver   solver.Config  `json:"solver"`
	Metrics  metrics.Config `json:"metrics"`
	Notify   notify.Config  `json:"notify"`
	RandSeed uint64         `json:"randSeed"`
}

// HTTPConfig defines the API listener.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// StoreConfig locates the snapshot store. An empty path disables
// persistence; history and detail reads then degrade to the file and
// synthetic fallbacks.
type StoreConfig struct {
	Path string `json:"path"`
}

// Load reads the configuration file and applies MP_-prefixed environment
// overrides (MP_STORE__PATH maps to store.path).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("MP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies sane defaults to every section.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "managed"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	c.Solver.SetDefaults()
	c.Metrics.SetDefaults()
	c.Notify.SetDefaults()
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Mode != "managed" && c.Mode != "local" {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Mode == "local" && c.Solver.WorkDir == "" {
		return fmt.Errorf("solver.workDir is required in local mode")
	}
	if c.Notify.Enabled && c.Notify.Broker == "" {
		return fmt.Errorf("notify.broker is required when notify is enabled")
	}
	return nil
}
