package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/malothro-m/koshi-glof-ahp/internal/ahp"
	"github.com/malothro-m/koshi-glof-ahp/internal/scoring"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type ScoringConfig struct {
	Classes     int              `yaml:"classes"`
	ClassLabels []string         `yaml:"class_labels"`
	CRThreshold float64          `yaml:"cr_threshold"`
	Factors     []scoring.Factor `yaml:"factors"`
	Judgments   []Judgment       `yaml:"judgments"`
}

// Judgment is one expert pairwise comparison: Left contributes Value times
// as much to susceptibility as Right.
type Judgment struct {
	Left  string  `yaml:"left"`
	Right string  `yaml:"right"`
	Value float64 `yaml:"value"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Factors returns a copy of the declared factor set.
func (c *Config) Factors() []scoring.Factor {
	return append([]scoring.Factor(nil), c.Scoring.Factors...)
}

// BuildMatrix assembles the configured pairwise matrix. The solver validates
// it structurally before weight derivation.
func (c *Config) BuildMatrix() (*ahp.PairwiseMatrix, error) {
	names := make([]string, len(c.Scoring.Factors))
	for i, f := range c.Scoring.Factors {
		names[i] = f.Name
	}
	m, err := ahp.New(names)
	if err != nil {
		return nil, err
	}
	for _, j := range c.Scoring.Judgments {
		if err := m.Set(j.Left, j.Right, j.Value); err != nil {
			return nil, fmt.Errorf("judgment %s/%s: %w", j.Left, j.Right, err)
		}
	}
	return m, nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Scoring: ScoringConfig{
			Classes:     4,
			ClassLabels: []string{"Low", "Medium", "High", "Very High"},
			CRThreshold: 0.10,
			Factors: []scoring.Factor{
				{Name: "lake_area", Direction: scoring.HigherIsWorse, Unit: "km^2"},
				{Name: "area_growth", Direction: scoring.HigherIsWorse, Unit: "%/yr"},
				{Name: "glacier_distance", Direction: scoring.LowerIsWorse, Unit: "m"},
				{Name: "dam_slope", Direction: scoring.HigherIsWorse, Unit: "deg"},
				{Name: "seismic_pga", Direction: scoring.HigherIsWorse, Unit: "g"},
				{Name: "precip_intensity", Direction: scoring.HigherIsWorse, Unit: "mm/day"},
			},
			// Koshi basin expert judgments: lake geometry dominates, dam
			// condition and trigger factors follow.
			Judgments: []Judgment{
				{Left: "lake_area", Right: "area_growth", Value: 2},
				{Left: "lake_area", Right: "glacier_distance", Value: 2},
				{Left: "lake_area", Right: "dam_slope", Value: 4},
				{Left: "lake_area", Right: "seismic_pga", Value: 4},
				{Left: "lake_area", Right: "precip_intensity", Value: 8},
				{Left: "area_growth", Right: "glacier_distance", Value: 2},
				{Left: "area_growth", Right: "dam_slope", Value: 2},
				{Left: "area_growth", Right: "seismic_pga", Value: 2},
				{Left: "area_growth", Right: "precip_intensity", Value: 4},
				{Left: "glacier_distance", Right: "dam_slope", Value: 2},
				{Left: "glacier_distance", Right: "seismic_pga", Value: 2},
				{Left: "glacier_distance", Right: "precip_intensity", Value: 4},
				{Left: "dam_slope", Right: "seismic_pga", Value: 1},
				{Left: "dam_slope", Right: "precip_intensity", Value: 2},
				{Left: "seismic_pga", Right: "precip_intensity", Value: 2},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Scoring.Classes < 1 {
		return nil, fmt.Errorf("scoring.classes must be >= 1, got %d", cfg.Scoring.Classes)
	}
	if len(cfg.Scoring.Factors) == 0 {
		return nil, fmt.Errorf("scoring.factors must declare at least one factor")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GLOF_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("GLOF_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("GLOF_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("GLOF_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("GLOF_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("GLOF_CLASSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.Classes = n
		}
	}
	if v := os.Getenv("GLOF_CR_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.CRThreshold = f
		}
	}
	if v := os.Getenv("GLOF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
