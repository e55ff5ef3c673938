// Package config holds all eidos configuration: search budgets, evolution
// parameters, meta-learning settings and logging. Configuration loads from
// a YAML file with environment-variable overrides on top; missing files
// fall back to defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Synthesis SynthesisConfig `yaml:"synthesis"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Meta      MetaConfig      `yaml:"meta"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SynthesisConfig bounds the enumerative search.
type SynthesisConfig struct {
	// ProgramBudget caps candidates tried per synthesis call, cumulative
	// across sizes.
	ProgramBudget int `yaml:"program_budget"`
	// MaxProgramSize caps candidate tree node counts.
	MaxProgramSize int `yaml:"max_program_size"`
}

// EvolutionConfig holds the genetic engine parameters.
type EvolutionConfig struct {
	PopulationSize int     `yaml:"population_size"`
	MutationRate   float64 `yaml:"mutation_rate"`
	CrossoverRate  float64 `yaml:"crossover_rate"`
	TournamentSize int     `yaml:"tournament_size"`
	MaxDepth       int     `yaml:"max_depth"`
	Generations    int     `yaml:"generations"`
	// Parallelism bounds concurrent fitness evaluation; 0 runs serially.
	Parallelism int `yaml:"parallelism"`
}

// MetaConfig configures the strategy selector.
type MetaConfig struct {
	// Timeout is advisory metadata passed to strategies and recorded in
	// statistics.
	Timeout string `yaml:"timeout"`
	// PersistStats enables the SQLite strategy store.
	PersistStats bool `yaml:"persist_stats"`
}

// LoggingConfig mirrors the logging package's expectations.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Name:    "eidos",
		Version: "0.1.0",
		Synthesis: SynthesisConfig{
			ProgramBudget:  5000,
			MaxProgramSize: 8,
		},
		Evolution: EvolutionConfig{
			PopulationSize: 50,
			MutationRate:   0.1,
			CrossoverRate:  0.7,
			TournamentSize: 5,
			MaxDepth:       4,
			Generations:    30,
		},
		Meta: MetaConfig{
			Timeout: "10s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// MetaTimeout parses the advisory timeout, defaulting to 10s on bad input.
func (c *Config) MetaTimeout() time.Duration {
	d, err := time.ParseDuration(c.Meta.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// applyEnvOverrides lets EIDOS_* variables win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EIDOS_PROGRAM_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Synthesis.ProgramBudget = n
		}
	}
	if v := os.Getenv("EIDOS_MAX_PROGRAM_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Synthesis.MaxProgramSize = n
		}
	}
	if v := os.Getenv("EIDOS_POPULATION_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Evolution.PopulationSize = n
		}
	}
	if v := os.Getenv("EIDOS_GENERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Evolution.Generations = n
		}
	}
	if v := os.Getenv("EIDOS_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
}
