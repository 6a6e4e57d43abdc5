// Package config loads run configuration from yaml, layered over embedded
// defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsRaw []byte

// OperatorPoolAll is the sentinel pool name meaning "every feedforward
// operator"; the selector expands it.
const OperatorPoolAll = "all_feedforward"

type Config struct {
	Mutation       MutationConfig       `yaml:"mutation"`
	Phased         PhasedConfig         `yaml:"phased"`
	Adaptation     AdaptationConfig     `yaml:"adaptation"`
	Bandit         BanditConfig         `yaml:"bandit"`
	Evaluation     EvaluationConfig     `yaml:"evaluation"`
	Novelty        NoveltyConfig        `yaml:"novelty"`
	Tuning         TuningConfig         `yaml:"tuning"`
	MultiObjective MultiObjectiveConfig `yaml:"multi_objective"`
	Speciation     SpeciationConfig     `yaml:"speciation"`
	Activations    []string             `yaml:"activations"`
}

type MutationConfig struct {
	Rate           float64        `yaml:"rate"`
	Amount         int            `yaml:"amount"`
	Operators      []string       `yaml:"operators"`
	WeightPerturb  float64        `yaml:"weight_perturb"`
	PreserveGates  bool           `yaml:"preserve_gates"`
	Recurrence     bool           `yaml:"recurrence"`
	MaxNodes       int            `yaml:"max_nodes"`
	MaxConnections int            `yaml:"max_connections"`
	MaxGates       int            `yaml:"max_gates"`
	Adaptive       AdaptiveConfig `yaml:"adaptive"`
}

type AdaptiveConfig struct {
	Enabled       bool    `yaml:"enabled"`
	InitialRate   float64 `yaml:"initial_rate"`
	InitialAmount int     `yaml:"initial_amount"`
	Sigma         float64 `yaml:"sigma"`
}

type PhasedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Phase   string `yaml:"phase"`
}

const (
	PhaseComplexify = "complexify"
	PhaseSimplify   = "simplify"
)

type AdaptationConfig struct {
	Enabled          bool    `yaml:"enabled"`
	MinAttempts      int     `yaml:"min_attempts"`
	SuccessThreshold float64 `yaml:"success_threshold"`
	BoostMultiplier  int     `yaml:"boost_multiplier"`
}

type BanditConfig struct {
	Enabled     bool    `yaml:"enabled"`
	MinAttempts int     `yaml:"min_attempts"`
	Exploration float64 `yaml:"exploration"`
}

type EvaluationConfig struct {
	PopulationScoring bool `yaml:"population_scoring"`
	ClearState        bool `yaml:"clear_state"`
}

type NoveltyConfig struct {
	Enabled          bool    `yaml:"enabled"`
	Blend            float64 `yaml:"blend"`
	Neighbors        int     `yaml:"neighbors"`
	ArchiveThreshold float64 `yaml:"archive_threshold"`
	SampleLimit      int     `yaml:"sample_limit"`
}

type TuningConfig struct {
	Bandwidth    BandwidthConfig    `yaml:"bandwidth"`
	Threshold    ThresholdConfig    `yaml:"threshold"`
	Coefficients CoefficientsConfig `yaml:"coefficients"`
}

type BandwidthConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Initial        float64 `yaml:"initial"`
	TargetVariance float64 `yaml:"target_variance"`
	Step           float64 `yaml:"step"`
	Min            float64 `yaml:"min"`
	Max            float64 `yaml:"max"`
}

type ThresholdConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Initial       float64 `yaml:"initial"`
	TargetEntropy float64 `yaml:"target_entropy"`
	DeadBand      float64 `yaml:"dead_band"`
	Step          float64 `yaml:"step"`
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
}

type CoefficientsConfig struct {
	Enabled         bool    `yaml:"enabled"`
	InitialExcess   float64 `yaml:"initial_excess"`
	InitialDisjoint float64 `yaml:"initial_disjoint"`
	Growth          float64 `yaml:"growth"`
	Min             float64 `yaml:"min"`
	Max             float64 `yaml:"max"`
}

type MultiObjectiveConfig struct {
	Enabled     bool `yaml:"enabled"`
	AutoEntropy bool `yaml:"auto_entropy"`
}

type SpeciationConfig struct {
	TargetSpecies int  `yaml:"target_species"`
	Refresh       bool `yaml:"refresh"`
}

// Default returns the embedded default configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsRaw, &cfg); err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load overlays the yaml file at path onto the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Mutation.Rate < 0 || c.Mutation.Rate > 1 {
		return fmt.Errorf("mutation rate must be in [0,1]: %v", c.Mutation.Rate)
	}
	if c.Mutation.Amount < 1 {
		return fmt.Errorf("mutation amount must be >= 1: %d", c.Mutation.Amount)
	}
	if len(c.Mutation.Operators) == 0 {
		return fmt.Errorf("mutation operator pool is empty")
	}
	if c.Phased.Enabled && c.Phased.Phase != PhaseComplexify && c.Phased.Phase != PhaseSimplify {
		return fmt.Errorf("unknown phase: %q", c.Phased.Phase)
	}
	if c.Novelty.Enabled {
		if c.Novelty.Blend < 0 || c.Novelty.Blend > 1 {
			return fmt.Errorf("novelty blend must be in [0,1]: %v", c.Novelty.Blend)
		}
		if c.Novelty.Neighbors < 1 {
			return fmt.Errorf("novelty neighbors must be >= 1: %d", c.Novelty.Neighbors)
		}
	}
	if c.Bandit.Enabled && c.Bandit.Exploration < 0 {
		return fmt.Errorf("bandit exploration must be >= 0: %v", c.Bandit.Exploration)
	}
	return nil
}
