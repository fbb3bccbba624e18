package config

import (
	"fmt"
	"os"

	"github.com/san-kum/episim/internal/epidemic"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPopulation       = 1.0
	DefaultInitialInfected  = 0.01
	DefaultTransmissionRate = 3.2
	DefaultRecoveryRate     = 0.23
	DefaultStepSize         = 0.001
	DefaultMaxSteps         = 10000
	DefaultLogLevel         = "info"
	DefaultDataDir          = ".episim"
)

type Config struct {
	Population       float64 `yaml:"population"`
	InitialInfected  float64 `yaml:"initial_infected"`
	TransmissionRate float64 `yaml:"transmission_rate"`
	RecoveryRate     float64 `yaml:"recovery_rate"`
	StepSize         float64 `yaml:"step_size"`
	MaxSteps         int     `yaml:"max_steps"`
	LogLevel         string  `yaml:"log_level,omitempty"`
	DataDir          string  `yaml:"data_dir,omitempty"`
	RedisAddr        string  `yaml:"redis_addr,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Population:       DefaultPopulation,
		InitialInfected:  DefaultInitialInfected,
		TransmissionRate: DefaultTransmissionRate,
		RecoveryRate:     DefaultRecoveryRate,
		StepSize:         DefaultStepSize,
		MaxSteps:         DefaultMaxSteps,
		LogLevel:         DefaultLogLevel,
		DataDir:          DefaultDataDir,
	}
}

// Load reads a YAML file on top of the defaults; keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	return Overlay(path, DefaultConfig())
}

// Overlay reads a YAML file on top of a copy of base.
func Overlay(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Request returns the epidemic parameters carried by c, unvalidated.
func (c *Config) Request() epidemic.Request {
	return epidemic.Request{
		Population:       c.Population,
		InitialInfected:  c.InitialInfected,
		TransmissionRate: c.TransmissionRate,
		RecoveryRate:     c.RecoveryRate,
		StepSize:         c.StepSize,
		MaxSteps:         c.MaxSteps,
	}
}
