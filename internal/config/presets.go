package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPreset is returned by Preset for names not in Presets.
var ErrUnknownPreset = errors.New("config: unknown preset")

var Presets = map[string]*Config{
	"baseline": {
		Population: 1.0, InitialInfected: 0.01, TransmissionRate: 3.2, RecoveryRate: 0.23,
		StepSize: 0.001, MaxSteps: 10000,
	},
	"slow-burn": {
		Population: 1.0, InitialInfected: 0.001, TransmissionRate: 0.5, RecoveryRate: 0.25,
		StepSize: 0.01, MaxSteps: 10000,
	},
	"no-recovery": {
		Population: 1.0, InitialInfected: 0.01, TransmissionRate: 3.2, RecoveryRate: 0,
		StepSize: 0.001, MaxSteps: 10000,
	},
	"die-out": {
		Population: 1.0, InitialInfected: 0.05, TransmissionRate: 0.1, RecoveryRate: 0.23,
		StepSize: 0.01, MaxSteps: 5000,
	},
	"overshoot": {
		Population: 1.0, InitialInfected: 0.01, TransmissionRate: 9.5, RecoveryRate: 0.23,
		StepSize: 0.5, MaxSteps: 100,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

// Preset is GetPreset with an error naming the available presets.
func Preset(name string) (*Config, error) {
	cfg := GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
