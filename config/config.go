// Package config loads the two on-disk configuration formats the backend
// is driven from: a TOML BackendConfig for run-level parameters, decoded
// the same way cmd/sim.go's flag-override-over-file merge expects, and a
// YAML NetworkTopologyConfig describing populations and projections
// declaratively, per the "constructible from a generator" external
// interface contract.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// BackendConfig holds the run-level parameters for a simulation: how many
// steps to run, whether learning is active, how many worker goroutines the
// multi-threaded backend should use, and where to archive step data.
type BackendConfig struct {
	Seed            int64  `toml:"seed"`
	Cycles          int    `toml:"cycles"`
	Workers         int    `toml:"workers"` // 0 or 1 selects the single-threaded backend.
	LearningEnabled bool   `toml:"learning_enabled"`
	DBPath          string `toml:"db_path"`
	SaveInterval    int    `toml:"save_interval"` // checked by Validate only; no command reads it.
	LogLevel        string `toml:"log_level"`
}

// DefaultBackendConfig returns sensible defaults for a short,
// single-threaded, non-persisted run.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		Seed:            0,
		Cycles:          1000,
		Workers:         1,
		LearningEnabled: false,
		DBPath:          "",
		SaveInterval:    0,
		LogLevel:        "info",
	}
}

// LoadBackendConfig decodes a BackendConfig from a TOML file at path,
// starting from DefaultBackendConfig so the file only needs to set the
// fields it overrides.
func LoadBackendConfig(path string) (BackendConfig, error) {
	cfg := DefaultBackendConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decoding backend config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects a BackendConfig with inconsistent values.
func (c BackendConfig) Validate() error {
	if c.Cycles < 0 {
		return fmt.Errorf("config: cycles must be non-negative, got %d", c.Cycles)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Workers)
	}
	if c.SaveInterval < 0 {
		return fmt.Errorf("config: save_interval must be non-negative, got %d", c.SaveInterval)
	}
	return nil
}

// NetworkTopologyConfig is a human-editable description of a network's
// populations and projections, loaded from YAML. It is not a general
// SONATA-style format — the original platform's sonata loader is out of
// scope — just enough declarative structure to stand up a test or example
// network without writing Go.
type NetworkTopologyConfig struct {
	Populations []PopulationSpec `yaml:"populations"`
	Projections []ProjectionSpec `yaml:"projections"`
	Inputs      []ChannelSpec    `yaml:"inputs"`
	Outputs     []ChannelSpec    `yaml:"outputs"`
}

// PopulationSpec describes one named population. Kind selects the neuron
// model; unset numeric fields keep the kernel's usual defaults.
type PopulationSpec struct {
	Name                string  `yaml:"name"`
	Kind                string  `yaml:"kind"` // "blifat" or "stdp"
	Size                int     `yaml:"size"`
	ActivationThreshold float64 `yaml:"activation_threshold"`
	PotentialDecay      float64 `yaml:"potential_decay"`
}

// ProjectionSpec describes one named projection between two named
// populations (or an input channel, when From is empty).
type ProjectionSpec struct {
	Name        string  `yaml:"name"`
	From        string  `yaml:"from"` // empty means driven by an input channel only
	To          string  `yaml:"to"`
	Kind        string  `yaml:"kind"`    // "delta" or "stdp"
	Pattern     string  `yaml:"pattern"` // "all_to_all" or "one_to_one"
	Weight      float64 `yaml:"weight"`
	Delay       int64   `yaml:"delay"`
	SynapseKind string  `yaml:"synapse_kind"` // "excitatory", "inhibitory_current", "inhibitory_conductance", "dopamine", "blocking"
	Forcing     bool    `yaml:"forcing"`

	// STDP-only fields, used when Kind == "stdp".
	InitialResource float64 `yaml:"initial_resource"`
	WMin            float64 `yaml:"w_min"`
	WMax            float64 `yaml:"w_max"`
	DU              float64 `yaml:"du"`
}

// ChannelSpec names an input or output channel and the population or
// projection it targets/observes.
type ChannelSpec struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"` // for inputs: a projection name; for outputs: a population name
}

// LoadNetworkTopology decodes a NetworkTopologyConfig from a YAML file at
// path.
func LoadNetworkTopology(path string) (*NetworkTopologyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading topology file %q: %w", path, err)
	}
	var topo NetworkTopologyConfig
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("config: parsing topology file %q: %w", path, err)
	}
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return &topo, nil
}

// Validate rejects a topology with dangling references or unknown kinds.
func (t *NetworkTopologyConfig) Validate() error {
	names := make(map[string]bool, len(t.Populations))
	for _, p := range t.Populations {
		if p.Name == "" {
			return fmt.Errorf("config: population with empty name")
		}
		if names[p.Name] {
			return fmt.Errorf("config: duplicate population name %q", p.Name)
		}
		names[p.Name] = true
		if p.Kind != "blifat" && p.Kind != "stdp" {
			return fmt.Errorf("config: population %q has unknown kind %q", p.Name, p.Kind)
		}
		if p.Size <= 0 {
			return fmt.Errorf("config: population %q must have positive size, got %d", p.Name, p.Size)
		}
	}
	for _, proj := range t.Projections {
		if proj.Name == "" {
			return fmt.Errorf("config: projection with empty name")
		}
		if proj.From != "" && !names[proj.From] {
			return fmt.Errorf("config: projection %q references unknown population %q", proj.Name, proj.From)
		}
		if !names[proj.To] {
			return fmt.Errorf("config: projection %q references unknown population %q", proj.Name, proj.To)
		}
		if proj.Kind != "delta" && proj.Kind != "stdp" {
			return fmt.Errorf("config: projection %q has unknown kind %q", proj.Name, proj.Kind)
		}
		if proj.Pattern != "all_to_all" && proj.Pattern != "one_to_one" {
			return fmt.Errorf("config: projection %q has unknown pattern %q", proj.Name, proj.Pattern)
		}
		if proj.Delay <= 0 {
			return fmt.Errorf("config: projection %q must have a positive delay, got %d", proj.Name, proj.Delay)
		}
	}
	return nil
}
