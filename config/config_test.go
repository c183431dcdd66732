package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultBackendConfig(t *testing.T) {
	cfg := DefaultBackendConfig()
	if cfg.Cycles != 1000 {
		t.Errorf("expected default Cycles 1000, got %d", cfg.Cycles)
	}
	if cfg.Workers != 1 {
		t.Errorf("expected default Workers 1, got %d", cfg.Workers)
	}
	if cfg.LearningEnabled {
		t.Error("expected LearningEnabled false by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadBackendConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backend.toml")
	writeFile(t, path, `
seed = 42
cycles = 500
workers = 4
learning_enabled = true
db_path = "run.db"
`)

	cfg, err := LoadBackendConfig(path)
	if err != nil {
		t.Fatalf("LoadBackendConfig: %v", err)
	}
	if cfg.Seed != 42 || cfg.Cycles != 500 || cfg.Workers != 4 || !cfg.LearningEnabled || cfg.DBPath != "run.db" {
		t.Errorf("unexpected config after TOML load: %+v", cfg)
	}
	// Fields absent from the file keep the default.
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log_level to survive partial override, got %q", cfg.LogLevel)
	}
}

func TestBackendConfigValidateRejectsNegativeCycles(t *testing.T) {
	cfg := DefaultBackendConfig()
	cfg.Cycles = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative cycles")
	}
}

func TestLoadNetworkTopologyBuildsExpectedSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topology.yaml")
	writeFile(t, path, `
populations:
  - name: in
    kind: blifat
    size: 4
  - name: out
    kind: blifat
    size: 2
    activation_threshold: 0.5
projections:
  - name: feedforward
    from: in
    to: out
    kind: delta
    pattern: all_to_all
    weight: 1.0
    delay: 1
    synapse_kind: excitatory
inputs:
  - name: stimulus
    target: feedforward
outputs:
  - name: response
    target: out
`)

	topo, err := LoadNetworkTopology(path)
	if err != nil {
		t.Fatalf("LoadNetworkTopology: %v", err)
	}
	if len(topo.Populations) != 2 || len(topo.Projections) != 1 {
		t.Fatalf("unexpected topology shape: %+v", topo)
	}
	if topo.Populations[1].ActivationThreshold != 0.5 {
		t.Errorf("expected out population threshold 0.5, got %f", topo.Populations[1].ActivationThreshold)
	}
}

func TestNetworkTopologyValidateRejectsDanglingReference(t *testing.T) {
	topo := &NetworkTopologyConfig{
		Populations: []PopulationSpec{{Name: "a", Kind: "blifat", Size: 1}},
		Projections: []ProjectionSpec{{
			Name: "bad", From: "a", To: "missing", Kind: "delta", Pattern: "one_to_one", Delay: 1,
		}},
	}
	if err := topo.Validate(); err == nil {
		t.Error("expected error for projection referencing unknown population")
	}
}

func TestNetworkTopologyValidateRejectsNonPositiveDelay(t *testing.T) {
	topo := &NetworkTopologyConfig{
		Populations: []PopulationSpec{
			{Name: "a", Kind: "blifat", Size: 1},
			{Name: "b", Kind: "blifat", Size: 1},
		},
		Projections: []ProjectionSpec{{
			Name: "bad", From: "a", To: "b", Kind: "delta", Pattern: "one_to_one", Delay: 0,
		}},
	}
	if err := topo.Validate(); err == nil {
		t.Error("expected error for non-positive delay")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing test fixture %q: %v", path, err)
	}
}
