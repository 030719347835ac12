package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig is the runtime configuration read from arena.yaml. Command-line
// flags override it.
type RunConfig struct {
	RealTime  bool            `yaml:"real_time"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Recording RecordingConfig `yaml:"recording"`
}

// MonitorConfig defines monitoring server settings.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// RecordingConfig defines trace recording settings.
type RecordingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"`
}

// DefaultRunConfig returns a RunConfig with sensible defaults.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Recording: RecordingConfig{
			Enabled: true,
		},
	}
}

// LoadRunConfig reads and parses a run config YAML file. Returns the
// default config if the file doesn't exist.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}
