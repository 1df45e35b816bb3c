// Package config provides configuration loading and management for sonoview.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate when a value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Generator parameters for the synthetic echo field
	Generator struct {
		// Lines is the number of azimuthal scan lines
		Lines int `yaml:"lines"`

		// Samples is the number of range samples per scan line
		Samples int `yaml:"samples"`

		// OrganRadius is the disc radius in normalized [-1, 1] coordinates
		OrganRadius float64 `yaml:"organRadius"`

		// NoiseLevel scales the unit Gaussian noise added to every cell
		NoiseLevel float64 `yaml:"noiseLevel"`

		// SmoothingSigma is the Gaussian blur standard deviation in cells
		SmoothingSigma float64 `yaml:"smoothingSigma"`

		// SamplingFrequency in Hz. Carried for future depth scaling; the
		// image formation math does not use it.
		SamplingFrequency float64 `yaml:"samplingFrequency"`

		// Seed for the noise source. Zero picks a time based seed.
		Seed uint64 `yaml:"seed"`
	} `yaml:"generator"`

	// Display parameters for the viewer session
	Display struct {
		// ZoomStep is added or removed from the scale per zoom command
		ZoomStep float64 `yaml:"zoomStep"`

		// MinScale is the floor applied when zooming out
		MinScale float64 `yaml:"minScale"`
	} `yaml:"display"`

	// Output parameters
	Output struct {
		// SaveIntermediaryResults determines whether to save every pipeline stage
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is where stage images are written
		IntermediaryDir string `yaml:"intermediaryDir"`

		// LogLevel is one of debug, info, warn, error
		LogLevel string `yaml:"logLevel"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Generator.Lines = 128
	cfg.Generator.Samples = 1024
	cfg.Generator.OrganRadius = 0.5
	cfg.Generator.NoiseLevel = 0.1
	cfg.Generator.SmoothingSigma = 3
	cfg.Generator.SamplingFrequency = 40e6

	cfg.Display.ZoomStep = 0.1
	cfg.Display.MinScale = 0.1

	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.LogLevel = "info"

	return cfg
}

// Validate checks that every value is usable by the generator and viewer.
func (c *Config) Validate() error {
	g := c.Generator
	switch {
	case g.Lines <= 0 || g.Samples <= 0:
		return fmt.Errorf("%w: generator dimensions must be positive, got %d lines x %d samples",
			ErrInvalidConfig, g.Lines, g.Samples)
	case g.OrganRadius <= 0 || g.OrganRadius > 1:
		return fmt.Errorf("%w: organRadius must be in (0, 1], got %g", ErrInvalidConfig, g.OrganRadius)
	case g.NoiseLevel < 0:
		return fmt.Errorf("%w: noiseLevel must be non-negative, got %g", ErrInvalidConfig, g.NoiseLevel)
	case g.SmoothingSigma < 0:
		return fmt.Errorf("%w: smoothingSigma must be non-negative, got %g", ErrInvalidConfig, g.SmoothingSigma)
	case c.Display.ZoomStep <= 0:
		return fmt.Errorf("%w: zoomStep must be positive, got %g", ErrInvalidConfig, c.Display.ZoomStep)
	case c.Display.MinScale <= 0:
		return fmt.Errorf("%w: minScale must be positive, got %g", ErrInvalidConfig, c.Display.MinScale)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
