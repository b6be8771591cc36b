// Package config provides configuration loading for voximg pipelines.
// A pipeline file is YAML describing the random seed, input handling
// and an ordered list of transform stages; Build turns it into a
// runnable transform.Pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents a preprocessing pipeline loaded from YAML.
type Config struct {
	// Seed initializes the shared random source for every randomized
	// stage in the pipeline.
	Seed uint64 `yaml:"seed"`

	// Input controls how the source volume is loaded.
	Input struct {
		// Series treats the input path as a DICOM series directory
		// rather than a single file.
		Series bool `yaml:"series"`

		// CanonicalAxes reorients the loaded volume to canonical
		// axis directions.
		CanonicalAxes bool `yaml:"canonicalAxes"`

		// DType casts the loaded volume ("float64" when empty).
		DType string `yaml:"dtype"`
	} `yaml:"input"`

	// Pipeline is the ordered list of transform stages.
	Pipeline []StageConfig `yaml:"pipeline"`
}

// StageConfig describes one transform stage. Name selects the
// transform; the remaining fields parameterize it and unset fields
// fall back to the transform's documented defaults.
type StageConfig struct {
	Name string `yaml:"name"`

	// Axis remapping.
	ChannelDim *int  `yaml:"channelDim"`
	Indices    []int `yaml:"indices"`

	// Value range and dtype.
	MinV  *float64 `yaml:"minv"`
	MaxV  *float64 `yaml:"maxv"`
	DType string   `yaml:"dtype"`

	// Flip axes; empty means all.
	Axes []int `yaml:"axes"`

	// Padding.
	OutSize []int   `yaml:"outSize"`
	Mode    string  `yaml:"mode"`
	CVal    float64 `yaml:"cval"`

	// Resampling.
	OutputShape       []int     `yaml:"outputShape"`
	Order             *int      `yaml:"order"`
	Clip              *bool     `yaml:"clip"`
	PreserveRange     *bool     `yaml:"preserveRange"`
	AntiAliasing      *bool     `yaml:"antiAliasing"`
	AntiAliasingSigma []float64 `yaml:"antiAliasingSigma"`

	// Rotation.
	Angle     float64  `yaml:"angle"`
	PlaneAxes []int    `yaml:"planeAxes"`
	Reshape   *bool    `yaml:"reshape"`
	Prefilter *bool    `yaml:"prefilter"`
	K         int      `yaml:"k"`
	Prob      *float64 `yaml:"prob"`
	MaxK      *int     `yaml:"maxK"`

	// Zooming.
	Factors  []float64 `yaml:"factors"`
	UseFast  bool      `yaml:"useFast"`
	KeepSize bool      `yaml:"keepSize"`

	// Cropping.
	Center    []int `yaml:"center"`
	Size      []int `yaml:"size"`
	Start     []int `yaml:"start"`
	End       []int `yaml:"end"`
	PatchSize []int `yaml:"patchSize"`

	// Intensity.
	Mean       float64   `yaml:"mean"`
	Std        float64   `yaml:"std"`
	Subtrahend []float64 `yaml:"subtrahend"`
	Divisor    []float64 `yaml:"divisor"`
}

// DefaultConfig returns a configuration with default values and an
// empty pipeline.
func DefaultConfig() *Config {
	cfg := &Config{Seed: 0}
	cfg.Input.DType = "float64"
	return cfg
}

// LoadConfig loads a pipeline configuration from a YAML file. A
// missing file yields the default configuration.
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
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
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
