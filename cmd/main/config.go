package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/CTAG07/sponsorsync/pkg/pipeline"
	"github.com/CTAG07/sponsorsync/pkg/region"
	"github.com/CTAG07/sponsorsync/pkg/sponsors"
	"github.com/CTAG07/sponsorsync/pkg/templating"
	"github.com/natefinch/atomic"
)

// SourceConfig says where sponsor records come from. DatabasePath wins when
// both are set.
type SourceConfig struct {
	SponsorsFile string `json:"sponsors_file"`
	DatabasePath string `json:"database_path"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	LogLevel    string                   `json:"log_level"`
	Thresholds  *sponsors.Thresholds     `json:"thresholds"`
	TierOrder   []sponsors.Tier          `json:"tier_order"`
	StartMarker string                   `json:"start_marker"`
	EndMarker   string                   `json:"end_marker"`
	Render      *templating.RenderConfig `json:"render_config"`
	Source      *SourceConfig            `json:"source_config"`
	Documents   []string                 `json:"documents"`
	Parallelism int                      `json:"parallelism"`
}

// DefaultSourceConfig creates a source configuration with default values.
func DefaultSourceConfig() *SourceConfig {
	return &SourceConfig{
		SponsorsFile: "./sponsors.yaml",
		DatabasePath: "",
	}
}

// DefaultConfig creates a configuration with default values. Thresholds are
// deliberately left unset: there is no safe default tiering.
func DefaultConfig() *Config {
	renderConfig := templating.DefaultConfig()
	return &Config{
		LogLevel:    "info",
		Thresholds:  nil,
		TierOrder:   sponsors.DefaultTierOrder(),
		StartMarker: region.DefaultStartMarker,
		EndMarker:   region.DefaultEndMarker,
		Render:      &renderConfig,
		Source:      DefaultSourceConfig(),
		Documents:   []string{"./docs/index.md"},
		Parallelism: 4,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. The
// scaffold has no thresholds, so Validate will refuse it until they are
// filled in.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Not fatal, the defaults are still usable in memory.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = checkThresholdKeys(file); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// checkThresholdKeys requires both threshold values whenever the thresholds
// object is present, since a missing key would silently decode as 0.
func checkThresholdKeys(file []byte) error {
	var raw struct {
		Thresholds map[string]json.RawMessage `json:"thresholds"`
	}
	if err := json.Unmarshal(file, &raw); err != nil {
		return err
	}
	if raw.Thresholds == nil {
		return nil
	}
	for _, key := range []string{"large", "medium"} {
		if v, ok := raw.Thresholds[key]; !ok || string(v) == "null" {
			return &sponsors.ConfigError{Field: "thresholds." + key, Reason: "must be set explicitly"}
		}
	}
	return nil
}

// Validate checks the settings that every command depends on. It returns a
// *sponsors.ConfigError describing the first problem found.
func (c *Config) Validate() error {
	if c.Thresholds == nil {
		return &sponsors.ConfigError{Field: "thresholds", Reason: "must be set explicitly (e.g. {\"large\": 100, \"medium\": 10})"}
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.StartMarker) == "" {
		return &sponsors.ConfigError{Field: "start_marker", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.EndMarker) == "" {
		return &sponsors.ConfigError{Field: "end_marker", Reason: "must not be empty"}
	}
	if c.StartMarker == c.EndMarker {
		return &sponsors.ConfigError{Field: "end_marker", Reason: "must differ from start_marker"}
	}
	for _, tier := range c.TierOrder {
		if _, err := tier.MarshalText(); err != nil {
			return &sponsors.ConfigError{Field: "tier_order", Reason: err.Error()}
		}
	}
	if c.Parallelism < 0 {
		return &sponsors.ConfigError{Field: "parallelism", Reason: "must not be negative"}
	}
	return nil
}

// RenderConfig returns the renderer settings, falling back to the defaults
// when the section is missing from the file.
func (c *Config) RenderConfig() templating.RenderConfig {
	if c.Render == nil {
		return templating.DefaultConfig()
	}
	return *c.Render
}

// SourceConfig returns the source settings, never nil.
func (c *Config) SourceConfig() SourceConfig {
	if c.Source == nil {
		return *DefaultSourceConfig()
	}
	return *c.Source
}

// PipelineOptions converts a validated config into pipeline options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Thresholds:  *c.Thresholds,
		TierOrder:   c.TierOrder,
		Markers:     region.Markers{Start: c.StartMarker, End: c.EndMarker},
		Parallelism: c.Parallelism,
	}
}
