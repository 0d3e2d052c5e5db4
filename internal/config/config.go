// Package config holds CLI configuration with optional YAML file loading.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the memstage CLI.
type Config struct {
	Addr              string      `yaml:"addr"`                // serve listen address
	LogLevel          string      `yaml:"log_level"`           // debug, info, warn, error
	LogFormat         string      `yaml:"log_format"`          // text, json
	SkipMemoryMetrics bool        `yaml:"skip_memory_metrics"` // disable all tracking
	Accelerator       Accelerator `yaml:"accelerator"`
}

// Accelerator configures the device memory backend.
type Accelerator struct {
	Disabled       bool     `yaml:"disabled"`        // never probe for a device
	SampleInterval Duration `yaml:"sample_interval"` // peak watcher poll interval
}

// Duration adds "250ms"-style YAML decoding to time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		Accelerator: Accelerator{
			SampleInterval: Duration(100 * time.Millisecond),
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
