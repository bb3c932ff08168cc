package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads and writes Go duration strings
// ("20ms", "1.5s") in JSON and YAML. Bare JSON numbers are nanoseconds.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*d = Duration(v)
		return nil
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "invalid duration %q", v)
		}
		*d = Duration(parsed)
		return nil
	default:
		return errors.Errorf("invalid duration %s", string(data))
	}
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var ns int64
	if err := node.Decode(&ns); err == nil {
		*d = Duration(ns)
		return nil
	}
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d: invalid duration %q", node.Line, node.Value)
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the overall benchmark run configuration.
type Config struct {
	// TimeBudget is the accumulated sample time after which measurement of
	// one instance stops.
	TimeBudget Duration `json:"time_budget_per_case" yaml:"time_budget_per_case"`
	// MinSamples is the sample count below which a measurement is flagged
	// under-sampled.
	MinSamples int `json:"min_samples" yaml:"min_samples"`
	// MaxSamples is the hard cap on timed samples per instance.
	MaxSamples int `json:"max_samples" yaml:"max_samples"`
	// WarmupSeed seeds the warmup data generator.
	WarmupSeed uint64 `json:"warmup_seed" yaml:"warmup_seed"`
	// Run selects cases, in go test -run syntax.
	Run string `json:"run,omitempty" yaml:"run,omitempty"`
	// Devices names the device contexts to run against.
	Devices []string `json:"devices,omitempty" yaml:"devices,omitempty"`
	// Sizes overrides the image sizes axis ("1280x720", "1080p", ...).
	Sizes []string `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	// Types restricts the pixel type axis ("8UC1", "CV_32FC4", ...).
	Types []string `json:"types,omitempty" yaml:"types,omitempty"`
	// Format is the report format: text, csv, json, yaml or benchfmt.
	Format string `json:"format" yaml:"format"`
	// Output is the report path; "-" is stdout.
	Output string `json:"output" yaml:"output"`
	// NoColor disables coloured text output.
	NoColor bool `json:"no_color,omitempty" yaml:"no_color,omitempty"`
}

// Default settings.
const (
	DefaultTimeBudget = 20 * time.Millisecond
	DefaultMinSamples = 10
	DefaultMaxSamples = 100
	DefaultWarmupSeed = 0x5eed
)

// DefaultConfig returns a default benchmark configuration.
func DefaultConfig() *Config {
	return &Config{
		TimeBudget: Duration(DefaultTimeBudget),
		MinSamples: DefaultMinSamples,
		MaxSamples: DefaultMaxSamples,
		WarmupSeed: DefaultWarmupSeed,
		Devices:    []string{"opencv"},
		Format:     "text",
		Output:     "-",
	}
}

// Validate checks the sampling bounds.
func (c *Config) Validate() error {
	switch {
	case c.TimeBudget <= 0:
		return &ConfigurationError{Reason: fmt.Sprintf("time_budget_per_case must be positive, got %s", c.TimeBudget)}
	case c.MinSamples < 1:
		return &ConfigurationError{Reason: fmt.Sprintf("min_samples must be at least 1, got %d", c.MinSamples)}
	case c.MaxSamples < c.MinSamples:
		return &ConfigurationError{Reason: fmt.Sprintf("max_samples (%d) must not be below min_samples (%d)", c.MaxSamples, c.MinSamples)}
	}
	return nil
}

// SaveConfig saves the configuration as YAML or JSON, chosen by the file
// extension.
func (c *Config) SaveConfig(filename string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// LoadConfig loads a configuration from a YAML (.yaml, .yml) or JSON file.
// Keys missing from the file keep their DefaultConfig values.
//
// Arguments:
// - filename: The path of the configuration file.
//
// Returns:
// - *Config: The loaded and validated configuration.
// - error: If the file cannot be read, decoded or fails validation.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config %s", filename)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, filename)
	}
	return config, nil
}

func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// newTimer builds the timing engine for this configuration.
func (c *Config) newTimer() *Timer {
	return &Timer{
		Budget:     time.Duration(c.TimeBudget),
		MinSamples: c.MinSamples,
		MaxSamples: c.MaxSamples,
	}
}
