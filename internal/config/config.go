package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/danielpatrickdp/falselabel/internal/faults"
	"github.com/danielpatrickdp/falselabel/internal/metrics"
	"gopkg.in/yaml.v3"
)

// #region types
// Config is the evaluation setup shared by the commands.
type Config struct {
	Codec        CodecConfig        `yaml:"codec"`
	FaultCounter FaultCounterConfig `yaml:"fault_counter"`
	Metrics      []string           `yaml:"metrics"`
	Eval         EvalConfig         `yaml:"eval"`
	MetricsFile  string             `yaml:"metrics_file"` // prometheus textfile written after a run, empty to disable
}

// CodecConfig configures the quantizer.
type CodecConfig struct {
	ErrorBound float64 `yaml:"error_bound"`
}

// FaultCounterConfig selects where fault counting runs.
type FaultCounterConfig struct {
	Mode            string `yaml:"mode"` // "local" or "remote"
	Addr            string `yaml:"addr"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	Accelerator     string `yaml:"accelerator"`
	Workers         int    `yaml:"workers"`
	MaxMessageBytes int    `yaml:"max_message_bytes"`
}

// EvalConfig holds acceptance thresholds.
type EvalConfig struct {
	MaxFalseLabelRatio float64 `yaml:"max_false_label_ratio"`
}

// #endregion types

// #region defaults
// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Codec: CodecConfig{ErrorBound: 1e-3},
		FaultCounter: FaultCounterConfig{
			Mode:            "local",
			Addr:            "localhost:50061",
			TimeoutSeconds:  30,
			Accelerator:     "none",
			MaxMessageBytes: 64 << 20,
		},
		Metrics: []string{metrics.FalseLabelRatioID},
		Eval:    EvalConfig{MaxFalseLabelRatio: 0.01},
	}
}

// #endregion defaults

// #region load
// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Unparseable numbers are
// ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("FALSELABEL_COUNTER_MODE"); v != "" {
		c.FaultCounter.Mode = v
	}
	if v := getenv("FALSELABEL_COUNTER_ADDR"); v != "" {
		c.FaultCounter.Addr = v
	}
	if v := getenv("FALSELABEL_ACCELERATOR"); v != "" {
		c.FaultCounter.Accelerator = v
	}
	if v := getenv("FALSELABEL_METRICS_FILE"); v != "" {
		c.MetricsFile = v
	}
	if v := getenv("FALSELABEL_ERROR_BOUND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Codec.ErrorBound = f
		}
	}
	if v := getenv("FALSELABEL_MAX_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Eval.MaxFalseLabelRatio = f
		}
	}
}

// #endregion load

// #region validate
// Validate checks the fields the commands depend on.
func (c Config) Validate() error {
	if math.IsNaN(c.Codec.ErrorBound) || math.IsInf(c.Codec.ErrorBound, 0) {
		return fmt.Errorf("codec.error_bound must be finite, got %g", c.Codec.ErrorBound)
	}
	switch c.FaultCounter.Mode {
	case "local":
	case "remote":
		if c.FaultCounter.Addr == "" {
			return fmt.Errorf("fault_counter.addr is required in remote mode")
		}
	default:
		return fmt.Errorf("fault_counter.mode must be local or remote, got %q", c.FaultCounter.Mode)
	}
	if _, err := faults.ParseAccelerator(c.FaultCounter.Accelerator); err != nil {
		return fmt.Errorf("fault_counter.accelerator: %w", err)
	}
	if c.FaultCounter.TimeoutSeconds < 0 {
		return fmt.Errorf("fault_counter.timeout_seconds must be >= 0")
	}
	if c.FaultCounter.Workers < 0 {
		return fmt.Errorf("fault_counter.workers must be >= 0")
	}
	if len(c.Metrics) == 0 {
		return fmt.Errorf("metrics must name at least one metric")
	}
	if !(c.Eval.MaxFalseLabelRatio >= 0 && c.Eval.MaxFalseLabelRatio <= 1) {
		return fmt.Errorf("eval.max_false_label_ratio must be in [0, 1]")
	}
	return nil
}

// Timeout returns the per-call fault counting timeout; zero means none.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.FaultCounter.TimeoutSeconds) * time.Second
}

// #endregion validate
