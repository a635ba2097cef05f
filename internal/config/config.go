// Package config loads the YAML configuration of the decomp CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sartorproj/godecomp/regression"
	"github.com/sartorproj/godecomp/report"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "decomp.yaml"

// Config holds all decomp configuration.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AnalysisConfig holds defaults for the decompositions.
type AnalysisConfig struct {
	NormalizeWeights      bool    `yaml:"normalize_weights"`
	PercentTolerance      float64 `yaml:"percent_tolerance"`
	VerificationTolerance float64 `yaml:"verification_tolerance"`
	OaxacaMethod          string  `yaml:"oaxaca_method"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Decimals     int    `yaml:"decimals"`
	MaxTableRows int    `yaml:"max_table_rows"` // 0 = unlimited
	Style        string `yaml:"style"`          // rounded, normal, ascii, markdown
}

// HistoryConfig configures the analysis history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Limit   int    `yaml:"limit"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			NormalizeWeights:      true,
			PercentTolerance:      0.1,
			VerificationTolerance: 1e-4,
			OaxacaMethod:          string(regression.MethodOaxaca),
		},
		Output: OutputConfig{
			Decimals:     4,
			MaxTableRows: 50,
			Style:        "rounded",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(".decomp", "history.db"),
			Limit:   10,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if path := os.Getenv("DECOMP_HISTORY_DB"); path != "" {
		c.History.Path = path
	}
	if level := os.Getenv("DECOMP_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if d := os.Getenv("DECOMP_DECIMALS"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return fmt.Errorf("DECOMP_DECIMALS: %w", err)
		}
		c.Output.Decimals = n
	}
	return nil
}

// Formatter returns the number formatter for the configured precision.
func (c *Config) Formatter() report.Formatter {
	return report.Formatter{Decimals: c.Output.Decimals}
}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Output.Decimals < 0 || c.Output.Decimals > 12 {
		return fmt.Errorf("output.decimals must be between 0 and 12, got %d", c.Output.Decimals)
	}
	if c.Output.MaxTableRows < 0 {
		return fmt.Errorf("output.max_table_rows must not be negative")
	}
	if !slices.Contains(report.Styles(), report.Style(c.Output.Style)) {
		return fmt.Errorf("invalid output.style: %s (valid: %v)", c.Output.Style, report.Styles())
	}
	if c.Analysis.PercentTolerance <= 0 || c.Analysis.VerificationTolerance <= 0 {
		return fmt.Errorf("analysis tolerances must be positive")
	}
	var methods []string
	for _, m := range regression.Methods() {
		methods = append(methods, string(m))
	}
	if !slices.Contains(methods, c.Analysis.OaxacaMethod) {
		return fmt.Errorf("invalid analysis.oaxaca_method: %s (valid: %v)", c.Analysis.OaxacaMethod, methods)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be at least 1, got %d", c.History.Limit)
	}
	if !slices.Contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid logging.format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}
