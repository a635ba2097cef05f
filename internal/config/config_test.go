package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.History.Limit != 10 {
		t.Errorf("expected History.Limit=10, got %d", cfg.History.Limit)
	}
	if cfg.Analysis.OaxacaMethod != "oaxaca" {
		t.Errorf("expected OaxacaMethod=oaxaca, got %s", cfg.Analysis.OaxacaMethod)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("DECOMP_HISTORY_DB", "")
	t.Setenv("DECOMP_LOG_LEVEL", "")
	t.Setenv("DECOMP_DECIMALS", "")

	path := filepath.Join(t.TempDir(), "nested", "decomp.yaml")

	cfg := DefaultConfig()
	cfg.Output.Decimals = 2
	cfg.Analysis.OaxacaMethod = "cotton"
	cfg.History.Limit = 25

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Output.Decimals != 2 {
		t.Errorf("expected Decimals=2, got %d", loaded.Output.Decimals)
	}
	if loaded.Analysis.OaxacaMethod != "cotton" {
		t.Errorf("expected OaxacaMethod=cotton, got %s", loaded.Analysis.OaxacaMethod)
	}
	if loaded.History.Limit != 25 {
		t.Errorf("expected Limit=25, got %d", loaded.History.Limit)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("DECOMP_HISTORY_DB", "")
	t.Setenv("DECOMP_LOG_LEVEL", "")
	t.Setenv("DECOMP_DECIMALS", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Decimals != DefaultConfig().Output.Decimals {
		t.Errorf("expected default decimals, got %d", cfg.Output.Decimals)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("DECOMP_DECIMALS", "")
	path := filepath.Join(t.TempDir(), "decomp.yaml")
	if err := os.WriteFile(path, []byte("output:\n  style: ascii\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Style != "ascii" {
		t.Errorf("expected Style=ascii, got %s", cfg.Output.Style)
	}
	if cfg.Output.Decimals != 4 {
		t.Errorf("expected Decimals=4 from defaults, got %d", cfg.Output.Decimals)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decomp.yaml")
	if err := os.WriteFile(path, []byte("output: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DECOMP_HISTORY_DB", "/tmp/other.db")
	t.Setenv("DECOMP_LOG_LEVEL", "debug")
	t.Setenv("DECOMP_DECIMALS", "6")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.History.Path != "/tmp/other.db" {
		t.Errorf("expected History.Path=/tmp/other.db, got %s", cfg.History.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected Level=debug, got %s", cfg.Logging.Level)
	}
	if cfg.Output.Decimals != 6 {
		t.Errorf("expected Decimals=6, got %d", cfg.Output.Decimals)
	}

	t.Setenv("DECOMP_DECIMALS", "six")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for non-numeric DECOMP_DECIMALS")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"decimals", func(c *Config) { c.Output.Decimals = -1 }},
		{"style", func(c *Config) { c.Output.Style = "fancy" }},
		{"method", func(c *Config) { c.Analysis.OaxacaMethod = "fairlie" }},
		{"tolerance", func(c *Config) { c.Analysis.PercentTolerance = 0 }},
		{"limit", func(c *Config) { c.History.Limit = 0 }},
		{"history path", func(c *Config) { c.History.Path = "" }},
		{"level", func(c *Config) { c.Logging.Level = "trace" }},
		{"format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestFormatter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Decimals = 2
	if got := cfg.Formatter().Number(1.23456); got != "1.23" {
		t.Errorf("expected 1.23, got %s", got)
	}
}

func TestFormatterZeroDecimals(t *testing.T) {
	t.Setenv("DECOMP_DECIMALS", "0")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got := cfg.Formatter().Number(3.14159); got != "3" {
		t.Errorf("expected 3, got %s", got)
	}
}
