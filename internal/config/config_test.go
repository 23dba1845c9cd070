package config

import (
	"testing"

	"github.com/recordkit/recstamp/internal/record"
	"github.com/spf13/viper"
)

func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()

	if cfg.HistoryPath == "" {
		t.Error("Default history path is empty")
	}
	if !cfg.HistoryEnabled {
		t.Error("History should be enabled by default")
	}
	if cfg.Output != record.JSON {
		t.Errorf("Default output: got %v, want json", cfg.Output)
	}
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set(KeyHistoryPath, "/tmp/custom.db")
	viper.Set(KeyHistoryEnabled, false)
	viper.Set(KeyOutput, "yaml")

	cfg := Load()
	if cfg.HistoryPath != "/tmp/custom.db" {
		t.Errorf("HistoryPath: got %s", cfg.HistoryPath)
	}
	if cfg.HistoryEnabled {
		t.Error("HistoryEnabled should be false")
	}
	if cfg.Output != record.YAML {
		t.Errorf("Output: got %v, want yaml", cfg.Output)
	}
}

func TestLoad_InvalidOutputFallsBack(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set(KeyOutput, "xml")

	cfg := Load()
	if cfg.Output != record.JSON {
		t.Errorf("Output should fall back to json, got %v", cfg.Output)
	}
}
