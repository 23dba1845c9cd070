package config

import (
	"os"
	"path/filepath"

	"github.com/recordkit/recstamp/internal/record"
	"github.com/recordkit/recstamp/internal/utils/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// KeyHistoryPath is the viper key for the history database location
	KeyHistoryPath = "history.path"

	// KeyHistoryEnabled is the viper key toggling run history
	KeyHistoryEnabled = "history.enabled"

	// KeyOutput is the viper key for the default output format
	KeyOutput = "output"
)

// Settings contains application-wide configuration
type Settings struct {
	// HistoryPath is where the run history database lives
	HistoryPath string
	// HistoryEnabled controls whether runs are recorded at all
	HistoryEnabled bool
	// Output is the default output format for stamped records
	Output record.Format
}

// DefaultSettings returns the default configuration
func DefaultSettings() Settings {
	return Settings{
		HistoryPath:    defaultHistoryPath(),
		HistoryEnabled: true,
		Output:         record.JSON,
	}
}

// Load builds Settings from viper, falling back to defaults for anything
// unset or invalid. Viper has already merged the config file, environment
// and flags by the time this runs.
func Load() Settings {
	cfg := DefaultSettings()

	if path := viper.GetString(KeyHistoryPath); path != "" {
		cfg.HistoryPath = path
		logger.Debug("Using history path from configuration",
			zap.String("path", path))
	}

	if viper.IsSet(KeyHistoryEnabled) {
		cfg.HistoryEnabled = viper.GetBool(KeyHistoryEnabled)
	}

	if out := viper.GetString(KeyOutput); out != "" {
		format, err := record.ParseFormat(out)
		if err != nil {
			logger.Warn("Unknown output format in configuration, using default",
				zap.String("format", out),
				zap.String("default", string(cfg.Output)))
		} else {
			cfg.Output = format
		}
	}

	return cfg
}

// defaultHistoryPath places the history database under the user's local
// data directory, falling back to the working directory when no home
// directory is available.
func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "recstamp-history.db"
	}
	return filepath.Join(home, ".local", "share", "recstamp", "history.db")
}
