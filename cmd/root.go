package cmd

import (
	"fmt"
	"os"

	"github.com/recordkit/recstamp/internal/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	output   string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "recstamp",
	Short: "Annotate data records with processing stamps",
	Long: `recstamp reads loosely structured records from JSON or YAML, annotates
each one with a processing timestamp and a completion status, and keeps a
local history of what it has stamped.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", zap.Error(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/recstamp/recstamp.yaml)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "output format (json|yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")

	// Bind flags to viper
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name "recstamp" (without extension).
		viper.AddConfigPath(home + "/.config/recstamp")
		viper.SetConfigType("yaml")
		viper.SetConfigName("recstamp")
	}

	viper.SetEnvPrefix("recstamp")
	viper.AutomaticEnv() // read in environment variables that match

	// Initialize the logger
	if err := logger.Init(logLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("Using config file", zap.String("file", viper.ConfigFileUsed()))
	}
}
