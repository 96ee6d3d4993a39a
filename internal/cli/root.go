// Package cli holds the soundclusters cobra commands.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/soundclusters/internal/config"
)

var (
	configPath  string // Optional YAML configuration file
	logLevel    string // Overrides log_level from the configuration
	datasetPath string // Clustered dataset CSV
	scalerPath  string // Fitted scaler artifact
	modelPath   string // Fitted k-means artifact
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:          "soundclusters",
	Short:        "Explore a pre-computed k-means clustering of music tracks",
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers the configuration file, the environment and the
// command-line flags, in that order, then sets up logging.
func resolveConfig(cmd *cobra.Command, getenv func(string) string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv(getenv)

	flags := cmd.Flags()
	if flags.Changed("log") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("dataset") {
		cfg.Artifacts.Dataset = datasetPath
	}
	if flags.Changed("scaler") {
		cfg.Artifacts.Scaler = scalerPath
	}
	if flags.Changed("model") {
		cfg.Artifacts.Model = modelPath
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return cfg, nil
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "Clustered dataset CSV (overrides artifacts.dataset)")
	rootCmd.PersistentFlags().StringVar(&scalerPath, "scaler", "", "Fitted scaler artifact (overrides artifacts.scaler)")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "", "Fitted k-means model artifact (overrides artifacts.model)")

	rootCmd.AddCommand(serveCmd, evaluateCmd, predictCmd)
}
