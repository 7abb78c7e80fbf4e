// Command facet runs the label-candidate preprocessing pipeline over a
// JSONL batch of documents and manages SQLite lexical resources.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/facet/internal/logging"
	"github.com/cognicore/facet/pkg/facet/config"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:           "facet",
	Short:         "Preprocess search results into label candidates",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
	rootCmd.AddCommand(newPreprocessCmd(), newLexiconCmd())
}

// loadConfig reads the configuration (defaults, the optional file, then
// FACET_* environment overrides) and installs the logger it names.
// Command-line logging flags win over both.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
