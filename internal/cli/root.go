// Package cli implements the astdigest command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/astdigest/internal/config"
	"github.com/mvp-joe/astdigest/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "astdigest",
	Short: "Compress Java source into structural digests for LLM context",
	Long: `astdigest parses Java source and emits a compact JSON digest of each file:
its classes, method signatures, control flow, data flow, method intents and
key comments, at a chosen aggregation level.

Configuration is read from .astdigest/config.yml in the project root and
ASTDIGEST_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .astdigest/config.yml in the project root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration for a project rooted at rootDir.
func loadConfig(rootDir string) (*config.Config, error) {
	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	cfg, err := config.NewLoader(rootDir, opts...).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg; --verbose forces debug level.
func newLogger(cfg logging.Config) (*zap.Logger, error) {
	if verbose {
		cfg.Level = "debug"
	}
	log, err := logging.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// setup loads configuration and the logger for a command working on rootDir.
func setup(rootDir string) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
