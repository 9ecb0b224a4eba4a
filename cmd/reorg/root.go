package main

import (
	"fmt"
	"os"

	"github.com/fumiya-kume/reorg/pkg/config"
	"github.com/fumiya-kume/reorg/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	debug   bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reorg",
	Short: "Reorganize a contiguous range of commits into a cleaner sequence",
	Long: `reorg reorganizes a contiguous range of commits on the current branch
into a cleaner sequence of commits without changing the final tree state.

It plans a new commit sequence from the range's hunks using a pluggable
strategy (preserve, by-file, squash, absorb), resets to the range's base,
then replays the plan one commit at a time — stopping cleanly at any
interruption so the operation can be resumed or aborted later.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is one of pkg/config's search paths)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug output")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}

// initConfig loads configuration from disk and environment, applies flag
// overrides, and wires the resulting settings into the global logger.
func initConfig() {
	loaded, err := config.LoadOrCreateConfig(cfgFile)
	if err != nil {
		if debug {
			fmt.Printf("Warning: failed to load config: %v\n", err)
		}
		loaded = config.DefaultConfig()
	}
	cfg = loaded

	if debug {
		cfg.Logging.Level = "debug"
	}
	if logLevel, _ := rootCmd.PersistentFlags().GetString("log-level"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFile, _ := rootCmd.PersistentFlags().GetString("log-file"); logFile != "" {
		cfg.Logging.File = logFile
	}

	loggerConfig := cfg.ToLoggerConfig()
	globalLogger, err := logger.New(loggerConfig)
	if err != nil {
		if debug {
			fmt.Printf("Warning: failed to initialize logger: %v\n", err)
		}
		globalLogger = logger.NewDefault()
	}
	logger.SetGlobalLogger(globalLogger)
}
