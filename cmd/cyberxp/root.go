package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cyberxp/config"
	"cyberxp/logx"
)

var (
	verbose   bool
	cfgFile   string
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cyberxp",
	Short: "Train and replay cyberxp reinforcement-learning agents",
	Long: `cyberxp drives the module's pluggable cyber systems from the command line.

Commands:
  train    Run training episodes against a system's goal and save experience
  replay   Load a saved experience bundle and run it in inference-only mode
  serve    Serve a live training dashboard and Prometheus metrics endpoint`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			if err := os.Setenv("CYBERXP_CONFIG", cfgFile); err != nil {
				return err
			}
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		appConfig = cfg

		if verbose {
			logx.SetMinLevel(logx.LevelDebug)
		} else {
			logx.SetMinLevel(logx.LevelFromString(appConfig.LogLevel))
		}
		return nil
	},
}

// Execute runs the root command, exiting the process with a non-zero status
// on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging regardless of configured log level")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a cyberxp.yaml configuration file")
}
