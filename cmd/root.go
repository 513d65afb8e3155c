// Package cmd implements the statdash command line.
package cmd

import (
	"fmt"
	"os"

	"statdash/internal"
	"statdash/internal/config"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	logLevel string

	// Loaded configuration
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "statdash",
	Short: "statdash: statistics dashboards for uploaded tables",
	Long: `statdash loads a CSV or Excel table and runs t-tests, chi-square, correlation,
covariance, descriptive statistics and normality checks on the columns you pick,
either in a web dashboard (statdash serve) or from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./statdash.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: error, warn, info, debug, trace (overrides LOG_LEVEL)")
}

// loadConfig reads configuration for cmd and installs the default logger
func loadConfig(cmd *cobra.Command) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Root().PersistentFlags().Changed("log-level") {
		c.Log.Level = logLevel
	}
	cfg = c

	internal.SetDefault(internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), cfg.Log.Format))
	return nil
}
