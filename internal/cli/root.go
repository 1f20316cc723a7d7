package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tcrb-alerts/internal/app"
	"tcrb-alerts/internal/config"
	"tcrb-alerts/internal/logging"
)

var (
	cfgFile      string
	logLevel     string
	thresholdMag float64
	pollInterval time.Duration
	appHandle    *app.App
)

var rootCmd = &cobra.Command{
	Use:   "tcrbwatcher",
	Short: "Monitor a variable star for dimming past a magnitude threshold",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Alerting.ThresholdMagnitude = thresholdMag
		}
		if cmd.Flags().Changed("interval") {
			cfg.Scheduler.Interval = pollInterval
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().Float64Var(&thresholdMag, "threshold", 0, "Override alert threshold magnitude")
	rootCmd.PersistentFlags().DurationVar(&pollInterval, "interval", 0, "Override polling interval")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(showStateCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
