package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vilanovax/wibecur-sub000/internal/app"
	"github.com/vilanovax/wibecur-sub000/internal/config"
	"github.com/vilanovax/wibecur-sub000/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:   "wibecur",
	Short: "Schedule featured slots and analyze promotion performance",
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

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(proposeCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(rotationCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}

// parseFlagTime parses a required RFC3339 flag value.
func parseFlagTime(name, raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s value: %w", name, err)
	}
	return parsed.UTC(), nil
}

// parseOptionalFlagTime parses an RFC3339 flag that may be empty.
func parseOptionalFlagTime(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := parseFlagTime(name, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// asOfOrNow parses an optional --as-of flag, defaulting to the current time.
func asOfOrNow(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return parseFlagTime("as-of", raw)
}
