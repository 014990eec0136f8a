// Command scadenze prints upcoming recurring obligations detected in the
// transaction feed, and imports transaction exports into SQLite.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scadenze/internal/cli"
	"scadenze/internal/config"
	applog "scadenze/internal/log"
)

var (
	flagBackend string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "scadenze",
	Short:         "Recurring obligation forecasts",
	Long:          "Detect recurring expenses in your transactions and forecast the upcoming ones.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "", "Data backend (sqlite, sheets, memory); overrides DATA_BACKEND")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at debug level")
}

// appEnv is what every command needs: validated config, a logger and a
// context bound to the command.
type appEnv struct {
	cfg    *config.Config
	logger *applog.Logger
	ctx    context.Context
}

// setup loads .env and the configuration, applies overrides and validates.
func setup(cmd *cobra.Command, override func(*config.Config)) (*appEnv, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	if flagBackend != "" {
		cfg.DataBackend = flagBackend
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lc := applog.DefaultConfig()
	lc.Output = os.Stderr
	lc.Format = cfg.LogFormat
	lc.Level = applog.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		lc.Level = applog.ParseLevel("debug")
	}
	logger := applog.New(lc).WithComponent("cli")
	applog.SetDefault(logger)

	ctx := applog.WithContext(cmd.Context(), logger)
	return &appEnv{cfg: cfg, logger: logger, ctx: ctx}, nil
}
