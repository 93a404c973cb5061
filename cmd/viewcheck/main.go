// Command viewcheck statically scans server-rendered view templates for
// accessibility issues and reports them with file-and-line precision.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/viewcheck/viewcheck/config"
)

var (
	flagConfig  string
	flagVerbose bool

	profile *config.Profile
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "viewcheck",
	Short: "Static accessibility scanner for view templates",
	Long: `viewcheck inspects server-rendered view templates and reports
accessibility-rule violations without executing the application or a
browser. Pages are analyzed as a whole: layouts and recursively included
partials are resolved into one logical document before page-level rules
(heading structure, landmarks, duplicate ids) run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, "viewcheck:", err)
		}
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "configuration profile (default .viewcheck.yml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		var err error
		profile, err = config.Load(flagConfig)
		if err != nil {
			// Config load failure falls back to the all-default profile.
			logger.Debug("using default configuration", "reason", err)
		}
	}
}
