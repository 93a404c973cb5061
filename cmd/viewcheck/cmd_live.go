package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/viewcheck/viewcheck/checks"
	"github.com/viewcheck/viewcheck/livescan"
	"github.com/viewcheck/viewcheck/report"
)

var flagRemoteBrowser string

var liveCmd = &cobra.Command{
	Use:   "live <url>...",
	Short: "Run the rule checks against live pages in a headless browser",
	Long: `live loads each URL in a headless browser and evaluates the same
rule checks the static scanner uses against the rendered DOM. Findings
carry the page URL instead of a template file and line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := livescan.NewSession(livescan.Config{
			RemoteURL: flagRemoteBrowser,
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		defer session.Close()

		cfg := profile.Engine()
		var all []checks.Finding
		for _, url := range args {
			findings, err := session.Scan(url, cfg)
			if err != nil {
				logger.Error("live scan failed", "url", url, "error", err)
				continue
			}
			all = append(all, findings...)
		}

		switch flagFormat {
		case "json":
			if err := report.WriteJSON(os.Stdout, all); err != nil {
				return err
			}
		default:
			if err := report.WriteText(os.Stdout, all); err != nil {
				return err
			}
		}
		if shouldFail(all, flagFailOn) {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	liveCmd.Flags().StringVar(&flagRemoteBrowser, "browser-url", "", "WebSocket URL of an existing browser (default: launch headless)")
	liveCmd.Flags().StringVarP(&flagFormat, "format", "f", "text", "output format: text or json")
	liveCmd.Flags().StringVar(&flagFailOn, "fail-on", "error", "exit non-zero on: error, warning, never")
	rootCmd.AddCommand(liveCmd)
}
