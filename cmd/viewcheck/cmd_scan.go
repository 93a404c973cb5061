package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viewcheck/viewcheck/checks"
	"github.com/viewcheck/viewcheck/history"
	"github.com/viewcheck/viewcheck/report"
	"github.com/viewcheck/viewcheck/scanner"
)

var (
	flagFormat      string
	flagChangedOnly bool
	flagFailOn      string
	flagNewOnly     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan a template tree and report findings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := profile.AbsTemplateRoot()
		if len(args) == 1 {
			root = args[0]
		}

		s := scanner.New(profile, logger)
		res, err := s.ScanDir(root, flagChangedOnly)
		if err != nil {
			return err
		}
		findings := res.Findings

		if profile.HistoryFile != "" {
			findings = recordHistory(res, findings)
		}

		switch flagFormat {
		case "json":
			if err := report.WriteJSON(os.Stdout, findings); err != nil {
				return err
			}
		case "text", "":
			if err := report.WriteText(os.Stdout, findings); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q (want text or json)", flagFormat)
		}

		if shouldFail(findings, flagFailOn) {
			os.Exit(1)
		}
		return nil
	},
}

// recordHistory stores the run and, with --new-only, filters findings to
// those absent from the previous run. History failures degrade to the
// unfiltered findings.
func recordHistory(res *scanner.Result, findings []checks.Finding) []checks.Finding {
	store, err := history.Open(profile.HistoryFile)
	if err != nil {
		logger.Debug("scan history unavailable", "error", err)
		return findings
	}
	defer store.Close()

	runID, err := store.Record(res.FilesScanned, findings)
	if err != nil {
		logger.Debug("recording scan history failed", "error", err)
		return findings
	}
	if !flagNewOnly {
		return findings
	}
	baseline, err := store.LastRunID(runID)
	if err != nil {
		logger.Debug("loading baseline run failed", "error", err)
		return findings
	}
	fresh, err := store.NewSince(baseline, findings)
	if err != nil {
		logger.Debug("baseline comparison failed", "error", err)
		return findings
	}
	return fresh
}

// shouldFail applies the --fail-on threshold.
func shouldFail(findings []checks.Finding, failOn string) bool {
	worst := report.Worst(findings)
	switch failOn {
	case "warning":
		return worst != ""
	case "never":
		return false
	default: // error
		return worst == checks.SeverityError
	}
}

func init() {
	scanCmd.Flags().StringVarP(&flagFormat, "format", "f", "text", "output format: text or json")
	scanCmd.Flags().BoolVar(&flagChangedOnly, "changed-only", false, "only scan files changed since the last run")
	scanCmd.Flags().StringVar(&flagFailOn, "fail-on", "error", "exit non-zero on: error, warning, never")
	scanCmd.Flags().BoolVar(&flagNewOnly, "new-only", false, "report only findings new since the previous recorded run")
	rootCmd.AddCommand(scanCmd)
}
