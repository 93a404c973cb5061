package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/viewcheck/viewcheck/checks"
	"github.com/viewcheck/viewcheck/config"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the known accessibility rules and their state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := profile.Engine()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RULE\tSCOPE\tENABLED")
		for _, chk := range checks.All() {
			scope := "file"
			if chk.PageLevel() {
				scope = "page"
			}
			fmt.Fprintf(w, "%s\t%s\t%v\n", chk.ID(), scope, cfg.Enabled(chk))
		}
		return w.Flush()
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if err := config.Scaffold(path); err != nil {
			return err
		}
		if path == "" {
			path = ".viewcheck.yml"
		}
		logger.Info("configuration written", "path", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(initCmd)
}
