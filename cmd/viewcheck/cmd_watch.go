package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/viewcheck/viewcheck/report"
	"github.com/viewcheck/viewcheck/scanner"
	"github.com/viewcheck/viewcheck/watch"
)

var flagPoll time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-scan templates whenever they change",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := profile.AbsTemplateRoot()
		if len(args) == 1 {
			root = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := &watch.Watcher{
			Root:    root,
			Scanner: scanner.New(profile, logger),
			Logger:  logger,
			OnScan: func(res *scanner.Result) {
				report.WriteText(os.Stdout, res.Findings)
			},
		}

		logger.Info("watching templates", "root", root)
		var err error
		if flagPoll > 0 {
			err = w.Poll(ctx, flagPoll)
		} else {
			err = w.Run(ctx)
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&flagPoll, "poll", 0, "poll at this interval instead of using filesystem notifications")
	rootCmd.AddCommand(watchCmd)
}
