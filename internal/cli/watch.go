package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avivsinai/thread-triage/internal/thread"
	"github.com/avivsinai/thread-triage/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		flags   anonymizeFlags
		timeout time.Duration
		poll    bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run anonymize whenever the input file changes",
		Long: `Runs anonymize once, then again each time the input file is written,
created or replaced, until interrupted or --timeout expires. A failed run is
logged and the watch continues.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(a, cmd.Flags())
			if err != nil {
				return err
			}
			if timeout < 0 {
				return UsageError("--timeout must be >= 0")
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return a.watch(ctx, flags, opts, poll, timeout)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop after this long (0 = run until interrupted)")
	cmd.Flags().BoolVar(&poll, "poll", false, "Use polling instead of fsnotify (for network filesystems)")
	return cmd
}

func (a *app) watch(ctx context.Context, flags anonymizeFlags, opts thread.Options, poll bool, timeout time.Duration) error {
	runs := 0
	rerun := func() {
		runs++
		n, err := a.anonymize(flags.input, flags.output, flags.metricsFile, opts)
		if err != nil {
			a.logger.Error("anonymize failed", zap.Int("run", runs), zap.Error(err))
			return
		}
		_ = a.printf("Wrote %d threads to %s\n", n, flags.output)
	}

	rerun()
	a.logger.Info("watching input", zap.String("input", flags.input), zap.Bool("poll", poll))
	err := watch.File(ctx, flags.input, watch.Options{Poll: poll, Logger: a.logger}, rerun)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutError("watch stopped after %s (%d runs)", timeout, runs)
	case errors.Is(err, context.Canceled):
		a.logger.Info("watch interrupted", zap.Int("runs", runs))
		return nil
	}
	return err
}
