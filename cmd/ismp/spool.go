package main

import (
	"context"
	"errors"
	"fmt"

	"crpt-hq/ismp/pkg/cli"
	"crpt-hq/ismp/pkg/spool"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newSpoolCmd(root *rootOptions) *cobra.Command {
	var (
		inbox    string
		watch    bool
		schedule bool
		cronExpr string
	)

	cmd := &cobra.Command{
		Use:   "spool",
		Short: "Submit envelopes dropped into a spool directory",
		Long: `Submit every *.json envelope in the spool inbox. Accepted files move to
<inbox>/done, failed files to <inbox>/failed next to a .err file holding the
error. Files whose submission was interrupted stay in the inbox.

Without --watch or --schedule the inbox is processed once. With either
flag the command runs until interrupted and, when metrics are enabled,
serves /metrics, /health and /ready.

Examples:
  # Process the inbox once
  ismp spool

  # React to new files
  ismp spool --watch

  # Sweep every five minutes as well
  ismp spool --watch --schedule --cron "*/5 * * * *"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if inbox != "" {
				cfg.Spool.Inbox = inbox
			}
			if cronExpr != "" {
				cfg.Spool.Schedule = cronExpr
			}

			a, err := newApp(cfg, root.logger)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			opts := spool.Options{Logger: root.logger, Tracer: a.tracer.Tracer()}
			if a.collector != nil {
				opts.Metrics = a.collector
			}
			processor, err := spool.New(spool.Config{
				Inbox:    cfg.Spool.Inbox,
				Workers:  cfg.Submit.Workers,
				Debounce: cfg.Spool.Debounce,
			}, a.submitter, opts)
			if err != nil {
				return cli.NewCommandError("spool", err)
			}

			if !watch && !schedule {
				report, err := processor.ProcessOnce(cmd.Context())
				if err != nil {
					return cli.NewCommandError("spool", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "done: %d, failed: %d, deferred: %d\n",
					len(report.Done), len(report.Failed), len(report.Deferred))
				return nil
			}

			a.checkInbox(cfg.Spool.Inbox)
			g, ctx := errgroup.WithContext(cmd.Context())
			if err := a.serveTelemetry(ctx, g); err != nil {
				return err
			}
			if watch {
				g.Go(func() error { return processor.Watch(ctx) })
			}
			if schedule {
				g.Go(func() error { return processor.Schedule(ctx, cfg.Spool.Schedule) })
			}

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return cli.NewCommandError("spool", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inbox, "inbox", "", "spool inbox directory (default: spool.inbox from config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "process new files as they appear")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "process the inbox on the cron schedule")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "cron expression for --schedule (default: spool.schedule from config)")
	return cmd
}
