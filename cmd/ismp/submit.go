package main

import (
	"fmt"

	"crpt-hq/ismp/pkg/cli"
	"crpt-hq/ismp/pkg/documents"
	"crpt-hq/ismp/pkg/submitter"

	"github.com/spf13/cobra"
)

func newSubmitCmd(root *rootOptions) *cobra.Command {
	var (
		workers  int
		output   string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "submit FILE...",
		Short: "Submit document envelopes to the registry",
		Long: `Submit one or more envelopes ({"document": ..., "signature": ...}) to the
registry. Use "-" to read a single envelope from stdin.

Workers run concurrently but share one rate limiter, so the request rate
never exceeds limits.request_limit per limits.window. Each document is sent
exactly once; the command exits non-zero if any document was not accepted.

Examples:
  # Submit two documents
  ismp submit doc-1.json doc-2.json

  # Submit a directory of envelopes with 8 workers, JSON output
  ismp submit envelopes/*.json --workers 8 --output json

  # Pipe a single envelope
  cat doc.json | ismp submit -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cli.NewFormatter(cli.OutputFormat(output)); err != nil {
				return err
			}
			if workers <= 0 {
				workers = root.cfg.Submit.Workers
			}

			a, err := newApp(root.cfg, root.logger)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			envs, unreadable := loadEnvelopes(args, cmd.InOrStdin())
			report := &resultReport{}
			for _, line := range unreadable {
				report.add(line, false)
			}

			envelopes := make([]documents.Envelope, len(envs))
			for i, e := range envs {
				envelopes[i] = e.envelope
			}

			var reporter cli.ProgressReporter = cli.NoProgress{}
			if progress {
				reporter = cli.NewProgressReporter(cmd.ErrOrStderr())
			}
			reporter.Start(len(envelopes))
			outcomes := a.submitter.SubmitEach(cmd.Context(), envelopes, workers, func(submitter.Outcome) {
				reporter.Increment()
			})
			reporter.Finish()

			for i, o := range outcomes {
				report.add(outcomeLine(envs[i].file, o), o.OK())
			}

			if err := printReport(cmd.OutOrStdout(), output, report); err != nil {
				return fmt.Errorf("failed to print results: %w", err)
			}
			return report.err()
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent submissions (default: submit.workers from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, csv)")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	return cmd
}
