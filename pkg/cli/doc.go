/*
Package cli provides command-line helpers shared by the ismp commands.

Output Formatting:

Command results are printed as text, JSON or CSV:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Values that implement Table are rendered as aligned columns in text mode
and as rows in CSV mode.

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(len(envelopes))
	// ...
	progress.Increment()
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
