package main

import (
	"crpt-hq/ismp/pkg/documents"
	"crpt-hq/ismp/pkg/submitter"

	"github.com/spf13/cobra"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate document envelopes without submitting them",
		Long: `Validate envelopes against the registry's field rules: required fields,
10 or 12 digit taxpayer numbers, YYYY-MM-DD dates, the LP_INTRODUCE_GOODS
document type and at least one product. Nothing is sent and no rate limit
capacity is used.

Examples:
  ismp validate doc-1.json
  ismp validate envelopes/*.json --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envs, unreadable := loadEnvelopes(args, cmd.InOrStdin())

			report := &resultReport{}
			for _, line := range unreadable {
				report.add(line, false)
			}
			for _, e := range envs {
				line := resultLine{File: e.file, DocID: e.envelope.Document.DocID, Status: "valid"}
				err := documents.ValidateStrict(&e.envelope.Document)
				if err != nil {
					line.Status = submitter.StatusInvalid
					line.Error = err.Error()
				}
				report.add(line, err == nil)
			}

			root.logger.DebugContext(cmd.Context(), "validation finished", "total", report.Total, "invalid", report.Failed)
			if err := printReport(cmd.OutOrStdout(), output, report); err != nil {
				return err
			}
			return report.err()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, csv)")
	return cmd
}
