package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"crpt-hq/ismp/pkg/cli"
	"crpt-hq/ismp/pkg/documents"
	"crpt-hq/ismp/pkg/submitter"
)

// resultLine is one row of submit or validate output.
type resultLine struct {
	File       string `json:"file"`
	DocID      string `json:"doc_id,omitempty"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	WaitedMs   int64  `json:"waited_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

// resultReport is the output of submit and validate.
type resultReport struct {
	Results []resultLine `json:"results"`
	Total   int          `json:"total"`
	Failed  int          `json:"failed"`
}

func (r *resultReport) add(line resultLine, ok bool) {
	r.Results = append(r.Results, line)
	r.Total++
	if !ok {
		r.Failed++
	}
}

// err returns a PartialFailureError when anything failed.
func (r *resultReport) err() error {
	if r.Failed == 0 {
		return nil
	}
	return &cli.PartialFailureError{Failed: r.Failed, Total: r.Total}
}

func (r *resultReport) Header() []string {
	return []string{"FILE", "DOC_ID", "STATUS", "CODE", "REQUEST_ID", "ERROR"}
}

func (r *resultReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Results))
	for _, l := range r.Results {
		code := ""
		if l.StatusCode != 0 {
			code = strconv.Itoa(l.StatusCode)
		}
		rows = append(rows, []string{l.File, l.DocID, l.Status, code, l.RequestID, l.Error})
	}
	return rows
}

// outcomeLine converts a submission outcome for output.
func outcomeLine(file string, o submitter.Outcome) resultLine {
	line := resultLine{File: file, DocID: o.DocID, Status: submitter.StatusOf(o.Err)}
	if o.Result != nil {
		line.StatusCode = o.Result.StatusCode
		line.RequestID = o.Result.RequestID
		line.WaitedMs = o.Result.Waited.Milliseconds()
	}
	if o.Err != nil {
		line.Error = o.Err.Error()
		var apiErr *submitter.APIError
		if errors.As(o.Err, &apiErr) {
			line.StatusCode = apiErr.StatusCode
			line.RequestID = apiErr.RequestID
		}
	}
	return line
}

// loaded is an envelope read from a file.
type loaded struct {
	file     string
	envelope documents.Envelope
}

// loadEnvelopes reads every path; "-" reads one envelope from stdin.
// Unreadable files are reported in the returned lines.
func loadEnvelopes(paths []string, stdin io.Reader) ([]loaded, []resultLine) {
	var (
		envs   []loaded
		failed []resultLine
	)
	for _, path := range paths {
		var (
			env *documents.Envelope
			err error
		)
		if path == "-" {
			env, err = documents.DecodeEnvelope(stdin)
			if err != nil {
				err = fmt.Errorf("stdin: %w", err)
			}
		} else {
			env, err = documents.LoadEnvelope(path)
		}
		if err != nil {
			failed = append(failed, resultLine{File: path, Status: "unreadable", Error: err.Error()})
			continue
		}
		envs = append(envs, loaded{file: path, envelope: *env})
	}
	return envs, failed
}

// printReport writes report in the requested format.
func printReport(w io.Writer, format string, report *resultReport) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(format))
	if err != nil {
		return err
	}
	return formatter.FormatTo(w, report)
}
