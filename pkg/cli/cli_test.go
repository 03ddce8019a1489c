package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

type outcomeTable struct{}

func (outcomeTable) Header() []string { return []string{"DOC_ID", "STATUS"} }
func (outcomeTable) Rows() [][]string {
	return [][]string{{"doc-1", "accepted"}, {"doc-2", "rejected, 400"}}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  OutputFormat
		want    string
		wantErr bool
	}{
		{format: "", want: "*cli.TextFormatter"},
		{format: FormatText, want: "*cli.TextFormatter"},
		{format: FormatJSON, want: "*cli.JSONFormatter"},
		{format: FormatCSV, want: "*cli.CSVFormatter"},
		{format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format)
			if tt.wantErr {
				if ExitCode(err) != ExitUsage {
					t.Errorf("expected usage error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFormatter() error = %v", err)
			}
			if got := fmt.Sprintf("%T", f); got != tt.want {
				t.Errorf("type = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).FormatTo(&buf, outcomeTable{}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "DOC_ID  STATUS") {
		t.Errorf("header = %q", lines[0])
	}

	buf.Reset()
	_ = (&TextFormatter{}).FormatTo(&buf, "plain")
	if buf.String() != "plain\n" {
		t.Errorf("plain value = %q", buf.String())
	}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSVFormatter{}).FormatTo(&buf, outcomeTable{}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	want := "DOC_ID,STATUS\ndoc-1,accepted\ndoc-2,\"rejected, 400\"\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}

	if err := (&CSVFormatter{}).FormatTo(&buf, 42); err == nil {
		t.Error("expected error for non-table value")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).FormatTo(&buf, map[string]int{"failed": 1}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "{\"failed\":1}\n" {
		t.Errorf("json = %q", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "config", err: NewConfigError("registry.endpoint", "is required"), want: ExitUsage},
		{name: "wrapped config", err: NewCommandError("submit", NewConfigError("", "bad")), want: ExitUsage},
		{name: "partial failure", err: &PartialFailureError{Failed: 1, Total: 3}, want: ExitFailure},
		{name: "other", err: errors.New("boom"), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got := (&PartialFailureError{Failed: 2, Total: 5}).Error(); got != "2 of 5 documents failed" {
		t.Errorf("PartialFailureError = %q", got)
	}
	inner := errors.New("dial tcp: refused")
	cmdErr := NewCommandError("submit", inner)
	if !errors.Is(cmdErr, inner) {
		t.Error("CommandError should unwrap")
	}
	if got := NewConfigError("", "missing file").Error(); got != "config error: missing file" {
		t.Errorf("ConfigError = %q", got)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf)
	p.Start(4)

	var wg sync.WaitGroup
	for range 6 {
		wg.Go(p.Increment)
	}
	wg.Wait()
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "(4/4)") || !strings.Contains(out, "100.0%") {
		t.Errorf("progress output = %q", out)
	}
	if strings.Contains(out, "(5/4)") {
		t.Error("progress should never exceed total")
	}
}

func TestSignalContext(t *testing.T) {
	ctx, stop := SignalContext(context.Background())
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context canceled too early")
	default:
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Skipf("cannot signal self: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled by SIGTERM")
	}
}
