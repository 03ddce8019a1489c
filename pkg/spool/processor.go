package spool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"crpt-hq/ismp/pkg/documents"
	"crpt-hq/ismp/pkg/limits/ratelimit"
	"crpt-hq/ismp/pkg/submitter"
	"crpt-hq/ismp/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Subdirectories of the inbox.
const (
	DoneDir   = "done"
	FailedDir = "failed"
)

// File results reported to the Recorder.
const (
	ResultDone     = "done"
	ResultFailed   = "failed"
	ResultDeferred = "deferred"
)

// ErrRunInProgress is returned by ProcessOnce when another run holds the
// processor.
var ErrRunInProgress = errors.New("spool run already in progress")

// BatchSubmitter submits envelopes and reports one outcome per envelope in
// input order. *submitter.Submitter implements it.
type BatchSubmitter interface {
	SubmitAll(ctx context.Context, envelopes []documents.Envelope, workers int) []submitter.Outcome
}

// Recorder receives spool metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordSpoolFile(result string)
	RecordSpoolRun(duration time.Duration)
}

// Config contains configuration for a Processor.
type Config struct {
	// Inbox is the directory envelopes are read from
	Inbox string

	// Workers is the number of concurrent submissions per run
	Workers int

	// Debounce is the quiet period Watch waits for after file events
	Debounce time.Duration
}

// Options contains the optional collaborators of a Processor.
type Options struct {
	Logger  *slog.Logger
	Metrics Recorder
	Tracer  trace.Tracer
}

// Report summarizes one run.
type Report struct {
	// Done lists files moved to done/
	Done []string

	// Failed lists files moved to failed/
	Failed []string

	// Deferred lists files left in the inbox because the run was canceled
	Deferred []string

	// Duration is how long the run took
	Duration time.Duration
}

// Total returns the number of files the run looked at.
func (r *Report) Total() int {
	return len(r.Done) + len(r.Failed) + len(r.Deferred)
}

// Processor moves envelopes from an inbox through a BatchSubmitter.
type Processor struct {
	config    Config
	submitter BatchSubmitter
	logger    *slog.Logger
	metrics   Recorder
	tracer    trace.Tracer

	// run serializes ProcessOnce; triggers that find it held are skipped
	run sync.Mutex
}

// New creates a Processor and makes sure the inbox and its subdirectories
// exist.
func New(cfg Config, sub BatchSubmitter, opts Options) (*Processor, error) {
	if cfg.Inbox == "" {
		return nil, fmt.Errorf("spool inbox is required")
	}
	if sub == nil {
		return nil, fmt.Errorf("spool submitter is required")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}

	for _, dir := range []string{cfg.Inbox, filepath.Join(cfg.Inbox, DoneDir), filepath.Join(cfg.Inbox, FailedDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create spool directory %q: %w", dir, err)
		}
	}

	p := &Processor{
		config:    cfg,
		submitter: sub,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "spool", "inbox", cfg.Inbox)
	if p.tracer == nil {
		p.tracer = noop.NewTracerProvider().Tracer(tracing.InstrumentationName)
	}
	return p, nil
}

// ProcessOnce submits every envelope currently in the inbox and moves each
// file by outcome. It returns ErrRunInProgress if another run is active.
//
// Unreadable envelopes go straight to failed/ without being submitted.
func (p *Processor) ProcessOnce(ctx context.Context) (*Report, error) {
	if !p.run.TryLock() {
		return nil, ErrRunInProgress
	}
	defer p.run.Unlock()

	start := time.Now()
	report := &Report{}

	names, err := p.list()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		p.logger.DebugContext(ctx, "spool inbox empty")
		return report, nil
	}

	ctx, span := p.tracer.Start(ctx, tracing.SpanSpool)
	defer span.End()
	span.SetAttributes(attribute.Int(tracing.AttrSpoolFiles, len(names)))

	envelopes := make([]documents.Envelope, 0, len(names))
	loaded := make([]string, 0, len(names))
	for _, name := range names {
		env, err := documents.LoadEnvelope(p.path(name))
		if err != nil {
			p.fail(ctx, report, name, err)
			continue
		}
		envelopes = append(envelopes, *env)
		loaded = append(loaded, name)
	}

	if len(envelopes) > 0 {
		outcomes := p.submitter.SubmitAll(ctx, envelopes, p.config.Workers)
		for i, outcome := range outcomes {
			name := loaded[i]
			switch {
			case outcome.OK():
				p.done(ctx, report, name)
			case deferred(outcome.Err):
				report.Deferred = append(report.Deferred, name)
				p.record(ResultDeferred)
			default:
				p.fail(ctx, report, name, outcome.Err)
			}
		}
	}

	report.Duration = time.Since(start)
	if p.metrics != nil {
		p.metrics.RecordSpoolRun(report.Duration)
	}
	tracing.SetStatus(span, nil)

	p.logger.InfoContext(ctx, "spool run completed",
		"done", len(report.Done),
		"failed", len(report.Failed),
		"deferred", len(report.Deferred),
		"duration", report.Duration,
	)
	return report, nil
}

// list returns the envelope file names in the inbox, sorted by name.
func (p *Processor) list() ([]string, error) {
	entries, err := os.ReadDir(p.config.Inbox)
	if err != nil {
		return nil, fmt.Errorf("failed to read spool inbox: %w", err)
	}

	// os.ReadDir returns entries sorted by filename
	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isEnvelope(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (p *Processor) done(ctx context.Context, report *Report, name string) {
	if err := os.Rename(p.path(name), filepath.Join(p.config.Inbox, DoneDir, name)); err != nil {
		p.logger.ErrorContext(ctx, "failed to move envelope to done", "file", name, "error", err)
		return
	}
	report.Done = append(report.Done, name)
	p.record(ResultDone)
}

func (p *Processor) fail(ctx context.Context, report *Report, name string, cause error) {
	failed := filepath.Join(p.config.Inbox, FailedDir)
	// The .err sibling is written only once the envelope is in failed/, so
	// an envelope left in the inbox never has a stale error file.
	if err := os.Rename(p.path(name), filepath.Join(failed, name)); err != nil {
		p.logger.ErrorContext(ctx, "failed to move envelope to failed", "file", name, "error", err)
		return
	}
	if err := os.WriteFile(filepath.Join(failed, name+".err"), []byte(cause.Error()+"\n"), 0o644); err != nil {
		p.logger.ErrorContext(ctx, "failed to write error file", "file", name, "error", err)
	}
	p.logger.WarnContext(ctx, "envelope failed", "file", name, "error", cause)
	report.Failed = append(report.Failed, name)
	p.record(ResultFailed)
}

func (p *Processor) record(result string) {
	if p.metrics != nil {
		p.metrics.RecordSpoolFile(result)
	}
}

func (p *Processor) path(name string) string {
	return filepath.Join(p.config.Inbox, name)
}

// deferred reports whether err means the envelope was never settled because
// its context ended.
func deferred(err error) bool {
	var apiErr *submitter.APIError
	if errors.As(err, &apiErr) {
		return false
	}
	var timeoutErr *submitter.TimeoutError
	if errors.As(err, &timeoutErr) {
		return false
	}
	return errors.Is(err, ratelimit.ErrWaitCanceled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// isEnvelope reports whether name looks like an envelope file.
func isEnvelope(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), ".json")
}
