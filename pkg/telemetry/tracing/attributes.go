package tracing

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanSubmit  = "ismp.submit"
	SpanAcquire = "ismp.limiter.acquire"
	SpanSend    = "ismp.registry.send"
	SpanSpool   = "ismp.spool.process"
)

// Attribute keys. Custom keys use the "ismp.*" namespace; HTTP keys follow
// OpenTelemetry semantic conventions.
const (
	AttrDocID        = "ismp.doc.id"
	AttrDocType      = "ismp.doc.type"
	AttrProductCount = "ismp.doc.products"
	AttrRequestID    = "ismp.request_id"
	AttrPayloadBytes = "ismp.payload.bytes"
	AttrWaitMs       = "ismp.limiter.wait_ms"
	AttrErrorType    = "ismp.error.type"
	AttrStatusCode   = "http.response.status_code"
	AttrHTTPMethod   = "http.request.method"
	AttrURL          = "url.full"
	AttrSpoolFiles   = "ismp.spool.files"
)

// SetDocumentAttributes records which document a span is about.
func SetDocumentAttributes(span trace.Span, docID, docType string, products int) {
	span.SetAttributes(
		attribute.String(AttrDocID, docID),
		attribute.String(AttrDocType, docType),
		attribute.Int(AttrProductCount, products),
	)
}

// SetRequestAttributes records the outgoing request identity and size.
func SetRequestAttributes(span trace.Span, requestID string, payloadBytes int) {
	span.SetAttributes(
		attribute.String(AttrRequestID, requestID),
		attribute.Int(AttrPayloadBytes, payloadBytes),
	)
}

// SetWaitAttribute records how long the limiter blocked.
func SetWaitAttribute(span trace.Span, wait time.Duration) {
	span.SetAttributes(attribute.Int64(AttrWaitMs, wait.Milliseconds()))
}

// SetErrorAttributes marks the span as failed with a classified error.
//
//	SetErrorAttributes(span, err, "timeout")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
	)
	span.RecordError(err)
	SetStatus(span, err)
}

// ErrorType returns a short classification for err using the optional
// interface{ ErrorType() string }, falling back to "error".
func ErrorType(err error) string {
	var typed interface{ ErrorType() string }
	if errors.As(err, &typed) {
		return typed.ErrorType()
	}
	return "error"
}
