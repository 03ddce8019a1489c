package submitter

import "context"

// Request is a single outgoing document submission.
type Request struct {
	// RequestID is a unique identifier sent as X-Request-ID.
	RequestID string

	// DocID is the document identifier, for logging only.
	DocID string

	// Payload is the serialized document.
	Payload []byte

	// Signature is the document signature. Empty means none is sent.
	Signature string
}

// Response is what the registry answered. The body is not interpreted.
type Response struct {
	// StatusCode is the HTTP status code (always 2xx on success).
	StatusCode int
}

// Transport delivers a request to the registry.
//
// Send performs exactly one delivery attempt. Implementations return an
// *APIError for a non-2xx answer and must honour ctx cancellation.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts an ordinary function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Send calls f(ctx, req).
func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
