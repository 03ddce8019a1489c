// Package submitter sends signed documents to the ISMP registry.
//
// # Overview
//
// A Submitter combines a rate limiter and a Transport:
//
//	limiter, _ := ratelimit.New(ratelimit.Config{Limit: 5, Window: time.Second})
//	transport, _ := submitter.NewHTTPTransport(submitter.HTTPConfig{
//	    Endpoint: "https://ismp.crpt.ru/api/v3/lk/documents/create",
//	    Timeout:  30 * time.Second,
//	}, logger)
//	sub, _ := submitter.New(limiter, transport, submitter.Options{Logger: logger})
//
//	result, err := sub.Submit(ctx, doc, signature)
//
// Submit validates the document, blocks until the limiter admits it, encodes
// it as JSON and performs exactly one POST. Failed POSTs are not retried.
//
// # Batches
//
// SubmitAll fans a slice of envelopes out to a bounded number of goroutines.
// All of them go through the same limiter, so adding workers raises
// concurrency of the network calls, not the request rate.
//
// # Errors
//
//   - *documents.ValidationError: the document was rejected locally
//   - ratelimit.ErrWaitCanceled: the context ended while waiting
//   - *APIError: the registry answered with a non-2xx status
//   - *TimeoutError: the HTTP client timed out
//   - *TransportError: any other network failure
package submitter
