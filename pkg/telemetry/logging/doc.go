// Package logging configures structured logging on top of log/slog.
//
// # Overview
//
// The logging package builds a *slog.Logger with:
//   - JSON or text output
//   - Configurable log levels (debug, info, warn, error)
//   - Context fields (request_id, doc_id) added to every *Context call
//   - Redaction of document signatures and other secrets
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:           "info",
//	    Format:          "json",
//	    RedactSignature: true,
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "7f1c...")
//	logger.InfoContext(ctx, "document submitted", "status", 200)
//	// {"level":"INFO","msg":"document submitted","status":200,"request_id":"7f1c..."}
//
// # Redaction
//
// Attributes whose key looks sensitive (signature, token, secret, ...) keep
// only a four character prefix:
//
//	logger.Info("loaded envelope", "signature", "MIIGbwYJKoZIhvcNAQcC...")
//	// "signature":"MIIG***"
package logging
