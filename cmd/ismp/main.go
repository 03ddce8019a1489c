// ismp submits signed goods introduction documents to the ISMP registry
// (ismp.crpt.ru) without exceeding the client-side request rate limit.
//
// Usage:
//
//	# Submit envelopes ({"document": ..., "signature": ...}) from files
//	ismp submit doc-1.json doc-2.json --workers 4
//
//	# Check envelopes without sending anything
//	ismp validate doc-*.json
//
//	# Process a spool directory continuously
//	ismp spool --watch --schedule
//
//	# Print the effective configuration
//	ismp config
//
//	# Show version information
//	ismp version
package main

import "os"

func main() {
	os.Exit(Execute())
}
