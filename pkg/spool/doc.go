// Package spool submits signed document envelopes dropped into an inbox
// directory.
//
// Each *.json file in the inbox holds one documents.Envelope. A run submits
// every envelope through a shared submitter.Submitter and then moves each
// file according to its outcome:
//
//	inbox/
//	  done/     accepted by the registry
//	  failed/   rejected or unreadable, with a <name>.err file holding the error
//
// Files whose submission was cut short by cancellation stay in the inbox and
// are picked up by the next run.
//
// Runs are triggered explicitly with ProcessOnce, by filesystem events with
// Watch, or on a cron schedule with Schedule. A Processor never runs two
// batches at once; a trigger that arrives during a run is skipped.
package spool
