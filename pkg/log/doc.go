// Package log records a structured trace of bridge activity.
//
// The trace is separate from operational logging (slog): it is a complete,
// machine-readable account of what each node received, dropped, executed
// and published, suitable for replaying a field incident.
//
// # Basic Usage
//
//	// Development: trace to the console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// Production: append to a CBOR trace file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/rulebridge/node.rblog")
//
//	// Both
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Every Event carries the node id, direction and category plus one
// payload: MessageEvent (a network message seen or sent), DropEvent (why
// an inbound message was discarded), ExecutionEvent (a guarded command
// run), GuardEvent (watchdog transitions), PinEvent (hardware line
// changes) or ErrorEventData.
//
// # File Format
//
// Trace files are a stream of CBOR-encoded events with integer keys. The
// "rulebridge trace" command reads and filters them.
package log
