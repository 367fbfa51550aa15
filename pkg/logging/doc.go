// Package logging builds the operational slog.Logger of a node.
//
// Output goes to a text handler on the console writer. When the process runs
// as a systemd service, records are also sent to the journal. Both handlers
// are combined with slog-multi.
package logging
