// Package guard serializes command execution between the console and the
// network.
//
// A Guard holds two atomic flags. Busy is set for the duration of one
// Session; editing is set while the console has a partial multi-line
// command pending in the interpreter buffer. Acquisition never blocks: a
// caller that finds the guard busy drops its input. The network source
// additionally fails while the console is editing so that remote text is
// never spliced into a half-typed console command.
//
// A Watchdog bounds how long busy or editing can persist. On expiry it
// halts the running evaluation, flushes the pending buffer and clears the
// editing flag. Busy is still released by the owning session so executions
// never overlap.
package guard
