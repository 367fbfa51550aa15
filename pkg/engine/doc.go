// Package engine implements the rule interpreter the bridge feeds commands to.
//
// The interpreter is deliberately small. It accumulates console or network
// text in a command buffer, decides when the buffer holds a complete
// top-level expression, evaluates S-expression function calls against a
// function table and sends everything it prints through prioritized output
// routers addressed by logical name ("stdout", "stderr", "stdwrn").
//
// A minimal object store holds named instances with symbolic slots. Hooks
// registered with OnDelete run after an instance of a class is removed,
// which is how hardware state is released when a PIN instance goes away.
//
// An Environment is not safe for concurrent evaluation. Callers serialize
// AppendCommand/ExecuteIfComplete (see package guard); Halt and
// FlushCommand may be called from any goroutine.
package engine
