// Package pin implements the pin abstraction layer of a rulebridge node.
//
// Symbolic pin names used by the interpreter ("D5", "LED_RED", "GPIO17") are
// mapped to hardware lines through a static board Table. The Registry owns one
// Record per configured pin and is the only component that talks to the
// hardware Driver. The Mediator sits between interpreter builtins and the
// Registry: it enforces the mode contract before any physical access and keeps
// the interpreter's mirrored PIN instances in step with the records.
//
// # Pin Lifecycle
//
//	Unset --Configure--> Input family | Output family
//	configured --Configure--> any configured mode (hardware mode re-applied)
//	any --Teardown--> absent (line reset to a floating input)
//
// A Record exists if and only if a mode has been assigned. Reads and writes
// against a pin without a Record fail with ErrNotRegistered; reads against an
// output-family pin and writes against an input-family pin fail with
// ErrModeMismatch. Failed operations never modify the Record.
//
// # Mode Families
//
// Input family: Input, InputPullUp, InputPullDown, OpenDrain.
// Output family: Output, OutputOpenDrain.
package pin
