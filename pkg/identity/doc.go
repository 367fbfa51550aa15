// Package identity derives a stable node identity.
//
// The identity is "node-" followed by twelve hex digits taken from a keyed
// BLAKE2b hash of the host's machine id. The raw machine id is never
// published. Hosts without a machine id fall back to the first hardware
// address of a non-loopback interface.
package identity
