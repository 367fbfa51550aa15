// Package router turns inbound network payloads into guarded interpreter
// executions and publishes the captured output as replies.
//
// Each payload goes through a fixed pipeline:
//
//  1. decode (malformed payloads are logged and dropped)
//  2. validate (src, dst, msg and msg_id must be set)
//  3. self filter (own broadcasts come back on the shared topic)
//  4. address filter (own id or the broadcast token)
//  5. reply correlation (answers to requests this node sent)
//  6. de-duplication per sender and msg_id
//  7. guard acquisition (dropped when busy, never queued)
//  8. reply sink installation when a reply is wanted
//  9. feed and execute
//  10. reply flush, one message per captured output chunk
//  11. teardown of the sink and the guard session on every path
//
// Steps 1 to 6 have no side effects on the interpreter.
package router
