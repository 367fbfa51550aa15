package router

import "errors"

// Routing errors reported in Outcome.Err.
var (
	ErrSelfMessage       = errors.New("message from self")
	ErrNotAddressedToMe  = errors.New("message not addressed to this node")
	ErrDuplicate         = errors.New("duplicate message")
	ErrBusy              = errors.New("guard busy")
	ErrIncompleteCommand = errors.New("incomplete command")
)
