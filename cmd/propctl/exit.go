package main

import "github.com/dogmatiq/propertykit/fault"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitCode returns the process exit code for the error returned by a command.
func exitCode(err error) int {
	switch fault.KindOf(err) {
	case fault.KindNone:
		return exitSuccess
	case fault.KindInvalidArgument, fault.KindNotFound, fault.KindTooSmall:
		return exitUserError
	default:
		return exitSysError
	}
}
