// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpConfigLoad      Op = "load configuration"
	OpIdentityResolve Op = "resolve user identity"
	OpBusConnect      Op = "connect to message bus"

	// Sending
	OpSend Op = "send notification"

	// Receiving
	OpListen Op = "listen for notifications"

	// History
	OpHistoryOpen Op = "open delivery history"
	OpHistoryRead Op = "read delivery history"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
