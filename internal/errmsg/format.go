// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Session operations
	OpSessionOpen  Op = "open session"
	OpSessionClose Op = "close session"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"

	// Reader operations
	OpDocumentLoad Op = "load document"
	OpNavigate     Op = "navigate"
	OpIndexBuild   Op = "build location index"
	OpStyleApply   Op = "apply reader style"

	// Progress operations
	OpProgressLoad Op = "load saved progress"
	OpProgressSave Op = "save progress"
	OpRemoteReport Op = "report progress to server"
	OpBookmarkAdd  Op = "add bookmark"
	OpBookmarkLoad Op = "load bookmarks"

	// Initialization
	OpInitialize Op = "initialize application"
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
