//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpSessionOpen,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpSessionOpen,
			err:      errors.New("item not found"),
			expected: "Failed to open session: item not found",
		},
		{
			name:     "playback operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
		{
			name:     "document operation",
			op:       OpDocumentLoad,
			err:      errors.New("not a valid epub"),
			expected: "Failed to load document: not a valid epub",
		},
		{
			name:     "progress operation",
			op:       OpProgressSave,
			err:      errors.New("database locked"),
			expected: "Failed to save progress: database locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpBookmarkAdd,
			context:  "Chapter 3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpBookmarkAdd,
			context:  "Chapter 3",
			err:      errors.New("database locked"),
			expected: "Failed to add bookmark 'Chapter 3': database locked",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpBookmarkAdd,
			context:  "",
			err:      errors.New("database locked"),
			expected: "Failed to add bookmark: database locked",
		},
		{
			name:     "navigation with locator context",
			op:       OpNavigate,
			context:  "epubcfi(/6/10!/4/2)",
			err:      errors.New("render frame detached"),
			expected: "Failed to navigate 'epubcfi(/6/10!/4/2)': render frame detached",
		},
		{
			name:     "remote report with item context",
			op:       OpRemoteReport,
			context:  "The Long Way Down",
			err:      errors.New("connection refused"),
			expected: "Failed to report progress to server 'The Long Way Down': connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpSessionOpen, OpSessionClose,
		OpPlaybackStart, OpPlaybackSeek,
		OpDocumentLoad, OpNavigate, OpIndexBuild, OpStyleApply,
		OpProgressLoad, OpProgressSave, OpRemoteReport,
		OpBookmarkAdd, OpBookmarkLoad,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			if result == "" {
				t.Error("Format should return non-empty string for non-nil error")
			}

			// Verify the format includes the operation
			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
