package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(FlowNotFound, "flow \"checkout\" has no stored record", nil)
	msg := err.Error()
	if !strings.Contains(msg, "FLOW_NOT_FOUND") {
		t.Errorf("Expected the code in the message, got %q", msg)
	}
	if !strings.Contains(msg, "checkout") {
		t.Errorf("Expected the message content, got %q", msg)
	}
}

func TestErrorWrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New(DBError, "failed to store flow", cause)

	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Expected the cause in the message, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("Expected errors.Is to see through the wrapper")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(GitUnavailable, "git missing", nil)); got != GitUnavailable {
		t.Errorf("Expected GIT_UNAVAILABLE, got %s", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != InternalError {
		t.Errorf("Expected INTERNAL_ERROR for foreign errors, got %s", got)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ConfigInvalid, "bad config", nil).WithDetails(map[string]string{"path": "x"})
	if err.Details == nil {
		t.Error("Expected details attached")
	}
}
