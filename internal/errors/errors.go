// Package errors defines the stable error codes for flowmap's tool surface.
//
// The remapping core never uses these for its recoverable taxonomy: missing
// files and revisions fold into unmapped resolutions, unparseable content
// degrades silently. FlowError covers everything outside that range: git,
// database, configuration, and command failures.
package errors

import "fmt"

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// GitUnavailable indicates the git binary failed or is not installed
	GitUnavailable ErrorCode = "GIT_UNAVAILABLE"
	// NotARepository indicates the working directory is not inside a git repository
	NotARepository ErrorCode = "NOT_A_REPOSITORY"
	// DBError indicates a flow database read or write failed
	DBError ErrorCode = "DB_ERROR"
	// ConfigInvalid indicates the configuration could not be loaded or parsed
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// FlowNotFound indicates the named flow has no stored record
	FlowNotFound ErrorCode = "FLOW_NOT_FOUND"
	// EdgeNotFound indicates the named edge is not part of the stored flow
	EdgeNotFound ErrorCode = "EDGE_NOT_FOUND"
	// ScanFailed indicates comment discovery aborted
	ScanFailed ErrorCode = "SCAN_FAILED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FlowError carries a stable code, a human message, and the underlying cause.
type FlowError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a FlowError.
func New(code ErrorCode, message string, cause error) *FlowError {
	return &FlowError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *FlowError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *FlowError) Unwrap() error {
	return e.cause
}

// WithDetails attaches structured details for JSON output.
func (e *FlowError) WithDetails(details interface{}) *FlowError {
	e.Details = details
	return e
}

// CodeOf returns the FlowError code of err, or InternalError when err is not
// a FlowError.
func CodeOf(err error) ErrorCode {
	if fe, ok := err.(*FlowError); ok {
		return fe.Code
	}
	return InternalError
}
