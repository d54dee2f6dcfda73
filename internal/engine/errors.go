package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes workflow failures. The set is closed; every
// user-facing failure of the engine carries exactly one of these.
type ErrorCode string

const (
	// ErrCodeMalformedSource indicates a structurally unusable import table.
	ErrCodeMalformedSource ErrorCode = "MALFORMED_SOURCE"

	// ErrCodeCorruptPackage indicates a package payload that failed to decode.
	ErrCodeCorruptPackage ErrorCode = "CORRUPT_PACKAGE"

	// ErrCodeWorkflowViolation indicates a load or transition the current
	// document status does not permit.
	ErrCodeWorkflowViolation ErrorCode = "WORKFLOW_VIOLATION"

	// ErrCodePermissionDenied indicates a mutation outside the acting
	// role's permission under the current status.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrCodeMissingActor indicates an attributed action with no
	// identified user.
	ErrCodeMissingActor ErrorCode = "MISSING_ACTOR"

	// ErrCodeSizeLimitExceeded indicates a payload over a configured
	// ceiling.
	ErrCodeSizeLimitExceeded ErrorCode = "SIZE_LIMIT_EXCEEDED"
)

// WorkflowError is the engine's structured error. FindingID is set when
// the failure concerns one finding.
type WorkflowError struct {
	Code      ErrorCode
	Message   string
	FindingID string
	Err       error
}

// Error implements the error interface.
func (e *WorkflowError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.FindingID != "" {
		msg += fmt.Sprintf(" (finding=%s)", e.FindingID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WorkflowError) Unwrap() error { return e.Err }

func newError(code ErrorCode, format string, args ...any) *WorkflowError {
	return &WorkflowError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func codeIs(err error, code ErrorCode) bool {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Code == code
	}
	return false
}

// IsMalformedSource reports whether err carries ErrCodeMalformedSource.
func IsMalformedSource(err error) bool { return codeIs(err, ErrCodeMalformedSource) }

// IsCorruptPackage reports whether err carries ErrCodeCorruptPackage.
func IsCorruptPackage(err error) bool { return codeIs(err, ErrCodeCorruptPackage) }

// IsWorkflowViolation reports whether err carries ErrCodeWorkflowViolation.
func IsWorkflowViolation(err error) bool { return codeIs(err, ErrCodeWorkflowViolation) }

// IsPermissionDenied reports whether err carries ErrCodePermissionDenied.
func IsPermissionDenied(err error) bool { return codeIs(err, ErrCodePermissionDenied) }

// IsMissingActor reports whether err carries ErrCodeMissingActor.
func IsMissingActor(err error) bool { return codeIs(err, ErrCodeMissingActor) }

// IsSizeLimitExceeded reports whether err carries ErrCodeSizeLimitExceeded.
func IsSizeLimitExceeded(err error) bool { return codeIs(err, ErrCodeSizeLimitExceeded) }

// ErrImmutableField marks an attempt to change a finding's write-once
// identity. This is a programming-contract failure, not a user-facing
// workflow error; callers get it wrapped with the field name.
var ErrImmutableField = errors.New("finding identity field is write-once")

// ErrUnknownField marks a field path outside the editable registry.
var ErrUnknownField = errors.New("unknown finding field")
