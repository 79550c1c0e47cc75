package domain

import (
	"errors"
	"fmt"
)

// DomainError is an error with a stable code. Two DomainErrors match under
// errors.Is when their codes are equal, so sentinels can be decorated with
// details or causes and still be recognised.
type DomainError struct {
	Code    string // e.g. "SK-REC-4000"
	Message string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

var (
	// ErrNotFound indicates the save or restore source does not exist.
	// Callers doing a best-effort startup restore usually suppress it.
	ErrNotFound = NewDomainError("SK-FILE-4040", "save file not found")

	// ErrDecode indicates a malformed record. It aborts the whole restore.
	ErrDecode = NewDomainError("SK-REC-4000", "malformed record")

	// ErrIO indicates a write, rename, copy or delete failure.
	ErrIO = NewDomainError("SK-IO-5000", "i/o failure")

	// ErrInvalidLayout indicates a backup name layout that does not sort
	// in time order.
	ErrInvalidLayout = NewDomainError("SK-BAK-4001", "backup layout is not time-monotonic")

	// ErrInvalidSpec indicates an autosave spec that cannot be parsed.
	ErrInvalidSpec = NewDomainError("SK-AUTO-4001", "invalid autosave spec")
)

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDecode reports whether err is (or wraps) ErrDecode.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IOError wraps an I/O failure during op on path.
func IOError(op, path string, cause error) *DomainError {
	return ErrIO.WithDetailsf("%s %s", op, path).WithCause(cause)
}
