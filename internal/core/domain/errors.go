package domain

import (
	"errors"
	"fmt"
)

// DomainError is an error carrying a stable, client-visible code of the form
// HG-<AREA>-<NNNN>. The last four digits start with the HTTP status class.
type DomainError struct {
	Code    string // e.g. "HG-KV-4040"
	Message string
	Details string
	Cause   error
}

// NewDomainError creates a DomainError.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy of e with details attached.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// Wrap returns a copy of e caused by cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// IsDomainError reports whether err is a DomainError. A non-empty code
// additionally requires that code.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	return code == "" || de.Code == code
}

// GetErrorCode returns the code of err, or "" if err is not a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Key/value errors (KV).
var (
	// ErrKeyNotFound indicates the key is not stored.
	ErrKeyNotFound = NewDomainError("HG-KV-4040", "key not found")
)

// Argument errors (ARG).
var (
	// ErrKeyRequired indicates an empty or missing key.
	ErrKeyRequired = NewDomainError("HG-ARG-4001", "key is required")

	// ErrKeyTooLong indicates the key exceeds Limits.MaxKeyBytes.
	ErrKeyTooLong = NewDomainError("HG-ARG-4002", "key too long")

	// ErrValueTooLarge indicates the value exceeds Limits.MaxValueBytes.
	ErrValueTooLarge = NewDomainError("HG-ARG-4003", "value too large")

	// ErrValueRequired indicates a set request without a value.
	ErrValueRequired = NewDomainError("HG-ARG-4004", "value is required")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("HG-ARG-4000", "bad request")
)

// System errors (SYS).
var (
	// ErrInternal indicates an unexpected failure.
	ErrInternal = NewDomainError("HG-SYS-5000", "internal server error")

	// ErrEntropyUnavailable indicates the store could not draw a fresh hash
	// seed and refused to continue with a weaker one.
	ErrEntropyUnavailable = NewDomainError("HG-SYS-5001", "entropy source unavailable")

	// ErrRateLimited indicates too many requests from one client.
	ErrRateLimited = NewDomainError("HG-SYS-4290", "too many requests")

	// ErrForbidden indicates the client address is not allowed.
	ErrForbidden = NewDomainError("HG-SYS-4031", "client not allowed")
)
