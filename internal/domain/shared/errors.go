package shared

import "fmt"

// ErrorKind classifies a DomainError into one of the stable categories exposed to callers
type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION"
	KindInvalidState ErrorKind = "INVALID_STATE"
	KindConflict     ErrorKind = "CONFLICT"
	KindNotFound     ErrorKind = "NOT_FOUND"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches another DomainError of the same kind. A target without a code matches
// every error of its kind, so errors.Is(err, shared.ErrValidation) works for any
// validation failure.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION error
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewInvalidStateError creates an INVALID_STATE error
func NewInvalidStateError(code, message string) *DomainError {
	return NewDomainError(KindInvalidState, code, message)
}

// NewConflictError creates a CONFLICT error
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewNotFoundError creates a NOT_FOUND error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(KindNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource))
}

// Kind sentinels, match any error of that kind via errors.Is
var (
	ErrValidation   = &DomainError{Kind: KindValidation, Message: "validation failed"}
	ErrInvalidState = &DomainError{Kind: KindInvalidState, Message: "operation not allowed in current state"}
	ErrConflict     = &DomainError{Kind: KindConflict, Message: "operation conflicts with current data"}
	ErrNotFound     = &DomainError{Kind: KindNotFound, Message: "resource not found"}
)

// Common domain errors
var (
	ErrTenantRequired      = NewValidationError("TENANT_REQUIRED", "Tenant ID is required")
	ErrConcurrencyConflict = NewConflictError("CONCURRENCY_CONFLICT", "The record has been modified by another transaction")
)
