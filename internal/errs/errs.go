// Package errs defines the error taxonomy shared by every component of the
// settlement core: authorization, not-found, conflict, and validation errors.
// Errors propagate unchanged to the caller; the API layer translates them to
// HTTP status codes.
package errs

import "fmt"

// AuthorizationError means the requester is not allowed to perform the
// operation: acting on someone else's transaction, reading a bill they are
// not part of, or adding a non-friend as a bill member.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string {
	return e.Msg
}

// Unauthorized builds an AuthorizationError.
func Unauthorized(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError means a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NotFound builds a NotFoundError for the given resource and id.
func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError means the operation would violate a uniqueness rule, such as
// associating a transaction that already has a counterparty or applying the
// same transaction to a bill twice. ExistingID names the conflicting entity
// when known.
type ConflictError struct {
	Msg        string
	ExistingID string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

// Conflict builds a ConflictError referencing an existing entity.
func Conflict(existingID, format string, args ...any) *ConflictError {
	return &ConflictError{Msg: fmt.Sprintf(format, args...), ExistingID: existingID}
}

// ValidationError means the request itself is malformed: empty selections,
// non-positive amounts, out-of-range confidence.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
