// Package domain holds the types every posgate layer shares: principals
// and their lockout state, groups, permissions, audit records, and the
// error taxonomy the HTTP layer maps onto status codes.
package domain

import "fmt"

// The four taxonomy errors are the service-to-transport contract:
// handlers translate NotFound to 404, Validation to 400, AccessDenied
// to 403 and Conflict to 409. Anything else surfaces as a 500.

// NotFoundError reports a resource that does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError reports a caller without the required permission.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError reports input the operation refuses to act on.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a collision with existing state, usually a
// duplicate name.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthFailureReason classifies why an authentication attempt failed.
type AuthFailureReason string

const (
	// AuthUnknownUser means no account exists for the presented username.
	AuthUnknownUser AuthFailureReason = "unknown_user"
	// AuthNotLoginable means the account exists but is inactive or locked.
	AuthNotLoginable AuthFailureReason = "not_loginable"
	// AuthBadCredentials means the account can log in but the credential did not match.
	AuthBadCredentials AuthFailureReason = "bad_credentials"
)

// AuthFailedError indicates a failed authentication attempt. Reason lets
// callers tell unknown users, blocked accounts, and bad credentials apart
// without parsing the message.
type AuthFailedError struct {
	Reason  AuthFailureReason
	Message string
}

func (e *AuthFailedError) Error() string { return e.Message }

// ErrNotFound builds a NotFoundError from a format string.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied builds an AccessDeniedError from a format string.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation builds a ValidationError from a format string.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict builds a ConflictError from a format string.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrAuthFailed builds an AuthFailedError carrying the given reason.
func ErrAuthFailed(reason AuthFailureReason, format string, args ...interface{}) *AuthFailedError {
	return &AuthFailedError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
