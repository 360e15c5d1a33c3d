// Package apperrors defines the failure conditions the ledger and account services
// report to their callers. Each condition is its own type so the HTTP layer can map
// it to a status code without inspecting messages.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError reports bad, missing or contradictory input. Details lists every
// violated rule, not just the first one.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, "; "))
}

// NewValidationError creates a ValidationError with the given details.
func NewValidationError(message string, details ...string) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

// NotFoundError reports that a referenced entry or user does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource string, id any) *NotFoundError {
	e := &NotFoundError{Resource: resource}
	if id != nil {
		e.ID = fmt.Sprint(id)
	}
	return e
}

// ForbiddenError reports that a resource exists but belongs to another owner.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// ResolverError reports that a dependency lookup, such as the owner's hourly rate,
// could not be completed.
type ResolverError struct {
	Message string
	Cause   error
}

func (e *ResolverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ResolverError) Unwrap() error {
	return e.Cause
}

// NewResolverError creates a ResolverError.
func NewResolverError(message string, cause error) *ResolverError {
	return &ResolverError{
		Message: message,
		Cause:   cause,
	}
}

// ConflictError reports a write that collides with existing state: a duplicate
// e-mail or a stale entry version.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// UnauthorizedError reports missing or invalid credentials.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// NewUnauthorizedError creates an UnauthorizedError.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsForbidden checks if an error is a ForbiddenError.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

// IsResolver checks if an error is a ResolverError.
func IsResolver(err error) bool {
	var re *ResolverError
	return errors.As(err, &re)
}

// IsConflict checks if an error is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsUnauthorized checks if an error is an UnauthorizedError.
func IsUnauthorized(err error) bool {
	var ue *UnauthorizedError
	return errors.As(err, &ue)
}

// TooManyRequestsError reports that a caller exceeded an attempt limit.
type TooManyRequestsError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *TooManyRequestsError) Error() string {
	return e.Message
}

// NewTooManyRequestsError creates a TooManyRequestsError.
func NewTooManyRequestsError(message string, retryAfter time.Duration) *TooManyRequestsError {
	return &TooManyRequestsError{Message: message, RetryAfter: retryAfter}
}

// AsTooManyRequests extracts a TooManyRequestsError from an error chain.
func AsTooManyRequests(err error) (*TooManyRequestsError, bool) {
	var te *TooManyRequestsError
	ok := errors.As(err, &te)
	return te, ok
}
