// Package domain defines core types, interfaces, and errors for the gateway.
package domain

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// UnauthorizedError indicates the user holds no grant for the project.
// Terminal: the caller must request access; never fall back to a default role.
type UnauthorizedError struct {
	Email   string
	Project string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("user %q has no role in project %q", e.Email, e.Project)
}

// NoTablesSelectedError indicates the caller selected zero tables for the
// question. User-correctable.
type NoTablesSelectedError struct{}

func (e *NoTablesSelectedError) Error() string {
	return "no tables selected: pick at least one table before asking"
}

// UnsafeStatementError indicates the safety gate rejected the generated
// statement. The statement is discarded and never executed or retried.
type UnsafeStatementError struct {
	Reason string
}

func (e *UnsafeStatementError) Error() string {
	return "unsafe statement blocked: " + e.Reason
}

// NotSelectedError indicates the generated statement referenced tables
// outside the caller's current selection. User-correctable.
type NotSelectedError struct {
	Tables []string
}

func (e *NotSelectedError) Error() string {
	return "statement references tables outside your selection: " + strings.Join(e.Tables, ", ")
}

// NotPermittedError indicates the statement referenced tables the caller's
// role holds no permission record for at all. Terminal for this request.
type NotPermittedError struct {
	Tables []string
}

func (e *NotPermittedError) Error() string {
	return "you do not have permission to access: " + strings.Join(e.Tables, ", ")
}

// SelfIntentError indicates an ambiguous or other-referential question was
// asked against tables the caller may only read their own rows from.
type SelfIntentError struct {
	Tables []string
}

func (e *SelfIntentError) Error() string {
	return "question must be about your own data; restricted tables: " + strings.Join(e.Tables, ", ")
}

// GenerationError indicates the external SQL generation call failed.
// Surfaced as a generic retryable error; detail is logged, never leaked.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "query generation failed, please retry" }
func (e *GenerationError) Unwrap() error { return e.Err }

// ExecutionError indicates the external execution call failed.
// Surfaced as a generic retryable error; detail is logged, never leaked.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return "query execution failed, please retry" }
func (e *ExecutionError) Unwrap() error { return e.Err }
