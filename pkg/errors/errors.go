// Package errors provides structured error handling for reorg with categorization,
// severity levels, and contextual information for better error management and debugging.
package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// ErrorTypeUnknown represents an unknown error type
	ErrorTypeUnknown ErrorType = iota

	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation

	// ErrorTypePermission represents permission errors
	ErrorTypePermission

	// ErrorTypeProcess represents external process errors
	ErrorTypeProcess

	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration

	// ErrorTypeFileSystem represents file system errors
	ErrorTypeFileSystem

	// ErrorTypeGit represents backing VCS operation errors
	ErrorTypeGit

	// ErrorTypeGitHub represents GitHub API errors
	ErrorTypeGitHub

	// ErrorTypeEditor represents external editor collaborator errors
	ErrorTypeEditor

	// ErrorTypeParse represents patch parsing errors
	ErrorTypeParse

	// ErrorTypePersistence represents plan store persistence errors
	ErrorTypePersistence

	// ErrorTypePlan represents plan construction or invariant errors
	ErrorTypePlan

	// ErrorTypeCancelled represents a user-requested cancellation
	ErrorTypeCancelled

	// ErrorTypeSystem represents system-level errors
	ErrorTypeSystem
)

// String returns a string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypePermission:
		return "permission"
	case ErrorTypeProcess:
		return "process"
	case ErrorTypeConfiguration:
		return "configuration"
	case ErrorTypeFileSystem:
		return "filesystem"
	case ErrorTypeGit:
		return "git"
	case ErrorTypeGitHub:
		return "github"
	case ErrorTypeEditor:
		return "editor"
	case ErrorTypeParse:
		return "parse"
	case ErrorTypePersistence:
		return "persistence"
	case ErrorTypePlan:
		return "plan"
	case ErrorTypeCancelled:
		return "cancelled"
	case ErrorTypeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow represents low severity errors (warnings)
	SeverityLow Severity = iota

	// SeverityMedium represents medium severity errors (recoverable)
	SeverityMedium

	// SeverityHigh represents high severity errors (critical)
	SeverityHigh
)

// String returns a string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// reorgError represents a structured error with additional context
type reorgError struct {
	errorType   ErrorType
	severity    Severity
	message     string
	cause       error
	context     map[string]interface{}
	recoverable bool
	suggestions []string
}

// Error implements the error interface
func (e *reorgError) Error() string {
	var parts []string

	// Add error type and severity
	parts = append(parts, fmt.Sprintf("[%s:%s]", e.errorType.String(), e.severity.String()))

	// Add message
	parts = append(parts, e.message)

	// Add cause if present
	if e.cause != nil {
		parts = append(parts, fmt.Sprintf("caused by: %s", e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

// Type returns the error type
func (e *reorgError) Type() ErrorType {
	return e.errorType
}

// Severity returns the error severity
func (e *reorgError) Severity() Severity {
	return e.severity
}

// Cause returns the underlying cause of the error
func (e *reorgError) Cause() error {
	return e.cause
}

// Context returns the error context
func (e *reorgError) Context() map[string]interface{} {
	return e.context
}

// IsRecoverable returns whether the error is recoverable
func (e *reorgError) IsRecoverable() bool {
	return e.recoverable
}

// Suggestions returns suggested actions to resolve the error
func (e *reorgError) Suggestions() []string {
	return e.suggestions
}

// Unwrap returns the underlying error for compatibility with errors.Unwrap
func (e *reorgError) Unwrap() error {
	return e.cause
}

// ErrorBuilder helps construct structured errors
type ErrorBuilder struct {
	errorType   ErrorType
	severity    Severity
	message     string
	cause       error
	context     map[string]interface{}
	recoverable bool
	suggestions []string
}

// NewError creates a new error builder
func NewError(errorType ErrorType) *ErrorBuilder {
	return &ErrorBuilder{
		errorType:   errorType,
		severity:    SeverityMedium,
		context:     make(map[string]interface{}),
		recoverable: false,
		suggestions: []string{},
	}
}

// WithMessage sets the error message
func (eb *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	eb.message = message
	return eb
}

// WithMessagef sets the error message with formatting
func (eb *ErrorBuilder) WithMessagef(format string, args ...interface{}) *ErrorBuilder {
	eb.message = fmt.Sprintf(format, args...)
	return eb
}

// WithCause sets the underlying cause of the error
func (eb *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	eb.cause = cause
	return eb
}

// WithSeverity sets the error severity
func (eb *ErrorBuilder) WithSeverity(severity Severity) *ErrorBuilder {
	eb.severity = severity
	return eb
}

// WithContext adds context information
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRecoverable marks the error as recoverable
func (eb *ErrorBuilder) WithRecoverable(recoverable bool) *ErrorBuilder {
	eb.recoverable = recoverable
	return eb
}

// WithSuggestion adds a suggested action
func (eb *ErrorBuilder) WithSuggestion(suggestion string) *ErrorBuilder {
	eb.suggestions = append(eb.suggestions, suggestion)
	return eb
}

// WithSuggestions adds multiple suggested actions
func (eb *ErrorBuilder) WithSuggestions(suggestions ...string) *ErrorBuilder {
	eb.suggestions = append(eb.suggestions, suggestions...)
	return eb
}

// Build creates the final error
func (eb *ErrorBuilder) Build() error {
	return &reorgError{
		errorType:   eb.errorType,
		severity:    eb.severity,
		message:     eb.message,
		cause:       eb.cause,
		context:     eb.context,
		recoverable: eb.recoverable,
		suggestions: eb.suggestions,
	}
}

// Convenience functions for common error types

// ValidationError creates a validation error
func ValidationError(message string) error {
	return NewError(ErrorTypeValidation).
		WithMessage(message).
		WithSeverity(SeverityLow).
		WithRecoverable(true).
		Build()
}

// ProcessError creates a process execution error
func ProcessError(command string, exitCode int, cause error) error {
	return NewError(ErrorTypeProcess).
		WithMessagef("process '%s' failed with exit code %d", command, exitCode).
		WithCause(cause).
		WithSeverity(SeverityMedium).
		WithRecoverable(true).
		WithContext("command", command).
		WithContext("exit_code", exitCode).
		Build()
}

// ConfigurationError creates a configuration error
func ConfigurationError(message string) error {
	return NewError(ErrorTypeConfiguration).
		WithMessage(message).
		WithSeverity(SeverityHigh).
		WithRecoverable(true).
		WithSuggestion("Check your configuration file").
		WithSuggestion("Run with --debug to see configuration load warnings").
		Build()
}

// GitError creates a backing VCS operation error
func GitError(operation string, cause error) error {
	return NewError(ErrorTypeGit).
		WithMessagef("git %s failed", operation).
		WithCause(cause).
		WithSeverity(SeverityMedium).
		WithRecoverable(true).
		WithContext("operation", operation).
		WithSuggestion("Check git repository status").
		WithSuggestion("Ensure you have proper git permissions").
		Build()
}

// GitHubError creates a GitHub API error
func GitHubError(operation string, cause error) error {
	return NewError(ErrorTypeGitHub).
		WithMessagef("GitHub %s failed", operation).
		WithCause(cause).
		WithSeverity(SeverityMedium).
		WithRecoverable(true).
		WithContext("operation", operation).
		WithSuggestion("Check GitHub authentication").
		WithSuggestion("Verify repository permissions").
		WithSuggestion("Check GitHub API rate limits").
		Build()
}

// EditorError creates an external editor collaborator error
func EditorError(cause error) error {
	return NewError(ErrorTypeEditor).
		WithMessage("editor invocation failed").
		WithCause(cause).
		WithSeverity(SeverityMedium).
		WithRecoverable(true).
		WithSuggestion("Set $EDITOR or reorg.editor.command to a working editor").
		WithSuggestion("Resume with 'reorg resume' once the editor is available").
		Build()
}

// ParseError creates a patch parsing error
func ParseError(context string, cause error) error {
	return NewError(ErrorTypeParse).
		WithMessagef("failed to parse patch: %s", context).
		WithCause(cause).
		WithSeverity(SeverityHigh).
		WithRecoverable(false).
		WithContext("location", context).
		WithSuggestion("The backing VCS produced a diff this parser does not understand").
		Build()
}

// PersistenceError creates a plan store persistence error
func PersistenceError(operation string, cause error) error {
	return NewError(ErrorTypePersistence).
		WithMessagef("plan store %s failed", operation).
		WithCause(cause).
		WithSeverity(SeverityHigh).
		WithRecoverable(false).
		WithContext("operation", operation).
		WithSuggestion("Manual intervention required: inspect the plan file on disk").
		Build()
}

// PlanError creates a plan construction or invariant error
func PlanError(message string) error {
	return NewError(ErrorTypePlan).
		WithMessage(message).
		WithSeverity(SeverityHigh).
		WithRecoverable(false).
		Build()
}

// CancelledError creates a cancellation error
func CancelledError() error {
	return NewError(ErrorTypeCancelled).
		WithMessage("operation cancelled").
		WithSeverity(SeverityLow).
		WithRecoverable(true).
		WithSuggestion("Resume when ready with 'reorg resume'").
		Build()
}

// Type checking functions

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if reErr, ok := err.(*reorgError); ok {
		return reErr.Type() == errorType
	}
	return false
}

// IsSeverity checks if an error has a specific severity
func IsSeverity(err error, severity Severity) bool {
	if reErr, ok := err.(*reorgError); ok {
		return reErr.Severity() == severity
	}
	return false
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	if reErr, ok := err.(*reorgError); ok {
		return reErr.IsRecoverable()
	}
	return false
}

// GetSuggestions extracts suggestions from an error
func GetSuggestions(err error) []string {
	if reErr, ok := err.(*reorgError); ok {
		return reErr.Suggestions()
	}
	return []string{}
}

// GetContext extracts context from an error
func GetContext(err error) map[string]interface{} {
	if reErr, ok := err.(*reorgError); ok {
		return reErr.Context()
	}
	return nil
}
