package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the sweep timed out.
	ExitErrorTask     = 3   // Indicates that at least one hedging task failed.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// InvalidAxisValueError reports a configuration axis value that falls outside
// its declared bounds. It is raised at the command-line boundary, before any
// task grid is generated.
type InvalidAxisValueError struct {
	// Axis is the flag name of the rejected axis (e.g., "portfolio-size").
	Axis string
	// Value is the raw value supplied by the user.
	Value string
	// Min and Max are the inclusive bounds of the axis.
	Min, Max int
}

// Error returns a formatted message describing the rejected value.
func (e InvalidAxisValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: must be an integer in [%d, %d]", e.Value, e.Axis, e.Min, e.Max)
}

// UnknownStrategyError reports a hedge strategy name that does not map to any
// evaluation routine. It aborts the run before any task is submitted.
type UnknownStrategyError struct {
	// Name is the normalized strategy name that failed to resolve.
	Name string
}

// Error returns a formatted message naming the unknown strategy.
func (e UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown hedge strategy %q", e.Name)
}

// TaskExecutionError encapsulates the failure of a single hedging task while
// preserving the original cause. The collector surfaces it to the caller in
// place of that task's result.
type TaskExecutionError struct {
	// Task describes the task descriptor that failed.
	Task string
	// Cause is the underlying error returned (or panic recovered) by the routine.
	Cause error
}

// Error returns the task description followed by the cause.
func (e TaskExecutionError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.Task, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e TaskExecutionError) Unwrap() error { return e.Cause }

// TimeoutError represents a sweep timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsConfigError reports whether err belongs to the configuration class:
// bad flags, out-of-range axis values, or unknown strategies.
func IsConfigError(err error) bool {
	var cfgErr ConfigError
	var axisErr InvalidAxisValueError
	var stratErr UnknownStrategyError
	return errors.As(err, &cfgErr) || errors.As(err, &axisErr) || errors.As(err, &stratErr)
}
