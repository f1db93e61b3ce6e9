package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used when reporting errors.
// It keeps this package free of any dependency on the UI layer.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleSweepError prints a user-facing report for err and returns the exit
// code matching its class. A nil error maps to ExitSuccess.
//
// Parameters:
//   - err: The error returned by the sweep.
//   - elapsed: Wall-clock time spent before the failure (0 if unknown).
//   - out: The writer receiving the report.
//   - colors: The color provider for highlighting.
//
// Returns:
//   - int: The process exit code.
func HandleSweepError(err error, elapsed time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}

	var timeoutErr TimeoutError
	var taskErr TaskExecutionError
	switch {
	case errors.As(err, &timeoutErr) || errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sSweep timed out after %s.%s\n", colors.Yellow(), elapsed, colors.Reset())
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sSweep canceled after %s.%s\n", colors.Yellow(), elapsed, colors.Reset())
		return ExitErrorCanceled
	case IsConfigError(err):
		fmt.Fprintf(out, "%sConfiguration error: %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorConfig
	case errors.As(err, &taskErr):
		fmt.Fprintf(out, "%sHedging failed: %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorTask
	default:
		fmt.Fprintf(out, "%sError: %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorGeneric
	}
}
