// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// axis validation, strategy resolution, task execution) and for carrying
// the underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Every error type that carries a cause implements Unwrap() so that errors.Is()
// and errors.As() see through it.
package apperrors
