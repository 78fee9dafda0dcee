// Package errors provides structured error types for the starelements bundler.
//
// Every failure inside the bundler carries a [Code] so the orchestrator can
// translate it into a single user-facing message without string matching:
//   - INVALID_*: malformed specifiers, configuration, manifests or lock files
//   - UNSUPPORTED_PLATFORM: no esbuild build exists for this OS/architecture
//   - HTTP_STATUS / NETWORK_ERROR / TIMEOUT: registry failures
//   - VERIFICATION_FAILED, BUNDLE_*, MINIFY_*: external tool failures
//   - FILESYSTEM: permission or I/O failures while caching, staging or writing
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSpec, "empty package name in %q", raw)
//	if errors.Is(err, errors.ErrCodeInvalidSpec) {
//	    // Handle parse error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFilesystem, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Parse errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidSpec     Code = "INVALID_SPEC"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidLockFile Code = "INVALID_LOCKFILE"

	// Platform errors
	ErrCodeUnsupportedPlatform Code = "UNSUPPORTED_PLATFORM"

	// Network errors
	ErrCodeHTTPStatus Code = "HTTP_STATUS"
	ErrCodeNetwork    Code = "NETWORK_ERROR"
	ErrCodeTimeout    Code = "TIMEOUT"

	// Tool errors
	ErrCodeVerificationFailed Code = "VERIFICATION_FAILED"
	ErrCodeBundleFailed       Code = "BUNDLE_FAILED"
	ErrCodeBundleTimeout      Code = "BUNDLE_TIMEOUT"
	ErrCodeMinifyFailed       Code = "MINIFY_FAILED"
	ErrCodeMinifyTimeout      Code = "MINIFY_TIMEOUT"

	// Filesystem/OS errors
	ErrCodeFilesystem Code = "FILESYSTEM"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// Only the outermost *Error in the chain is inspected, so a wrapping
// error's code takes precedence over the code of its cause.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix, followed
// by the cause when one is attached.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// StatusError describes a registry response with a non-2xx status code.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.URL)
}

// Code returns the error code for this error type.
func (e *StatusError) Code() Code {
	return ErrCodeHTTPStatus
}

// AsStatus extracts a *StatusError from err's chain.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
