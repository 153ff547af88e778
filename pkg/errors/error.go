// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, malformed series, bad configuration
//   - Data/Resource errors (200-299): Data not found, query failures, unavailable resources
//   - Indicator errors (300-399): Stage calculation and registry errors
//   - Cache errors (400-499): Result cache reads, writes and schema mismatches
//   - Recorder errors (500-599): Snapshot persistence failures
//   - Service errors (600-699): Watchlist and scheduling errors
//   - Market data errors (700-799): Market data fetching and parsing errors
//   - Export errors (800-899): Result export failures
//
// Besides *Error, the package defines typed errors for the failure modes of the
// analysis engine (DataUnavailableError, InsufficientHistoryError, ValidationError).
// They carry structured context and report a code through ErrorCode so GetCode
// works uniformly across both families.
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeDataNotFound, "data not found for ticker %s", ticker)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeDataNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// coder is implemented by the typed errors of this package.
type coder interface {
	ErrorCode() ErrorCode
}

// GetCode extracts the ErrorCode from an error.
// The outermost *Error or typed error in the chain wins.
// Returns ErrCodeUnknown if no coded error is found.
func GetCode(err error) ErrorCode {
	for err != nil {
		if c, ok := err.(coder); ok {
			return c.ErrorCode()
		}

		err = errors.Unwrap(err)
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// ErrorCode returns the code of the error.
func (e *Error) ErrorCode() ErrorCode {
	return e.Code
}

// DataUnavailableError is returned when a series is empty or could not be obtained.
type DataUnavailableError struct {
	Ticker  string // Optional: series identity
	Message string
}

// NewDataUnavailableError creates a new DataUnavailableError.
func NewDataUnavailableError(ticker, message string) *DataUnavailableError {
	return &DataUnavailableError{
		Ticker:  ticker,
		Message: message,
	}
}

// Error implements the error interface.
func (e *DataUnavailableError) Error() string {
	return e.Message
}

// ErrorCode returns ErrCodeNoDataFound.
func (e *DataUnavailableError) ErrorCode() ErrorCode {
	return ErrCodeNoDataFound
}

// IsDataUnavailableError checks if an error is a DataUnavailableError.
func IsDataUnavailableError(err error) bool {
	var target *DataUnavailableError

	return errors.As(err, &target)
}

// InsufficientHistoryError represents an error when a series is shorter than
// the slow averaging period and no oscillator value can be produced.
type InsufficientHistoryError struct {
	Required int    // Minimum data points required
	Actual   int    // Actual data points available
	Ticker   string // Optional: series identity
	Message  string // Human-readable message
}

// NewInsufficientHistoryError creates a new InsufficientHistoryError.
func NewInsufficientHistoryError(required, actual int, ticker, message string) *InsufficientHistoryError {
	return &InsufficientHistoryError{
		Required: required,
		Actual:   actual,
		Ticker:   ticker,
		Message:  message,
	}
}

// NewInsufficientHistoryErrorf creates a new InsufficientHistoryError with a formatted message.
func NewInsufficientHistoryErrorf(required, actual int, ticker, format string, args ...any) *InsufficientHistoryError {
	return &InsufficientHistoryError{
		Required: required,
		Actual:   actual,
		Ticker:   ticker,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientHistoryError) Error() string {
	return e.Message
}

// ErrorCode returns ErrCodeInsufficientHistory.
func (e *InsufficientHistoryError) ErrorCode() ErrorCode {
	return ErrCodeInsufficientHistory
}

// IsInsufficientHistoryError checks if an error is an InsufficientHistoryError.
// It uses errors.As to check the error chain.
func IsInsufficientHistoryError(err error) bool {
	var insufficientErr *InsufficientHistoryError

	return errors.As(err, &insufficientErr)
}

// ValidationError rejects an input series. Row is the offending row index.
type ValidationError struct {
	Code   ErrorCode
	Row    int
	Field  string
	Reason string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(code ErrorCode, row int, field, reason string) *ValidationError {
	return &ValidationError{
		Code:   code,
		Row:    row,
		Field:  field,
		Reason: reason,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%d] invalid %s at row %d: %s", e.Code, e.Field, e.Row, e.Reason)
}

// ErrorCode returns the validation code.
func (e *ValidationError) ErrorCode() ErrorCode {
	return e.Code
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError

	return errors.As(err, &target)
}
