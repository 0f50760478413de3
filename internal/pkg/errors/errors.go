package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeDatabase         = "DATABASE_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInsufficientData = "INSUFFICIENT_DATA"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeInvalidBudget    = "INVALID_BUDGET"
	ErrCodeNoData           = "NO_DATA"
	ErrCodeInvalidScenario  = "INVALID_SCENARIO"
	ErrCodeIncomparable     = "INCOMPARABLE_SCENARIO"
)

// FieldDetail describes the offending field and the range it was expected
// to fall in, so callers can render a user-facing message.
type FieldDetail struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual,omitempty"`
}

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// WithField attaches field/expected-range context to an AppError
func (e *AppError) WithField(field, expected, actual string) *AppError {
	e.Details = FieldDetail{Field: field, Expected: expected, Actual: actual}
	return e
}

// Common error constructors

// Internal creates an internal server error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// ValidationError creates a validation error
func ValidationError(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

// DatabaseError creates a database error
func DatabaseError(message string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

// RateLimited creates a rate limited error
func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimited, message, http.StatusTooManyRequests)
}

// Analytics error constructors

// InsufficientData signals that a series is too short for the requested
// method or window
func InsufficientData(message string) *AppError {
	return New(ErrCodeInsufficientData, message, http.StatusUnprocessableEntity)
}

// InvalidParameter signals a malformed or out-of-range request parameter
func InvalidParameter(field, expected, actual string) *AppError {
	return New(ErrCodeInvalidParameter,
		fmt.Sprintf("invalid value for %s", field),
		http.StatusBadRequest).WithField(field, expected, actual)
}

// InvalidBudget signals a budget with a non-positive amount or an invalid
// period/scope
func InvalidBudget(message string) *AppError {
	return New(ErrCodeInvalidBudget, message, http.StatusBadRequest)
}

// NoData signals an empty result set where data was required
func NoData(message string) *AppError {
	return New(ErrCodeNoData, message, http.StatusUnprocessableEntity)
}

// InvalidScenario signals missing or out-of-range scenario parameters
func InvalidScenario(field, expected, actual string) *AppError {
	return New(ErrCodeInvalidScenario,
		fmt.Sprintf("invalid scenario parameter %s", field),
		http.StatusBadRequest).WithField(field, expected, actual)
}

// IncomparableScenarios signals unmet comparison preconditions
func IncomparableScenarios(message string) *AppError {
	return New(ErrCodeIncomparable, message, http.StatusUnprocessableEntity)
}

// IsCode reports whether err is an AppError carrying the given code
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
