package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of a failure
type ErrorType string

const (
	ErrorTypeAuth    ErrorType = "auth"
	ErrorTypeAPI     ErrorType = "api"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is the error type returned by the reddit client, the collector and
// the configuration layer. None of these errors are retried.
type Error struct {
	Type     ErrorType
	Message  string
	Code     int
	Endpoint string
	Body     string
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s error", e.Type)
	if e.Endpoint != "" {
		fmt.Fprintf(&sb, " on %s", e.Endpoint)
	}
	if e.Code != 0 {
		fmt.Fprintf(&sb, " (code %d)", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	}
	if e.Body != "" {
		fmt.Fprintf(&sb, ", body: %q", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap allows errors.Is and errors.As to reach the underlying cause
func (e *Error) Unwrap() error { return e.Err }

// NewAPIError builds the error for a non-2xx response from a data endpoint
func NewAPIError(endpoint string, code int, body string) *Error {
	return &Error{
		Type:     ErrorTypeAPI,
		Message:  "request failed",
		Code:     code,
		Endpoint: endpoint,
		Body:     body,
	}
}

// NewAuthError builds the error for a rejected token exchange
func NewAuthError(code int, body string, err error) *Error {
	return &Error{
		Type:    ErrorTypeAuth,
		Message: "authorization failed",
		Code:    code,
		Body:    body,
		Err:     err,
	}
}

// NewConfigError builds the error for missing or invalid settings
func NewConfigError(message string, err error) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewNetworkError wraps a transport failure where no response was received
func NewNetworkError(endpoint string, err error) *Error {
	return &Error{
		Type:     ErrorTypeNetwork,
		Message:  "request did not complete",
		Endpoint: endpoint,
		Err:      err,
	}
}

// NewParsingError wraps a response body that could not be decoded
func NewParsingError(endpoint string, err error) *Error {
	return &Error{
		Type:     ErrorTypeParsing,
		Message:  "failed to decode response",
		Endpoint: endpoint,
		Err:      err,
	}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsAPIError reports whether err is a non-2xx API failure
func IsAPIError(err error) bool { return TypeOf(err) == ErrorTypeAPI }

// IsAuthError reports whether err is an authorization failure
func IsAuthError(err error) bool { return TypeOf(err) == ErrorTypeAuth }

// IsConfigError reports whether err is a configuration failure
func IsConfigError(err error) bool { return TypeOf(err) == ErrorTypeConfig }
