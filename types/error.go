package types

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable, machine-readable kind tag of an Error.
type ErrorCode string

const (
	// ErrGeneric is the default code for errors raised without a more specific kind.
	ErrGeneric ErrorCode = "OMNIAI_ERROR"
	// ErrCapabilityNotSupported: the resolved provider does not advertise the requested capability.
	ErrCapabilityNotSupported ErrorCode = "CAPABILITY_NOT_SUPPORTED"
	// ErrProviderNotSupported: no provider is registered under the requested name.
	ErrProviderNotSupported ErrorCode = "PROVIDER_NOT_SUPPORTED"
	// ErrHTTP: the vendor answered with a non-success status.
	ErrHTTP ErrorCode = "HTTP_ERROR"
	// ErrNetwork: the exchange failed below HTTP (dial, timeout, malformed body).
	ErrNetwork ErrorCode = "NETWORK_ERROR"
	// ErrAssertionFailed: an internal precondition was violated.
	ErrAssertionFailed ErrorCode = "ASSERTION_FAILED"
)

// Error represents a structured error with code, message, and details.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
// An empty code falls back to ErrGeneric.
func NewError(code ErrorCode, message string) *Error {
	if code == "" {
		code = ErrGeneric
	}
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetails attaches the diagnostic payload.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable. Nothing in this module retries;
// the flag is a hint for callers.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// ProviderDetails is the details payload of provider and capability errors.
type ProviderDetails struct {
	ProviderName string `json:"providerName"`
	Capability   string `json:"capability,omitempty"`
}

// NewProviderNotSupportedError reports a lookup of an unregistered provider name.
func NewProviderNotSupportedError(name string) *Error {
	return NewError(ErrProviderNotSupported,
		fmt.Sprintf("Provider '%s' is not supported or not registered.", name)).
		WithDetails(ProviderDetails{ProviderName: name}).
		WithProvider(name)
}

// NewCapabilityError reports an operation the provider does not advertise.
func NewCapabilityError(provider, capability string) *Error {
	return NewError(ErrCapabilityNotSupported,
		fmt.Sprintf("Provider '%s' does not support capability '%s'.", provider, capability)).
		WithDetails(ProviderDetails{ProviderName: provider, Capability: capability}).
		WithProvider(provider)
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err carries the given kind tag.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}
