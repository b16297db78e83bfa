package httpclient

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// ClientError represents the categories of REST client failures.
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error
type ErrorType string

const (
	NetworkError       ErrorType = "network"
	TimeoutError       ErrorType = "timeout"
	SerializationError ErrorType = "serialization"
	ConfigurationError ErrorType = "configuration"
	CloneError         ErrorType = "clone"
	InterceptorError   ErrorType = "interceptor"
	ValidationError    ErrorType = "validation"
	HTTPError          ErrorType = "http"
)

// ErrBodyConsumed is returned by a Response body accessor after the body has already been read.
var ErrBodyConsumed = errors.New("response body already consumed")

// networkError represents a transport failure after all attempts were used.
type networkError struct {
	message  string
	wrapped  error
	attempts int
}

func (e *networkError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("network error: %s%s: %v", e.message, attemptSuffix(e.attempts), e.wrapped)
	}
	return fmt.Sprintf("network error: %s%s", e.message, attemptSuffix(e.attempts))
}

func (e *networkError) Type() ErrorType { return NetworkError }

func (e *networkError) Unwrap() error { return e.wrapped }

// Attempts reports how many transport attempts were made.
func (e *networkError) Attempts() int { return e.attempts }

// timeoutError represents a transport timeout after all attempts were used.
type timeoutError struct {
	message  string
	timeout  time.Duration
	wrapped  error
	attempts int
}

func (e *timeoutError) Error() string {
	msg := fmt.Sprintf("timeout error: %s%s", e.message, attemptSuffix(e.attempts))
	if e.timeout > 0 {
		msg += fmt.Sprintf(" (timeout: %v)", e.timeout)
	}
	if e.wrapped != nil {
		msg += fmt.Sprintf(": %v", e.wrapped)
	}
	return msg
}

func (e *timeoutError) Type() ErrorType { return TimeoutError }

func (e *timeoutError) Unwrap() error { return e.wrapped }

func (e *timeoutError) Attempts() int { return e.attempts }

// serializationError represents a JSON encoding failure of an outbound body.
type serializationError struct {
	message string
	wrapped error
}

func (e *serializationError) Error() string {
	return fmt.Sprintf("serialization error: %s: %v", e.message, e.wrapped)
}

func (e *serializationError) Type() ErrorType { return SerializationError }

func (e *serializationError) Unwrap() error { return e.wrapped }

// DecodeError is returned when a response body cannot be decoded into the requested type.
// It carries enough context to debug a schema mismatch without re-issuing the request.
type DecodeError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("serialization error: failed to decode response from %s (status: %d): %v; body: %s",
		e.URL, e.StatusCode, e.Err, e.Body)
}

func (e *DecodeError) Type() ErrorType { return SerializationError }

func (e *DecodeError) Unwrap() error { return e.Err }

// configurationError represents an invalid base URL, option or final request URL.
type configurationError struct {
	message string
	wrapped error
}

func (e *configurationError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("configuration error: %s", e.message)
}

func (e *configurationError) Type() ErrorType { return ConfigurationError }

func (e *configurationError) Unwrap() error { return e.wrapped }

// cloneError represents a prepared request that cannot be replayed for an attempt.
type cloneError struct {
	message string
	wrapped error
}

func (e *cloneError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("clone error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("clone error: %s", e.message)
}

func (e *cloneError) Type() ErrorType { return CloneError }

func (e *cloneError) Unwrap() error { return e.wrapped }

// interceptorError represents interceptor-related errors
type interceptorError struct {
	message string
	wrapped error
	stage   string
}

func (e *interceptorError) Error() string {
	return fmt.Sprintf("interceptor error: %s (stage: %s): %v", e.message, e.stage, e.wrapped)
}

func (e *interceptorError) Type() ErrorType { return InterceptorError }

func (e *interceptorError) Unwrap() error { return e.wrapped }

// Stage reports whether the failing interceptor ran on the request or the response.
func (e *interceptorError) Stage() string { return e.stage }

// validationError represents request validation errors
type validationError struct {
	message string
	field   string
	wrapped error
}

func (e *validationError) Error() string {
	msg := fmt.Sprintf("validation error: %s", e.message)
	if e.field != "" {
		msg += fmt.Sprintf(" (field: %s)", e.field)
	}
	if e.wrapped != nil {
		msg += fmt.Sprintf(": %v", e.wrapped)
	}
	return msg
}

func (e *validationError) Type() ErrorType { return ValidationError }

func (e *validationError) Unwrap() error { return e.wrapped }

// httpError represents HTTP status-related errors
type httpError struct {
	message    string
	statusCode int
	body       []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP error: %s (status: %d)", e.message, e.statusCode)
}

func (e *httpError) Type() ErrorType { return HTTPError }

func (e *httpError) StatusCode() int { return e.statusCode }

func (e *httpError) Body() []byte { return e.body }

// NewNetworkError creates a new network error
func NewNetworkError(message string, wrapped error) ClientError {
	return &networkError{message: message, wrapped: wrapped}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, timeout time.Duration) ClientError {
	return &timeoutError{message: message, timeout: timeout}
}

// NewSerializationError creates a new serialization error
func NewSerializationError(message string, wrapped error) ClientError {
	return &serializationError{message: message, wrapped: wrapped}
}

// NewDecodeError creates a decode error. The raw body is decoded as UTF-8 on a best-effort basis.
func NewDecodeError(u *url.URL, statusCode int, body []byte, wrapped error) *DecodeError {
	rawURL := ""
	if u != nil {
		rawURL = u.Redacted()
	}
	return &DecodeError{
		URL:        rawURL,
		StatusCode: statusCode,
		Body:       strings.ToValidUTF8(string(body), string(utf8.RuneError)),
		Err:        wrapped,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, wrapped error) ClientError {
	return &configurationError{message: message, wrapped: wrapped}
}

// NewCloneError creates a new clone error
func NewCloneError(message string, wrapped error) ClientError {
	return &cloneError{message: message, wrapped: wrapped}
}

// NewInterceptorError creates a new interceptor error
func NewInterceptorError(message, stage string, wrapped error) ClientError {
	return &interceptorError{message: message, wrapped: wrapped, stage: stage}
}

// NewValidationError creates a new validation error
func NewValidationError(message, field string) ClientError {
	return &validationError{message: message, field: field}
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(message string, statusCode int, body []byte) ClientError {
	return &httpError{message: message, statusCode: statusCode, body: body}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsHTTPStatusError checks if an error is an HTTP error with a specific status code
func IsHTTPStatusError(err error, statusCode int) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode() == statusCode
	}
	return false
}

// IsRetryable reports whether err is a transport failure the retry loop would repeat.
func IsRetryable(err error) bool {
	return IsErrorType(err, NetworkError) || IsErrorType(err, TimeoutError)
}

// AttemptsFromError returns the number of transport attempts recorded on err.
func AttemptsFromError(err error) (int, bool) {
	var carrier interface{ Attempts() int }
	if errors.As(err, &carrier) {
		return carrier.Attempts(), true
	}
	return 0, false
}

// StageFromError returns the interceptor stage ("request" or "response") recorded on err.
func StageFromError(err error) (string, bool) {
	var ie *interceptorError
	if errors.As(err, &ie) {
		return ie.Stage(), true
	}
	return "", false
}

// HTTPErrorBody returns the response body captured by an HTTP error.
func HTTPErrorBody(err error) ([]byte, bool) {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.Body(), true
	}
	return nil, false
}

func attemptSuffix(attempts int) string {
	if attempts <= 1 {
		return ""
	}
	return fmt.Sprintf(" after %d attempts", attempts)
}
