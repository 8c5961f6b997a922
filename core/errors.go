package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any error produced by an HTTP 401 response.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRefreshFailed is returned when the refresh token could not be
	// exchanged for a new access token. Stored tokens are cleared by then.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoRefreshToken is the cause of ErrRefreshFailed when no usable
	// refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrNoCredentials is returned by token sources when the store is empty.
	ErrNoCredentials = errors.New("no credentials stored")
)

// APIError is returned for every non-2xx response and for 2xx envelopes that carry
// success=false. A 401 APIError matches ErrUnauthorized with errors.Is.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
	// Cause is set when recovery from this response was attempted and failed,
	// e.g. a 401 whose token refresh was rejected.
	Cause error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("studyhive api error: [%d] %s: %v", e.StatusCode, msg, e.Cause)
	}
	return fmt.Sprintf("studyhive api error: [%d] %s", e.StatusCode, msg)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// IsUnauthorized reports whether err stems from an HTTP 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsSessionExpired reports whether err means the user has to log in again.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrRefreshFailed)
}

// NetworkError is returned when no HTTP response was received at all.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, RedactURLQuery(e.URL), e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ResponseParseError is returned when a 2xx body is not valid JSON.
type ResponseParseError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse response (status %d): %v", e.StatusCode, e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

func NewResponseParseError(statusCode int, body []byte, err error) *ResponseParseError {
	return &ResponseParseError{
		StatusCode: statusCode,
		Body:       body,
		Err:        err,
	}
}
