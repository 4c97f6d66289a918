package downloader

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents different categories of download errors
type ErrorType int

const (
	ErrorValidation ErrorType = iota
	ErrorRateLimited
	ErrorTimeout
	ErrorConnection
	ErrorHTTP
	ErrorFilesystem
	ErrorRequest
	ErrorUnknown
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorValidation:
		return "validation"
	case ErrorRateLimited:
		return "rate_limited"
	case ErrorTimeout:
		return "timeout"
	case ErrorConnection:
		return "connection"
	case ErrorHTTP:
		return "http"
	case ErrorFilesystem:
		return "filesystem"
	case ErrorRequest:
		return "request"
	case ErrorUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// DownloadError represents a structured error that occurred during download
type DownloadError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"cause,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (de *DownloadError) Error() string {
	if de.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", de.Type.String(), de.Message, de.Cause)
	}
	return fmt.Sprintf("%s: %s", de.Type.String(), de.Message)
}

// Unwrap returns the underlying cause error
func (de *DownloadError) Unwrap() error {
	return de.Cause
}

// NewDownloadError creates a new DownloadError with the specified type and message
func NewDownloadError(errorType ErrorType, message string) *DownloadError {
	return &DownloadError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// NewDownloadErrorWithCause creates a new DownloadError with a cause
func NewDownloadErrorWithCause(errorType ErrorType, message string, cause error) *DownloadError {
	return &DownloadError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (de *DownloadError) WithContext(key string, value interface{}) *DownloadError {
	if de.Context == nil {
		de.Context = make(map[string]interface{})
	}
	de.Context[key] = value
	return de
}

// IsType checks if the error is of a specific type
func (de *DownloadError) IsType(errorType ErrorType) bool {
	return de.Type == errorType
}

// IsDownloadError checks if an error is a DownloadError and optionally of a specific type
func IsDownloadError(err error, errorType ...ErrorType) bool {
	var de *DownloadError
	if !errors.As(err, &de) {
		return false
	}
	if len(errorType) == 0 {
		return true
	}
	for _, et := range errorType {
		if de.Type == et {
			return true
		}
	}
	return false
}

// NewHTTPError creates an ErrorHTTP DownloadError carrying the status code and reason
func NewHTTPError(statusCode int, status string) *DownloadError {
	return NewDownloadError(ErrorHTTP, fmt.Sprintf("server responded with %s", status)).
		WithContext("status_code", statusCode).
		WithContext("status", status)
}

// NewRateLimitedError creates an ErrorRateLimited DownloadError carrying the wait time
func NewRateLimitedError(waitSeconds int) *DownloadError {
	return NewDownloadError(ErrorRateLimited,
		fmt.Sprintf("please wait %d seconds before sending another request", waitSeconds)).
		WithContext("wait_seconds", waitSeconds)
}

// StatusCode returns the HTTP status code attached to an ErrorHTTP error, or 0
func (de *DownloadError) StatusCode() int {
	if code, ok := de.Context["status_code"].(int); ok {
		return code
	}
	return 0
}

// WaitSeconds returns the cooldown remainder attached to an ErrorRateLimited error, or 0
func (de *DownloadError) WaitSeconds() int {
	if wait, ok := de.Context["wait_seconds"].(int); ok {
		return wait
	}
	return 0
}

// ClassifyTransportError maps a transport-layer failure from the HTTP client
// onto the download error taxonomy. Timeouts take precedence over generic
// connection failures; anything unrecognized becomes ErrorRequest.
func ClassifyTransportError(err error) *DownloadError {
	if de, ok := err.(*DownloadError); ok {
		return de
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewDownloadErrorWithCause(ErrorTimeout, "download timed out, the server may be slow or the file too large", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewDownloadErrorWithCause(ErrorTimeout, "download timed out, the server may be slow or the file too large", err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewDownloadErrorWithCause(ErrorConnection, "failed to resolve the server address", err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return NewDownloadErrorWithCause(ErrorConnection, "failed to connect to the server, check the URL and try again", err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NewDownloadErrorWithCause(ErrorConnection, "failed to connect to the server, check the URL and try again", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NewDownloadErrorWithCause(ErrorRequest, "download request failed", err)
	}

	return NewDownloadErrorWithCause(ErrorRequest, "download request failed", err)
}

// ClassifyWriteError maps a local filesystem failure onto the taxonomy
func ClassifyWriteError(err error) *DownloadError {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return NewDownloadErrorWithCause(ErrorFilesystem, fmt.Sprintf("failed to write file: %v", pathErr.Err), err)
	}
	return NewDownloadErrorWithCause(ErrorFilesystem, "failed to write file", err)
}
