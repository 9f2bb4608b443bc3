package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass represents a classification of failed fetches.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors (404 not found, 403, ...).
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport failures (DNS, refused connection, broken body).
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassProtocol represents responses the client cannot use, such as a
	// 304 for a URL with nothing cached or an unexpected 1xx/3xx status.
	ErrorClassProtocol ErrorClass = "protocol"
)

// APIError describes a failed fetch. Nothing is written to the cache when
// a fetch fails.
type APIError struct {
	// StatusCode is 0 for network errors.
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	// URL is the canonical request URL (API key removed).
	URL string
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crunchbase %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("crunchbase %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Class returns the ErrorClass of err, or "" if err is not an APIError.
func Class(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ""
}

// IsNotFound reports whether err is an APIError for a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	return Class(err) == ErrorClassNetwork
}

// classifyStatus categorizes a non-success HTTP status code.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassProtocol
	}
}
