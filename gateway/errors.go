package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingIdentifier is returned without a request when a consumer has neither username nor custom_id.
var ErrMissingIdentifier = errors.New("either username or custom_id must be provided")

// APIError is returned for every failed gateway call. StatusCode is 0 when no
// response was received. Callers dispatch on StatusCode; Message is for humans.
type APIError struct {
	Message    string
	StatusCode int
	Body       map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway API error %d: %s", e.StatusCode, e.Message)
}

func newTransportError(err error) *APIError {
	return &APIError{
		Message:    fmt.Sprintf("Request failed: %v", err),
		StatusCode: 0,
		Body:       map[string]any{"original_error": err.Error()},
	}
}

func newStatusError(statusCode int, body map[string]any) *APIError {
	return &APIError{
		Message:    errorMessage(statusCode, body),
		StatusCode: statusCode,
		Body:       body,
	}
}

func errorMessage(statusCode int, body map[string]any) string {
	message, ok := body["message"].(string)
	if !ok || message == "" {
		message = fmt.Sprintf("HTTP %d error", statusCode)
	}

	switch statusCode {
	case http.StatusBadRequest:
		lower := strings.ToLower(message)
		switch {
		case strings.Contains(lower, "required"):
			return "Missing required field: " + message
		case strings.Contains(lower, "invalid"):
			return "Invalid data provided: " + message
		default:
			return "Bad request: " + message
		}
	case http.StatusNotFound:
		return "Resource not found: " + message
	case http.StatusConflict:
		if strings.Contains(message, "UNIQUE violation") {
			return "Duplicate resource: " + message
		}
		return "Conflict: " + message
	}
	return message
}

// StatusCode returns the gateway status carried by err, 0 for transport
// failures, and -1 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return -1
}

func IsNotFound(err error) bool   { return StatusCode(err) == http.StatusNotFound }
func IsConflict(err error) bool   { return StatusCode(err) == http.StatusConflict }
func IsBadRequest(err error) bool { return StatusCode(err) == http.StatusBadRequest }
func IsTransport(err error) bool  { return StatusCode(err) == 0 }
