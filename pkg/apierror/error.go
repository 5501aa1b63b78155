package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error represents a structured API error response.
type Error struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
	Redirect   string       `json:"redirect,omitempty"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithDetails adds field-level error details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = details
	return e
}

// WithRedirect tells the console where the user should be sent instead.
func (e *Error) WithRedirect(path string) *Error {
	e.Redirect = path
	return e
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	body := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	if e.Redirect != "" {
		body["redirect"] = e.Redirect
	}

	data, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   body,
	})
	return data
}

// New creates an error with an arbitrary status code.
func New(statusCode int, code, message string) *Error {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &Error{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, "BAD_REQUEST", message)
}

// ValidationError creates a 400 error with validation details.
func ValidationError(message string, details ...FieldError) *Error {
	return New(http.StatusBadRequest, "VALIDATION_ERROR", message).WithDetails(details...)
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return New(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden creates a 403 Forbidden error.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return New(http.StatusForbidden, "FORBIDDEN", message)
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return New(http.StatusNotFound, "NOT_FOUND", message)
}

// Conflict creates a 409 Conflict error.
func Conflict(message string) *Error {
	return New(http.StatusConflict, "CONFLICT", message)
}

// Locked creates a 423 Locked error, used when a section needs its access code first.
func Locked(message string) *Error {
	if message == "" {
		message = "Section is locked"
	}
	return New(http.StatusLocked, "LOCKED", message)
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return New(http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// BadGateway creates a 502 error for failures of the upstream REST API.
func BadGateway(message string) *Error {
	if message == "" {
		message = "Upstream API unavailable"
	}
	return New(http.StatusBadGateway, "BAD_GATEWAY", message)
}

// ServiceUnavailable creates a 503 Service Unavailable error.
func ServiceUnavailable(message string) *Error {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message)
}

// remoteError is satisfied by failures of the upstream REST API that carry
// a status code and a message meant for the user.
type remoteError interface {
	error
	Status() int
	Message() string
}

// FromRemote converts a failed upstream call into an Error, preserving the
// status class and the upstream message. Errors without a status become 502.
func FromRemote(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var remote remoteError
	if !errors.As(err, &remote) {
		return BadGateway("")
	}

	msg := remote.Message()
	switch status := remote.Status(); {
	case status == http.StatusBadRequest:
		return BadRequest(msg)
	case status == http.StatusUnauthorized:
		return Unauthorized(msg)
	case status == http.StatusForbidden:
		return Forbidden(msg)
	case status == http.StatusNotFound:
		return NotFound(msg)
	case status == http.StatusConflict:
		return Conflict(msg)
	case status == http.StatusUnprocessableEntity:
		return New(status, "VALIDATION_ERROR", msg)
	case status >= 500:
		return BadGateway(msg)
	default:
		return New(status, "REMOTE_ERROR", msg)
	}
}
