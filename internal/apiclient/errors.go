package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ResponseError is a non-2xx answer from the REST API.
type ResponseError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte

	payload any
}

func newResponseError(method, path string, status int, body []byte) *ResponseError {
	e := &ResponseError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Body:       body,
	}
	var decoded any
	if len(body) > 0 && json.Unmarshal(body, &decoded) == nil {
		e.payload = decoded
	}
	return e
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message())
}

// Payload returns the decoded JSON error body, or nil when the body was not JSON.
func (e *ResponseError) Payload() any {
	return e.payload
}

// BodyMessage extracts the human-readable message from the error body.
// Looks at "message", then "error.message", then an "error" string.
// It returns "" when the body carries none.
func (e *ResponseError) BodyMessage() string {
	return messageFrom(e.payload)
}

// Message is BodyMessage falling back to the HTTP status text.
func (e *ResponseError) Message() string {
	if m := e.BodyMessage(); m != "" {
		return m
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return "request failed"
}

// Status returns the HTTP status code.
func (e *ResponseError) Status() int {
	return e.StatusCode
}

// Unauthorized reports a rejected or expired credential.
func (e *ResponseError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func messageFrom(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	if s, ok := obj["message"].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	switch v := obj["error"].(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["message"].(string); ok {
			return s
		}
	}
	// some endpoints nest the body again under "data"
	if data, ok := obj["data"]; ok {
		return messageFrom(data)
	}
	return ""
}

// AsResponseError unwraps err into a *ResponseError.
func AsResponseError(err error) (*ResponseError, bool) {
	var re *ResponseError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	re, ok := AsResponseError(err)
	return ok && re.Unauthorized()
}
