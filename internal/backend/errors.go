package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrIncompleteSettings is returned before any request is made when the
// account settings lack a server, port, user, or password.
var ErrIncompleteSettings = errors.New("mail settings are incomplete")

// APIError is a non-2xx response from the mail API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string

	// Message is the human-readable reason extracted from the body.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mail API error (%d) on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Message)
}

// IsAPIError reports whether err (or any error in its chain) is an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// messageKeys are tried in order when pulling a reason out of an error body.
var messageKeys = []string{"detail", "reason", "error", "details", "message"}

func newAPIError(status int, method, path string, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Message:    errorMessage(body),
	}
}

// errorMessage extracts the most specific message from an error body.
// The API is not consistent: some endpoints answer {"detail": "..."},
// others {"message": "Bad request", "reason": "..."} or
// {"detail": {"reason": "..."}}, and validation failures map field names
// to lists of messages.
func errorMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return strings.TrimSpace(string(body))
	}

	for _, key := range messageKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if msg := rawMessage(raw); msg != "" {
			return msg
		}
	}

	var parts []string
	for field, raw := range fields {
		if msg := rawMessage(raw); msg != "" {
			parts = append(parts, field+": "+msg)
		}
	}
	if len(parts) > 0 {
		// Map order is random; keep the output stable.
		slices.Sort(parts)
		return strings.Join(parts, "; ")
	}

	return strings.TrimSpace(string(body))
}

func rawMessage(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, ", ")
	}

	var nested map[string]json.RawMessage
	if json.Unmarshal(raw, &nested) == nil {
		for _, key := range messageKeys {
			if inner, ok := nested[key]; ok {
				if msg := rawMessage(inner); msg != "" {
					return msg
				}
			}
		}
	}

	return ""
}
