package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"eventplanner-web/internal/session"
)

var (
	// ErrAuthExpired matches a NetworkError for a 401 on a protected call. The
	// auth gate has already cleared the session when a caller sees it.
	ErrAuthExpired = errors.New("api: session expired")

	// ErrNoSession is returned when an operation needs the current user and no
	// usable session token is stored.
	ErrNoSession = session.ErrNoSession
)

// NetworkError is returned for transport failures and non-2xx responses.
type NetworkError struct {
	Method string
	URL    string
	Path   string
	// StatusCode is zero when the request never got a response.
	StatusCode int
	Body       []byte
	// Detail is the server's explanation, when the body carried one.
	Detail string
	Err    error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is maps a 401 on a protected path to ErrAuthExpired.
func (e *NetworkError) Is(target error) bool {
	if target == ErrAuthExpired {
		return e.StatusCode == http.StatusUnauthorized && !IsAuthEndpoint(e.Path)
	}
	return false
}

func newStatusError(method, rawURL, path string, status int, body []byte) *NetworkError {
	return &NetworkError{
		Method:     method,
		URL:        rawURL,
		Path:       path,
		StatusCode: status,
		Body:       body,
		Detail:     parseDetail(body),
	}
}

// parseDetail pulls a human readable message out of an error body. The API is
// not consistent: it uses "detail" (string or structured), "error" or "message".
func parseDetail(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 || strings.HasPrefix(text, "<") {
			return ""
		}
		return text
	}

	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := fields[key]
		if !ok || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				return s
			}
			continue
		}
		return string(raw)
	}
	return ""
}

// StatusCode returns the HTTP status of err, or 0 when err is not a NetworkError.
func StatusCode(err error) int {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response, protected or not.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// Message returns the text to show a user for err, falling back to fallback
// when the server gave no explanation.
func Message(err error, fallback string) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.Detail != "" {
		return netErr.Detail
	}
	return fallback
}
