package api

import (
	"log/slog"
	"net/http"
	"strings"

	"eventplanner-web/internal/session"
)

// LoginRoute is where a client is sent once its session is rejected.
const LoginRoute = "/auth/login"

// Navigator moves the client to another route of the front-end.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) {
	f(route)
}

// IsAuthEndpoint reports whether path is the login or signup endpoint. Those
// requests never carry the bearer token and never expire the session.
func IsAuthEndpoint(path string) bool {
	path = strings.TrimRight(path, "/")
	return strings.HasSuffix(path, "/login") || strings.HasSuffix(path, "/signup")
}

// AuthTransport attaches the session token to protected requests and reacts to
// a 401 on them by clearing the session and navigating to the login route. The
// response is always handed back unchanged.
type AuthTransport struct {
	Base      http.RoundTripper
	Store     session.Store
	Navigator Navigator
	Logger    *slog.Logger
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	authEndpoint := IsAuthEndpoint(req.URL.Path)

	req = req.Clone(req.Context())
	if authEndpoint {
		req.Header.Del("Authorization")
	} else if t.Store != nil {
		if token, ok := t.Store.Get(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !authEndpoint {
		t.expire(req)
	}
	return resp, nil
}

func (t *AuthTransport) expire(req *http.Request) {
	authExpiredTotal.Inc()

	if t.Store != nil {
		if err := t.Store.Clear(); err != nil {
			t.logger().Warn("clear expired session",
				slog.String("path", req.URL.Path),
				slog.String("error", err.Error()),
			)
		}
	}
	if t.Navigator != nil {
		t.Navigator.Navigate(LoginRoute)
	}
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthTransport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}
