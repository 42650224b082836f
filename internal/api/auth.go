package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// AuthService handles login, registration and the local session.
type AuthService struct {
	client *Client
}

// Login authenticates and stores the returned user id as the session token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.Post(ctx, "/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.UserID <= 0 {
		return nil, errors.New("login: response carried no valid user id")
	}

	if err := s.client.store.Save(strconv.FormatInt(resp.UserID, 10)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &resp, nil
}

// Register creates an account. It does not log the new user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.Post(ctx, "/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout clears the session. No request is sent.
func (s *AuthService) Logout() error {
	return s.client.store.Clear()
}

// LoggedIn reports whether a session token is stored.
func (s *AuthService) LoggedIn() bool {
	_, ok := s.client.store.Get()
	return ok
}

// CurrentUserID parses the session token as the user id.
func (s *AuthService) CurrentUserID() (int64, error) {
	token, ok := s.client.store.Get()
	if !ok {
		return 0, ErrNoSession
	}
	id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNoSession
	}
	return id, nil
}
