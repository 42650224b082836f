package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// UsersService reads user accounts.
type UsersService struct {
	client *Client
}

// Me returns the account of userID.
func (s *UsersService) Me(ctx context.Context, userID int64) (*User, error) {
	var raw json.RawMessage
	query := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	if err := s.client.Get(ctx, "/me", query, &raw); err != nil {
		return nil, err
	}
	return UnwrapOne[User](raw)
}

// List returns every registered user.
func (s *UsersService) List(ctx context.Context) ([]User, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/users", nil, &raw); err != nil {
		return nil, err
	}
	return UnwrapList[User](raw)
}
