package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAuthEndpoint(t *testing.T) {
	assert.True(t, IsAuthEndpoint("/login"))
	assert.True(t, IsAuthEndpoint("/signup"))
	assert.True(t, IsAuthEndpoint("/api/v1/login/"))
	assert.False(t, IsAuthEndpoint("/logins"))
	assert.False(t, IsAuthEndpoint("/events/organized"))
	assert.False(t, IsAuthEndpoint("/me"))
}

func TestAuthTransport_AttachesBearerOnProtectedCalls(t *testing.T) {
	var got string
	_, client, store, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, []User{})
	})
	require.NoError(t, store.Save("42"))

	_, err := client.Users.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer 42", got)
}

func TestAuthTransport_NoBearerWithoutSession(t *testing.T) {
	var seen bool
	_, client, _, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, seen = r.Header["Authorization"]
		writeJSON(t, w, http.StatusOK, []User{})
	})

	_, err := client.Users.List(context.Background())
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestAuthTransport_NeverSendsBearerToAuthEndpoints(t *testing.T) {
	var headers []string
	_, client, store, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, AuthResponse{UserID: 7, Name: "Ann"})
	})
	require.NoError(t, store.Save("42"))

	err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/login",
		Body:   LoginRequest{Email: "a@b.c", Password: "secret"},
		Header: http.Header{"Authorization": {"Bearer forged"}},
	}, nil)
	require.NoError(t, err)
	_, err = client.Auth.Register(context.Background(), RegisterRequest{Name: "Ann"})
	require.NoError(t, err)

	assert.Equal(t, []string{"", ""}, headers)
}

func TestAuthTransport_ProtectedUnauthorizedClearsSession(t *testing.T) {
	_, client, store, nav := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
	})
	require.NoError(t, store.Save("42"))

	_, err := client.Events.Organized(context.Background(), 42)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrAuthExpired))
	assert.True(t, IsUnauthorized(err))
	_, ok := store.Get()
	assert.False(t, ok)
	assert.Equal(t, []string{LoginRoute}, nav.routes)
}

func TestAuthTransport_LoginUnauthorizedKeepsSession(t *testing.T) {
	_, client, store, nav := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	})
	require.NoError(t, store.Save("42"))

	_, err := client.Auth.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "wrong"})
	require.Error(t, err)

	assert.False(t, errors.Is(err, ErrAuthExpired))
	assert.Equal(t, "Invalid credentials", Message(err, "Login failed"))
	token, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, "42", token)
	assert.Empty(t, nav.routes)
}

func TestAuthTransport_OtherFailuresPassThrough(t *testing.T) {
	_, client, store, nav := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]string{"detail": "Only the organizer can delete"})
	})
	require.NoError(t, store.Save("42"))

	err := client.Events.Delete(context.Background(), 3, 42)
	require.Error(t, err)

	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	_, ok := store.Get()
	assert.True(t, ok)
	assert.Empty(t, nav.routes)
}
