package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackendDown = errors.New("backend down")

// brokenKV fails every call.
type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, error) { return "", errBackendDown }
func (brokenKV) Set(context.Context, string, string) error   { return errBackendDown }
func (brokenKV) Delete(context.Context, string) error        { return errBackendDown }

func TestKVStore_BackendReadFailureIsNoSession(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: DefaultBrowserCookieName, Value: "0b6f5f0e-3c1a-4d8e-9f51-1f2d3c4b5a69"})
	s := NewKVStore(context.Background(), brokenKV{}, httptest.NewRecorder(), req, CookieOptions{}, logger)

	token, ok := s.Get()

	assert.False(t, ok)
	assert.Empty(t, token)
	assert.Contains(t, logs.String(), "session backend read failed")
	assert.Contains(t, logs.String(), "backend down")
}

func TestKVStore_BackendWriteFailureIsReturned(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	s := NewKVStore(context.Background(), brokenKV{}, httptest.NewRecorder(), req, CookieOptions{}, nil)

	assert.ErrorIs(t, s.Save("3"), errBackendDown)
	assert.ErrorIs(t, s.Clear(), errBackendDown)
}

func newTestRedisKV(t *testing.T, ttl time.Duration) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKV(client, ttl), m
}

func TestRedisKV(t *testing.T) {
	kv, m := newTestRedisKV(t, time.Hour)
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "b1", "10"))
	require.NoError(t, kv.Set(ctx, "b1", "11"))

	v, err := kv.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "11", v)
	assert.True(t, m.Exists("eventplanner:session:b1"))
	assert.Equal(t, time.Hour, m.TTL("eventplanner:session:b1"))

	require.NoError(t, kv.Delete(ctx, "b1"))
	_, err = kv.Get(ctx, "b1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKV_Expires(t *testing.T) {
	kv, m := newTestRedisKV(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "b1", "10"))
	m.FastForward(2 * time.Minute)

	_, err := kv.Get(ctx, "b1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKV_NoTTL(t *testing.T) {
	kv, m := newTestRedisKV(t, 0)

	require.NoError(t, kv.Set(context.Background(), "b1", "10"))

	assert.Zero(t, m.TTL("eventplanner:session:b1"))
}

func TestRedisKV_ServerErrorIsNotNotFound(t *testing.T) {
	kv, m := newTestRedisKV(t, time.Hour)
	m.SetError("ERR backend unavailable")

	_, err := kv.Get(context.Background(), "b1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestKVStore_OverRedis(t *testing.T) {
	kv, _ := newTestRedisKV(t, time.Hour)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	s := NewKVStore(ctx, kv, rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil), CookieOptions{}, nil)
	require.NoError(t, s.Save("5"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	s = NewKVStore(ctx, kv, httptest.NewRecorder(), req, CookieOptions{}, nil)

	token, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "5", token)
}
