package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// ErrNotFound is returned by a KV backend when the key holds no value.
var ErrNotFound = errors.New("session: key not found")

// KV is a server-side key/value backend for browser slots.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KVStore keeps the token server-side. The browser only holds an opaque id in a
// cookie, which is issued on the first Save.
type KVStore struct {
	ctx    context.Context
	kv     KV
	w      http.ResponseWriter
	opts   CookieOptions
	logger *slog.Logger

	id string
}

// NewKVStore binds a store to the browser that sent r.
func NewKVStore(ctx context.Context, kv KV, w http.ResponseWriter, r *http.Request, opts CookieOptions, logger *slog.Logger) *KVStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &KVStore{
		ctx:    ctx,
		kv:     kv,
		w:      w,
		opts:   opts.withDefaults(DefaultBrowserCookieName),
		logger: logger,
	}
	if c, err := r.Cookie(s.opts.Name); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			s.id = c.Value
		}
	}
	return s
}

// BrowserID returns the id of the bound browser, or "" before the first Save.
func (s *KVStore) BrowserID() string {
	return s.id
}

func (s *KVStore) Save(token string) error {
	if token == "" {
		return s.Clear()
	}
	if s.id == "" {
		s.id = uuid.NewString()
		http.SetCookie(s.w, s.opts.cookie(s.id))
	}
	return s.kv.Set(s.ctx, s.id, token)
}

// Get reads a backend failure as "no session"; the failure is logged.
func (s *KVStore) Get() (string, bool) {
	if s.id == "" {
		return "", false
	}
	token, err := s.kv.Get(s.ctx, s.id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("session backend read failed", slog.String("error", err.Error()))
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *KVStore) Clear() error {
	if s.id == "" {
		return nil
	}
	return s.kv.Delete(s.ctx, s.id)
}
