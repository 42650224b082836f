package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultCookieName carries the signed token for CookieStore.
	DefaultCookieName = "evp_session"
	// DefaultBrowserCookieName carries the browser id for KVStore.
	DefaultBrowserCookieName = "evp_sid"
)

// CookieOptions controls the cookie written by the browser-bound stores.
type CookieOptions struct {
	Name   string
	Path   string
	MaxAge time.Duration
	Secure bool
}

func (o CookieOptions) withDefaults(name string) CookieOptions {
	if o.Name == "" {
		o.Name = name
	}
	if o.Path == "" {
		o.Path = "/"
	}
	return o
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     o.Path,
		MaxAge:   int(o.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) expired() *http.Cookie {
	c := o.cookie("")
	c.MaxAge = -1
	return c
}

// tokenClaims is the payload of the session cookie. It has no expiry: the slot
// lives until logout or until the API rejects the token.
type tokenClaims struct {
	Token string `json:"tok"`
	jwt.RegisteredClaims
}

// SignToken wraps token in an HS256 JWT signed with secret.
func SignToken(secret []byte, token string) (string, error) {
	claims := tokenClaims{
		Token: token,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a value produced by SignToken and returns the token inside.
func ParseToken(secret []byte, value string) (string, error) {
	parsed, err := jwt.ParseWithClaims(value, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Token, nil
}

// CookieStore is the browser slot of the web front-end. The token itself lives
// in the browser inside a signed cookie; a cookie that fails verification reads
// as "no session".
//
// A CookieStore is bound to one request/response pair.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secret []byte
	opts   CookieOptions

	loaded bool
	token  string
	ok     bool
}

// NewCookieStore binds a store to the request and its response writer.
func NewCookieStore(w http.ResponseWriter, r *http.Request, secret []byte, opts CookieOptions) *CookieStore {
	return &CookieStore{
		w:      w,
		r:      r,
		secret: secret,
		opts:   opts.withDefaults(DefaultCookieName),
	}
}

func (s *CookieStore) Save(token string) error {
	if token == "" {
		return s.Clear()
	}
	signed, err := SignToken(s.secret, token)
	if err != nil {
		return err
	}
	http.SetCookie(s.w, s.opts.cookie(signed))
	s.loaded, s.token, s.ok = true, token, true
	return nil
}

func (s *CookieStore) Get() (string, bool) {
	if !s.loaded {
		s.load()
	}
	return s.token, s.ok
}

func (s *CookieStore) Clear() error {
	http.SetCookie(s.w, s.opts.expired())
	s.loaded, s.token, s.ok = true, "", false
	return nil
}

func (s *CookieStore) load() {
	s.loaded = true
	c, err := s.r.Cookie(s.opts.Name)
	if err != nil || c.Value == "" {
		return
	}
	token, err := ParseToken(s.secret, c.Value)
	if err != nil || token == "" {
		return
	}
	s.token, s.ok = token, true
}
