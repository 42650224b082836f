package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"eventplanner-web/internal/api"
	"eventplanner-web/internal/config"
	"eventplanner-web/internal/session"
)

const (
	ctxSession  = "evp.session"
	ctxClient   = "evp.client"
	ctxNavigate = "evp.navigate"

	flashSessionName = "evp_flash"
	flashError       = "error"
	flashSuccess     = "success"

	msgSessionExpired = "Your session has expired. Please log in again."
)

// App holds what the web handlers share across requests.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	kv         session.KV
	flashes    *sessions.CookieStore
	httpClient *http.Client
}

// NewApp wires the web front-end. kv may be nil for cookie-only sessions.
func NewApp(cfg *config.Config, logger *slog.Logger, kv session.KV) *App {
	flashes := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	flashes.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		kv:         kv,
		flashes:    flashes,
		httpClient: &http.Client{Timeout: cfg.API.Timeout},
	}
}

// sessionFor returns the session slot of the browser behind c.
func (a *App) sessionFor(c *gin.Context) session.Store {
	if v, ok := c.Get(ctxSession); ok {
		return v.(session.Store)
	}

	opts := session.CookieOptions{
		MaxAge: a.cfg.Session.MaxAge,
		Secure: a.cfg.Session.Secure,
	}

	var store session.Store
	if a.kv != nil {
		store = session.NewKVStore(c.Request.Context(), a.kv, c.Writer, c.Request, opts, a.logger)
	} else {
		opts.Name = a.cfg.Session.CookieName
		store = session.NewCookieStore(c.Writer, c.Request, []byte(a.cfg.Session.Secret), opts)
	}
	store = session.Synchronized(store)

	c.Set(ctxSession, store)
	return store
}

// ginNavigator records where the auth gate wants the browser to go. Handlers
// turn it into a redirect once the API call returns.
type ginNavigator struct {
	c *gin.Context
}

func (n ginNavigator) Navigate(route string) {
	n.c.Set(ctxNavigate, route)
}

// clientFor returns an API client acting for the browser behind c.
func (a *App) clientFor(c *gin.Context) *api.Client {
	if v, ok := c.Get(ctxClient); ok {
		return v.(*api.Client)
	}
	client := api.NewClient(a.cfg.API.BaseURL, a.sessionFor(c),
		api.WithHTTPClient(a.httpClient),
		api.WithNavigator(ginNavigator{c: c}),
		api.WithLogger(a.logger),
	)
	c.Set(ctxClient, client)
	return client
}

// sessionExpired reports whether the auth gate rejected the session during
// this request.
func sessionExpired(c *gin.Context, err error) bool {
	if errors.Is(err, api.ErrAuthExpired) {
		return true
	}
	_, navigated := c.Get(ctxNavigate)
	return navigated
}

// redirectToLogin ends the request with a redirect to the login page.
func (a *App) redirectToLogin(c *gin.Context, flash string) {
	if flash != "" {
		a.addFlash(c, flashError, flash)
	}
	c.Redirect(http.StatusSeeOther, api.LoginRoute)
	c.Abort()
}

// currentUser returns the id of the logged-in user, or redirects to login when
// the stored token is not a usable id.
func (a *App) currentUser(c *gin.Context) (int64, bool) {
	client := a.clientFor(c)
	id, err := client.Auth.CurrentUserID()
	if err != nil {
		_ = client.Auth.Logout()
		a.redirectToLogin(c, "")
		return 0, false
	}
	return id, true
}

func (a *App) addFlash(c *gin.Context, kind, msg string) {
	sess, _ := a.flashes.Get(c.Request, flashSessionName)
	sess.AddFlash(msg, kind)
	if err := sess.Save(c.Request, c.Writer); err != nil {
		a.logger.Warn("save flash", slog.String("error", err.Error()))
	}
}

// popFlashes returns and removes the pending flash messages by kind.
func (a *App) popFlashes(c *gin.Context) map[string][]string {
	sess, _ := a.flashes.Get(c.Request, flashSessionName)

	out := map[string][]string{}
	changed := false
	for _, kind := range []string{flashError, flashSuccess} {
		for _, f := range sess.Flashes(kind) {
			changed = true
			if s, ok := f.(string); ok {
				out[kind] = append(out[kind], s)
			}
		}
	}
	if changed {
		if err := sess.Save(c.Request, c.Writer); err != nil {
			a.logger.Warn("save flash", slog.String("error", err.Error()))
		}
	}
	return out
}
