// Package api is the client for the events HTTP API.
//
// Every request goes through the auth gate (AuthTransport), so protected calls
// carry the session token and a rejected token ends the session:
//
//	store := session.NewFileStore(path)
//	client := api.NewClient("https://events.example.com", store)
//	resp, err := client.Auth.Login(ctx, api.LoginRequest{Email: email, Password: pw})
//	events, err := client.Events.Organized(ctx, resp.UserID)
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventplanner-web/internal/session"
)

const (
	headerAccept      = "Accept"
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
	contentTypeJSON   = "application/json"

	// DefaultUserAgent identifies the client to the API.
	DefaultUserAgent = "eventplanner-web/1.0"
)

// Client issues requests against one API base URL on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	navigator  Navigator
	logger     *slog.Logger
	userAgent  string

	Auth   *AuthService
	Events *EventsService
	Users  *UsersService
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client whose transport carries the requests. The
// client itself is copied, so one *http.Client can be shared by many Clients.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets an overall request timeout. Without it the transport
// defaults apply.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithNavigator sets where the auth gate sends the client after a 401.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for baseURL whose session lives in store.
func NewClient(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		store:      store,
		logger:     slog.Default(),
		userAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Transport = &AuthTransport{
		Base:      instrument(transportOf(c.httpClient)),
		Store:     store,
		Navigator: c.navigator,
		Logger:    c.logger,
	}
	c.httpClient = &hc

	c.Auth = &AuthService{client: c}
	c.Events = &EventsService{client: c}
	c.Users = &UsersService{client: c}

	return c
}

func transportOf(hc *http.Client) http.RoundTripper {
	if hc.Transport != nil {
		return hc.Transport
	}
	return http.DefaultTransport
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the session store the client reads and writes.
func (c *Client) Store() session.Store {
	return c.store
}

// BuildURL joins the base URL and path with exactly one slash.
func (c *Client) BuildURL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Request describes one API call. Query is merged with any query already in Path.
// Header values replace the defaults, including Content-Type.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Header http.Header
}

// Do performs req and decodes a JSON response into out (which may be nil).
// Every failure is a *NetworkError.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	reqURL := c.BuildURL(req.Path)

	parsed, err := url.Parse(reqURL)
	if err != nil {
		return &NetworkError{Method: req.Method, URL: reqURL, Path: req.Path, Err: fmt.Errorf("build URL: %w", err)}
	}
	if len(req.Query) > 0 {
		q := parsed.Query()
		for key, values := range req.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		parsed.RawQuery = q.Encode()
	}
	reqURL = parsed.String()

	fail := func(status int, err error) error {
		return &NetworkError{Method: req.Method, URL: reqURL, Path: parsed.Path, StatusCode: status, Err: err}
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return fail(0, fmt.Errorf("marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, bodyReader)
	if err != nil {
		return fail(0, fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set(headerAccept, contentTypeJSON)
	httpReq.Header.Set(headerUserAgent, c.userAgent)
	if req.Body != nil {
		httpReq.Header.Set(headerContentType, contentTypeJSON)
	}
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("read response body: %w", err))
	}

	c.logger.Debug("api request",
		slog.String("method", req.Method),
		slog.String("path", parsed.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(req.Method, reqURL, parsed.Path, resp.StatusCode, respBody)
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fail(resp.StatusCode, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}
