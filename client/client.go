package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
	"github.com/NSBM-SE-Projects/atelier/pkg/httpclient"
)

// DefaultBaseURL is used when neither an option nor the environment override
// the API location.
const DefaultBaseURL = "http://localhost:8080/api"

// baseURLEnvVar overrides the default API base URL.
const baseURLEnvVar = "ATELIER_API_URL"

// requestTimeout bounds every API call.
const requestTimeout = 10 * time.Second

// Client is an authenticated HTTP client for the storefront API. It attaches
// the bearer token from the persisted user object on every request and
// applies the global 401 policy: wipe the persisted user, invoke the
// OnUnauthorized hook, and return ErrUnauthorized.
type Client struct {
	baseURL    string
	httpClient *http.Client
	storage    Storage

	// OnUnauthorized is invoked after an expired or invalid session is wiped,
	// typically to redirect to a login screen. May be nil.
	OnUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client. The fixed request
// timeout still applies unless the replacement sets its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a storefront API client backed by the given storage.
func New(storage Storage, opts ...Option) *Client {
	baseURL := DefaultBaseURL
	if env := os.Getenv(baseURLEnvVar); env != "" {
		baseURL = env
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		storage:    storage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// persistedUser is the subset of the stored user object the client reads.
type persistedUser struct {
	Token string `json:"token"`
}

// bearerToken returns the token from the persisted user object, if any.
func (c *Client) bearerToken() string {
	raw, ok := c.storage.Get(UserKey)
	if !ok || raw == "" {
		return ""
	}

	var u persistedUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return ""
	}
	return u.Token
}

// do executes an API request. body, when non-nil, is JSON-encoded; out, when
// non-nil, receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	url := c.baseURL + path
	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return c.handleUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// handleUnauthorized wipes the persisted session and signals the redirect
// hook. This is global policy: individual callers never handle 401 themselves.
func (c *Client) handleUnauthorized() error {
	_ = c.storage.Delete(UserKey)
	if c.OnUnauthorized != nil {
		c.OnUnauthorized()
	}
	return apperrors.ErrUnauthorized
}

// Get performs an authenticated GET against the API.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs an authenticated POST against the API.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put performs an authenticated PUT against the API.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete performs an authenticated DELETE against the API.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}
