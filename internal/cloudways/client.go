// Package cloudways provides a client for the Cloudways REST API: OAuth
// token exchange, app inventory listing, and server scaling operations.
package cloudways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/fakelit/scalewatch/internal/sizing"
)

const (
	// defaultBaseURL is the production Cloudways API endpoint.
	defaultBaseURL = "https://api.cloudways.com/api/v1"

	// defaultTimeout is the per-request timeout.
	defaultTimeout = 30 * time.Second

	// tokenSlack refreshes the OAuth token this long before it expires so an
	// in-flight request never races expiry.
	tokenSlack = 60 * time.Second
)

// Client is an authenticated Cloudways API client. It exchanges the account
// email and API key for a bearer token on first use and refreshes it before
// expiry. Client is safe for concurrent use.
type Client struct {
	email      string
	apiKey     string
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Cloudways client for the given account credentials.
func NewClient(email, apiKey string, opts ...Option) (*Client, error) {
	if email == "" || apiKey == "" {
		return nil, fmt.Errorf("cloudways: email and api key are required")
	}

	c := &Client{
		email:      email,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// token returns a valid access token, performing the OAuth exchange if the
// cached token is missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Add(tokenSlack).Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("email", c.email)
	form.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("cloudways: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", errors.ErrProviderUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("cloudways: token exchange failed with status %d: %s",
			resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("cloudways: decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("cloudways: token exchange returned empty token")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// newRequest builds an authenticated request against the API.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("cloudways: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// do executes a request and decodes the JSON response into v (when non-nil).
func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Token may have been revoked; drop the cache so the next call
		// re-authenticates.
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
		return errors.ErrProviderUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cloudways: request failed with status %d: %s",
			resp.StatusCode, string(body))
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("cloudways: decode response: %w", err)
		}
	}
	return nil
}

// ListApps returns every app provisioned on the given server.
func (c *Client) ListApps(ctx context.Context, serverID string) ([]App, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/app", nil)
	if err != nil {
		return nil, err
	}

	var list appListResponse
	if err := c.do(req, &list); err != nil {
		return nil, err
	}

	var apps []App
	for _, app := range list.Apps {
		if app.ServerID == serverID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

// ScaleServer submits a resize request for the server. The provider applies
// the change asynchronously; poll ServerStatus until Scaling reports false.
func (c *Client) ScaleServer(ctx context.Context, serverID string, spec sizing.ResourceSpec) error {
	payload := scaleRequest{
		ServerID:  serverID,
		RAMGB:     spec.RAMGB,
		CPUCores:  spec.CPUCores,
		StorageGB: spec.StorageGB,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cloudways: marshal scale request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/server/scaleServer", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		// Transport and auth failures pass through unchanged so callers can
		// distinguish transient errors from a provider rejection.
		if errors.Is(err, errors.ErrProviderUnavailable) || errors.Is(err, errors.ErrProviderUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %v", errors.ErrScaleRejected, err)
	}
	return nil
}

// ServerStatus returns the current status of the server.
func (c *Client) ServerStatus(ctx context.Context, serverID string) (Server, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/server", nil)
	if err != nil {
		return Server{}, err
	}

	var list serverListResponse
	if err := c.do(req, &list); err != nil {
		return Server{}, err
	}

	for _, srv := range list.Servers {
		if srv.ID == serverID {
			return srv, nil
		}
	}
	return Server{}, fmt.Errorf("cloudways: server %q not found", serverID)
}
