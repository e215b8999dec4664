// ABOUTME: Typed HTTP client for the session gateway API
// ABOUTME: Holds cookies in a jar; callers never see or handle raw tokens

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/duospend/gateway/models"
)

// APIError is a non-2xx gateway response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Detail)
}

// Client calls the gateway's auth proxy endpoints. The cookie jar carries
// the httpOnly token pair between calls; the client itself never reads
// token values.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a gateway client for the given base URL.
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
			// Logout uses a redirect on GET; API calls should observe
			// statuses directly rather than follow them.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Login authenticates and returns the signed-in identity.
func (c *Client) Login(ctx context.Context, emailOrUsername, password string) (*models.Identity, error) {
	body := models.LoginRequest{EmailOrUsername: emailOrUsername, Password: password}
	var resp models.AuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", body, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Register creates an account and returns the new identity.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.Identity, error) {
	var resp models.AuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", req, &resp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout ends the session. The gateway guarantees success from the
// client's perspective; only transport failures surface as errors.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil, http.StatusOK)
}

// Me returns the current identity, or an APIError with status 401 when
// the session is anonymous or expired.
func (c *Client) Me(ctx context.Context) (*models.Identity, error) {
	var identity models.Identity
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, &identity, http.StatusOK); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Refresh rotates the session's token pair.
func (c *Client) Refresh(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/auth/refresh", nil, nil, http.StatusOK)
}

// HealthStatus is the gateway health report.
type HealthStatus struct {
	Status   string `json:"status"`
	Upstream string `json:"upstream"`
}

// Health probes the gateway.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.call(ctx, http.MethodGet, "/api/auth/health", nil, &status, http.StatusOK); err != nil {
		return nil, err
	}
	return &status, nil
}

// ExportCookies returns the session cookies for persistence between
// processes (used by the CLI).
func (c *Client) ExportCookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// ImportCookies restores previously exported session cookies.
func (c *Client) ImportCookies(cs []*http.Cookie) {
	c.httpClient.Jar.SetCookies(c.baseURL, cs)
}

func (c *Client) call(ctx context.Context, method, path string, body, out any, okStatus int) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != okStatus {
		var errBody models.ErrorResponse
		detail := "request failed"
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Detail != "" {
			detail = errBody.Detail
		}
		return &APIError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
