// ABOUTME: HTTP client for the upstream identity backend
// ABOUTME: Wraps authenticate, register, refresh, fetch-identity, and logout with a typed error taxonomy

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/duospend/gateway/models"
)

// ErrUnavailable marks transport failures, timeouts, and upstream 5xx
// responses. The session stays unresolved: callers must never delete
// cookies on this error.
var ErrUnavailable = errors.New("identity backend unavailable")

// RejectedError is an explicit upstream rejection (4xx). Only this error
// kind may trigger cookie deletion.
type RejectedError struct {
	StatusCode int
	Detail     string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("identity backend rejected request (status %d): %s", e.StatusCode, e.Detail)
}

// Client talks to the identity backend. Every call carries a bounded
// deadline; the gateway never blocks on the upstream indefinitely.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an upstream client. timeout bounds every call
// (including connection setup); it maps expiry to ErrUnavailable.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Authenticate exchanges credentials for a token pair.
func (c *Client) Authenticate(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := c.postJSON(ctx, "/api/v1/auth/login", req, &pair, http.StatusOK); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Register creates an account and returns its first token pair.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := c.postJSON(ctx, "/api/v1/auth/register", req, &pair, http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh exchanges a refresh token for a rotated pair. A 401/403 means
// the token is invalid or already rotated (RejectedError); anything
// transport-shaped is ErrUnavailable.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	var pair models.TokenPair
	if err := c.postJSON(ctx, "/api/v1/auth/refresh", body, &pair, http.StatusOK); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, fmt.Errorf("%w: refresh response missing tokens", ErrUnavailable)
	}
	return &pair, nil
}

// FetchIdentity resolves an access token into the user projection.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*models.Identity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var identity models.Identity
	if err := c.do(req, &identity, http.StatusOK); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Logout notifies the backend that an access token's session ended.
// Best-effort: callers ignore the result from the browser's perspective.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return c.do(req, nil, http.StatusOK, http.StatusNoContent)
}

// Ping probes upstream reachability for the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil, http.StatusOK)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any, okStatuses ...int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out, okStatuses...)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes the request and classifies the outcome: transport errors
// and 5xx become ErrUnavailable, 4xx becomes RejectedError with the
// upstream's detail message, expected statuses decode into out.
func (c *Client) do(req *http.Request, out any, okStatuses ...int) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	for _, ok := range okStatuses {
		if resp.StatusCode == ok {
			if out == nil {
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("%w: failed to parse response: %v", ErrUnavailable, err)
			}
			return nil
		}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: upstream returned status %d", ErrUnavailable, resp.StatusCode)
	}

	return &RejectedError{
		StatusCode: resp.StatusCode,
		Detail:     readDetail(resp.Body),
	}
}

// readDetail extracts the {detail} message from an upstream error body,
// falling back to a generic message on malformed bodies.
func readDetail(body io.Reader) string {
	var errBody models.ErrorResponse
	if err := json.NewDecoder(body).Decode(&errBody); err == nil && errBody.Detail != "" {
		return errBody.Detail
	}
	return "request rejected"
}
