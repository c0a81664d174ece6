// Package authapi talks to the pantry backend authentication endpoints.
// It is pure request/response mapping; session state lives elsewhere.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result is a successful auth exchange: a fresh token plus display claims.
type Result struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Error carries the backend's opaque failure detail for an auth call.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("authapi: backend returned status %d", e.Status)
	}
	return fmt.Sprintf("authapi: backend returned status %d: %s", e.Status, e.Detail)
}

// Client wraps interactions with the /api/auth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client rooted at the backend base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email/password for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (Result, error) {
	body, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return Result{}, fmt.Errorf("authapi: encode credentials: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("authapi: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.exchange(req)
}

// Refresh trades the currently held token for a renewed one.
func (c *Client) Refresh(ctx context.Context, existingToken string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		return Result{}, fmt.Errorf("authapi: build refresh request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+existingToken)
	return c.exchange(req)
}

// Reauthenticate verifies credentials without establishing a new session.
// It reports true only on a 2xx response; the held token is never replaced.
func (c *Client) Reauthenticate(ctx context.Context, email, password string) (bool, error) {
	body, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return false, fmt.Errorf("authapi: encode credentials: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/re-auth", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("authapi: build re-auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("authapi: re-auth: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

func (c *Client) exchange(req *http.Request) (Result, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("authapi: %s: %w", req.URL.Path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The body is opaque error text, not a parsed structure.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, &Error{Status: resp.StatusCode, Detail: strings.TrimSpace(string(detail))}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("authapi: decode response: %w", err)
	}
	return result, nil
}
