// Package api implements the HTTP client for the upstream transaction API.
// Every endpoint is a JSON POST; responses carry an application-level error
// code that must equal "no-error" even on HTTP 200.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blueshirts/cofi/internal/cache"
	"github.com/blueshirts/cofi/internal/core"
	"github.com/blueshirts/cofi/internal/source"
)

const (
	loginPath        = "/login"
	accountsPath     = "/get-accounts"
	transactionsPath = "/get-all-transactions"

	// The only application-level error code considered successful.
	noError = "no-error"
)

// Client talks to the upstream transaction API. Sessions are cached per user
// with a TTL so long-running callers (the sync worker) do not re-login every
// cycle.
type Client struct {
	base     string
	appToken string
	http     *http.Client
	sessions *cache.LRUCache[source.Credentials]
}

// Ensure interface conformance
var (
	_ source.Authenticator     = (*Client)(nil)
	_ source.TransactionSource = (*Client)(nil)
	_ source.AccountSource     = (*Client)(nil)
)

// NewClient creates a client for the API at baseURL. appToken is the default
// application token used when a login does not supply its own. timeout
// bounds each request; credentialTTL bounds session reuse.
func NewClient(baseURL, appToken string, timeout, credentialTTL time.Duration) *Client {
	return &Client{
		base:     strings.TrimRight(baseURL, "/"),
		appToken: appToken,
		http:     &http.Client{Timeout: timeout},
		sessions: cache.NewLRUCache[source.Credentials](64, credentialTTL),
	}
}

// envelope is the common response shape: an error code plus the
// endpoint-specific payload.
type envelope struct {
	Error        string             `json:"error"`
	UID          int64              `json:"uid,omitempty"`
	Token        string             `json:"token,omitempty"`
	Accounts     []core.Account     `json:"accounts,omitempty"`
	Transactions []core.Transaction `json:"transactions,omitempty"`
}

type loginRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Args     map[string]any `json:"args"`
}

type argsRequest struct {
	Args source.Credentials `json:"args"`
}

// Login obtains session credentials for the user, reusing a cached session
// when one is still fresh. Missing user or pass fails immediately without
// any network call.
func (c *Client) Login(ctx context.Context, user, pass, appToken string) (source.Credentials, error) {
	if user == "" || pass == "" {
		return source.Credentials{}, source.ErrMissingCredentials
	}
	if appToken == "" {
		appToken = c.appToken
	}

	if creds, ok := c.sessions.Get(user); ok && creds.APIToken == appToken {
		slog.DebugContext(ctx, "Reusing cached session", "user", user, "uid", creds.UID)
		return creds, nil
	}

	resp, err := c.post(ctx, loginPath, loginRequest{
		Email:    user,
		Password: pass,
		Args:     map[string]any{"api-token": appToken},
	})
	if err != nil {
		if resp != nil && resp.Error != noError {
			// The transport succeeded but the upstream rejected the login.
			return source.Credentials{}, fmt.Errorf("%w: %s", source.ErrAuthRejected, resp.Error)
		}
		return source.Credentials{}, err
	}

	creds := source.Credentials{
		UID:      resp.UID,
		Token:    resp.Token,
		APIToken: appToken,
	}
	c.sessions.Set(user, creds)
	slog.InfoContext(ctx, "Logged in", "user", user, "uid", creds.UID)
	return creds, nil
}

// Transactions fetches the user's complete transaction history. The upstream
// returns it ascending by transaction time; this is assumed, not verified.
func (c *Client) Transactions(ctx context.Context, creds source.Credentials) ([]core.Transaction, error) {
	resp, err := c.post(ctx, transactionsPath, argsRequest{Args: creds})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Fetched transactions", "uid", creds.UID, "transaction_count", len(resp.Transactions))
	return resp.Transactions, nil
}

// Accounts fetches the user's account list.
func (c *Client) Accounts(ctx context.Context, creds source.Credentials) ([]core.Account, error) {
	resp, err := c.post(ctx, accountsPath, argsRequest{Args: creds})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Fetched accounts", "uid", creds.UID, "account_count", len(resp.Accounts))
	return resp.Accounts, nil
}

// post sends one JSON request and validates both the HTTP status and the
// application-level error code. On an error-code failure the decoded
// envelope is returned alongside the error so callers can classify it.
func (c *Client) post(ctx context.Context, path string, body any) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", source.ErrUpstream, url, err)
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "Upstream call",
		"url", url,
		"request_id", requestID,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: invalid response code %d for %s", source.ErrUpstream, resp.StatusCode, url)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode response from %s: %v", source.ErrUpstream, url, err)
	}
	if env.Error == "" {
		return nil, fmt.Errorf("%w: response from %s has no error code", source.ErrUpstream, url)
	}
	if env.Error != noError {
		return &env, fmt.Errorf("%w: error code %q from %s", source.ErrUpstream, env.Error, url)
	}
	return &env, nil
}
