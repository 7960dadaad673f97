package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// tokenInjector is a custom http.RoundTripper that attaches the current
// bearer token to each outgoing request. The token is mutable; when two
// logins race, the last writer wins.
type tokenInjector struct {
	mu    sync.RWMutex
	token string
	next  http.RoundTripper
}

// RoundTrip intercepts the request, adds the Authorization header when a
// token is set, and passes it to the next transport.
func (t *tokenInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.RLock()
	token := t.token
	t.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.next.RoundTrip(req)
}

func (t *tokenInjector) set(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

// Client talks to the wallet backend. It owns the transport configuration
// and the current bearer token, and exposes one method per backend endpoint.
// The token is opaque: the client never inspects, refreshes, or expires it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	injector   *tokenInjector
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. The client is copied, and
// its transport is wrapped so the bearer token is still injected.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		c.httpClient = &clone
	}
}

// WithObserver sets the diagnostics hook fired around every request.
func WithObserver(obs Observer) Option {
	return func(c *Client) {
		c.observer = obs
	}
}

// NewClient creates a new wallet API client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		observer: SlogObserver{Logger: slog.Default()},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	// Wrap whatever transport is configured so the token injection happens
	// last, right before the wire.
	next := c.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c.injector = &tokenInjector{next: next}
	c.httpClient.Transport = c.injector

	return c
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.injector.set(token)
}

// ClearToken drops the current token. Idempotent; safe to call when no token
// is set.
func (c *Client) ClearToken() {
	c.injector.set("")
}

// Login authenticates the account and stores the returned token, which every
// later request will carry. A 401 from the backend becomes
// ErrInvalidCredentials; any other failure is returned as-is.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/users/login", req)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	token := decodeString(data)
	c.SetToken(token)
	return token, nil
}

// Register creates a new account and stores the returned credential as the
// current token. A 400 from the backend becomes ErrUserAlreadyExists; any
// other failure is returned as-is.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/users/register", req)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusBadRequest {
			return "", ErrUserAlreadyExists
		}
		return "", err
	}
	token := decodeString(data)
	c.SetToken(token)
	return token, nil
}

// GetBalance returns the current balance of the given account.
func (c *Client) GetBalance(ctx context.Context, email string) (float64, error) {
	data, err := c.do(ctx, http.MethodGet, "/wallet/balance?email="+url.QueryEscape(email), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBalanceFetch, err)
	}
	var balance float64
	if err := json.Unmarshal(data, &balance); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBalanceFetch, err)
	}
	return balance, nil
}

// Transfer moves funds between two accounts and returns the backend's
// confirmation message. All failures, including an unknown receiver or
// insufficient funds, collapse into ErrTransfer.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/wallet/transfer", req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	return decodeString(data), nil
}

// RequestInstantDebit asks the payer's bank to push funds to the collector.
// The backend's response payload is returned undecoded.
func (c *Client) RequestInstantDebit(ctx context.Context, req InstantDebitRequest) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodPost, "/wallet/instant-debit", req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstantDebit, err)
	}
	return json.RawMessage(data), nil
}

// GetUserEmailByWalletID resolves a wallet id to the owning account's email.
func (c *Client) GetUserEmailByWalletID(ctx context.Context, walletID string) (string, error) {
	data, err := c.do(ctx, http.MethodGet, "/wallet/user-email?walletId="+url.QueryEscape(walletID), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLookup, err)
	}
	return decodeString(data), nil
}

// GetTransactions returns the account's transaction history in exactly the
// order the backend sent it.
func (c *Client) GetTransactions(ctx context.Context, email string) ([]Transaction, error) {
	data, err := c.do(ctx, http.MethodGet, "/transactions?email="+url.QueryEscape(email), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransactionsFetch, err)
	}
	var transactions []Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransactionsFetch, err)
	}
	return transactions, nil
}

// do sends one JSON request and returns the raw response body. Non-2xx
// responses come back as *StatusError. The observer fires before the request
// goes out and after the response or transport failure comes back.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		payload = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.New().String()
	req.Header.Set(requestIDHeader, requestID)

	info := RequestInfo{ID: requestID, Method: method, URL: req.URL.String()}
	c.observer.RequestSent(info)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.ResponseReceived(ResponseInfo{
			ID: requestID, Method: method, URL: info.URL,
			Duration: time.Since(start), Err: err,
		})
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observer.ResponseReceived(ResponseInfo{
			ID: requestID, Method: method, URL: info.URL,
			Status: resp.StatusCode, Duration: time.Since(start), Err: err,
		})
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.observer.ResponseReceived(ResponseInfo{
		ID: requestID, Method: method, URL: info.URL,
		Status: resp.StatusCode, Duration: time.Since(start),
	})

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// decodeString reads a bare string response. The backend serves these either
// JSON-quoted or as plain text depending on the endpoint.
func decodeString(data []byte) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(data))
}
