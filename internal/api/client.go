// Package api is the single egress point to the storefront backend. It
// attaches the bearer token to outgoing requests and intercepts ban
// responses before they reach the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/storefront/internal/core/events"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "shop-cli"

	// maxErrorBody bounds how much of a non-JSON error body becomes a message.
	maxErrorBody = 512
)

// Client sends JSON requests to the backend.
type Client struct {
	baseURL    string
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
	tokens     TokenSource
	publisher  events.Publisher
	log        zerolog.Logger
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody is the error envelope returned by the backend.
type errorBody struct {
	Message string `json:"message"`
}

// Do sends a request and decodes a 2xx JSON response into out. body is JSON
// encoded when non-nil; out may be nil to discard the response.
//
// A 403 whose message mentions "banned" publishes events.BanSignal before
// the error is returned, so every store observes the ban no matter which
// call triggered it.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.log.With().
		Str("method", method).
		Str("path", path).
		Str("request_id", reqID).
		Logger()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("request failed")
		return &NetworkError{Method: method, Path: path, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Cause: fmt.Errorf("read response body: %w", err)}
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request complete")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleError(ctx, method, path, resp.StatusCode, respBody)
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}

	return nil
}

func (c *Client) handleError(ctx context.Context, method, path string, status int, body []byte) error {
	apiErr := &APIError{
		Status:  status,
		Message: errorMessage(body),
		Method:  method,
		Path:    path,
	}

	if IsBan(status, apiErr.Message) {
		apiErr.banned = true
		c.log.Warn().
			Str("method", method).
			Str("path", path).
			Str("message", apiErr.Message).
			Msg("account banned")

		if c.publisher != nil {
			c.publisher.Publish(ctx, events.BanSignal{
				Method:  method,
				Path:    path,
				Message: apiErr.Message,
			})
		}
	}

	return apiErr
}

// IsBan reports whether a response is a ban: status 403 with a message
// containing "banned" in any case.
func IsBan(status int, message string) bool {
	return status == http.StatusForbidden &&
		strings.Contains(strings.ToLower(message), "banned")
}

// errorMessage extracts the `message` field, falling back to the trimmed body.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}
