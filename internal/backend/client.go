// Package backend is the single choke point for outbound calls to the
// Omnisearch backend. It owns authentication-token caching, the one-shot
// retry on token expiry, and the snake_case to camelCase translation at the
// wire boundary.
package backend

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

	app_errors "omnisearch/gateway/internal/errors"
)

// ErrNoSession is returned when a call reaches the client without a
// signed-in session in its context.
var ErrNoSession = errors.New("backend: no signed-in session")

const defaultTimeout = 60 * time.Second

// Client talks to the Omnisearch backend over JSON/HTTP with bearer-token
// auth. The token is fetched from the TokenSource on first use and cached
// until it expires (observed as a 401) or the signed-in identity changes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource

	// onInvalidate is called when the tracked identity changes, so layers
	// above can drop every cached query result belonging to the previous
	// user.
	onInvalidate func()

	mu          sync.Mutex
	cachedToken string
	tracked     Identity
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithInvalidateHook registers the cache-invalidation callback fired on
// identity change.
func WithInvalidateHook(fn func()) Option {
	return func(c *Client) { c.onInvalidate = fn }
}

// NewClient builds a client for the backend at baseURL, authenticating
// every request through tokens.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// requestOptions carries the per-call knobs for request.
type requestOptions struct {
	method  string
	body    io.Reader
	headers http.Header
	query   url.Values
	// noAuth skips the bearer token entirely; used by the sign-in and
	// registration calls that exist to obtain one.
	noAuth bool
}

// token returns a credential for the current identity, preferring the
// cached one. The second return reports whether the cache was hit, which
// gates the one-shot 401 retry.
func (c *Client) token(ctx context.Context) (string, bool, error) {
	ident, err := c.tokens.Identity(ctx)
	if err != nil {
		return "", false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ident != c.tracked {
		// A different user signed in between calls: drop the previous
		// user's token and every cached query result.
		c.cachedToken = ""
		c.tracked = ident
		if c.onInvalidate != nil {
			c.onInvalidate()
		}
	}

	if c.cachedToken != "" {
		return c.cachedToken, true, nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", false, err
	}
	c.cachedToken = token
	return token, false, nil
}

// clearToken drops the cached token so the next call fetches a fresh one.
func (c *Client) clearToken() {
	c.mu.Lock()
	c.cachedToken = ""
	c.mu.Unlock()
}

// do performs one authenticated round trip and hands back the raw response.
// Callers own the body. A 401 while a cached token was in use is retried
// exactly once with a freshly fetched token; a second 401 is final, which
// keeps persistent auth failure from recursing.
func (c *Client) do(ctx context.Context, endpoint string, opts requestOptions) (*http.Response, error) {
	if opts.noAuth {
		return c.send(ctx, endpoint, opts, "")
	}

	token, fromCache, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, endpoint, opts, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && fromCache {
		_ = resp.Body.Close()
		c.clearToken()
		slog.Debug("Cached backend token rejected, retrying with a fresh one", "endpoint", endpoint)

		token, _, err = c.token(ctx)
		if err != nil {
			return nil, err
		}
		return c.send(ctx, endpoint, opts, token)
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, endpoint string, opts requestOptions, token string) (*http.Response, error) {
	method := opts.method
	if method == "" {
		method = http.MethodGet
	}

	// Bodies must be replayable for the 401 retry, so buffer them once.
	var body io.Reader
	if opts.body != nil {
		buf, ok := opts.body.(*bytes.Reader)
		if ok {
			if _, err := buf.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
			body = buf
		} else {
			data, err := io.ReadAll(opts.body)
			if err != nil {
				return nil, err
			}
			rd := bytes.NewReader(data)
			opts.body = rd
			body = rd
		}
	}

	target := c.baseURL + endpoint
	if len(opts.query) > 0 {
		target += "?" + opts.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if opts.body != nil && opts.headers.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range opts.headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	return resp, nil
}

// request performs an authenticated JSON call and decodes the response into
// out (which may be nil for fire-and-forget calls). Responses with status
// 204/205 or an empty body yield no result. Non-2xx responses become an
// *errors.UpstreamError carrying the backend's status and the message from
// the body's error/detail field.
func (c *Client) request(ctx context.Context, endpoint string, opts requestOptions, out any) error {
	resp, err := c.do(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstreamError(resp)
	}

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusResetContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response body: %w", err)
	}
	if len(data) == 0 || out == nil {
		return nil
	}

	return decodeWire(data, out)
}

// decodeWire translates a snake_cased backend payload into out, whose JSON
// tags follow the gateway's camelCase convention.
func decodeWire(data []byte, out any) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("could not decode backend response: %w", err)
	}

	translated, err := json.Marshal(CamelizeKeys(raw))
	if err != nil {
		return fmt.Errorf("could not re-encode translated response: %w", err)
	}
	if err := json.Unmarshal(translated, out); err != nil {
		return fmt.Errorf("backend response did not match expected schema: %w", err)
	}
	return nil
}

// upstreamError extracts a message from the backend's error body, falling
// back to a generic one, and wraps it with the original status code.
func upstreamError(resp *http.Response) error {
	message := "The backend request failed."

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(data) > 0 {
		var body struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(data, &body) == nil {
			switch {
			case body.Error != "":
				message = body.Error
			case body.Detail != "":
				message = body.Detail
			}
		}
	}

	return &app_errors.UpstreamError{Status: resp.StatusCode, Message: message}
}

// jsonBody marshals v into a replayable request body.
func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}
	return bytes.NewReader(data), nil
}
