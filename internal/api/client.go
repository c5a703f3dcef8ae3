// Package api is the REST transport of the record client. Client talks to a PHR backend
// (or the sandbox) and implements the key fetcher, document repository and record
// repository contracts of the use case layer.
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
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/allisson/phrsdk/internal/errors"
)

const (
	// HeaderSDKVersion carries "<platform> <version>" on every request.
	HeaderSDKVersion = "gc-sdk-version"

	// HeaderTotalCount carries the number of records matching a search.
	HeaderTotalCount = "x-total-count"

	defaultTimeout = 30 * time.Second
)

// Client is a PHR backend client. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenProvider
	version    string
	logger     *slog.Logger

	mu     sync.Mutex
	userID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

// WithRateLimit paces outgoing requests to rps per second with the given burst.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(client *Client) {
		if rps <= 0 {
			client.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTokenProvider sets where bearer tokens come from.
func WithTokenProvider(tokens TokenProvider) Option {
	return func(client *Client) { client.tokens = tokens }
}

// WithUserID skips the /userinfo lookup for the user id.
func WithUserID(userID string) Option {
	return func(client *Client) { client.userID = userID }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) { client.logger = logger }
}

// NewClient creates a client for baseURL. platform and version form the SDK version header.
func NewClient(baseURL, platform, version string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid API base URL %q", baseURL)
	}

	client := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		version:    strings.TrimSpace(platform + " " + version),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SetTokenProvider swaps the token provider, for instance after login.
func (c *Client) SetTokenProvider(tokens TokenProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
	c.userID = ""
}

func (c *Client) tokenProvider() TokenProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// request describes one call to the backend.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	anonymous   bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to encode request body: %w", err)
	}
	return request{method: method, path: path, body: body, contentType: "application/json"}, nil
}

// do sends req and returns the response with its body read. A 401 triggers one token
// refresh and a single retry.
func (c *Client) do(ctx context.Context, req request) (*http.Response, []byte, error) {
	resp, body, err := c.send(ctx, req, false)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.anonymous && c.tokenProvider() != nil {
		c.logger.Debug("access token rejected, refreshing", slog.String("path", req.path))
		resp, body, err = c.send(ctx, req, true)
		if err != nil {
			return nil, nil, err
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, nil, statusError(req, resp.StatusCode, body)
	}
	return resp, body, nil
}

func (c *Client) send(ctx context.Context, req request, refresh bool) (*http.Response, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrTransport, err.Error())
		}
	}

	endpoint := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		endpoint.RawQuery = req.query.Encode()
	}

	var reader io.Reader
	if req.body != nil {
		reader = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint.String(), reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set(HeaderSDKVersion, c.version)

	if tokens := c.tokenProvider(); tokens != nil && !req.anonymous {
		var token string
		if refresh {
			token, err = tokens.Refresh(ctx)
		} else {
			token, err = tokens.Token(ctx)
		}
		if err != nil {
			return nil, nil, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, apperrors.Wrapf(apperrors.ErrTransport, "%s %s: %v", req.method, req.path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperrors.Wrapf(apperrors.ErrTransport, "failed to read response: %v", err)
	}
	return resp, body, nil
}

// errorBody is the error document returned by the backend.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusError(req request, status int, body []byte) error {
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)
	detail := parsed.Message
	if detail == "" {
		detail = parsed.Error
	}
	if detail == "" {
		detail = http.StatusText(status)
	}

	var sentinel error
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		sentinel = apperrors.ErrInvalidInput
	case http.StatusUnauthorized:
		sentinel = apperrors.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = apperrors.ErrForbidden
	case http.StatusNotFound:
		sentinel = apperrors.ErrNotFound
	case http.StatusConflict:
		sentinel = apperrors.ErrConflict
	case http.StatusLocked:
		sentinel = apperrors.ErrLocked
	default:
		sentinel = apperrors.ErrTransport
	}
	return apperrors.Wrapf(sentinel, "%s %s returned %d: %s", req.method, req.path, status, detail)
}

func decodeJSON(body []byte, target any) error {
	if err := json.Unmarshal(body, target); err != nil {
		return apperrors.Wrapf(apperrors.ErrTransport, "malformed response: %v", err)
	}
	return nil
}

// UserID returns the id of the signed-in user, asking /userinfo once when unknown.
func (c *Client) UserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID != "" {
		return userID, nil
	}

	info, err := c.fetchUserInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.Sub, nil
}

func (c *Client) rememberUserID(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

func (c *Client) userPath(ctx context.Context, elem ...string) (string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", err
	}
	parts := append([]string{"users", url.PathEscape(userID)}, elem...)
	return "/" + strings.Join(parts, "/"), nil
}
