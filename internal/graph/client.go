// Package graph is a typed Microsoft Graph REST client scoped to a
// single owner mailbox. Every request is built by ownerURL and sent
// by do, so two guarantees hold structurally for all operations: the
// URL is rooted at /users/{owner}, and the request is sent exactly
// once with an explicit timeout. Throttling, auth failures, and
// transport errors are reported to the caller, never retried.
package graph

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
	"time"

	"github.com/google/uuid"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/common/ratelimit"
	"msgraphdelegatetool/internal/common/validation"
)

const (
	// DefaultBaseURL is the Graph v1.0 endpoint.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	// DefaultTimeout bounds each outbound request.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the $top value for listings, including the
	// single page fetched during partial-ID resolution.
	DefaultPageSize = 100

	maxResponseSize  = 16 << 20
	maxErrorBodySize = 1 << 20
)

// HTTPDoer issues a single HTTP request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies a bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// DelegateContext identifies whose mailbox is addressed. Owner is the
// mailbox every request is rooted at; Delegate is the acting
// assistant, recorded for logging; Timezone is sent as an outlook
// Prefer header so date times come back in the owner's zone.
type DelegateContext struct {
	Owner    string
	Delegate string
	Timezone string
}

// Config assembles a Client.
type Config struct {
	Delegate   DelegateContext
	Tokens     TokenSource
	BaseURL    string             // default DefaultBaseURL
	HTTPClient HTTPDoer           // default http.DefaultClient
	Timeout    time.Duration      // per request, default DefaultTimeout
	PageSize   int                // default DefaultPageSize
	Limiter    *ratelimit.Limiter // nil disables rate limiting
	Logger     *slog.Logger
}

// Client issues typed requests against one owner mailbox.
type Client struct {
	baseURL    string
	delegate   DelegateContext
	tokens     TokenSource
	httpClient HTTPDoer
	timeout    time.Duration
	pageSize   int
	limiter    *ratelimit.Limiter
	log        *slog.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Delegate.Owner == "" {
		return nil, fmt.Errorf("owner mailbox is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if err := validation.ValidatePageSize(pageSize); err != nil {
		return nil, err
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(0)
	}

	return &Client{
		baseURL:    baseURL,
		delegate:   cfg.Delegate,
		tokens:     cfg.Tokens,
		httpClient: httpClient,
		timeout:    timeout,
		pageSize:   pageSize,
		limiter:    limiter,
		log:        cfg.Logger,
	}, nil
}

// Owner returns the mailbox this client is scoped to.
func (c *Client) Owner() string { return c.delegate.Owner }

// PageSize returns the configured listing page size.
func (c *Client) PageSize() int { return c.pageSize }

// ownerURL joins path segments under /users/{owner}. Each segment is
// escaped on its own, so an ID containing a slash cannot change the
// request path.
func (c *Client) ownerURL(query url.Values, segments ...string) string {
	parts := make([]string, 0, len(segments)+2)
	parts = append(parts, "users", c.delegate.Owner)
	parts = append(parts, segments...)

	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// newRequest builds a request with the standard header set: bearer
// token, JSON accept, a fresh client-request-id, and the owner's
// timezone preference.
func (c *Client) newRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, string, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, "", err
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("client-request-id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.delegate.Timezone != "" {
		req.Header.Set("Prefer", fmt.Sprintf("outlook.timezone=%q", c.delegate.Timezone))
	}
	return req, requestID, nil
}

// do sends one request and decodes a 2xx JSON body into out (out may
// be nil). 202 and 204 responses are success without a body. The
// request is sent exactly once.
func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	op := method + " " + rawURL

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	req, requestID, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		return err
	}

	logger.LogDebug(c.log, "Calling Graph API",
		"method", method, "url", rawURL, "requestID", requestID, "delegate", c.delegate.Delegate)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.remoteError(resp, requestID)
	}

	if out == nil || resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusNoContent {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding graph response: %w", err)
	}
	return nil
}

type odataError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// remoteError turns a non-2xx response into a RemoteError carrying
// the OData code and message verbatim. A body that is not an OData
// envelope is passed through as the message.
func (c *Client) remoteError(resp *http.Response, requestID string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	remote := &RemoteError{StatusCode: resp.StatusCode, RequestID: requestID}
	var oe odataError
	if json.Unmarshal(body, &oe) == nil && oe.Error.Code != "" {
		remote.Code = oe.Error.Code
		remote.Message = oe.Error.Message
	} else {
		remote.Message = strings.TrimSpace(string(body))
	}

	logger.LogDebug(c.log, "Graph API error response",
		"status", resp.StatusCode, "code", remote.Code, "requestID", requestID)
	return remote
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, nil, out)
}

func (c *Client) post(ctx context.Context, rawURL string, body, out any) error {
	return c.do(ctx, http.MethodPost, rawURL, body, out)
}

func (c *Client) patch(ctx context.Context, rawURL string, body, out any) error {
	return c.do(ctx, http.MethodPatch, rawURL, body, out)
}

func (c *Client) delete(ctx context.Context, rawURL string) error {
	return c.do(ctx, http.MethodDelete, rawURL, nil, nil)
}
