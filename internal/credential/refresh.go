package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	tokenEndpointFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

	defaultRefreshTimeout = 30 * time.Second

	// maxTokenResponseSize bounds how much of the endpoint response is
	// read; real token responses are a few KB.
	maxTokenResponseSize = 1 << 20
)

// HTTPDoer issues a single HTTP request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RefreshConfig configures a TokenClient.
type RefreshConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string        // empty for public clients
	Scopes       []string      // joined with spaces; empty keeps the original consent
	Endpoint     string        // overrides the default token endpoint
	Timeout      time.Duration // per request, default 30s
	HTTPClient   HTTPDoer      // default http.DefaultClient
}

// TokenClient performs the OAuth2 refresh-token grant against the
// Microsoft identity platform v2.0 endpoint.
type TokenClient struct {
	endpoint     string
	clientID     string
	clientSecret string
	scopes       []string
	timeout      time.Duration
	httpClient   HTTPDoer
}

// NewTokenClient builds a TokenClient from cfg, filling in the
// tenant-specific default endpoint, timeout, and HTTP client.
func NewTokenClient(cfg RefreshConfig) *TokenClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf(tokenEndpointFormat, cfg.TenantID)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenClient{
		endpoint:     endpoint,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		scopes:       cfg.Scopes,
		timeout:      timeout,
		httpClient:   httpClient,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Refresh exchanges refreshToken for a new token set. Nothing is
// persisted here; endpoint failures come back as *AuthError with the
// remote error code and description verbatim, and network failures
// wrap the underlying transport error.
func (t *TokenClient) Refresh(ctx context.Context, refreshToken string) (*Credential, error) {
	if refreshToken == "" || refreshToken == "null" {
		return nil, fmt.Errorf("%w: no refresh token", ErrNoCredential)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", t.clientID)
	form.Set("refresh_token", refreshToken)
	if len(t.scopes) > 0 {
		form.Set("scope", strings.Join(t.scopes, " "))
	}
	if t.clientSecret != "" {
		form.Set("client_secret", t.clientSecret)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp tokenErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, &AuthError{
				StatusCode:  resp.StatusCode,
				Code:        errResp.Error,
				Description: errResp.ErrorDescription,
			}
		}
		return nil, &AuthError{
			StatusCode:  resp.StatusCode,
			Code:        "unknown_error",
			Description: strings.TrimSpace(string(body)),
		}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	cred := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		TokenType:    tok.TokenType,
		Scope:        tok.Scope,
		ObtainedAt:   time.Now().UTC(),
	}
	// The endpoint may omit the refresh token when it has not rotated
	if cred.RefreshToken == "" {
		cred.RefreshToken = refreshToken
	}
	return cred, nil
}

// RefreshStored refreshes the credential held by store and persists
// the result. The file is written only after a successful exchange;
// any failure leaves it exactly as it was. Concurrent invocations
// sharing a store are not coordinated.
func (t *TokenClient) RefreshStored(ctx context.Context, store *FileStore) (*Credential, error) {
	cur, err := store.read()
	if err != nil {
		return nil, err
	}
	if cur.RefreshToken == "" || cur.RefreshToken == "null" {
		return nil, fmt.Errorf("%w: %s holds no refresh token", ErrNoCredential, store.Path())
	}

	fresh, err := t.Refresh(ctx, cur.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := store.Save(fresh); err != nil {
		return nil, fmt.Errorf("persisting refreshed credential: %w", err)
	}
	return fresh, nil
}
