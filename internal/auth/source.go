// Package auth supplies bearer tokens for Graph requests. StoreSource
// serves the stored delegated credential, refreshing it when it is
// known to be expired; AzureSource acquires app-only tokens through
// azidentity for deployments using application permissions.
package auth

import (
	"context"
	"log/slog"
	"time"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/credential"
)

// TokenSource supplies a bearer token for an outbound request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// DefaultExpirySkew is how early a stored token counts as expired.
const DefaultExpirySkew = 5 * time.Minute

// StoreSource serves the delegated credential held in a FileStore.
// When the stored token is known to be past expiry and a TokenClient
// is configured, it refreshes once before returning. It never reacts
// to downstream 401s: the refresh decision is made strictly before a
// request is sent, and failed requests are not replayed.
type StoreSource struct {
	store       *credential.FileStore
	tokenClient *credential.TokenClient
	autoRefresh bool
	skew        time.Duration
	log         *slog.Logger
}

// NewStoreSource builds a StoreSource. tokenClient may be nil, which
// disables refresh regardless of autoRefresh.
func NewStoreSource(store *credential.FileStore, tokenClient *credential.TokenClient, autoRefresh bool, log *slog.Logger) *StoreSource {
	return &StoreSource{
		store:       store,
		tokenClient: tokenClient,
		autoRefresh: autoRefresh,
		skew:        DefaultExpirySkew,
		log:         log,
	}
}

// Token returns the stored access token, refreshing it first when it
// is known to be expired. A missing credential fails immediately with
// credential.ErrNoCredential; no network call is made in that case.
func (s *StoreSource) Token(ctx context.Context) (string, error) {
	cred, err := s.store.Load()
	if err != nil {
		return "", err
	}

	if !cred.Expired(s.skew) {
		return cred.AccessToken, nil
	}

	if !s.autoRefresh || s.tokenClient == nil {
		// Serve the stale token; the API response will report expiry.
		logger.LogDebug(s.log, "Stored token past expiry, auto-refresh disabled")
		return cred.AccessToken, nil
	}

	logger.LogDebug(s.log, "Stored token past expiry, refreshing", "expiresAt", cred.ExpiresAt())
	fresh, err := s.tokenClient.RefreshStored(ctx, s.store)
	if err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}
