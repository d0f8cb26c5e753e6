package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/golang-jwt/jwt/v5"

	"msgraphdelegatetool/internal/auth"
	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/common/ratelimit"
	"msgraphdelegatetool/internal/common/security"
	"msgraphdelegatetool/internal/credential"
	"msgraphdelegatetool/internal/graph"
)

// TokenClaims represents relevant claims from Microsoft Entra ID JWT tokens.
// Delegated tokens carry upn and scp; app-only tokens carry roles.
type TokenClaims struct {
	AppDisplayName string   `json:"app_displayname"`
	UPN            string   `json:"upn"`
	Scope          string   `json:"scp"`
	Roles          []string `json:"roles"`
	jwt.RegisteredClaims
}

// openCredentialStore opens the on-disk credential store, using the
// default path when -credfile is not set.
func openCredentialStore(config *Config) (*credential.FileStore, error) {
	store, err := credential.NewFileStore(config.CredFile)
	if err != nil {
		return nil, fmt.Errorf("credential store: %w", err)
	}
	return store, nil
}

// newTokenClient builds the OAuth2 refresh client. Returns nil when no
// app registration is configured; the store source then serves stored
// tokens without refreshing.
func newTokenClient(config *Config) *credential.TokenClient {
	if config.TenantID == "" || config.ClientID == "" {
		return nil
	}
	return credential.NewTokenClient(credential.RefreshConfig{
		TenantID:     config.TenantID,
		ClientID:     config.ClientID,
		ClientSecret: config.Secret,
		Scopes:       config.Scopes,
		Timeout:      config.Timeout,
	})
}

// newTokenSource picks the token source for the configured auth mode:
// the stored delegated credential, or an app-only azidentity credential.
func newTokenSource(ctx context.Context, config *Config, slogger *slog.Logger) (graph.TokenSource, error) {
	if config.AuthMode == AuthModeApp {
		var source *auth.AzureSource
		var err error

		if config.Secret != "" {
			logger.LogDebug(slogger, "Authentication method: Client Secret")
			source, err = auth.NewClientSecretSource(config.TenantID, config.ClientID, config.Secret)
		} else {
			logger.LogDebug(slogger, "Authentication method: PFX Certificate File", "path", config.PfxPath)
			source, err = auth.NewCertificateSource(config.TenantID, config.ClientID, config.PfxPath, config.PfxPass)
		}
		if err != nil {
			return nil, fmt.Errorf("authentication setup failed: %w", err)
		}

		if config.VerboseMode {
			token, err := source.AccessToken(ctx)
			if err != nil {
				logVerbose(config.VerboseMode, "Warning: could not retrieve token for verbose display: %v", err)
			} else {
				printTokenInfo(token)
			}
		}
		return source, nil
	}

	// Delegate mode: stored refresh-token credential
	store, err := openCredentialStore(config)
	if err != nil {
		return nil, err
	}
	logger.LogDebug(slogger, "Authentication method: stored delegated credential", "path", store.Path())

	tokenClient := newTokenClient(config)
	if tokenClient == nil && config.AutoRefresh {
		logger.LogDebug(slogger, "Token auto refresh unavailable without -tenantid and -clientid")
	}
	return auth.NewStoreSource(store, tokenClient, config.AutoRefresh, slogger), nil
}

// setupGraphClient creates the token source and the typed Graph client.
func setupGraphClient(ctx context.Context, config *Config, slogger *slog.Logger) (*graph.Client, error) {
	logger.LogDebug(slogger, "Setting up Graph client",
		"owner", security.MaskEmail(config.Owner),
		"tenantID", security.MaskGUID(config.TenantID),
		"clientID", security.MaskGUID(config.ClientID))

	tokens, err := newTokenSource(ctx, config, slogger)
	if err != nil {
		return nil, err
	}

	client, err := graph.NewClient(graph.Config{
		Delegate: graph.DelegateContext{
			Owner:    config.Owner,
			Delegate: config.Delegate,
			Timezone: config.Timezone,
		},
		Tokens:   tokens,
		Timeout:  config.Timeout,
		PageSize: config.PageSize,
		Limiter:  ratelimit.New(config.RateLimit),
		Logger:   slogger,
	})
	if err != nil {
		return nil, fmt.Errorf("graph client initialization failed: %w", err)
	}

	logVerbose(config.VerboseMode, "Graph client initialized for owner %s", config.Owner)
	return client, nil
}

// printTokenInfo displays a freshly acquired app-only token, truncated.
func printTokenInfo(token azcore.AccessToken) {
	fmt.Println()
	fmt.Println("Token Information:")
	fmt.Println("------------------")
	fmt.Printf("Token acquired successfully\n")
	fmt.Printf("Expires at: %s\n", token.ExpiresOn.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Valid for: %s\n", time.Until(token.ExpiresOn).Round(time.Second))
	fmt.Printf("Token (truncated): %s\n", security.MaskAccessToken(token.Token))
	fmt.Printf("Token length: %d characters\n", len(token.Token))

	fmt.Println()
	fmt.Println("JWT Claims:")
	claims, err := parseTokenClaims(token.Token)
	if err != nil {
		fmt.Printf("  (Could not parse JWT claims: %v)\n", err)
	} else {
		fmt.Printf("  Application Name: %s\n", claims.displayAppName())
		fmt.Printf("  Assigned Roles: %s\n", claims.displayRoles())
	}
	fmt.Println()
}

// parseTokenClaims extracts display claims from a JWT access token.
// The token is parsed without signature verification; it was already
// accepted by the issuing endpoint.
func parseTokenClaims(tokenString string) (*TokenClaims, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, &TokenClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims from token")
	}
	return claims, nil
}

func (c *TokenClaims) displayAppName() string {
	if c.AppDisplayName == "" {
		return "(not available)"
	}
	return c.AppDisplayName
}

func (c *TokenClaims) displayRoles() string {
	if len(c.Roles) == 0 {
		return "(none)"
	}
	return strings.Join(c.Roles, ", ")
}

func (c *TokenClaims) displayScopes() string {
	if c.Scope == "" {
		return "(none)"
	}
	return c.Scope
}
