package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/common/security"
	"msgraphdelegatetool/internal/credential"
)

// refreshToken exchanges the stored refresh token for a new token pair
// and persists it. On failure the stored credential is left untouched.
func refreshToken(ctx context.Context, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "StorePath", "TokenType", "ExpiresAt"}
	writeAuditHeader(audit, slogger, columns)

	store, err := openCredentialStore(config)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	tokenClient := newTokenClient(config)

	logVerbose(config.VerboseMode, "Refreshing stored credential at %s", store.Path())
	cred, err := tokenClient.RefreshStored(ctx, store)
	if err != nil {
		logger.LogError(slogger, "Token refresh failed", "store", store.Path(), "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), store.Path(), "N/A", "N/A"})
		if errors.Is(err, credential.ErrNoCredential) {
			return fmt.Errorf("no stored credential at %s; seed the file with an initial token grant first", store.Path())
		}
		return fmt.Errorf("refreshing stored credential: %w", err)
	}

	fmt.Println("✓ Token refreshed")
	fmt.Printf("  Store: %s\n", store.Path())
	fmt.Printf("  Access Token: %s\n", security.MaskAccessToken(cred.AccessToken))
	fmt.Printf("  Expires: %s\n", cred.ExpiresAt().Format(time.RFC3339))
	fmt.Printf("  Refresh Token stored: %t\n", cred.RefreshToken != "")

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, store.Path(), cred.TokenType, cred.ExpiresAt().Format(time.RFC3339)})
	return nil
}

// tokenSummary is the redacted showtoken output for -output json.
type tokenSummary struct {
	StorePath       string    `json:"storePath"`
	TokenType       string    `json:"tokenType,omitempty"`
	AccessToken     string    `json:"accessToken"`
	HasRefreshToken bool      `json:"hasRefreshToken"`
	ObtainedAt      time.Time `json:"obtainedAt,omitzero"`
	ExpiresAt       time.Time `json:"expiresAt,omitzero"`
	Expired         bool      `json:"expired"`
	UPN             string    `json:"upn,omitempty"`
	AppName         string    `json:"appName,omitempty"`
	Scopes          string    `json:"scopes,omitempty"`
}

// showToken prints the stored credential with the token values masked.
// Never prints a full token.
func showToken(config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "StorePath", "TokenType", "ExpiresAt", "UPN", "Scopes"}
	writeAuditHeader(audit, slogger, columns)

	store, err := openCredentialStore(config)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	cred, err := store.Load()
	if err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), store.Path(), "N/A", "N/A", "N/A", "N/A"})
		if errors.Is(err, credential.ErrNoCredential) {
			return fmt.Errorf("no stored credential at %s", store.Path())
		}
		return fmt.Errorf("loading stored credential: %w", err)
	}

	var upn, scopes, appName string
	claims, claimErr := parseTokenClaims(cred.AccessToken)
	if claimErr != nil {
		logger.LogDebug(slogger, "Token claims not parseable", "error", claimErr)
	} else {
		upn = claims.UPN
		scopes = claims.Scope
		appName = claims.AppDisplayName
	}

	if config.OutputFormat == "json" {
		printJSON(tokenSummary{
			StorePath:       store.Path(),
			TokenType:       cred.TokenType,
			AccessToken:     security.MaskAccessToken(cred.AccessToken),
			HasRefreshToken: cred.RefreshToken != "",
			ObtainedAt:      cred.ObtainedAt,
			ExpiresAt:       cred.ExpiresAt(),
			Expired:         cred.Expired(0),
			UPN:             upn,
			AppName:         appName,
			Scopes:          scopes,
		})
	} else {
		fmt.Printf("Credential store: %s\n", store.Path())
		fmt.Printf("  Access Token: %s\n", security.MaskAccessToken(cred.AccessToken))
		if cred.TokenType != "" {
			fmt.Printf("  Token Type: %s\n", cred.TokenType)
		}
		fmt.Printf("  Refresh Token stored: %t\n", cred.RefreshToken != "")
		if !cred.ObtainedAt.IsZero() {
			fmt.Printf("  Obtained: %s\n", cred.ObtainedAt.Format(time.RFC3339))
			expiry := cred.ExpiresAt().Format(time.RFC3339)
			if cred.Expired(0) {
				expiry += " (expired)"
			}
			fmt.Printf("  Expires: %s\n", expiry)
		}
		if claims != nil {
			fmt.Printf("  User (upn): %s\n", orNA(upn))
			if appName != "" {
				fmt.Printf("  Application: %s\n", appName)
			}
			fmt.Printf("  Scopes: %s\n", claims.displayScopes())
			if roles := claims.displayRoles(); roles != "(none)" {
				fmt.Printf("  Roles: %s\n", roles)
			}
		}
	}

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, store.Path(), cred.TokenType, cred.ExpiresAt().Format(time.RFC3339), orNA(upn), orNA(scopes)})
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
