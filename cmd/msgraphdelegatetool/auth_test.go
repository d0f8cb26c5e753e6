package main

import (
	"encoding/base64"
	"testing"
)

// buildTestJWT assembles an unsigned JWT from a claims JSON payload.
// parseTokenClaims never verifies signatures, so a dummy one is fine.
func buildTestJWT(claimsJSON string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(claimsJSON))
	return header + "." + claims + ".dummysig"
}

func TestParseTokenClaims_Delegated(t *testing.T) {
	token := buildTestJWT(`{
		"upn": "assistant@example.com",
		"scp": "Mail.ReadWrite Calendars.ReadWrite offline_access",
		"app_displayname": "Delegate Mailbox Tool"
	}`)

	claims, err := parseTokenClaims(token)
	if err != nil {
		t.Fatalf("parseTokenClaims() error = %v", err)
	}

	if claims.UPN != "assistant@example.com" {
		t.Errorf("UPN = %q", claims.UPN)
	}
	if claims.Scope != "Mail.ReadWrite Calendars.ReadWrite offline_access" {
		t.Errorf("Scope = %q", claims.Scope)
	}
	if claims.AppDisplayName != "Delegate Mailbox Tool" {
		t.Errorf("AppDisplayName = %q", claims.AppDisplayName)
	}
	if len(claims.Roles) != 0 {
		t.Errorf("Roles = %v, delegated token should carry none", claims.Roles)
	}
}

func TestParseTokenClaims_AppOnly(t *testing.T) {
	token := buildTestJWT(`{
		"app_displayname": "Delegate Mailbox Tool",
		"roles": ["Mail.ReadWrite", "Calendars.ReadWrite"]
	}`)

	claims, err := parseTokenClaims(token)
	if err != nil {
		t.Fatalf("parseTokenClaims() error = %v", err)
	}

	if claims.UPN != "" {
		t.Errorf("UPN = %q, app-only token should carry none", claims.UPN)
	}
	if got := claims.displayRoles(); got != "Mail.ReadWrite, Calendars.ReadWrite" {
		t.Errorf("displayRoles() = %q", got)
	}
	if got := claims.displayScopes(); got != "(none)" {
		t.Errorf("displayScopes() = %q", got)
	}
}

func TestParseTokenClaims_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"opaque string", "not-a-jwt"},
		{"two segments", "aGVhZGVy.Y2xhaW1z"},
		{"claims not base64", buildTestJWT(`{}`)[:20] + ".!!!.sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseTokenClaims(tt.token); err == nil {
				t.Error("malformed token parsed without error")
			}
		})
	}
}

func TestTokenClaims_DisplayFallbacks(t *testing.T) {
	claims := &TokenClaims{}
	if got := claims.displayAppName(); got != "(not available)" {
		t.Errorf("displayAppName() = %q", got)
	}
	if got := claims.displayRoles(); got != "(none)" {
		t.Errorf("displayRoles() = %q", got)
	}
	if got := claims.displayScopes(); got != "(none)" {
		t.Errorf("displayScopes() = %q", got)
	}
}
