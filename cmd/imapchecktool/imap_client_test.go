package main

import (
	"crypto/tls"
	"testing"

	imapprotocol "msgraphdelegatetool/internal/imap/protocol"
)

func TestResolveAuthMethod(t *testing.T) {
	tests := []struct {
		name        string
		authMethod  string
		accessToken string
		caps        []string
		expected    string
	}{
		{
			name:        "explicit method wins over capabilities",
			authMethod:  "plain",
			accessToken: "token",
			caps:        []string{"AUTH=XOAUTH2"},
			expected:    "PLAIN",
		},
		{
			name:        "auto with token picks XOAUTH2",
			authMethod:  "auto",
			accessToken: "token",
			caps:        []string{"AUTH=PLAIN", "AUTH=XOAUTH2", "AUTH=OAUTHBEARER"},
			expected:    "XOAUTH2",
		},
		{
			name:        "auto with token picks OAUTHBEARER when XOAUTH2 absent",
			authMethod:  "auto",
			accessToken: "token",
			caps:        []string{"AUTH=PLAIN", "AUTH=OAUTHBEARER"},
			expected:    "OAUTHBEARER",
		},
		{
			name:       "auto without token picks PLAIN",
			authMethod: "auto",
			caps:       []string{"AUTH=PLAIN", "AUTH=XOAUTH2"},
			expected:   "PLAIN",
		},
		{
			name:       "empty method behaves as auto",
			authMethod: "",
			caps:       []string{"AUTH=PLAIN"},
			expected:   "PLAIN",
		},
		{
			name:       "nothing usable",
			authMethod: "auto",
			caps:       []string{"IMAP4rev1", "LOGINDISABLED"},
			expected:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &IMAPClient{
				config: &Config{AuthMethod: tt.authMethod, AccessToken: tt.accessToken},
				caps:   imapprotocol.NewCapabilities(tt.caps),
			}
			if got := client.ResolveAuthMethod(); got != tt.expected {
				t.Errorf("ResolveAuthMethod() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestResolveAuthMethod_NoGreetingCaps(t *testing.T) {
	client := &IMAPClient{config: &Config{AuthMethod: "auto"}}
	if got := client.ResolveAuthMethod(); got != "LOGIN" {
		t.Errorf("ResolveAuthMethod() = %q, want LOGIN when capabilities are unknown", got)
	}
}

func TestAuthzIdentity(t *testing.T) {
	tests := []struct {
		name     string
		owner    string
		username string
		expected string
	}{
		{"owner mailbox", "boss@example.com", "assistant@example.com", "boss@example.com"},
		{"own mailbox", "", "assistant@example.com", "assistant@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &IMAPClient{config: &Config{Owner: tt.owner, Username: tt.username}}
			if got := client.authzIdentity(); got != tt.expected {
				t.Errorf("authzIdentity() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseTLSVersion(t *testing.T) {
	tests := []struct {
		version  string
		expected uint16
	}{
		{"1.3", tls.VersionTLS13},
		{"1.2", tls.VersionTLS12},
		{"1.1", tls.VersionTLS11},
		{"1.0", tls.VersionTLS10},
		{"garbage", tls.VersionTLS12},
		{"", tls.VersionTLS12},
	}

	for _, tt := range tests {
		if got := parseTLSVersion(tt.version); got != tt.expected {
			t.Errorf("parseTLSVersion(%q) = %d, want %d", tt.version, got, tt.expected)
		}
	}
}
