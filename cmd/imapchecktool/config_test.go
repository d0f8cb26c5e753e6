package main

import (
	"testing"
	"time"
)

func TestValidateConfiguration_Action(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		wantErr bool
	}{
		{"valid testconnect", "testconnect", false},
		{"uppercase TESTCONNECT", "TESTCONNECT", true},
		{"invalid action", "invalid", true},
		{"empty action", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				Action: tt.action,
				Host:   "outlook.office365.com",
				Port:   993,
			}
			err := validateConfiguration(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfiguration_Host(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		wantErr bool
	}{
		{"valid host", "outlook.office365.com", false},
		{"empty host", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				Action: "testconnect",
				Host:   tt.host,
				Port:   993,
			}
			err := validateConfiguration(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfiguration_Port(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid port 143", 143, false},
		{"valid port 993", 993, false},
		{"port 0", 0, true},
		{"port negative", -1, true},
		{"port too high", 70000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				Action: "testconnect",
				Host:   "outlook.office365.com",
				Port:   tt.port,
			}
			err := validateConfiguration(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfiguration_TLS(t *testing.T) {
	tests := []struct {
		name     string
		imaps    bool
		startTLS bool
		wantErr  bool
	}{
		{"no TLS", false, false, false},
		{"IMAPS only", true, false, false},
		{"STARTTLS only", false, true, false},
		{"both IMAPS and STARTTLS", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				Action:   "testconnect",
				Host:     "outlook.office365.com",
				Port:     993,
				IMAPS:    tt.imaps,
				StartTLS: tt.startTLS,
			}
			err := validateConfiguration(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfiguration_AuthMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		wantErr bool
	}{
		{"empty means auto", "", false},
		{"auto", "auto", false},
		{"XOAUTH2 lowercase", "xoauth2", false},
		{"OAUTHBEARER", "OAUTHBEARER", false},
		{"PLAIN", "PLAIN", false},
		{"LOGIN", "LOGIN", false},
		{"NTLM unsupported", "NTLM", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				Action:     "testconnect",
				Host:       "outlook.office365.com",
				Port:       993,
				AuthMethod: tt.method,
			}
			err := validateConfiguration(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfiguration_Owner(t *testing.T) {
	tests := []struct {
		name       string
		owner      string
		authMethod string
		wantErr    bool
	}{
		{"valid owner", "boss@example.com", "auto", false},
		{"owner not an email", "boss", "auto", true},
		{"owner with LOGIN", "boss@example.com", "LOGIN", true},
		{"owner with PLAIN", "boss@example.com", "PLAIN", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				Action:     "testconnect",
				Host:       "outlook.office365.com",
				Port:       993,
				Owner:      tt.owner,
				AuthMethod: tt.authMethod,
			}
			err := validateConfiguration(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfiguration_Credentials(t *testing.T) {
	tests := []struct {
		name        string
		action      string
		username    string
		password    string
		accessToken string
		authMethod  string
		wantErr     bool
	}{
		{"testconnect needs no credentials", "testconnect", "", "", "", "auto", false},
		{"testauth without username", "testauth", "", "secret", "", "auto", true},
		{"testauth with password", "testauth", "a@example.com", "secret", "", "auto", false},
		{"testauth with token", "testauth", "a@example.com", "", "eyJtoken", "auto", false},
		{"testauth with nothing", "testauth", "a@example.com", "", "", "auto", true},
		{"explicit XOAUTH2 without token", "testauth", "a@example.com", "secret", "", "XOAUTH2", true},
		{"explicit XOAUTH2 with token", "testauth", "a@example.com", "", "eyJtoken", "XOAUTH2", false},
		{"explicit OAUTHBEARER without token", "listfolders", "a@example.com", "", "", "OAUTHBEARER", true},
		{"listfolders with token", "listfolders", "a@example.com", "", "eyJtoken", "auto", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				Action:      tt.action,
				Host:        "outlook.office365.com",
				Port:        993,
				Username:    tt.username,
				Password:    tt.password,
				AccessToken: tt.accessToken,
				AuthMethod:  tt.authMethod,
			}
			err := validateConfiguration(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("IMAPCHECKHOST", "imap.example.com")
	t.Setenv("IMAPCHECKPORT", "2993")
	t.Setenv("IMAPCHECKOWNER", "boss@example.com")
	t.Setenv("IMAPCHECKUSERNAME", "assistant@example.com")
	t.Setenv("IMAPCHECKIMAPS", "false")
	t.Setenv("IMAPCHECKTIMEOUT", "60")
	t.Setenv("IMAPCHECKRATELIMIT", "2.5")

	config := NewConfig()
	applyEnvOverrides(config)

	if config.Host != "imap.example.com" {
		t.Errorf("Host = %q, want imap.example.com", config.Host)
	}
	if config.Port != 2993 {
		t.Errorf("Port = %d, want 2993", config.Port)
	}
	if config.Owner != "boss@example.com" {
		t.Errorf("Owner = %q, want boss@example.com", config.Owner)
	}
	if config.Username != "assistant@example.com" {
		t.Errorf("Username = %q, want assistant@example.com", config.Username)
	}
	if config.IMAPS {
		t.Error("IMAPS = true, want false from IMAPCHECKIMAPS=false")
	}
	if config.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", config.Timeout)
	}
	if config.RateLimit != 2.5 {
		t.Errorf("RateLimit = %v, want 2.5", config.RateLimit)
	}
}

func TestApplyEnvOverrides_FlagsWin(t *testing.T) {
	t.Setenv("IMAPCHECKUSERNAME", "env@example.com")
	t.Setenv("IMAPCHECKAUTHMETHOD", "PLAIN")

	config := NewConfig()
	config.Username = "flag@example.com"
	config.AuthMethod = "XOAUTH2"
	applyEnvOverrides(config)

	if config.Username != "flag@example.com" {
		t.Errorf("Username = %q, flag value should win", config.Username)
	}
	if config.AuthMethod != "XOAUTH2" {
		t.Errorf("AuthMethod = %q, flag value should win", config.AuthMethod)
	}
}

func TestApplyPortDefault(t *testing.T) {
	tests := []struct {
		name      string
		imaps     bool
		startTLS  bool
		port      int
		wantPort  int
		wantIMAPS bool
	}{
		{"IMAPS keeps 993", true, false, 993, 993, true},
		{"plaintext drops to 143", false, false, 993, 143, false},
		{"STARTTLS drops to 143", true, true, 993, 143, false},
		{"explicit port untouched", false, false, 2993, 2993, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{IMAPS: tt.imaps, StartTLS: tt.startTLS, Port: tt.port}
			applyPortDefault(config)
			if config.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", config.Port, tt.wantPort)
			}
			if config.IMAPS != tt.wantIMAPS {
				t.Errorf("IMAPS = %v, want %v", config.IMAPS, tt.wantIMAPS)
			}
		})
	}
}
