package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/common/security"
)

// testAuth connects and authenticates as the delegate, optionally
// against the owner's shared mailbox.
func testAuth(ctx context.Context, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	fmt.Printf("Testing IMAP authentication to %s:%d...\n", config.Host, config.Port)

	columns := []string{"Action", "Status", "Server", "Port", "Owner", "Username", "Auth_Mechanisms", "Auth_Method", "Error"}
	writeAuditHeader(audit, slogger, columns)

	client := NewIMAPClient(config)

	if err := client.Connect(ctx); err != nil {
		logger.LogError(slogger, "Connection failed",
			"error", err,
			"host", config.Host,
			"port", config.Port)

		writeAuditRow(audit, slogger, []string{
			config.Action, "FAILURE", config.Host, fmt.Sprintf("%d", config.Port),
			config.Owner, security.MaskUsername(config.Username), "", "", err.Error(),
		})
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = client.Logout() }()

	fmt.Printf("✓ Connected to %s:%d\n", config.Host, config.Port)

	authMechanisms := ""
	if caps := client.Capabilities(); caps != nil {
		authMechanisms = strings.Join(caps.GetAuthMechanisms(), ", ")
	}

	method := client.ResolveAuthMethod()
	fmt.Printf("Authenticating with method: %s\n", method)
	if config.Owner != "" {
		fmt.Printf("  Authorization identity: %s (owner mailbox)\n", config.Owner)
		fmt.Printf("  Authentication identity: %s (delegate)\n", security.MaskUsername(config.Username))
	}

	if err := client.Auth(ctx); err != nil {
		logger.LogError(slogger, "Authentication failed",
			"error", err,
			"username", security.MaskUsername(config.Username),
			"method", method)

		writeAuditRow(audit, slogger, []string{
			config.Action, "FAILURE", config.Host, fmt.Sprintf("%d", config.Port),
			config.Owner, security.MaskUsername(config.Username), authMechanisms, method, err.Error(),
		})
		return fmt.Errorf("authentication failed: %w", err)
	}

	logger.LogInfo(slogger, "Authentication successful",
		"username", security.MaskUsername(config.Username),
		"method", method,
		"owner", config.Owner)

	writeAuditRow(audit, slogger, []string{
		config.Action, "SUCCESS", config.Host, fmt.Sprintf("%d", config.Port),
		config.Owner, security.MaskUsername(config.Username), authMechanisms, method, "",
	})

	fmt.Println("\n✓ Authentication successful")
	return nil
}
