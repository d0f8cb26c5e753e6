package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/common/security"
)

// listFolders authenticates and lists every mailbox with its counts.
func listFolders(ctx context.Context, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	fmt.Printf("Listing folders on %s:%d...\n", config.Host, config.Port)

	columns := []string{"Action", "Status", "Server", "Port", "Folder_Name", "Attributes", "Total_Messages", "Unseen", "Error"}
	writeAuditHeader(audit, slogger, columns)

	client := NewIMAPClient(config)

	if err := client.Connect(ctx); err != nil {
		logger.LogError(slogger, "Connection failed",
			"error", err,
			"host", config.Host,
			"port", config.Port)

		writeAuditRow(audit, slogger, []string{
			config.Action, "FAILURE", config.Host, fmt.Sprintf("%d", config.Port),
			"", "", "", "", err.Error(),
		})
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = client.Logout() }()

	fmt.Printf("✓ Connected to %s:%d\n", config.Host, config.Port)

	method := client.ResolveAuthMethod()
	fmt.Printf("Authenticating with method: %s\n", method)
	if config.Owner != "" {
		fmt.Printf("  Authorization identity: %s (owner mailbox)\n", config.Owner)
	}

	if err := client.Auth(ctx); err != nil {
		logger.LogError(slogger, "Authentication failed",
			"error", err,
			"username", security.MaskUsername(config.Username))

		writeAuditRow(audit, slogger, []string{
			config.Action, "FAILURE", config.Host, fmt.Sprintf("%d", config.Port),
			"", "", "", "", fmt.Sprintf("Auth failed: %v", err),
		})
		return fmt.Errorf("authentication failed: %w", err)
	}
	fmt.Println("✓ Authentication successful")

	fmt.Println("\nListing mailboxes...")
	mailboxes, err := client.ListMailboxes(ctx)
	if err != nil {
		logger.LogError(slogger, "LIST command failed", "error", err)

		writeAuditRow(audit, slogger, []string{
			config.Action, "FAILURE", config.Host, fmt.Sprintf("%d", config.Port),
			"", "", "", "", fmt.Sprintf("LIST failed: %v", err),
		})
		return fmt.Errorf("LIST failed: %w", err)
	}

	fmt.Printf("\nFound %d mailboxes:\n", len(mailboxes))
	fmt.Println("  Name                              Messages  Unseen  Attributes")
	fmt.Println("  ----                              --------  ------  ----------")

	for _, mb := range mailboxes {
		attrs := strings.Join(mb.Attributes, ", ")
		fmt.Printf("  %-34s %8d  %6d  %s\n", mb.Name, mb.Messages, mb.Unseen, attrs)

		writeAuditRow(audit, slogger, []string{
			config.Action, "SUCCESS", config.Host, fmt.Sprintf("%d", config.Port),
			mb.Name, attrs, fmt.Sprintf("%d", mb.Messages), fmt.Sprintf("%d", mb.Unseen), "",
		})
	}

	logger.LogInfo(slogger, "List folders completed",
		"host", config.Host,
		"mailbox_count", len(mailboxes))

	fmt.Println("\n✓ List folders completed")
	return nil
}
