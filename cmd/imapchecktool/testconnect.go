package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"msgraphdelegatetool/internal/common/logger"
)

// testConnect dials the server and reports what it advertises.
func testConnect(ctx context.Context, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	fmt.Printf("Testing IMAP connection to %s:%d...\n", config.Host, config.Port)

	columns := []string{"Action", "Status", "Server", "Port", "Connected", "TLS", "Capabilities", "Error"}
	writeAuditHeader(audit, slogger, columns)

	client := NewIMAPClient(config)

	if err := client.Connect(ctx); err != nil {
		logger.LogError(slogger, "Connection failed",
			"error", err,
			"host", config.Host,
			"port", config.Port)

		writeAuditRow(audit, slogger, []string{
			config.Action, "FAILURE", config.Host, fmt.Sprintf("%d", config.Port),
			"false", "", "", err.Error(),
		})
		return err
	}
	defer func() { _ = client.Logout() }()

	fmt.Printf("✓ Connected to %s:%d\n", config.Host, config.Port)

	tlsMode := ""
	if client.Secured() {
		if config.IMAPS {
			tlsMode = "IMAPS"
		} else {
			tlsMode = "STARTTLS"
		}
		fmt.Printf("  TLS: %s (min version %s)\n", tlsMode, config.TLSVersion)
	}

	caps := client.Capabilities()

	capsStr := ""
	if caps != nil {
		capsStr = caps.String()
		fmt.Printf("  Capabilities: %s\n", capsStr)

		if caps.SupportsIMAP4rev2() {
			fmt.Println("    - IMAP4rev2 supported")
		} else if caps.SupportsIMAP4rev1() {
			fmt.Println("    - IMAP4rev1 supported")
		}
		if caps.SupportsSTARTTLS() {
			fmt.Println("    - STARTTLS supported")
		}
		if caps.SupportsIDLE() {
			fmt.Println("    - IDLE (push notifications) supported")
		}
		if caps.SupportsSASLIR() {
			fmt.Println("    - SASL-IR (initial response) supported")
		}
		if mechanisms := caps.GetAuthMechanisms(); len(mechanisms) > 0 {
			fmt.Printf("    - Auth mechanisms: %s\n", strings.Join(mechanisms, ", "))
		}
		if caps.SupportsXOAUTH2() || caps.SupportsOAuthBearer() {
			fmt.Println("    - Bearer token authentication available")
		}
		if caps.IsLoginDisabled() {
			fmt.Println("    - LOGIN disabled (use STARTTLS first)")
		}
	}

	logger.LogInfo(slogger, "Connection test successful",
		"host", config.Host,
		"port", config.Port,
		"capabilities", capsStr)

	writeAuditRow(audit, slogger, []string{
		config.Action, "SUCCESS", config.Host, fmt.Sprintf("%d", config.Port),
		"true", tlsMode, capsStr, "",
	})

	fmt.Println("\n✓ Connection test successful")
	return nil
}
