//go:build !integration
// +build !integration

// Package main provides a CLI tool for acting on a Microsoft 365 owner's
// mailbox and calendar through delegated Microsoft Graph API access. A
// delegate (assistant) reads, sends, moves, and answers mail, and manages
// calendar invitations, on the owner's behalf.
//
// Authentication methods supported:
//   - Delegate: a stored OAuth2 credential (access + refresh token) kept
//     on disk and refreshed via the refresh-token grant
//   - App: Client Secret or PFX certificate App Registration credentials
//
// All operations are logged to action-specific CSV or JSON Lines files in
// the system temp directory for audit and troubleshooting purposes.
//
// Example usage:
//
//	msgraphdelegatetool -owner "boss@example.com" -action getinbox -count 20
//
// Version information is embedded from the VERSION file at compile time using go:embed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/common/version"
)

func main() {
	// Handle -completion flag FIRST, before anything else runs
	// This ensures only completion script is output, all other flags are ignored
	for i, arg := range os.Args {
		if arg == "-completion" && i+1 < len(os.Args) {
			shellType := os.Args[i+1]
			if shellType == "bash" {
				fmt.Print(generateBashCompletion())
				os.Exit(0)
			} else if shellType == "powershell" {
				fmt.Print(generatePowerShellCompletion())
				os.Exit(0)
			} else {
				fmt.Fprintf(os.Stderr, "Error: Invalid completion shell type '%s'\n", shellType)
				fmt.Fprintf(os.Stderr, "Valid options: bash, powershell\n\n")
				fmt.Fprintf(os.Stderr, "Usage:\n")
				fmt.Fprintf(os.Stderr, "  %s -completion bash > msgraphdelegatetool-completion.bash\n", os.Args[0])
				fmt.Fprintf(os.Stderr, "  %s -completion powershell > msgraphdelegatetool-completion.ps1\n", os.Args[0])
				os.Exit(1)
			}
		}
	}

	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// setupSignalHandling configures graceful shutdown on interrupt signals
// Returns a cancellable context for use throughout the application
func setupSignalHandling() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	// Handle interrupt signals (Ctrl+C, SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n\nReceived interrupt signal. Shutting down gracefully...")
		cancel()
	}()

	return ctx, cancel
}

// initializeServices sets up audit logging and proxy configuration.
// If the audit logger cannot be created, a warning is logged and
// execution continues without it.
func initializeServices(config *Config) logger.Logger {
	audit, err := logger.NewAuditLogger(config.LogFormat, "msgraphdelegatetool", config.Action)
	if err != nil {
		log.Printf("Warning: Could not initialize audit logging: %v", err)
		audit = nil // Continue without logging
	}

	// Configure proxy if specified
	// Go's http package automatically uses HTTP_PROXY/HTTPS_PROXY environment variables
	if config.ProxyURL != "" {
		os.Setenv("HTTP_PROXY", config.ProxyURL)
		os.Setenv("HTTPS_PROXY", config.ProxyURL)
		fmt.Printf("Using proxy: %s\n", config.ProxyURL)
	}

	return audit
}

// run is the main application entry point that orchestrates the tool's execution flow.
// It performs the following steps:
//  1. Sets up graceful shutdown handling for interrupt signals
//  2. Parses and validates configuration from flags, environment variables, and config file
//  3. Initializes services (audit logging, proxy configuration)
//  4. Creates the token source and the Graph client for the owner mailbox
//  5. Executes the requested action
//
// Returns an error if any step fails, nil on successful completion.
func run() error {
	// 1. Setup signal handling for graceful shutdown
	ctx, cancel := setupSignalHandling()
	defer cancel()

	// 2. Parse command-line flags and apply environment variables
	config := parseAndConfigureFlags()

	// 3. Handle version flag early exit
	if config.ShowVersion {
		fmt.Printf("Microsoft Graph Delegate Mailbox Tool - Version %s\n", version.Get())
		return nil
	}

	// 4. Validate configuration
	if err := validateConfiguration(config); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	// 5. Setup structured logger
	slogger := logger.SetupLogger(config.VerboseMode, config.LogLevel)
	logger.LogInfo(slogger, "Application starting", "version", version.Get(), "action", config.Action)

	// Load body template if provided (validation already done in step 4)
	if config.BodyTemplate != "" {
		content, err := os.ReadFile(config.BodyTemplate)
		if err != nil {
			return fmt.Errorf("failed to read body template file: %w", err)
		}
		config.BodyHTML = string(content)
		slogger.Info("Loaded email body from template", "path", config.BodyTemplate, "size", len(config.BodyHTML))
	}

	// 6. Initialize services (audit logging and proxy)
	audit := initializeServices(config)
	if audit != nil {
		defer audit.Close()
	}

	// 7. Credential-store actions run without a Graph client
	if config.Action == ActionRefreshToken || config.Action == ActionShowToken {
		return executeTokenAction(ctx, config, audit, slogger)
	}

	// 8. Setup the Graph client for the owner mailbox
	client, err := setupGraphClient(ctx, config, slogger)
	if err != nil {
		return err
	}

	// 9. Execute the requested action
	return executeAction(ctx, client, config, audit, slogger)
}
