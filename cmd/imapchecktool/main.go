//go:build !integration
// +build !integration

// Package main provides an IMAP connectivity probe for Exchange Online
// mailboxes. It verifies, outside Microsoft Graph, that the delegate
// credential stored by msgraphdelegatetool actually grants IMAP access:
// TCP/TLS reachability, advertised capabilities, SASL authentication
// (XOAUTH2, OAUTHBEARER, PLAIN, LOGIN), and folder listing. Passing
// -owner probes shared-mailbox access, where the delegate's token opens
// the owner's mailbox.
//
// Example usage:
//
//	imapchecktool -action testauth -username "assistant@example.com" -owner "boss@example.com"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/common/version"
	"msgraphdelegatetool/internal/credential"
)

func main() {
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

// initializeServices sets up audit logging. If the audit logger cannot
// be created, a warning is logged and execution continues without it.
func initializeServices(config *Config) logger.Logger {
	audit, err := logger.NewAuditLogger(config.LogFormat, "imapchecktool", config.Action)
	if err != nil {
		log.Printf("Warning: Could not initialize audit logging: %v", err)
		audit = nil // Continue without logging
	}

	return audit
}

// loadStoredToken fills AccessToken from the msgraphdelegatetool
// credential store when no token was passed explicitly. A missing store
// is not an error; password authentication may be intended.
func loadStoredToken(config *Config) {
	if config.AccessToken != "" {
		return
	}
	if config.Action != ActionTestAuth && config.Action != ActionListFolders {
		return
	}

	store, err := credential.NewFileStore(config.CredFile)
	if err != nil {
		log.Printf("Warning: credential store unavailable: %v", err)
		return
	}

	cred, err := store.Load()
	if err != nil {
		if !errors.Is(err, credential.ErrNoCredential) {
			log.Printf("Warning: could not read stored credential: %v", err)
		}
		return
	}

	config.AccessToken = cred.AccessToken
	fmt.Printf("Using stored access token from %s\n", store.Path())
	if cred.Expired(0) {
		log.Printf("Warning: stored access token expired at %s; run msgraphdelegatetool -action refreshtoken",
			cred.ExpiresAt().Format(time.RFC3339))
	}
}

// run is the main application entry point that orchestrates the probe's
// execution flow. It performs the following steps:
//  1. Sets up graceful shutdown handling for interrupt signals
//  2. Parses configuration from flags and environment variables
//  3. Fills the access token from the stored delegate credential
//  4. Validates configuration
//  5. Initializes logging and the action deadline
//  6. Executes the requested action
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
		fmt.Printf("IMAP Connectivity Check Tool - Version %s\n", version.Get())
		return nil
	}

	// 4. Fill the access token from the stored delegate credential
	loadStoredToken(config)

	// 5. Validate configuration
	if err := validateConfiguration(config); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	// 6. Setup structured logger
	slogger := logger.SetupLogger(config.VerboseMode, config.LogLevel)
	logger.LogInfo(slogger, "Application starting", "version", version.Get(), "action", config.Action)

	// 7. Initialize audit logging
	audit := initializeServices(config)
	if audit != nil {
		defer audit.Close()
	}

	// 8. Bound the whole action with the configured timeout
	ctx, cancelTimeout := context.WithTimeout(ctx, config.Timeout)
	defer cancelTimeout()

	// 9. Execute the requested action
	switch config.Action {
	case ActionTestConnect:
		return testConnect(ctx, config, audit, slogger)
	case ActionTestAuth:
		return testAuth(ctx, config, audit, slogger)
	case ActionListFolders:
		return listFolders(ctx, config, audit, slogger)
	default:
		return fmt.Errorf("unknown action: %s", config.Action)
	}
}
