package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"msgraphdelegatetool/internal/common/validation"
)

// Config holds all imapchecktool configuration.
type Config struct {
	// Core configuration
	ShowVersion bool
	Action      string

	// IMAP server configuration
	Host    string
	Port    int
	Timeout time.Duration

	// Identities and credentials. Username is the delegate who
	// authenticates; Owner is the shared mailbox the session acts on.
	Owner       string
	Username    string
	Password    string
	AccessToken string
	CredFile    string
	AuthMethod  string // auto, XOAUTH2, OAUTHBEARER, PLAIN, LOGIN

	// TLS configuration
	IMAPS      bool   // Implicit TLS (port 993)
	StartTLS   bool   // Explicit TLS upgrade after connect
	SkipVerify bool   // Skip TLS certificate verification
	TLSVersion string // Minimum TLS version: 1.2, 1.3

	// Network configuration
	MaxRetries int
	RetryDelay time.Duration

	// Runtime configuration
	VerboseMode bool
	LogLevel    string
	LogFormat   string  // Audit log format: csv, json
	RateLimit   float64 // Maximum commands per second (0 = unlimited)
}

// Action constants
const (
	ActionTestConnect = "testconnect"
	ActionTestAuth    = "testauth"
	ActionListFolders = "listfolders"
)

// NewConfig creates a new Config with Exchange Online defaults.
func NewConfig() *Config {
	return &Config{
		Host:        "outlook.office365.com",
		Port:        993,
		Timeout:     30 * time.Second,
		AuthMethod:  "auto",
		IMAPS:       true,
		StartTLS:    false,
		SkipVerify:  false,
		TLSVersion:  "1.2",
		MaxRetries:  3,
		RetryDelay:  2000 * time.Millisecond,
		VerboseMode: false,
		LogLevel:    "INFO",
		LogFormat:   "csv",
		RateLimit:   0, // Unlimited by default
	}
}

// parseAndConfigureFlags parses command-line flags and environment variables.
func parseAndConfigureFlags() *Config {
	config := NewConfig()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "IMAP Connectivity Check Tool\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Verifies that a delegate credential grants IMAP access to an owner's mailbox.\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -action <action> [options]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "\nEnvironment Variables:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  All flags can be set via environment variables with IMAPCHECK prefix\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  Example: IMAPCHECKHOST, IMAPCHECKUSERNAME, IMAPCHECKOWNER\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Actions:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  testconnect   - Test TCP/TLS connection and show capabilities\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  testauth      - Test authentication (XOAUTH2, OAUTHBEARER, PLAIN, LOGIN)\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  listfolders   - List mailbox folders with message counts\n")
	}

	// Core flags
	showVersion := flag.Bool("version", false, "Show version information")
	action := flag.String("action", "", "Action to perform: testconnect, testauth, listfolders (env: IMAPCHECKACTION)")

	// IMAP server configuration
	host := flag.String("host", "outlook.office365.com", "IMAP server hostname (env: IMAPCHECKHOST)")
	port := flag.Int("port", 993, "IMAP server port (env: IMAPCHECKPORT)")
	timeout := flag.Int("timeout", 30, "Overall action timeout in seconds (env: IMAPCHECKTIMEOUT)")

	// Identities and credentials
	owner := flag.String("owner", "", "Shared mailbox to act on (authorization identity) (env: IMAPCHECKOWNER)")
	username := flag.String("username", "", "Delegate username for authentication (env: IMAPCHECKUSERNAME)")
	password := flag.String("password", "", "Password for PLAIN/LOGIN authentication (env: IMAPCHECKPASSWORD)")
	accessToken := flag.String("accesstoken", "", "OAuth2 access token; defaults to the stored delegate credential (env: IMAPCHECKACCESSTOKEN)")
	credFile := flag.String("credfile", "", "Credential store path shared with msgraphdelegatetool (env: IMAPCHECKCREDFILE)")
	authMethod := flag.String("authmethod", "auto", "Auth method: auto, XOAUTH2, OAUTHBEARER, PLAIN, LOGIN (env: IMAPCHECKAUTHMETHOD)")

	// TLS configuration
	imaps := flag.Bool("imaps", true, "Use IMAPS (implicit TLS on port 993) (env: IMAPCHECKIMAPS)")
	startTLS := flag.Bool("starttls", false, "Use STARTTLS upgrade instead of IMAPS (env: IMAPCHECKSTARTTLS)")
	skipVerify := flag.Bool("skipverify", false, "Skip TLS certificate verification (env: IMAPCHECKSKIPVERIFY)")
	tlsVersion := flag.String("tlsversion", "1.2", "Minimum TLS version: 1.2, 1.3 (env: IMAPCHECKTLSVERSION)")

	// Network configuration
	maxRetries := flag.Int("maxretries", 3, "Maximum connect retry attempts (env: IMAPCHECKMAXRETRIES)")
	retryDelay := flag.Int("retrydelay", 2000, "Base retry delay in milliseconds (env: IMAPCHECKRETRYDELAY)")

	// Runtime configuration
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	logLevel := flag.String("loglevel", "INFO", "Log level: DEBUG, INFO, WARN, ERROR")
	logFormat := flag.String("logformat", "csv", "Audit log format: csv, json (env: IMAPCHECKLOGFORMAT)")
	rateLimit := flag.Float64("ratelimit", 0, "Rate limit (commands/second, 0=unlimited) (env: IMAPCHECKRATELIMIT)")

	flag.Parse()

	// Apply flag values
	config.ShowVersion = *showVersion
	config.Action = *action
	config.Host = *host
	config.Port = *port
	config.Timeout = time.Duration(*timeout) * time.Second
	config.Owner = *owner
	config.Username = *username
	config.Password = *password
	config.AccessToken = *accessToken
	config.CredFile = *credFile
	config.AuthMethod = *authMethod
	config.IMAPS = *imaps
	config.StartTLS = *startTLS
	config.SkipVerify = *skipVerify
	config.TLSVersion = *tlsVersion
	config.MaxRetries = *maxRetries
	config.RetryDelay = time.Duration(*retryDelay) * time.Millisecond
	config.VerboseMode = *verbose
	config.LogLevel = *logLevel
	config.LogFormat = *logFormat
	config.RateLimit = *rateLimit

	// Apply environment variables (override defaults if flags not set)
	applyEnvOverrides(config)

	applyPortDefault(config)

	return config
}

// applyPortDefault keeps the port in step with the TLS mode when the
// user changed one but not the other. STARTTLS implies the plain port.
func applyPortDefault(config *Config) {
	if config.StartTLS {
		config.IMAPS = false
	}
	if !config.IMAPS && config.Port == 993 {
		config.Port = 143
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("IMAPCHECKACTION"); v != "" && config.Action == "" {
		config.Action = v
	}
	if v := os.Getenv("IMAPCHECKHOST"); v != "" && config.Host == "outlook.office365.com" {
		config.Host = v
	}
	if v := os.Getenv("IMAPCHECKPORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Port = port
		}
	}
	if v := os.Getenv("IMAPCHECKTIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			config.Timeout = time.Duration(timeout) * time.Second
		}
	}
	if v := os.Getenv("IMAPCHECKOWNER"); v != "" && config.Owner == "" {
		config.Owner = v
	}
	if v := os.Getenv("IMAPCHECKUSERNAME"); v != "" && config.Username == "" {
		config.Username = v
	}
	if v := os.Getenv("IMAPCHECKPASSWORD"); v != "" && config.Password == "" {
		config.Password = v
	}
	if v := os.Getenv("IMAPCHECKACCESSTOKEN"); v != "" && config.AccessToken == "" {
		config.AccessToken = v
	}
	if v := os.Getenv("IMAPCHECKCREDFILE"); v != "" && config.CredFile == "" {
		config.CredFile = v
	}
	if v := os.Getenv("IMAPCHECKAUTHMETHOD"); v != "" && config.AuthMethod == "auto" {
		config.AuthMethod = v
	}
	if v := os.Getenv("IMAPCHECKIMAPS"); v != "" {
		config.IMAPS = parseBoolEnv("IMAPCHECKIMAPS")
	}
	if parseBoolEnv("IMAPCHECKSTARTTLS") {
		config.StartTLS = true
	}
	if parseBoolEnv("IMAPCHECKSKIPVERIFY") {
		config.SkipVerify = true
	}
	if v := os.Getenv("IMAPCHECKTLSVERSION"); v != "" {
		config.TLSVersion = v
	}
	if v := os.Getenv("IMAPCHECKMAXRETRIES"); v != "" {
		if retries, err := strconv.Atoi(v); err == nil {
			config.MaxRetries = retries
		}
	}
	if v := os.Getenv("IMAPCHECKRETRYDELAY"); v != "" {
		if delay, err := strconv.Atoi(v); err == nil {
			config.RetryDelay = time.Duration(delay) * time.Millisecond
		}
	}
	if v := os.Getenv("IMAPCHECKLOGFORMAT"); v != "" {
		config.LogFormat = v
	}
	if v := os.Getenv("IMAPCHECKRATELIMIT"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			config.RateLimit = rate
		}
	}
}

// parseBoolEnv parses a boolean environment variable.
func parseBoolEnv(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// validateConfiguration validates the configuration.
func validateConfiguration(config *Config) error {
	// Validate action
	validActions := []string{ActionTestConnect, ActionTestAuth, ActionListFolders}
	actionValid := false
	for _, a := range validActions {
		if config.Action == a {
			actionValid = true
			break
		}
	}
	if !actionValid {
		return fmt.Errorf("invalid action: %s (valid: %s)", config.Action, strings.Join(validActions, ", "))
	}

	// Security warning for TLS certificate verification bypass
	if config.SkipVerify {
		fmt.Println("╔════════════════════════════════════════════════════════════════╗")
		fmt.Println("║  ⚠️  WARNING: TLS CERTIFICATE VERIFICATION DISABLED            ║")
		fmt.Println("║                                                                ║")
		fmt.Println("║  The -skipverify flag disables TLS certificate validation.    ║")
		fmt.Println("║  This makes the connection vulnerable to man-in-the-middle    ║")
		fmt.Println("║  attacks. Only use this for testing with self-signed certs.   ║")
		fmt.Println("╚════════════════════════════════════════════════════════════════╝")
		fmt.Println()
	}

	// Validate host
	if config.Host == "" {
		return fmt.Errorf("host is required")
	}
	if err := validation.ValidateHostname(config.Host); err != nil {
		return fmt.Errorf("invalid host: %w", err)
	}

	// Validate port
	if err := validation.ValidatePort(config.Port); err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}

	// Validate mutual exclusion
	if config.IMAPS && config.StartTLS {
		return fmt.Errorf("cannot use both -imaps and -starttls; choose one")
	}

	// Validate auth method; empty means auto
	switch strings.ToUpper(config.AuthMethod) {
	case "", "AUTO", "XOAUTH2", "OAUTHBEARER", "PLAIN", "LOGIN":
	default:
		return fmt.Errorf("invalid auth method: %s (valid: auto, XOAUTH2, OAUTHBEARER, PLAIN, LOGIN)", config.AuthMethod)
	}

	// Validate owner
	if config.Owner != "" {
		if err := validation.ValidateEmail(config.Owner); err != nil {
			return fmt.Errorf("invalid owner: %w", err)
		}
		// The LOGIN command carries no authorization identity
		if strings.EqualFold(config.AuthMethod, "LOGIN") {
			return fmt.Errorf("-owner requires an authorization identity; use PLAIN or an OAuth mechanism instead of LOGIN")
		}
	}

	// Action-specific validation
	switch config.Action {
	case ActionTestAuth, ActionListFolders:
		if config.Username == "" {
			return fmt.Errorf("%s requires -username", config.Action)
		}
		method := strings.ToUpper(config.AuthMethod)
		if method == "XOAUTH2" || method == "OAUTHBEARER" {
			if config.AccessToken == "" {
				return fmt.Errorf("%s authentication requires an access token; pass -accesstoken or seed the credential store", method)
			}
			if config.Password != "" {
				fmt.Printf("Warning: both -password and -accesstoken provided; -password will be ignored for %s\n", method)
			}
		} else if config.AccessToken != "" {
			// With a token present, auto picks an OAuth mechanism
			if config.Password != "" {
				fmt.Println("Warning: both -password and -accesstoken provided; -password will be ignored")
			}
		} else if config.Password == "" {
			return fmt.Errorf("%s requires -password, -accesstoken, or a stored delegate credential", config.Action)
		}
	}

	return nil
}
