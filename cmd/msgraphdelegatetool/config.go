package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"msgraphdelegatetool/internal/common/validation"
)

// Config holds all msgraphdelegatetool configuration.
type Config struct {
	// Core configuration
	ShowVersion bool
	Action      string
	ConfigFile  string

	// Mailbox addressing
	Owner    string // mailbox every Graph request is rooted at
	Delegate string // acting assistant identity, recorded in logs
	Timezone string // zone for the outlook.timezone Prefer header

	// Authentication
	AuthMode    string // delegate (stored refresh token) or app (azidentity)
	TenantID    string
	ClientID    string
	Secret      string
	PfxPath     string
	PfxPass     string
	Scopes      []string // OAuth2 scopes for token refresh; empty keeps the original grant
	CredFile    string   // credential store path; empty uses the default
	AutoRefresh bool     // refresh the stored token when it is known expired

	// Action parameters
	MessageID       string // partial or full item ID
	Folder          string
	Count           int
	Search          string
	UnreadOnly      bool
	To              []string
	Cc              []string
	Bcc             []string
	Subject         string
	Body            string
	BodyTemplate    string // path to an HTML body file
	BodyHTML        string // loaded from BodyTemplate
	AttachmentFiles []string
	StartTime       string
	EndTime         string
	Location        string
	Response        string // accept, decline, tentative
	Comment         string
	SaveToSent      bool

	// Network configuration
	Timeout   time.Duration
	ProxyURL  string
	RateLimit float64 // requests per second, 0 = unlimited
	PageSize  int

	// Runtime configuration
	VerboseMode  bool
	LogLevel     string
	OutputFormat string
	LogFormat    string
}

// Action constants
const (
	ActionGetInbox     = "getinbox"
	ActionReadMail     = "readmail"
	ActionMarkRead     = "markread"
	ActionMarkUnread   = "markunread"
	ActionMoveMail     = "movemail"
	ActionDeleteMail   = "deletemail"
	ActionSendMail     = "sendmail"
	ActionReplyMail    = "replymail"
	ActionGetFolders   = "getfolders"
	ActionGetEvents    = "getevents"
	ActionSendInvite   = "sendinvite"
	ActionRespondEvent = "respondevent"
	ActionCancelEvent  = "cancelevent"
	ActionRefreshToken = "refreshtoken"
	ActionShowToken    = "showtoken"
	ActionWhoami       = "whoami"
)

// Auth mode constants
const (
	AuthModeDelegate = "delegate"
	AuthModeApp      = "app"
)

// validActions lists every action the tool dispatches.
var validActions = []string{
	ActionGetInbox, ActionReadMail, ActionMarkRead, ActionMarkUnread,
	ActionMoveMail, ActionDeleteMail, ActionSendMail, ActionReplyMail,
	ActionGetFolders, ActionGetEvents, ActionSendInvite, ActionRespondEvent,
	ActionCancelEvent, ActionRefreshToken, ActionShowToken, ActionWhoami,
}

// actionsWithoutOwner run against the credential store only and do not
// need a target mailbox.
var actionsWithoutOwner = map[string]bool{
	ActionRefreshToken: true,
	ActionShowToken:    true,
}

// actionsRequiringID operate on a single mail or calendar item.
var actionsRequiringID = map[string]bool{
	ActionReadMail:     true,
	ActionMarkRead:     true,
	ActionMarkUnread:   true,
	ActionMoveMail:     true,
	ActionDeleteMail:   true,
	ActionReplyMail:    true,
	ActionRespondEvent: true,
	ActionCancelEvent:  true,
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timezone:     "UTC",
		AuthMode:     AuthModeDelegate,
		AutoRefresh:  true,
		Count:        10,
		SaveToSent:   true,
		Timeout:      30 * time.Second,
		PageSize:     100,
		RateLimit:    0, // Unlimited by default
		LogLevel:     "INFO",
		OutputFormat: "text",
		LogFormat:    "csv",
	}
}

// parseAndConfigureFlags parses command-line flags, environment
// variables, and the optional config file. Flags win over environment
// variables, which win over config file values.
func parseAndConfigureFlags() *Config {
	config := NewConfig()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Microsoft Graph Delegate Mailbox Tool\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Acts on an owner's mailbox and calendar through delegated Graph API access.\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -action <action> [options]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "\nEnvironment Variables:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  All flags can be set via environment variables with GRAPHDELEGATE prefix\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  Example: GRAPHDELEGATEOWNER, GRAPHDELEGATETENANTID, GRAPHDELEGATECLIENTID\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Actions:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  getinbox      - List messages in a folder (default inbox)\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  readmail      - Show one message including its body\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  markread      - Mark a message as read\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  markunread    - Mark a message as unread\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  movemail      - Move a message to another folder\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  deletemail    - Delete a message\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  sendmail      - Send mail as the owner\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  replymail     - Reply to a message\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  getfolders    - List the owner's mail folders\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  getevents     - List calendar events, optionally inside a window\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  sendinvite    - Create a calendar event with attendees\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  respondevent  - Accept, decline, or tentatively accept an invitation\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  cancelevent   - Cancel a meeting the owner organizes\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  refreshtoken  - Refresh the stored OAuth2 credential\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  showtoken     - Display the stored credential (masked)\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  whoami        - Probe the owner's directory entry\n")
	}

	// Core flags
	showVersion := flag.Bool("version", false, "Show version information")
	action := flag.String("action", "", "Action to perform (env: GRAPHDELEGATEACTION)")
	configFile := flag.String("config", "", "JSON config file providing defaults (env: GRAPHDELEGATECONFIG)")
	_ = flag.String("completion", "", "Generate shell completion script: bash, powershell")

	// Mailbox addressing
	owner := flag.String("owner", "", "Owner mailbox all requests target (env: GRAPHDELEGATEOWNER)")
	delegate := flag.String("delegate", "", "Acting delegate identity, for logging (env: GRAPHDELEGATEDELEGATE)")
	timezone := flag.String("timezone", "UTC", "Timezone for returned date times (env: GRAPHDELEGATETIMEZONE)")

	// Authentication
	authMode := flag.String("authmode", AuthModeDelegate, "Auth mode: delegate (stored refresh token) or app (env: GRAPHDELEGATEAUTHMODE)")
	tenantID := flag.String("tenantid", "", "Microsoft Entra tenant ID (env: GRAPHDELEGATETENANTID)")
	clientID := flag.String("clientid", "", "App registration client ID (env: GRAPHDELEGATECLIENTID)")
	secret := flag.String("secret", "", "Client secret (env: GRAPHDELEGATESECRET)")
	pfxPath := flag.String("pfx", "", "PFX certificate file for app auth (env: GRAPHDELEGATEPFX)")
	pfxPass := flag.String("pfxpass", "", "PFX certificate password (env: GRAPHDELEGATEPFXPASS)")
	scopes := flag.String("scopes", "", "OAuth2 scopes for token refresh, comma-separated (env: GRAPHDELEGATESCOPES)")
	credFile := flag.String("credfile", "", "Credential store path (env: GRAPHDELEGATECREDFILE)")
	autoRefresh := flag.Bool("autorefresh", true, "Refresh the stored token when expired (env: GRAPHDELEGATEAUTOREFRESH)")

	// Action parameters
	messageID := flag.String("id", "", "Item ID or unique ID suffix")
	folder := flag.String("folder", "", "Mail folder name or ID")
	count := flag.Int("count", 10, "Number of items to list")
	search := flag.String("search", "", "Search expression for getinbox")
	unread := flag.Bool("unread", false, "List unread messages only")
	to := flag.String("to", "", "To recipients, comma-separated")
	cc := flag.String("cc", "", "Cc recipients, comma-separated")
	bcc := flag.String("bcc", "", "Bcc recipients, comma-separated")
	subject := flag.String("subject", "", "Mail or event subject")
	body := flag.String("body", "", "Mail body, reply comment, or event description")
	bodyTemplate := flag.String("bodytemplate", "", "Path to an HTML body file")
	attach := flag.String("attach", "", "Attachment file paths, comma-separated")
	startTime := flag.String("start", "", "Event or window start (RFC3339 or 2006-01-02T15:04:05, UTC)")
	endTime := flag.String("end", "", "Event or window end (RFC3339 or 2006-01-02T15:04:05, UTC)")
	location := flag.String("location", "", "Event location")
	response := flag.String("response", "", "Invitation response: accept, decline, tentative")
	comment := flag.String("comment", "", "Comment sent with respondevent or cancelevent")
	saveToSent := flag.Bool("savetosent", true, "Save sent mail to the Sent Items folder")

	// Network configuration
	timeout := flag.Int("timeout", 30, "Per-request timeout in seconds (env: GRAPHDELEGATETIMEOUT)")
	proxyURL := flag.String("proxy", "", "Proxy URL (env: GRAPHDELEGATEPROXY)")
	rateLimit := flag.Float64("ratelimit", 0, "Rate limit (requests/second, 0=unlimited) (env: GRAPHDELEGATERATELIMIT)")
	pageSize := flag.Int("pagesize", 100, "Listing page size, also bounds partial-ID resolution (env: GRAPHDELEGATEPAGESIZE)")

	// Runtime configuration
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	logLevel := flag.String("loglevel", "INFO", "Log level: DEBUG, INFO, WARN, ERROR")
	output := flag.String("output", "text", "Output format: text, json (env: GRAPHDELEGATEOUTPUT)")
	logFormat := flag.String("logformat", "csv", "Audit log file format: csv, json (env: GRAPHDELEGATELOGFORMAT)")

	flag.Parse()

	// Apply flag values
	config.ShowVersion = *showVersion
	config.Action = *action
	config.ConfigFile = *configFile
	config.Owner = *owner
	config.Delegate = *delegate
	config.Timezone = *timezone
	config.AuthMode = *authMode
	config.TenantID = *tenantID
	config.ClientID = *clientID
	config.Secret = *secret
	config.PfxPath = *pfxPath
	config.PfxPass = *pfxPass
	config.Scopes = splitList(*scopes)
	config.CredFile = *credFile
	config.AutoRefresh = *autoRefresh
	config.MessageID = *messageID
	config.Folder = *folder
	config.Count = *count
	config.Search = *search
	config.UnreadOnly = *unread
	config.To = splitList(*to)
	config.Cc = splitList(*cc)
	config.Bcc = splitList(*bcc)
	config.Subject = *subject
	config.Body = *body
	config.BodyTemplate = *bodyTemplate
	config.AttachmentFiles = splitList(*attach)
	config.StartTime = *startTime
	config.EndTime = *endTime
	config.Location = *location
	config.Response = *response
	config.Comment = *comment
	config.SaveToSent = *saveToSent
	config.Timeout = time.Duration(*timeout) * time.Second
	config.ProxyURL = *proxyURL
	config.RateLimit = *rateLimit
	config.PageSize = *pageSize
	config.VerboseMode = *verbose
	config.LogLevel = *logLevel
	config.OutputFormat = *output
	config.LogFormat = *logFormat

	// Apply environment variables (override defaults if flags not set)
	applyEnvOverrides(config)

	// Config file fills whatever is still unset
	if config.ConfigFile != "" {
		if err := loadConfigFile(config); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load config file: %v\n", err)
		}
	}

	return config
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("GRAPHDELEGATEACTION"); v != "" && config.Action == "" {
		config.Action = v
	}
	if v := os.Getenv("GRAPHDELEGATECONFIG"); v != "" && config.ConfigFile == "" {
		config.ConfigFile = v
	}
	if v := os.Getenv("GRAPHDELEGATEOWNER"); v != "" && config.Owner == "" {
		config.Owner = v
	}
	if v := os.Getenv("GRAPHDELEGATEDELEGATE"); v != "" && config.Delegate == "" {
		config.Delegate = v
	}
	if v := os.Getenv("GRAPHDELEGATETIMEZONE"); v != "" && config.Timezone == "UTC" {
		config.Timezone = v
	}
	if v := os.Getenv("GRAPHDELEGATEAUTHMODE"); v != "" && config.AuthMode == AuthModeDelegate {
		config.AuthMode = v
	}
	if v := os.Getenv("GRAPHDELEGATETENANTID"); v != "" && config.TenantID == "" {
		config.TenantID = v
	}
	if v := os.Getenv("GRAPHDELEGATECLIENTID"); v != "" && config.ClientID == "" {
		config.ClientID = v
	}
	if v := os.Getenv("GRAPHDELEGATESECRET"); v != "" && config.Secret == "" {
		config.Secret = v
	}
	if v := os.Getenv("GRAPHDELEGATEPFX"); v != "" && config.PfxPath == "" {
		config.PfxPath = v
	}
	if v := os.Getenv("GRAPHDELEGATEPFXPASS"); v != "" && config.PfxPass == "" {
		config.PfxPass = v
	}
	if v := os.Getenv("GRAPHDELEGATESCOPES"); v != "" && len(config.Scopes) == 0 {
		config.Scopes = splitList(v)
	}
	if v := os.Getenv("GRAPHDELEGATECREDFILE"); v != "" && config.CredFile == "" {
		config.CredFile = v
	}
	if v := os.Getenv("GRAPHDELEGATEAUTOREFRESH"); v != "" {
		config.AutoRefresh = parseBoolEnv("GRAPHDELEGATEAUTOREFRESH")
	}
	if parseBoolEnv("GRAPHDELEGATEVERBOSE") {
		config.VerboseMode = true
	}
	if v := os.Getenv("GRAPHDELEGATETIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			config.Timeout = time.Duration(timeout) * time.Second
		}
	}
	if v := os.Getenv("GRAPHDELEGATEPROXY"); v != "" && config.ProxyURL == "" {
		config.ProxyURL = v
	}
	if v := os.Getenv("GRAPHDELEGATERATELIMIT"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			config.RateLimit = rate
		}
	}
	if v := os.Getenv("GRAPHDELEGATEPAGESIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.PageSize = size
		}
	}
	if v := os.Getenv("GRAPHDELEGATEOUTPUT"); v != "" {
		config.OutputFormat = v
	}
	if v := os.Getenv("GRAPHDELEGATELOGFORMAT"); v != "" {
		config.LogFormat = v
	}
}

// fileConfig is the optional JSON config file shape. It carries the
// stable identity and network settings, not per-action parameters.
type fileConfig struct {
	Owner     string  `json:"owner,omitempty"`
	Delegate  string  `json:"delegate,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
	AuthMode  string  `json:"authmode,omitempty"`
	TenantID  string  `json:"tenantid,omitempty"`
	ClientID  string  `json:"clientid,omitempty"`
	Secret    string  `json:"secret,omitempty"`
	PfxPath   string  `json:"pfx,omitempty"`
	Scopes    string  `json:"scopes,omitempty"`
	CredFile  string  `json:"credfile,omitempty"`
	ProxyURL  string  `json:"proxy,omitempty"`
	RateLimit float64 `json:"ratelimit,omitempty"`
	PageSize  int     `json:"pagesize,omitempty"`
}

// loadConfigFile fills config values still at their defaults from the
// JSON file. Flags and environment variables always win.
func loadConfigFile(config *Config) error {
	data, err := os.ReadFile(config.ConfigFile)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", config.ConfigFile, err)
	}

	if config.Owner == "" {
		config.Owner = fc.Owner
	}
	if config.Delegate == "" {
		config.Delegate = fc.Delegate
	}
	if config.Timezone == "UTC" && fc.Timezone != "" {
		config.Timezone = fc.Timezone
	}
	if config.AuthMode == AuthModeDelegate && fc.AuthMode != "" {
		config.AuthMode = fc.AuthMode
	}
	if config.TenantID == "" {
		config.TenantID = fc.TenantID
	}
	if config.ClientID == "" {
		config.ClientID = fc.ClientID
	}
	if config.Secret == "" {
		config.Secret = fc.Secret
	}
	if config.PfxPath == "" {
		config.PfxPath = fc.PfxPath
	}
	if len(config.Scopes) == 0 {
		config.Scopes = splitList(fc.Scopes)
	}
	if config.CredFile == "" {
		config.CredFile = fc.CredFile
	}
	if config.ProxyURL == "" {
		config.ProxyURL = fc.ProxyURL
	}
	if config.RateLimit == 0 && fc.RateLimit > 0 {
		config.RateLimit = fc.RateLimit
	}
	if config.PageSize == 100 && fc.PageSize > 0 {
		config.PageSize = fc.PageSize
	}
	return nil
}

// parseBoolEnv parses a boolean environment variable.
func parseBoolEnv(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// validateConfiguration validates the configuration.
func validateConfiguration(config *Config) error {
	// Validate action
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

	// Validate auth mode
	if config.AuthMode != AuthModeDelegate && config.AuthMode != AuthModeApp {
		return fmt.Errorf("invalid authmode: %s (valid: %s, %s)", config.AuthMode, AuthModeDelegate, AuthModeApp)
	}

	// Owner mailbox
	if !actionsWithoutOwner[config.Action] {
		if config.Owner == "" {
			return fmt.Errorf("%s requires -owner", config.Action)
		}
		if err := validation.ValidateEmail(config.Owner); err != nil {
			return fmt.Errorf("invalid owner: %w", err)
		}
	}
	if config.Delegate != "" {
		if err := validation.ValidateEmail(config.Delegate); err != nil {
			return fmt.Errorf("invalid delegate: %w", err)
		}
	}

	// App-only auth needs an app registration plus a secret or certificate
	if config.AuthMode == AuthModeApp {
		if config.TenantID == "" || config.ClientID == "" {
			return fmt.Errorf("authmode app requires -tenantid and -clientid")
		}
		if config.Secret == "" && config.PfxPath == "" {
			return fmt.Errorf("authmode app requires -secret or -pfx")
		}
	}

	// Token refresh needs the app registration the refresh token was issued to
	if config.Action == ActionRefreshToken {
		if config.TenantID == "" || config.ClientID == "" {
			return fmt.Errorf("refreshtoken requires -tenantid and -clientid")
		}
	}

	if config.TenantID != "" {
		if err := validation.ValidateGUID(config.TenantID, "tenant ID"); err != nil {
			return err
		}
	}
	if config.ClientID != "" {
		if err := validation.ValidateGUID(config.ClientID, "client ID"); err != nil {
			return err
		}
	}

	// Item-scoped actions
	if actionsRequiringID[config.Action] {
		if err := validation.ValidateIDSuffix(config.MessageID); err != nil {
			return fmt.Errorf("%s: %w", config.Action, err)
		}
	}

	// Action-specific validation
	switch config.Action {
	case ActionMoveMail:
		if config.Folder == "" {
			return fmt.Errorf("movemail requires -folder")
		}
	case ActionRespondEvent:
		if normalizeEventResponse(config.Response) == "" {
			return fmt.Errorf("invalid -response: %q (valid: accept, decline, tentative)", config.Response)
		}
	case ActionSendMail:
		if err := validation.ValidateEmails(config.To, "to"); err != nil {
			return err
		}
		if err := validation.ValidateEmails(config.Cc, "cc"); err != nil {
			return err
		}
		if err := validation.ValidateEmails(config.Bcc, "bcc"); err != nil {
			return err
		}
		if config.BodyTemplate != "" {
			if err := validation.ValidateFilePath(config.BodyTemplate, "body template"); err != nil {
				return err
			}
		}
		for _, path := range config.AttachmentFiles {
			if err := validation.ValidateFilePath(path, "attachment"); err != nil {
				return err
			}
		}
	case ActionSendInvite:
		if err := validation.ValidateEmails(config.To, "to"); err != nil {
			return err
		}
	case ActionGetInbox:
		if config.Search != "" && config.UnreadOnly {
			return fmt.Errorf("-search and -unread cannot be combined")
		}
	}

	if config.Count <= 0 {
		return fmt.Errorf("count must be positive (got %d)", config.Count)
	}
	if err := validation.ValidatePageSize(config.PageSize); err != nil {
		return err
	}
	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("ratelimit cannot be negative")
	}
	if err := validation.ValidateProxyURL(config.ProxyURL); err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}

	switch config.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format: %s (valid: text, json)", config.OutputFormat)
	}

	return nil
}
