package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-sasl"

	"msgraphdelegatetool/internal/common/ratelimit"
	"msgraphdelegatetool/internal/common/retry"
	imapprotocol "msgraphdelegatetool/internal/imap/protocol"
)

// IMAPClient wraps an IMAP connection for the connectivity probe.
type IMAPClient struct {
	client  *imapclient.Client
	config  *Config
	caps    *imapprotocol.Capabilities
	limiter *ratelimit.Limiter
	secured bool
}

// MailboxInfo holds LIST and STATUS results for one mailbox.
type MailboxInfo struct {
	Name       string
	Attributes []string
	Messages   uint32
	Unseen     uint32
}

// NewIMAPClient creates a new IMAP client.
func NewIMAPClient(config *Config) *IMAPClient {
	var limiter *ratelimit.Limiter
	if config.RateLimit > 0 {
		limiter = ratelimit.New(config.RateLimit)
	}

	return &IMAPClient{
		config:  config,
		limiter: limiter,
	}
}

// Connect dials the server, retrying transient failures with backoff.
// The TLS mode is fixed at dial time: IMAPS, STARTTLS, or plaintext.
func (c *IMAPClient) Connect(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	address := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)

	options := &imapclient.Options{
		TLSConfig: &tls.Config{
			ServerName:         c.config.Host,
			InsecureSkipVerify: c.config.SkipVerify,
			MinVersion:         parseTLSVersion(c.config.TLSVersion),
		},
	}

	err := retry.RetryWithBackoff(ctx, c.config.MaxRetries, c.config.RetryDelay, func() error {
		var err error
		switch {
		case c.config.IMAPS:
			c.client, err = imapclient.DialTLS(address, options)
		case c.config.StartTLS:
			c.client, err = imapclient.DialStartTLS(address, options)
		default:
			c.client, err = imapclient.DialInsecure(address, options)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	c.secured = c.config.IMAPS || c.config.StartTLS

	// Capabilities arrive with the greeting
	if caps := c.client.Caps(); caps != nil {
		c.caps = convertCaps(caps)
	}

	return nil
}

// Capabilities returns what the server advertised in its greeting.
func (c *IMAPClient) Capabilities() *imapprotocol.Capabilities {
	return c.caps
}

// Secured reports whether the connection is TLS-protected.
func (c *IMAPClient) Secured() bool {
	return c.secured
}

// ResolveAuthMethod returns the mechanism Auth will use: the configured
// one, or the best the server advertises when -authmethod is auto.
// Returns "" when the server offers no usable mechanism.
func (c *IMAPClient) ResolveAuthMethod() string {
	if c.config.AuthMethod != "" && !strings.EqualFold(c.config.AuthMethod, "auto") {
		return strings.ToUpper(c.config.AuthMethod)
	}
	if c.caps == nil {
		return "LOGIN"
	}
	return c.caps.SelectBestAuthMechanism(c.config.AccessToken != "")
}

// Auth authenticates as the delegate. For XOAUTH2, OAUTHBEARER, and
// PLAIN the configured owner (if any) is passed as the authorization
// identity, which is how Exchange Online grants shared-mailbox access.
func (c *IMAPClient) Auth(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	method := c.ResolveAuthMethod()
	switch method {
	case "XOAUTH2":
		return c.authXOAUTH2()
	case "OAUTHBEARER":
		return c.authOAuthBearer()
	case "PLAIN":
		return c.authPlain()
	case "LOGIN":
		return c.authLogin()
	case "":
		return fmt.Errorf("server offers no usable authentication mechanism (capabilities: %s)", c.caps)
	default:
		return fmt.Errorf("unsupported auth method: %s", method)
	}
}

// authzIdentity is the account the session acts on: the owner mailbox
// when set, the delegate's own mailbox otherwise.
func (c *IMAPClient) authzIdentity() string {
	if c.config.Owner != "" {
		return c.config.Owner
	}
	return c.config.Username
}

// authXOAUTH2 performs XOAUTH2 authentication.
func (c *IMAPClient) authXOAUTH2() error {
	saslClient := imapprotocol.NewXOAUTH2Client(c.authzIdentity(), c.config.AccessToken)
	if err := c.client.Authenticate(saslClient); err != nil {
		return fmt.Errorf("XOAUTH2 authentication failed: %w", err)
	}
	return nil
}

// authOAuthBearer performs OAUTHBEARER (RFC 7628) authentication.
func (c *IMAPClient) authOAuthBearer() error {
	saslClient := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
		Username: c.authzIdentity(),
		Token:    c.config.AccessToken,
	})
	if err := c.client.Authenticate(saslClient); err != nil {
		return fmt.Errorf("OAUTHBEARER authentication failed: %w", err)
	}
	return nil
}

// authPlain performs PLAIN authentication. The first argument to the
// SASL client is the authorization identity, empty for self-access.
func (c *IMAPClient) authPlain() error {
	saslClient := sasl.NewPlainClient(c.config.Owner, c.config.Username, c.config.Password)
	if err := c.client.Authenticate(saslClient); err != nil {
		return fmt.Errorf("PLAIN authentication failed: %w", err)
	}
	return nil
}

// authLogin performs the direct LOGIN command.
func (c *IMAPClient) authLogin() error {
	if c.config.Owner != "" {
		return fmt.Errorf("LOGIN carries no authorization identity; use PLAIN or an OAuth mechanism for a shared mailbox")
	}
	if err := c.client.Login(c.config.Username, c.config.Password).Wait(); err != nil {
		return fmt.Errorf("LOGIN failed: %w", err)
	}
	return nil
}

// ListMailboxes lists all mailboxes with message counts.
func (c *IMAPClient) ListMailboxes(ctx context.Context) ([]MailboxInfo, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	listCmd := c.client.List("", "*", nil)
	mailboxes, err := listCmd.Collect()
	if err != nil {
		return nil, fmt.Errorf("LIST failed: %w", err)
	}

	var result []MailboxInfo
	for _, mb := range mailboxes {
		info := MailboxInfo{
			Name:       mb.Mailbox,
			Attributes: convertMailboxAttrs(mb.Attrs),
		}

		// STATUS may be refused on some folders; counts stay zero then
		statusCmd := c.client.Status(mb.Mailbox, &imap.StatusOptions{
			NumMessages: true,
			NumUnseen:   true,
		})
		if status, err := statusCmd.Wait(); err == nil {
			if status.NumMessages != nil {
				info.Messages = *status.NumMessages
			}
			if status.NumUnseen != nil {
				info.Unseen = *status.NumUnseen
			}
		}

		result = append(result, info)
	}

	return result, nil
}

// Logout sends the LOGOUT command and closes the connection.
func (c *IMAPClient) Logout() error {
	if c.client != nil {
		return c.client.Logout().Wait()
	}
	return nil
}

// wait applies the rate limit if one is configured.
func (c *IMAPClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// parseTLSVersion parses a TLS version string to a constant.
func parseTLSVersion(version string) uint16 {
	switch version {
	case "1.3":
		return tls.VersionTLS13
	case "1.2":
		return tls.VersionTLS12
	case "1.1":
		return tls.VersionTLS11
	case "1.0":
		return tls.VersionTLS10
	default:
		return tls.VersionTLS12
	}
}

// convertCaps converts go-imap capabilities to protocol.Capabilities.
func convertCaps(caps imap.CapSet) *imapprotocol.Capabilities {
	capsList := make([]string, 0, len(caps))
	for cap := range caps {
		capsList = append(capsList, string(cap))
	}
	return imapprotocol.NewCapabilities(capsList)
}

// convertMailboxAttrs converts mailbox attributes to strings.
func convertMailboxAttrs(attrs []imap.MailboxAttr) []string {
	var result []string
	for _, attr := range attrs {
		result = append(result, string(attr))
	}
	return result
}
