// Package protocol parses IMAP capability advertisements for the
// connectivity probe. Exchange Online advertises the OAuth SASL
// mechanisms (XOAUTH2, OAUTHBEARER) this way, so the probe reads the
// greeting capabilities to pick how to present the delegate token.
package protocol

import (
	"strings"
)

// Capabilities the probe inspects
const (
	CapabilityIMAP4rev1     = "IMAP4rev1"
	CapabilityIMAP4rev2     = "IMAP4rev2"
	CapabilitySTARTTLS      = "STARTTLS"
	CapabilityLOGINDISABLED = "LOGINDISABLED"
	CapabilityIDLE          = "IDLE"
	CapabilitySASLIR        = "SASL-IR"
	CapabilityID            = "ID"
)

// Capabilities represents a parsed IMAP capability advertisement.
type Capabilities struct {
	// Raw capabilities list
	raw []string

	// Parsed set of capabilities (uppercase)
	caps map[string]bool

	// Auth mechanisms (from AUTH= capabilities)
	authMechanisms []string
}

// NewCapabilities creates a new Capabilities from a list of capability strings.
func NewCapabilities(caps []string) *Capabilities {
	c := &Capabilities{
		raw:  caps,
		caps: make(map[string]bool),
	}
	c.parse()
	return c
}

// parse parses the raw capabilities.
func (c *Capabilities) parse() {
	for _, cap := range c.raw {
		capUpper := strings.ToUpper(cap)
		c.caps[capUpper] = true

		// Extract AUTH mechanisms
		if strings.HasPrefix(capUpper, "AUTH=") {
			c.authMechanisms = append(c.authMechanisms, cap[len("AUTH="):])
		}
	}
}

// Has returns true if the server advertises the given capability.
func (c *Capabilities) Has(name string) bool {
	return c.caps[strings.ToUpper(name)]
}

// All returns all capability strings.
func (c *Capabilities) All() []string {
	return c.raw
}

// String returns a comma-separated list of capabilities.
func (c *Capabilities) String() string {
	return strings.Join(c.raw, ", ")
}

// SupportsIMAP4rev1 returns true if the server supports IMAP4rev1.
func (c *Capabilities) SupportsIMAP4rev1() bool {
	return c.Has(CapabilityIMAP4rev1)
}

// SupportsIMAP4rev2 returns true if the server supports IMAP4rev2.
func (c *Capabilities) SupportsIMAP4rev2() bool {
	return c.Has(CapabilityIMAP4rev2)
}

// SupportsSTARTTLS returns true if the server supports STARTTLS.
func (c *Capabilities) SupportsSTARTTLS() bool {
	return c.Has(CapabilitySTARTTLS)
}

// IsLoginDisabled returns true if LOGIN is disabled (usually pre-TLS).
func (c *Capabilities) IsLoginDisabled() bool {
	return c.Has(CapabilityLOGINDISABLED)
}

// SupportsIDLE returns true if the IDLE extension is supported.
func (c *Capabilities) SupportsIDLE() bool {
	return c.Has(CapabilityIDLE)
}

// SupportsSASLIR returns true if SASL Initial Response is supported.
// This allows sending the initial auth response with the AUTH command.
func (c *Capabilities) SupportsSASLIR() bool {
	return c.Has(CapabilitySASLIR)
}

// SupportsID returns true if the ID extension is supported.
func (c *Capabilities) SupportsID() bool {
	return c.Has(CapabilityID)
}

// GetAuthMechanisms returns the list of advertised SASL mechanisms.
func (c *Capabilities) GetAuthMechanisms() []string {
	return c.authMechanisms
}

// SupportsAuth returns true if any AUTH mechanism is advertised.
func (c *Capabilities) SupportsAuth() bool {
	return len(c.authMechanisms) > 0
}

// hasMechanism checks for a SASL mechanism, case-insensitive.
func (c *Capabilities) hasMechanism(name string) bool {
	for _, mech := range c.authMechanisms {
		if strings.EqualFold(mech, name) {
			return true
		}
	}
	return false
}

// SupportsXOAUTH2 returns true if XOAUTH2 is advertised.
func (c *Capabilities) SupportsXOAUTH2() bool {
	return c.hasMechanism("XOAUTH2")
}

// SupportsOAuthBearer returns true if OAUTHBEARER (RFC 7628) is advertised.
func (c *Capabilities) SupportsOAuthBearer() bool {
	return c.hasMechanism("OAUTHBEARER")
}

// SupportsPlain returns true if PLAIN authentication is advertised.
func (c *Capabilities) SupportsPlain() bool {
	return c.hasMechanism("PLAIN")
}

// SupportsLogin returns true if the direct LOGIN command works.
// Note: this is different from AUTH=LOGIN - LOGIN is available unless
// explicitly disabled.
func (c *Capabilities) SupportsLogin() bool {
	return !c.IsLoginDisabled()
}

// SelectBestAuthMechanism selects the auth mechanism to try first.
// With a bearer token in hand the OAuth mechanisms win:
// XOAUTH2 > OAUTHBEARER; password auth falls back to PLAIN > LOGIN.
func (c *Capabilities) SelectBestAuthMechanism(hasAccessToken bool) string {
	if hasAccessToken {
		if c.SupportsXOAUTH2() {
			return "XOAUTH2"
		}
		if c.SupportsOAuthBearer() {
			return "OAUTHBEARER"
		}
	}
	if c.SupportsPlain() {
		return "PLAIN"
	}
	// Check for AUTH=LOGIN
	if c.hasMechanism("LOGIN") {
		return "LOGIN"
	}
	// Fallback to direct LOGIN command if available
	if c.SupportsLogin() {
		return "LOGIN"
	}
	return ""
}
