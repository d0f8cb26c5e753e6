package validation

import (
	"fmt"
	"net/url"
	"strconv"
)

// ValidateProxyURL validates an outbound proxy URL.
// Accepts http, https, and socks5 schemes with optional authentication.
// An empty URL is valid since the proxy is an optional setting.
func ValidateProxyURL(proxyURL string) error {
	if proxyURL == "" {
		return nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL format: %w", err)
	}

	// Scheme check catches bare host:port too, since url.Parse reads
	// "proxy.example.com:8080" as scheme "proxy.example.com"
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return fmt.Errorf("unsupported proxy scheme: %q (must be http, https, or socks5)", u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("proxy URL must include hostname")
	}

	if err := ValidateHostname(hostname); err != nil {
		return fmt.Errorf("invalid proxy hostname: %w", err)
	}

	// url.Parse already rejects non-numeric and negative ports, so
	// only the numeric range needs checking here
	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid proxy port: %q", portStr)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid proxy port: %d (must be between 1 and 65535)", port)
		}
	}

	if u.User != nil {
		if u.User.Username() == "" {
			if _, hasPassword := u.User.Password(); hasPassword {
				return fmt.Errorf("proxy URL has empty username with password set")
			}
		}
	}

	return nil
}
