// Package credential stores and refreshes the delegated OAuth2
// credential used to call Microsoft Graph on behalf of a mailbox
// owner. The on-disk format is a single JSON object holding the
// access and refresh tokens, compatible with files written by the
// earlier shell tooling.
package credential

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoCredential indicates that no usable credential is stored.
// Callers should direct the user to authenticate again rather than
// retry the operation.
var ErrNoCredential = errors.New("no stored credential")

// Credential is the stored delegated token set. ObtainedAt is recorded
// at refresh time; files written by older tooling omit it, in which
// case local expiry checks are skipped and the API decides.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ObtainedAt   time.Time `json:"obtained_at,omitempty"`
}

// ExpiresAt returns the computed expiry instant, or the zero time when
// ObtainedAt is unknown.
func (c *Credential) ExpiresAt() time.Time {
	if c.ObtainedAt.IsZero() || c.ExpiresIn <= 0 {
		return time.Time{}
	}
	return c.ObtainedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}

// Expired reports whether the access token is known to be expired,
// allowing for the given clock skew. A credential without ObtainedAt
// is never reported expired.
func (c *Credential) Expired(skew time.Duration) bool {
	exp := c.ExpiresAt()
	if exp.IsZero() {
		return false
	}
	return time.Now().After(exp.Add(-skew))
}

// AuthError is a failure reported by the token endpoint. Code and
// Description carry the endpoint's error and error_description fields
// verbatim so AADSTS diagnostics reach the user unaltered.
type AuthError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *AuthError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("token endpoint returned %s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("token endpoint returned %s (HTTP %d): %s", e.Code, e.StatusCode, e.Description)
}

// IsAuthError reports whether err is a token endpoint failure.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
