package graph

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a resource could not be located: a
// partial ID matched nothing in the listed page, or a folder name
// matched no folder.
type NotFoundError struct {
	Resource string // what was looked up, e.g. "message"
	Query    string // the ID suffix or name that failed to match
	Detail   string // extra context, e.g. how much of the listing was searched
}

func (e *NotFoundError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %q not found (%s)", e.Resource, e.Query, e.Detail)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Query)
}

// TransportError is a network-level failure: DNS, dial, TLS, or
// timeout. The request produced no HTTP response and is not replayed.
type TransportError struct {
	Op  string // method and URL of the failed request
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx response from Graph. Code and Message carry
// the OData error body verbatim; RequestID is the client-request-id
// that was sent, for correlation with service-side logs.
type RemoteError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("graph returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("graph returned %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound reports whether err says the resource does not exist,
// either locally (no suffix match) or remotely (HTTP 404).
func IsNotFound(err error) bool {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return true
	}
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == 404
}

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRemote reports whether err is a non-2xx Graph response.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
