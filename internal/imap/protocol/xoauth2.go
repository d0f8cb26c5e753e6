package protocol

import (
	"fmt"

	"github.com/emersion/go-sasl"
)

// xoauth2Client implements the XOAUTH2 SASL mechanism that Exchange
// Online and Gmail advertise alongside OAUTHBEARER. go-sasl ships no
// XOAUTH2 client of its own.
//
// Initial response wire format:
//
//	user=<authorization identity>^Aauth=Bearer <token>^A^A
//
// For shared-mailbox access the authorization identity is the mailbox
// owner while the bearer token belongs to the delegate.
type xoauth2Client struct {
	username string
	token    string
	done     bool
}

// NewXOAUTH2Client returns a sasl.Client for the XOAUTH2 mechanism.
func NewXOAUTH2Client(username, token string) sasl.Client {
	return &xoauth2Client{username: username, token: token}
}

func (c *xoauth2Client) Start() (string, []byte, error) {
	resp := []byte("user=" + c.username + "\x01auth=Bearer " + c.token + "\x01\x01")
	return "XOAUTH2", resp, nil
}

// Next handles the failure path: the server sends a JSON error blob and
// expects an empty response before issuing its final NO.
func (c *xoauth2Client) Next(challenge []byte) ([]byte, error) {
	if c.done {
		return nil, fmt.Errorf("xoauth2: unexpected server challenge")
	}
	c.done = true
	return []byte{}, nil
}
