package graph

import (
	"context"
	"net/url"
)

const ownerSelectFields = "id,displayName,mail,userPrincipalName"

// GetOwnerProfile fetches the owner's directory entry. It doubles as
// a cheap probe that the token grants access to the owner mailbox.
func (c *Client) GetOwnerProfile(ctx context.Context) (*User, error) {
	query := url.Values{}
	query.Set("$select", ownerSelectFields)

	var owner User
	if err := c.get(ctx, c.ownerURL(query), &owner); err != nil {
		return nil, err
	}
	return &owner, nil
}
