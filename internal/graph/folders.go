package graph

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

const folderSelectFields = "id,displayName,parentFolderId,childFolderCount,unreadItemCount,totalItemCount"

// wellKnownFolders are the built-in names Graph accepts directly in
// place of a mailFolder ID.
var wellKnownFolders = map[string]bool{
	"inbox":        true,
	"drafts":       true,
	"sentitems":    true,
	"deleteditems": true,
	"junkemail":    true,
	"archive":      true,
	"outbox":       true,
}

// ListMailFolders fetches one page of the owner's top-level mail
// folders.
func (c *Client) ListMailFolders(ctx context.Context) ([]MailFolder, error) {
	query := url.Values{}
	query.Set("$top", strconv.Itoa(c.pageSize))
	query.Set("$select", folderSelectFields)

	var page folderList
	if err := c.get(ctx, c.ownerURL(query, "mailFolders"), &page); err != nil {
		return nil, err
	}
	return page.Value, nil
}

// ResolveFolderID maps a user-supplied folder name to something Graph
// accepts as a mailFolder ID. Well-known names (inbox, sentitems, ...)
// pass through unchanged without a network call; anything else is
// matched case-insensitively against the display names of the owner's
// folders. An empty name resolves to empty, meaning the whole mailbox.
func (c *Client) ResolveFolderID(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	if wellKnownFolders[strings.ToLower(name)] {
		return strings.ToLower(name), nil
	}

	folders, err := c.ListMailFolders(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range folders {
		if strings.EqualFold(f.DisplayName, name) {
			return f.ID, nil
		}
	}

	return "", &NotFoundError{
		Resource: "mail folder",
		Query:    name,
		Detail:   "no display name match among the owner's folders",
	}
}
