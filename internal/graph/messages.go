package graph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const messageSelectFields = "id,subject,from,toRecipients,receivedDateTime,isRead,hasAttachments,importance,bodyPreview"

const messageDetailFields = "id,subject,from,toRecipients,ccRecipients,receivedDateTime,sentDateTime,isRead,isDraft,hasAttachments,importance,body,webLink,parentFolderId"

// ListMessagesOptions narrows a message listing. Search and UnreadOnly
// cannot be combined: Graph rejects $search together with $filter.
type ListMessagesOptions struct {
	FolderID   string // folder ID or well-known name; empty lists across the mailbox
	Top        int    // page size; 0 uses the client default
	Search     string // Graph $search expression, e.g. subject:report
	UnreadOnly bool
}

// ListMessages fetches one page of the owner's messages, newest first.
// With Search set the server picks the order: Graph does not allow
// $orderby in a $search request.
func (c *Client) ListMessages(ctx context.Context, opts ListMessagesOptions) ([]Message, error) {
	top := opts.Top
	if top <= 0 {
		top = c.pageSize
	}

	query := url.Values{}
	query.Set("$top", strconv.Itoa(top))
	query.Set("$select", messageSelectFields)

	if opts.Search != "" {
		if opts.UnreadOnly {
			return nil, fmt.Errorf("search and unread-only cannot be combined ($search excludes $filter)")
		}
		query.Set("$search", strconv.Quote(opts.Search))
	} else {
		query.Set("$orderby", "receivedDateTime desc")
		if opts.UnreadOnly {
			query.Set("$filter", "isRead eq false")
		}
	}

	segments := []string{"messages"}
	if opts.FolderID != "" {
		segments = []string{"mailFolders", opts.FolderID, "messages"}
	}

	var page messageList
	if err := c.get(ctx, c.ownerURL(query, segments...), &page); err != nil {
		return nil, err
	}
	return page.Value, nil
}

// GetMessage fetches one message with its full body.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	query := url.Values{}
	query.Set("$select", messageDetailFields)

	var msg Message
	if err := c.get(ctx, c.ownerURL(query, "messages", messageID), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SetMessageRead marks a message read or unread and returns the
// updated message.
func (c *Client) SetMessageRead(ctx context.Context, messageID string, read bool) (*Message, error) {
	var msg Message
	body := messagePatch{IsRead: &read}
	if err := c.patch(ctx, c.ownerURL(nil, "messages", messageID), body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MoveMessage moves a message into the destination folder. Graph
// assigns the moved copy a new ID, returned in the result.
func (c *Client) MoveMessage(ctx context.Context, messageID, destinationFolderID string) (*Message, error) {
	var moved Message
	body := moveRequest{DestinationID: destinationFolderID}
	if err := c.post(ctx, c.ownerURL(nil, "messages", messageID, "move"), body, &moved); err != nil {
		return nil, err
	}
	return &moved, nil
}

// DeleteMessage deletes a message. Graph answers 204 on success.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return c.delete(ctx, c.ownerURL(nil, "messages", messageID))
}

// SendMail sends a message from the owner mailbox. Graph answers 202
// on acceptance; delivery is asynchronous.
func (c *Client) SendMail(ctx context.Context, msg NewMessage, saveToSentItems bool) error {
	body := sendMailRequest{Message: msg, SaveToSentItems: saveToSentItems}
	return c.post(ctx, c.ownerURL(nil, "sendMail"), body, nil)
}

// ReplyMessage replies to the sender of a message with the given
// comment. Graph answers 202 on acceptance.
func (c *Client) ReplyMessage(ctx context.Context, messageID, comment string) error {
	return c.post(ctx, c.ownerURL(nil, "messages", messageID, "reply"), replyRequest{Comment: comment}, nil)
}
