package graph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"msgraphdelegatetool/internal/common/validation"
)

// ResourceRef pairs a resolved full resource ID with the suffix that
// selected it.
type ResourceRef struct {
	ID     string
	Suffix string
}

// DisplaySuffix returns the tail of the full ID, enough to recognize
// the resource in logs without printing the whole ID.
func (r ResourceRef) DisplaySuffix() string {
	const tail = 20
	if len(r.ID) <= tail {
		return r.ID
	}
	return "..." + r.ID[len(r.ID)-tail:]
}

// resolveSuffix finds the resource whose ID ends with suffix. It
// fetches exactly one listing page ($top = the configured page size,
// $select = id, no server-side sort or filter) and matches locally,
// returning the first hit in the order Graph listed them. A resource
// that exists beyond the first page is reported as not found; callers
// wanting a deeper search raise the page size.
func (c *Client) resolveSuffix(ctx context.Context, resource, suffix string, segments ...string) (ResourceRef, error) {
	if err := validation.ValidateIDSuffix(suffix); err != nil {
		return ResourceRef{}, err
	}

	query := url.Values{}
	query.Set("$top", strconv.Itoa(c.pageSize))
	query.Set("$select", "id")

	var page idList
	if err := c.get(ctx, c.ownerURL(query, segments...), &page); err != nil {
		return ResourceRef{}, err
	}

	for _, item := range page.Value {
		if strings.HasSuffix(item.ID, suffix) {
			return ResourceRef{ID: item.ID, Suffix: suffix}, nil
		}
	}

	return ResourceRef{}, &NotFoundError{
		Resource: resource,
		Query:    suffix,
		Detail:   fmt.Sprintf("no match among the first %d listed items; use a longer suffix or raise -pagesize", len(page.Value)),
	}
}

// ResolveMessageID resolves a message ID suffix against the owner's
// messages. A non-empty folderID narrows the listing to that folder.
// The suffix may also be a full ID, which matches itself.
func (c *Client) ResolveMessageID(ctx context.Context, folderID, suffix string) (ResourceRef, error) {
	if folderID != "" {
		return c.resolveSuffix(ctx, "message", suffix, "mailFolders", folderID, "messages")
	}
	return c.resolveSuffix(ctx, "message", suffix, "messages")
}

// ResolveEventID resolves an event ID suffix against the owner's
// calendar events.
func (c *Client) ResolveEventID(ctx context.Context, suffix string) (ResourceRef, error) {
	return c.resolveSuffix(ctx, "event", suffix, "events")
}
