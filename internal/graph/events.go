package graph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const eventSelectFields = "id,subject,start,end,location,organizer,attendees,isAllDay,isCancelled,isOrganizer,responseStatus,bodyPreview,webLink"

// Event responses Graph accepts on the respond actions.
const (
	ResponseAccept    = "accept"
	ResponseDecline   = "decline"
	ResponseTentative = "tentativelyAccept"
)

// ListEventsOptions narrows an event listing. When both From and To
// are set, the calendarView is queried, which expands recurring
// events into occurrences inside the window.
type ListEventsOptions struct {
	From time.Time
	To   time.Time
	Top  int // page size; 0 uses the client default
}

// ListEvents fetches one page of the owner's calendar, ordered by
// start time.
func (c *Client) ListEvents(ctx context.Context, opts ListEventsOptions) ([]Event, error) {
	top := opts.Top
	if top <= 0 {
		top = c.pageSize
	}

	query := url.Values{}
	query.Set("$top", strconv.Itoa(top))
	query.Set("$select", eventSelectFields)
	query.Set("$orderby", "start/dateTime")

	segments := []string{"events"}
	if !opts.From.IsZero() && !opts.To.IsZero() {
		if !opts.To.After(opts.From) {
			return nil, fmt.Errorf("event window end %s is not after start %s",
				opts.To.Format(time.RFC3339), opts.From.Format(time.RFC3339))
		}
		segments = []string{"calendarView"}
		query.Set("startDateTime", opts.From.UTC().Format(time.RFC3339))
		query.Set("endDateTime", opts.To.UTC().Format(time.RFC3339))
	}

	var page eventList
	if err := c.get(ctx, c.ownerURL(query, segments...), &page); err != nil {
		return nil, err
	}
	return page.Value, nil
}

// CreateEvent creates an event on the owner's calendar and returns it
// as Graph stored it, ID included. Attendees receive invitations.
func (c *Client) CreateEvent(ctx context.Context, ev NewEvent) (*Event, error) {
	var created Event
	if err := c.post(ctx, c.ownerURL(nil, "events"), ev, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// RespondEvent answers a meeting invitation on the owner's calendar.
// response must be accept, decline, or tentativelyAccept; the comment
// travels to the organizer and a response is always sent. Graph
// answers 202 on acceptance.
func (c *Client) RespondEvent(ctx context.Context, eventID, response, comment string) error {
	switch response {
	case ResponseAccept, ResponseDecline, ResponseTentative:
	default:
		return fmt.Errorf("invalid event response %q (must be %s, %s, or %s)",
			response, ResponseAccept, ResponseDecline, ResponseTentative)
	}

	body := eventResponseRequest{Comment: comment, SendResponse: true}
	return c.post(ctx, c.ownerURL(nil, "events", eventID, response), body, nil)
}

// CancelEvent cancels a meeting the owner organizes and notifies the
// attendees with the comment. Graph answers 202 on acceptance.
func (c *Client) CancelEvent(ctx context.Context, eventID, comment string) error {
	return c.post(ctx, c.ownerURL(nil, "events", eventID, "cancel"), cancelRequest{Comment: comment}, nil)
}
