package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/graph"
)

// graphDateTimeLayout is the wall-clock layout Graph expects inside a
// dateTimeTimeZone, no offset suffix.
const graphDateTimeLayout = "2006-01-02T15:04:05"

func formatEventTime(dt *graph.DateTimeTimeZone) string {
	if dt == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (%s)", dt.DateTime, dt.TimeZone)
}

// getEvents lists calendar events, optionally restricted to a window.
// A window needs both -start and -end; with neither set the upcoming
// events listing is returned.
func getEvents(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "Subject", "Start", "End", "Location", "EventID"}
	writeAuditHeader(audit, slogger, columns)

	opts := graph.ListEventsOptions{Top: config.Count}
	if config.StartTime != "" || config.EndTime != "" {
		if config.StartTime == "" || config.EndTime == "" {
			return fmt.Errorf("a calendar window requires both -start and -end")
		}
		from, err := parseFlexibleTime(config.StartTime)
		if err != nil {
			return fmt.Errorf("invalid -start: %w", err)
		}
		to, err := parseFlexibleTime(config.EndTime)
		if err != nil {
			return fmt.Errorf("invalid -end: %w", err)
		}
		opts.From = from
		opts.To = to
		logVerbose(config.VerboseMode, "Calendar window: %s to %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	logVerbose(config.VerboseMode, "Calling Graph API: list events for %s", config.Owner)
	events, err := client.ListEvents(ctx, opts)
	if err != nil {
		logger.LogError(slogger, "Event listing failed", "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, "N/A", "N/A", "N/A", "N/A", "N/A"})
		return fmt.Errorf("listing events for %s: %w", config.Owner, err)
	}

	logVerbose(config.VerboseMode, "API response received: %d events", len(events))

	if config.OutputFormat == "json" {
		printJSON(events)
	} else {
		fmt.Printf("Found %d events for %s:\n\n", len(events), config.Owner)
		if len(events) == 0 {
			fmt.Println("No events found.")
		} else {
			for i, ev := range events {
				fmt.Printf("%d. %s\n", i+1, ev.Subject)
				fmt.Printf("   Start: %s\n", formatEventTime(ev.Start))
				fmt.Printf("   End: %s\n", formatEventTime(ev.End))
				if ev.Location != nil && ev.Location.DisplayName != "" {
					fmt.Printf("   Location: %s\n", ev.Location.DisplayName)
				}
				if ev.Organizer != nil {
					fmt.Printf("   Organizer: %s\n", formatAddress(ev.Organizer))
				}
				if ev.IsCancelled {
					fmt.Println("   Cancelled: yes")
				}
				fmt.Printf("   ID: %s\n\n", displaySuffix(ev.ID))
			}
			fmt.Printf("Total events retrieved: %d\n", len(events))
		}
	}

	for _, ev := range events {
		location := "N/A"
		if ev.Location != nil && ev.Location.DisplayName != "" {
			location = ev.Location.DisplayName
		}
		writeAuditRow(audit, slogger, []string{
			config.Action, StatusSuccess, config.Owner,
			ev.Subject, formatEventTime(ev.Start), formatEventTime(ev.End), location, ev.ID,
		})
	}
	writeAuditRow(audit, slogger, []string{
		config.Action, StatusSuccess, config.Owner,
		fmt.Sprintf("Retrieved %d event(s)", len(events)), "SUMMARY", "SUMMARY", "SUMMARY", "SUMMARY",
	})

	return nil
}

// sendInvite creates a calendar event in the owner's calendar. Times
// are sent as UTC wall-clock values; malformed times fall back to the
// defaults with a warning rather than failing the invite.
func sendInvite(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "Subject", "Start", "End", "EventID"}
	writeAuditHeader(audit, slogger, columns)

	// Parse start time, default to now if not provided
	var startTime time.Time
	var err error
	if config.StartTime == "" {
		startTime = time.Now()
	} else {
		startTime, err = parseFlexibleTime(config.StartTime)
		if err != nil {
			log.Printf("Error parsing start time: %v. Using current time instead.", err)
			startTime = time.Now()
		}
	}

	// Parse end time, default to 1 hour after start if not provided
	var endTime time.Time
	if config.EndTime == "" {
		endTime = startTime.Add(1 * time.Hour)
	} else {
		endTime, err = parseFlexibleTime(config.EndTime)
		if err != nil {
			log.Printf("Error parsing end time: %v. Using start + 1 hour instead.", err)
			endTime = startTime.Add(1 * time.Hour)
		}
	}

	invite := graph.NewEvent{
		Subject: config.Subject,
		Start:   graph.DateTimeTimeZone{DateTime: startTime.UTC().Format(graphDateTimeLayout), TimeZone: "UTC"},
		End:     graph.DateTimeTimeZone{DateTime: endTime.UTC().Format(graphDateTimeLayout), TimeZone: "UTC"},
	}
	if config.Body != "" {
		invite.Body = &graph.ItemBody{ContentType: "Text", Content: config.Body}
	}
	if config.Location != "" {
		invite.Location = &graph.Location{DisplayName: config.Location}
	}
	if len(config.To) > 0 {
		invite.Attendees = createAttendees(config.To)
	}

	logVerbose(config.VerboseMode, "Calling Graph API: create event for %s", config.Owner)
	logVerbose(config.VerboseMode, "Calendar invite - Subject: %s, Start: %s, End: %s", config.Subject,
		startTime.Format(time.RFC3339), endTime.Format(time.RFC3339))

	created, err := client.CreateEvent(ctx, invite)
	if err != nil {
		logger.LogError(slogger, "Event creation failed", "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner,
			config.Subject, startTime.Format(time.RFC3339), endTime.Format(time.RFC3339), "N/A"})
		return fmt.Errorf("creating invite in calendar of %s: %w", config.Owner, err)
	}

	fmt.Printf("Calendar invitation created in mailbox: %s\n", config.Owner)
	fmt.Printf("Subject: %s\n", config.Subject)
	fmt.Printf("Start: %s\n", startTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("End: %s\n", endTime.Format("2006-01-02 15:04:05 MST"))
	if len(config.To) > 0 {
		fmt.Printf("Attendees: %v\n", config.To)
	}
	fmt.Printf("Event ID: %s\n", displaySuffix(created.ID))

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, config.Owner,
		config.Subject, startTime.Format(time.RFC3339), endTime.Format(time.RFC3339), created.ID})
	return nil
}

// respondEvent accepts, declines, or tentatively accepts a meeting in
// the owner's calendar. The organizer is notified.
func respondEvent(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "Response", "Comment", "EventID"}
	writeAuditHeader(audit, slogger, columns)

	response := normalizeEventResponse(config.Response)

	ref, err := client.ResolveEventID(ctx, config.MessageID)
	if err != nil {
		logger.LogError(slogger, "Event resolution failed", "suffix", config.MessageID, "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, response, truncate(config.Comment, 80), config.MessageID})
		return fmt.Errorf("resolving event %q: %w", config.MessageID, err)
	}

	if err := client.RespondEvent(ctx, ref.ID, response, config.Comment); err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, response, truncate(config.Comment, 80), ref.ID})
		return fmt.Errorf("responding %s to event %s: %w", response, ref.DisplaySuffix(), err)
	}

	fmt.Printf("✓ Response %q sent for event %s\n", response, ref.DisplaySuffix())

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, config.Owner, response, truncate(config.Comment, 80), ref.ID})
	return nil
}

// cancelEvent cancels a meeting the owner organizes. Attendees receive
// the cancellation with the optional comment.
func cancelEvent(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "Comment", "EventID"}
	writeAuditHeader(audit, slogger, columns)

	ref, err := client.ResolveEventID(ctx, config.MessageID)
	if err != nil {
		logger.LogError(slogger, "Event resolution failed", "suffix", config.MessageID, "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, truncate(config.Comment, 80), config.MessageID})
		return fmt.Errorf("resolving event %q: %w", config.MessageID, err)
	}

	if err := client.CancelEvent(ctx, ref.ID, config.Comment); err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, truncate(config.Comment, 80), ref.ID})
		return fmt.Errorf("cancelling event %s: %w", ref.DisplaySuffix(), err)
	}

	fmt.Printf("✓ Cancellation sent for event %s\n", ref.DisplaySuffix())

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, config.Owner, truncate(config.Comment, 80), ref.ID})
	return nil
}
