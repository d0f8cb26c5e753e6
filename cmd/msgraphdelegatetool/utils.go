package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/graph"
)

// Status constants
const (
	StatusSuccess = "Success"
	StatusError   = "Error"
)

// logVerbose prints verbose output to stderr if verbose mode is enabled
func logVerbose(verbose bool, format string, args ...interface{}) {
	if verbose {
		prefix := "[VERBOSE] "
		fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
	}
}

// splitList splits a comma-separated flag value into trimmed items.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// truncate truncates a string to maxLen characters, adding ellipsis if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// normalizeEventResponse maps the -response flag to the value Graph
// expects. Returns "" for anything unrecognized.
func normalizeEventResponse(response string) string {
	switch strings.ToLower(response) {
	case "accept":
		return graph.ResponseAccept
	case "decline":
		return graph.ResponseDecline
	case "tentative", "tentativelyaccept":
		return graph.ResponseTentative
	default:
		return ""
	}
}

// parseFlexibleTime parses a time string accepting multiple formats
func parseFlexibleTime(timeStr string) (time.Time, error) {
	if timeStr == "" {
		return time.Time{}, fmt.Errorf("time string is empty")
	}

	// Try RFC3339 first (with timezone)
	t, err := time.Parse(time.RFC3339, timeStr)
	if err == nil {
		return t, nil
	}

	// Try PowerShell sortable format (without timezone) - assume UTC
	t, err = time.Parse("2006-01-02T15:04:05", timeStr)
	if err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format (expected RFC3339 like '2026-01-15T14:00:00Z' or sortable like '2026-01-15T14:00:00')")
}

// createRecipients converts email addresses to Graph recipient objects.
func createRecipients(emails []string) []graph.Recipient {
	recipients := make([]graph.Recipient, len(emails))
	for i, email := range emails {
		recipients[i] = graph.Recipient{
			EmailAddress: graph.EmailAddress{Address: email},
		}
	}
	return recipients
}

// createAttendees converts email addresses to required event attendees.
func createAttendees(emails []string) []graph.Attendee {
	attendees := make([]graph.Attendee, len(emails))
	for i, email := range emails {
		attendees[i] = graph.Attendee{
			Type:         "required",
			EmailAddress: graph.EmailAddress{Address: email},
		}
	}
	return attendees
}

// createFileAttachments reads files and creates Graph API attachment objects
func createFileAttachments(filePaths []string, config *Config) ([]graph.FileAttachment, error) {
	var attachments []graph.FileAttachment

	for _, filePath := range filePaths {
		fileData, err := os.ReadFile(filePath)
		if err != nil {
			log.Printf("Warning: Could not read attachment file %s: %v", filePath, err)
			continue
		}

		fileName := filepath.Base(filePath)

		// Detect content type from file extension
		contentType := mime.TypeByExtension(filepath.Ext(filePath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		logVerbose(config.VerboseMode, "Attachment: %s (%s, %d bytes)", fileName, contentType, len(fileData))
		attachments = append(attachments, graph.FileAttachment{
			ODataType:    graph.AttachmentODataType,
			Name:         fileName,
			ContentType:  contentType,
			ContentBytes: base64.StdEncoding.EncodeToString(fileData),
		})
	}

	if len(attachments) == 0 && len(filePaths) > 0 {
		return nil, fmt.Errorf("no valid attachments could be processed")
	}

	return attachments, nil
}

// displaySuffix shortens an opaque Graph item ID for text output.
func displaySuffix(id string) string {
	return graph.ResourceRef{ID: id}.DisplaySuffix()
}

// formatTimeCell renders a timestamp for text and audit output.
func formatTimeCell(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02 15:04:05")
}

// formatAddress renders a recipient for text output.
func formatAddress(r *graph.Recipient) string {
	if r == nil || r.EmailAddress.Address == "" {
		return "N/A"
	}
	if r.EmailAddress.Name != "" {
		return fmt.Sprintf("%s <%s>", r.EmailAddress.Name, r.EmailAddress.Address)
	}
	return r.EmailAddress.Address
}

// printJSON marshals the data to JSON and prints it to stdout
func printJSON(data interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON output: %v\n", err)
	}
}

// writeAuditHeader writes the column header once per audit file.
func writeAuditHeader(audit logger.Logger, slogger *slog.Logger, columns []string) {
	if audit == nil {
		return
	}
	if shouldWrite, _ := audit.ShouldWriteHeader(); shouldWrite {
		if err := audit.WriteHeader(columns); err != nil {
			logger.LogWarn(slogger, "Failed to write audit header", "error", err)
		}
	}
}

// writeAuditRow appends one audit row, logging failures without
// interrupting the action.
func writeAuditRow(audit logger.Logger, slogger *slog.Logger, row []string) {
	if audit == nil {
		return
	}
	if err := audit.WriteRow(row); err != nil {
		logger.LogWarn(slogger, "Failed to write audit row", "error", err)
	}
}
