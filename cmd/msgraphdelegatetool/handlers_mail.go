package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/graph"
)

// getInbox lists messages in a folder, newest first.
func getInbox(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "Folder", "Subject", "From", "Received", "MessageID"}
	writeAuditHeader(audit, slogger, columns)

	folderName := config.Folder
	if folderName == "" {
		folderName = "inbox"
	}

	folderID, err := client.ResolveFolderID(ctx, folderName)
	if err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, folderName, "N/A", "N/A", "N/A", "N/A"})
		return fmt.Errorf("resolving folder %q: %w", folderName, err)
	}

	opts := graph.ListMessagesOptions{
		FolderID:   folderID,
		Top:        config.Count,
		Search:     config.Search,
		UnreadOnly: config.UnreadOnly,
	}

	logVerbose(config.VerboseMode, "Calling Graph API: list messages in %s for %s", folderName, config.Owner)
	messages, err := client.ListMessages(ctx, opts)
	if err != nil {
		logger.LogError(slogger, "Message listing failed", "folder", folderName, "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, folderName, "N/A", "N/A", "N/A", "N/A"})
		return fmt.Errorf("listing messages in %s for %s: %w", folderName, config.Owner, err)
	}

	logVerbose(config.VerboseMode, "API response received: %d messages", len(messages))

	if config.OutputFormat == "json" {
		printJSON(messages)
	} else {
		fmt.Printf("Newest %d messages in %s for %s:\n\n", len(messages), folderName, config.Owner)
		if len(messages) == 0 {
			fmt.Println("No messages found.")
		} else {
			for i, msg := range messages {
				marker := " "
				if !msg.IsRead {
					marker = "*"
				}
				fmt.Printf("%d. %s %s\n", i+1, marker, msg.Subject)
				fmt.Printf("     From: %s\n", formatAddress(msg.From))
				fmt.Printf("     Received: %s\n", formatTimeCell(msg.ReceivedDateTime))
				fmt.Printf("     ID: %s\n\n", displaySuffix(msg.ID))
			}
			fmt.Printf("Total messages retrieved: %d (* = unread)\n", len(messages))
		}
	}

	for _, msg := range messages {
		writeAuditRow(audit, slogger, []string{
			config.Action, StatusSuccess, config.Owner, folderName,
			msg.Subject, formatAddress(msg.From), formatTimeCell(msg.ReceivedDateTime), msg.ID,
		})
	}
	writeAuditRow(audit, slogger, []string{
		config.Action, StatusSuccess, config.Owner, folderName,
		fmt.Sprintf("Retrieved %d message(s)", len(messages)), "SUMMARY", "SUMMARY", "SUMMARY",
	})

	return nil
}

// readMail shows one message including its body.
func readMail(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "Subject", "From", "Received", "MessageID"}
	writeAuditHeader(audit, slogger, columns)

	ref, err := client.ResolveMessageID(ctx, "", config.MessageID)
	if err != nil {
		logger.LogError(slogger, "Message resolution failed", "suffix", config.MessageID, "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, "N/A", "N/A", "N/A", config.MessageID})
		return fmt.Errorf("resolving message %q: %w", config.MessageID, err)
	}

	logVerbose(config.VerboseMode, "Resolved %q to message %s", config.MessageID, ref.DisplaySuffix())
	msg, err := client.GetMessage(ctx, ref.ID)
	if err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, "N/A", "N/A", "N/A", ref.ID})
		return fmt.Errorf("reading message %s: %w", ref.DisplaySuffix(), err)
	}

	if config.OutputFormat == "json" {
		printJSON(msg)
	} else {
		fmt.Printf("Subject: %s\n", msg.Subject)
		fmt.Printf("From: %s\n", formatAddress(msg.From))
		if len(msg.ToRecipients) > 0 {
			var to []string
			for i := range msg.ToRecipients {
				to = append(to, formatAddress(&msg.ToRecipients[i]))
			}
			fmt.Printf("To: %s\n", strings.Join(to, "; "))
		}
		fmt.Printf("Received: %s\n", formatTimeCell(msg.ReceivedDateTime))
		fmt.Printf("Read: %t\n", msg.IsRead)
		if msg.HasAttachments {
			fmt.Println("Has attachments: yes")
		}
		fmt.Printf("ID: %s\n", displaySuffix(msg.ID))
		fmt.Println()
		if msg.Body != nil {
			fmt.Println(msg.Body.Content)
		} else {
			fmt.Println(msg.BodyPreview)
		}
	}

	writeAuditRow(audit, slogger, []string{
		config.Action, StatusSuccess, config.Owner,
		msg.Subject, formatAddress(msg.From), formatTimeCell(msg.ReceivedDateTime), msg.ID,
	})
	return nil
}

// setMailRead marks a message read or unread.
func setMailRead(ctx context.Context, client *graph.Client, config *Config, read bool, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "Subject", "ReadState", "MessageID"}
	writeAuditHeader(audit, slogger, columns)

	state := "read"
	if !read {
		state = "unread"
	}

	ref, err := client.ResolveMessageID(ctx, "", config.MessageID)
	if err != nil {
		logger.LogError(slogger, "Message resolution failed", "suffix", config.MessageID, "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, "N/A", state, config.MessageID})
		return fmt.Errorf("resolving message %q: %w", config.MessageID, err)
	}

	msg, err := client.SetMessageRead(ctx, ref.ID, read)
	if err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, "N/A", state, ref.ID})
		return fmt.Errorf("marking message %s as %s: %w", ref.DisplaySuffix(), state, err)
	}

	fmt.Printf("✓ Marked as %s: %s\n", state, msg.Subject)
	fmt.Printf("  ID: %s\n", displaySuffix(msg.ID))

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, config.Owner, msg.Subject, state, msg.ID})
	return nil
}

// moveMail moves a message to another folder. Graph assigns the moved
// message a new ID.
func moveMail(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "Folder", "MessageID", "NewMessageID"}
	writeAuditHeader(audit, slogger, columns)

	ref, err := client.ResolveMessageID(ctx, "", config.MessageID)
	if err != nil {
		logger.LogError(slogger, "Message resolution failed", "suffix", config.MessageID, "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, config.Folder, config.MessageID, "N/A"})
		return fmt.Errorf("resolving message %q: %w", config.MessageID, err)
	}

	folderID, err := client.ResolveFolderID(ctx, config.Folder)
	if err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, config.Folder, ref.ID, "N/A"})
		return fmt.Errorf("resolving folder %q: %w", config.Folder, err)
	}

	moved, err := client.MoveMessage(ctx, ref.ID, folderID)
	if err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, config.Folder, ref.ID, "N/A"})
		return fmt.Errorf("moving message %s to %s: %w", ref.DisplaySuffix(), config.Folder, err)
	}

	fmt.Printf("✓ Moved message to %s\n", config.Folder)
	fmt.Printf("  Subject: %s\n", moved.Subject)
	fmt.Printf("  New ID: %s\n", displaySuffix(moved.ID))

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, config.Owner, config.Folder, ref.ID, moved.ID})
	return nil
}

// deleteMail deletes a message.
func deleteMail(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "MessageID"}
	writeAuditHeader(audit, slogger, columns)

	ref, err := client.ResolveMessageID(ctx, "", config.MessageID)
	if err != nil {
		logger.LogError(slogger, "Message resolution failed", "suffix", config.MessageID, "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, config.MessageID})
		return fmt.Errorf("resolving message %q: %w", config.MessageID, err)
	}

	if err := client.DeleteMessage(ctx, ref.ID); err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, ref.ID})
		return fmt.Errorf("deleting message %s: %w", ref.DisplaySuffix(), err)
	}

	fmt.Printf("✓ Deleted message %s\n", ref.DisplaySuffix())

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, config.Owner, ref.ID})
	return nil
}

// sendMail sends mail as the owner. With no recipients given, the mail
// goes to the owner mailbox itself.
func sendMail(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "To", "Cc", "Bcc", "Subject", "BodyType", "Attachments"}
	writeAuditHeader(audit, slogger, columns)

	// If no recipients specified at all, default 'to' to the owner mailbox
	to := config.To
	if len(to) == 0 && len(config.Cc) == 0 && len(config.Bcc) == 0 {
		to = []string{config.Owner}
	}

	// Prefer HTML if a template was loaded, otherwise use text
	body := graph.ItemBody{ContentType: "Text", Content: config.Body}
	bodyType := "Text"
	if config.BodyHTML != "" {
		body = graph.ItemBody{ContentType: "HTML", Content: config.BodyHTML}
		bodyType = "HTML"
	}
	logVerbose(config.VerboseMode, "Email body type: %s", bodyType)

	msg := graph.NewMessage{
		Subject:       config.Subject,
		Body:          body,
		ToRecipients:  createRecipients(to),
		CcRecipients:  createRecipients(config.Cc),
		BccRecipients: createRecipients(config.Bcc),
	}

	if len(config.AttachmentFiles) > 0 {
		attachments, err := createFileAttachments(config.AttachmentFiles, config)
		if err != nil {
			writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner,
				strings.Join(to, "; "), strings.Join(config.Cc, "; "), strings.Join(config.Bcc, "; "), config.Subject, bodyType, "0"})
			return fmt.Errorf("preparing attachments: %w", err)
		}
		msg.Attachments = attachments
		logVerbose(config.VerboseMode, "Attachments added: %d file(s)", len(attachments))
	}

	logVerbose(config.VerboseMode, "Calling Graph API: send mail from %s", config.Owner)
	logVerbose(config.VerboseMode, "Email details - To: %v, CC: %v, BCC: %v", to, config.Cc, config.Bcc)

	if err := client.SendMail(ctx, msg, config.SaveToSent); err != nil {
		logger.LogError(slogger, "Send mail failed", "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner,
			strings.Join(to, "; "), strings.Join(config.Cc, "; "), strings.Join(config.Bcc, "; "), config.Subject, bodyType,
			fmt.Sprintf("%d", len(msg.Attachments))})
		return fmt.Errorf("sending mail from %s: %w", config.Owner, err)
	}

	fmt.Printf("Email sent successfully from %s.\n", config.Owner)
	fmt.Printf("To: %v\n", to)
	if len(config.Cc) > 0 {
		fmt.Printf("Cc: %v\n", config.Cc)
	}
	if len(config.Bcc) > 0 {
		fmt.Printf("Bcc: %v\n", config.Bcc)
	}
	fmt.Printf("Subject: %s\n", config.Subject)
	fmt.Printf("Body Type: %s\n", bodyType)
	if len(msg.Attachments) > 0 {
		fmt.Printf("Attachments: %d file(s)\n", len(msg.Attachments))
	}

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, config.Owner,
		strings.Join(to, "; "), strings.Join(config.Cc, "; "), strings.Join(config.Bcc, "; "), config.Subject, bodyType,
		fmt.Sprintf("%d", len(msg.Attachments))})
	return nil
}

// replyMail replies to a message with a comment.
func replyMail(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "MessageID", "Comment"}
	writeAuditHeader(audit, slogger, columns)

	ref, err := client.ResolveMessageID(ctx, "", config.MessageID)
	if err != nil {
		logger.LogError(slogger, "Message resolution failed", "suffix", config.MessageID, "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, config.MessageID, truncate(config.Body, 80)})
		return fmt.Errorf("resolving message %q: %w", config.MessageID, err)
	}

	if err := client.ReplyMessage(ctx, ref.ID, config.Body); err != nil {
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, ref.ID, truncate(config.Body, 80)})
		return fmt.Errorf("replying to message %s: %w", ref.DisplaySuffix(), err)
	}

	fmt.Printf("✓ Reply sent for message %s\n", ref.DisplaySuffix())

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, config.Owner, ref.ID, truncate(config.Body, 80)})
	return nil
}

// getFolders lists the owner's top-level mail folders.
func getFolders(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "Folder_Name", "Unread", "Total", "FolderID"}
	writeAuditHeader(audit, slogger, columns)

	logVerbose(config.VerboseMode, "Calling Graph API: list mail folders for %s", config.Owner)
	folders, err := client.ListMailFolders(ctx)
	if err != nil {
		logger.LogError(slogger, "Folder listing failed", "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, "N/A", "N/A", "N/A", "N/A"})
		return fmt.Errorf("listing folders for %s: %w", config.Owner, err)
	}

	if config.OutputFormat == "json" {
		printJSON(folders)
	} else {
		fmt.Printf("Found %d mail folders for %s:\n\n", len(folders), config.Owner)
		fmt.Println("  Name                              Unread   Total")
		fmt.Println("  ----                              ------   -----")
		for _, f := range folders {
			fmt.Printf("  %-34s %6d  %6d\n", f.DisplayName, f.UnreadItemCount, f.TotalItemCount)
		}
	}

	for _, f := range folders {
		writeAuditRow(audit, slogger, []string{
			config.Action, StatusSuccess, config.Owner,
			f.DisplayName, fmt.Sprintf("%d", f.UnreadItemCount), fmt.Sprintf("%d", f.TotalItemCount), f.ID,
		})
	}
	writeAuditRow(audit, slogger, []string{
		config.Action, StatusSuccess, config.Owner,
		fmt.Sprintf("Retrieved %d folder(s)", len(folders)), "SUMMARY", "SUMMARY", "SUMMARY",
	})

	return nil
}

// whoami probes the owner's directory entry, verifying the token grants
// access to the owner mailbox.
func whoami(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	columns := []string{"Action", "Status", "Owner", "DisplayName", "Mail", "UserPrincipalName"}
	writeAuditHeader(audit, slogger, columns)

	owner, err := client.GetOwnerProfile(ctx)
	if err != nil {
		logger.LogError(slogger, "Owner probe failed", "error", err)
		writeAuditRow(audit, slogger, []string{config.Action, fmt.Sprintf("%s: %v", StatusError, err), config.Owner, "N/A", "N/A", "N/A"})
		return fmt.Errorf("probing owner %s: %w", config.Owner, err)
	}

	if config.OutputFormat == "json" {
		printJSON(owner)
	} else {
		fmt.Printf("Owner mailbox: %s\n", config.Owner)
		fmt.Printf("  Display name: %s\n", owner.DisplayName)
		fmt.Printf("  Mail: %s\n", owner.Mail)
		fmt.Printf("  User principal name: %s\n", owner.UserPrincipalName)
		if config.Delegate != "" {
			fmt.Printf("  Acting delegate: %s\n", config.Delegate)
		}
	}

	writeAuditRow(audit, slogger, []string{config.Action, StatusSuccess, config.Owner, owner.DisplayName, owner.Mail, owner.UserPrincipalName})
	return nil
}
