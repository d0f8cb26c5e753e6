package main

import (
	"context"
	"fmt"
	"log/slog"

	"msgraphdelegatetool/internal/common/logger"
	"msgraphdelegatetool/internal/graph"
)

// executeAction dispatches to the appropriate action handler based on config.Action.
// Every handler resolves partial item IDs before acting, prints a human-readable
// result (or JSON with -output json), and writes rows to the audit logger.
//
// Returns an error if the action fails or if the action name is unknown.
func executeAction(ctx context.Context, client *graph.Client, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	switch config.Action {
	case ActionGetInbox:
		return getInbox(ctx, client, config, audit, slogger)
	case ActionReadMail:
		return readMail(ctx, client, config, audit, slogger)
	case ActionMarkRead:
		return setMailRead(ctx, client, config, true, audit, slogger)
	case ActionMarkUnread:
		return setMailRead(ctx, client, config, false, audit, slogger)
	case ActionMoveMail:
		return moveMail(ctx, client, config, audit, slogger)
	case ActionDeleteMail:
		return deleteMail(ctx, client, config, audit, slogger)
	case ActionSendMail:
		return sendMail(ctx, client, config, audit, slogger)
	case ActionReplyMail:
		return replyMail(ctx, client, config, audit, slogger)
	case ActionGetFolders:
		return getFolders(ctx, client, config, audit, slogger)
	case ActionGetEvents:
		return getEvents(ctx, client, config, audit, slogger)
	case ActionSendInvite:
		return sendInvite(ctx, client, config, audit, slogger)
	case ActionRespondEvent:
		return respondEvent(ctx, client, config, audit, slogger)
	case ActionCancelEvent:
		return cancelEvent(ctx, client, config, audit, slogger)
	case ActionWhoami:
		return whoami(ctx, client, config, audit, slogger)
	default:
		return fmt.Errorf("unknown action: %s", config.Action)
	}
}

// executeTokenAction handles the credential-store actions that need no
// Graph client.
func executeTokenAction(ctx context.Context, config *Config, audit logger.Logger, slogger *slog.Logger) error {
	switch config.Action {
	case ActionRefreshToken:
		return refreshToken(ctx, config, audit, slogger)
	case ActionShowToken:
		return showToken(config, audit, slogger)
	default:
		return fmt.Errorf("unknown action: %s", config.Action)
	}
}
