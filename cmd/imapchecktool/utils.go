package main

import (
	"log/slog"

	"msgraphdelegatetool/internal/common/logger"
)

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
