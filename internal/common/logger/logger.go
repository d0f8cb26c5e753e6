// Package logger provides structured logging (slog) and per-action audit
// trail loggers (CSV and JSON Lines) shared by all tools in the repository.
package logger

import "fmt"

// Logger is the audit trail interface implemented by CSVLogger and JSONLogger.
// Each tool invocation opens one audit logger for the action being performed,
// writes a header once per file, appends one row per operation, and closes it
// on exit.
type Logger interface {
	WriteHeader(columns []string) error
	WriteRow(row []string) error
	ShouldWriteHeader() (bool, error)
	Close() error
}

// NewAuditLogger creates an audit logger in the requested format.
// Supported formats are "csv" and "json" (JSON Lines).
func NewAuditLogger(format, toolName, action string) (Logger, error) {
	switch format {
	case "", "csv":
		return NewCSVLogger(toolName, action)
	case "json", "jsonl":
		return NewJSONLogger(toolName, action)
	default:
		return nil, fmt.Errorf("unsupported log format: %s (valid: csv, json)", format)
	}
}
