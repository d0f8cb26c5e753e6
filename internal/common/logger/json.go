package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// JSONLogger writes audit rows as JSON Lines (one JSON object per line).
// It mirrors CSVLogger's file naming and buffering behavior so the two
// formats are interchangeable via the -logformat flag.
type JSONLogger struct {
	writer     *bufio.Writer
	file       *os.File
	toolName   string
	action     string
	columns    []string // Column names captured by WriteHeader
	rowCount   int
	lastFlush  time.Time
	flushEvery int
}

// NewJSONLogger creates a new JSON Lines audit logger for the specified tool
// and action. Filename pattern: %TEMP%/_{toolName}_{action}_{date}.jsonl
func NewJSONLogger(toolName, action string) (*JSONLogger, error) {
	tempDir := os.TempDir()

	dateStr := time.Now().Format("2006-01-02")
	fileName := fmt.Sprintf("_%s_%s_%s.jsonl", toolName, action, dateStr)
	filePath := filepath.Join(tempDir, fileName)

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not create JSON log file: %w", err)
	}

	logger := &JSONLogger{
		writer:     bufio.NewWriter(file),
		file:       file,
		toolName:   toolName,
		action:     action,
		rowCount:   0,
		lastFlush:  time.Now(),
		flushEvery: 10,
	}

	fmt.Printf("Logging to: %s\n\n", filePath)
	return logger, nil
}

// WriteHeader records the column names used as JSON keys for subsequent rows.
// Unlike the CSV logger no header line is written to the file; each row is a
// self-describing JSON object.
func (l *JSONLogger) WriteHeader(columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("header must contain at least one column")
	}
	l.columns = append([]string(nil), columns...)
	return nil
}

// WriteRow writes one JSON object per row, keyed by the header columns with a
// timestamp field prepended. Returns an error if WriteHeader has not been
// called or the row length does not match the header.
func (l *JSONLogger) WriteRow(row []string) error {
	if l.writer == nil {
		return fmt.Errorf("JSON writer is not initialized")
	}
	if len(l.columns) == 0 {
		return fmt.Errorf("WriteHeader must be called before WriteRow")
	}
	if len(row) != len(l.columns) {
		return fmt.Errorf("row has %d values but header has %d columns", len(row), len(l.columns))
	}

	entry := make(map[string]string, len(row)+1)
	entry["timestamp"] = time.Now().Format("2006-01-02 15:04:05")
	for i, col := range l.columns {
		entry[col] = row[i]
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON row: %w", err)
	}

	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON row: %w", err)
	}

	l.rowCount++

	// Flush every N rows or every 5 seconds, matching CSVLogger
	if l.rowCount%l.flushEvery == 0 || time.Since(l.lastFlush) > 5*time.Second {
		if err := l.writer.Flush(); err != nil {
			return fmt.Errorf("failed to flush JSON log: %w", err)
		}
		l.lastFlush = time.Now()
	}

	return nil
}

// Close flushes buffered rows and closes the underlying file.
func (l *JSONLogger) Close() error {
	if l.writer != nil {
		if err := l.writer.Flush(); err != nil {
			return fmt.Errorf("error flushing JSON log on close: %w", err)
		}
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ShouldWriteHeader reports whether the log file is new (empty).
// JSON rows are self-describing, but callers treat both formats uniformly
// through the Logger interface, so the check is kept for parity.
func (l *JSONLogger) ShouldWriteHeader() (bool, error) {
	fileInfo, err := l.file.Stat()
	if err != nil {
		return false, fmt.Errorf("could not stat JSON log file: %w", err)
	}
	return fileInfo.Size() == 0, nil
}
