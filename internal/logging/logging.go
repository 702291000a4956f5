package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, name string, start time.Time) string {
	return filepath.Join(logsDir, fmt.Sprintf("%s.%s.log", name, start.Format("20060102_150405")))
}

// OpenLogFile creates logsDir if needed and opens a fresh log file in it.
func OpenLogFile(logsDir, name string, start time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating logs directory: %w", err)
	}
	path := LogFilePath(logsDir, name, start)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, nil
}
