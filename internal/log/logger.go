// Package log provides structured event logging.
// Events are appended as JSON lines to log.jsonl in the xpost state directory.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event name constants, written under the "event" key.
const (
	EventSessionRestored = "session_restored"
	EventSessionExpired  = "session_expired"
	EventLoginSucceeded  = "login_succeeded"
	EventLoginFailed     = "login_failed"
	EventRegistered      = "registered"
	EventRegisterFailed  = "register_failed"
	EventLogout          = "logout"
	EventUnauthorized    = "unauthorized"
	EventRequestFailed   = "request_failed"
	EventActionFailed    = "action_failed"
)

// FileName is the log file inside the state directory.
const FileName = "log.jsonl"

// Entry is one parsed line of the log file.
type Entry struct {
	Time       time.Time `json:"time"`
	Level      string    `json:"level"`
	Event      string    `json:"event,omitempty"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Method     string    `json:"method,omitempty"`
	Path       string    `json:"path,omitempty"`
	StatusCode int       `json:"status,omitempty"`
	Username   string    `json:"username,omitempty"`
	View       string    `json:"view,omitempty"`
}

// fileWriter opens the log in append mode for every write so that
// concurrent xpost processes never hold the file open.
type fileWriter struct {
	path string
	mu   sync.Mutex
}

func (w *fileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	return f.Write(p)
}

// New creates a logger writing to log.jsonl inside dir.
// Creates dir if it does not already exist. Does not truncate an existing log.
func New(dir, level string) (zerolog.Logger, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return zerolog.Nop(), fmt.Errorf("create log directory: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	w := &fileWriter{path: Path(dir)}

	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger(), nil
}

// Path returns the log file path for a state directory.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// ParseLevel converts a config string to a zerolog.Level.
// Unknown or empty values fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ReadAll reads and parses all entries from the log file at path.
// Returns an empty slice (not an error) if the file does not exist.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return entries, nil
}

// Tail returns the last n entries of the log file at path.
func Tail(path string, n int) ([]Entry, error) {
	entries, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
