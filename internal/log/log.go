// Package log provides structured event logging.
// Events are written as JSON lines to a configurable writer.
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Event type constants.
const (
	EventServerStarted    = "server_started"
	EventServerStopped    = "server_stopped"
	EventExecStarted      = "exec_started"
	EventExecCompleted    = "exec_completed"
	EventExecFailed       = "exec_failed"
	EventSessionCommitted = "session_committed"
	EventFileStaged       = "file_staged"
	EventFileDeleted      = "file_deleted"
)

// Event represents a single structured event written to the log.
type Event struct {
	Time       time.Time      `json:"time"`
	Event      string         `json:"event"`
	SessionKey string         `json:"session_key,omitempty"`
	Workspace  string         `json:"workspace,omitempty"`
	FileID     string         `json:"file_id,omitempty"`
	Addr       string         `json:"addr,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	CostUSD    float64        `json:"cost_usd,omitempty"`
	NumTurns   int            `json:"num_turns,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// Logger writes append-only JSONL events to a writer.
type Logger struct {
	w  io.Writer
	mu sync.Mutex
}

// New creates a Logger writing to w. A nil w logs to stderr.
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{w: w}
}

// NewFile creates a Logger appending to the file at path.
// The file is created if it does not exist and never truncated.
func NewFile(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Logger{w: f}, nil
}

// Emit writes a single Event as one JSON line.
// If event.Time is the zero value, it is automatically set to time.Now().UTC().
// Thread-safe via mutex.
func (l *Logger) Emit(event Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}
	return nil
}
