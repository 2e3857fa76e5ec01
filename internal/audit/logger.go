package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the audit trail file inside the audit directory.
const FileName = "audit.jsonl"

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry is a single audit record.
type Entry struct {
	Timestamp time.Time              `json:"ts"`
	User      string                 `json:"user"`
	Server    string                 `json:"server"`
	Action    string                 `json:"action"`
	Params    map[string]interface{} `json:"params"`
	Outcome   string                 `json:"outcome"`
	Code      string                 `json:"code"`
	Error     string                 `json:"error,omitempty"`
}

// Options configures rotation.
type Options struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
}

// Logger appends entries to a size-rotated JSONL file.
type Logger struct {
	mu       sync.Mutex
	filePath string
	out      *lumberjack.Logger
	now      func() time.Time
}

// NewLogger creates the audit directory and opens the trail for appending.
func NewLogger(opts Options) (*Logger, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	filePath := filepath.Join(opts.Dir, FileName)
	out := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		LocalTime:  false,
	}

	return &Logger{filePath: filePath, out: out, now: time.Now}, nil
}

// LogCommand records one operator command. A nil err is a success; code
// names the result in the API error vocabulary.
func (l *Logger) LogCommand(user, server, action string, params map[string]interface{}, code string, err error) error {
	if user == "" {
		user = "unknown"
	}
	if params == nil {
		params = map[string]interface{}{}
	}

	entry := Entry{
		Timestamp: l.now().UTC(),
		User:      user,
		Server:    server,
		Action:    action,
		Params:    params,
		Outcome:   OutcomeSuccess,
		Code:      code,
	}
	if err != nil {
		entry.Outcome = OutcomeFailure
		entry.Error = err.Error()
	}
	return l.Write(entry)
}

// Write appends entry as one JSON line.
func (l *Logger) Write(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Rotate closes the current file, renames it with a timestamp and starts a new one.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.out.Rotate(); err != nil {
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}
	return nil
}

// Close closes the audit file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}

// FilePath returns the path of the active audit file.
func (l *Logger) FilePath() string {
	return l.filePath
}
