package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	logger, err := NewLogger(Options{Dir: t.TempDir(), MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })
	return logger
}

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestNewLoggerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audit")
	logger, err := NewLogger(Options{Dir: dir})
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	if logger.FilePath() != filepath.Join(dir, FileName) {
		t.Errorf("FilePath() = %s", logger.FilePath())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("audit directory not created: %v", err)
	}
}

func TestLogCommand(t *testing.T) {
	logger := newTestLogger(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	logger.now = func() time.Time { return fixed }

	params := map[string]interface{}{"SP": 45.0, "D": 2.0}
	if err := logger.LogCommand("operator-1", "pro1003", "settings", params, "OK", nil); err != nil {
		t.Fatal(err)
	}
	if err := logger.LogCommand("", "pro1003", "settings", nil, "UNAVAILABLE", errors.New("not connected")); err != nil {
		t.Fatal(err)
	}

	entries := readEntries(t, logger.FilePath())
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	ok := entries[0]
	if !ok.Timestamp.Equal(fixed) || ok.User != "operator-1" || ok.Server != "pro1003" {
		t.Errorf("entry = %+v", ok)
	}
	if ok.Outcome != OutcomeSuccess || ok.Code != "OK" || ok.Params["SP"] != 45.0 {
		t.Errorf("entry = %+v", ok)
	}

	failed := entries[1]
	if failed.User != "unknown" || failed.Outcome != OutcomeFailure || failed.Error != "not connected" {
		t.Errorf("entry = %+v", failed)
	}
	if failed.Params == nil {
		t.Error("params should be an empty object, not null")
	}
}

func TestRotate(t *testing.T) {
	logger := newTestLogger(t)

	if err := logger.LogCommand("u", "pro1003", "settings", nil, "OK", nil); err != nil {
		t.Fatal(err)
	}
	if err := logger.Rotate(); err != nil {
		t.Fatalf("Rotate() failed: %v", err)
	}
	if err := logger.LogCommand("u", "pro1003", "settings", nil, "OK", nil); err != nil {
		t.Fatal(err)
	}

	files, err := os.ReadDir(filepath.Dir(logger.FilePath()))
	if err != nil {
		t.Fatal(err)
	}
	backups := 0
	for _, f := range files {
		if f.Name() != FileName && strings.HasPrefix(f.Name(), "audit-") {
			backups++
		}
	}
	if backups != 1 {
		t.Errorf("backups = %d, want 1", backups)
	}
	if n := len(readEntries(t, logger.FilePath())); n != 1 {
		t.Errorf("active file entries = %d, want 1", n)
	}
}
