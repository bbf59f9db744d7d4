package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readLogLines(t *testing.T, path string) []map[string]any {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q", scanner.Text())
		}
		lines = append(lines, entry)
	}
	return lines
}

func TestLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")

	logger, err := NewLogger(path, "info")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("scaling triggered", "current_limit", 50, "target_limit", 150)
	logger.Error("charge declined", "gateway", "nmi")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lines := readLogLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2", len(lines))
	}
	if lines[0]["msg"] != "scaling triggered" || lines[0]["current_limit"] != float64(50) {
		t.Errorf("first line = %v", lines[0])
	}
	if lines[1]["level"] != "ERROR" || lines[1]["gateway"] != "nmi" {
		t.Errorf("second line = %v", lines[1])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")

	logger, err := NewLogger(path, "warn")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("probe completed")
	logger.Info("scaling triggered")
	logger.Warn("retrying scale submission")
	logger.Error("scaling failed")
	_ = logger.Close()

	lines := readLogLines(t, path)
	if len(lines) != 2 {
		t.Errorf("got %d log lines at warn level, want 2", len(lines))
	}
}

func TestLoggerChildAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")

	logger, err := NewLogger(path, "debug")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	child := logger.WithEvent("ev-1").WithGateway("stripe").WithServer("srv-1")
	child.Info("payment charged", "amount", 275.0)

	// The parent must not inherit the child's attributes.
	logger.Info("plain")
	_ = logger.Close()

	lines := readLogLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2", len(lines))
	}

	withAttrs := lines[0]
	if withAttrs["event_id"] != "ev-1" || withAttrs["gateway"] != "stripe" || withAttrs["server_id"] != "srv-1" {
		t.Errorf("child attributes missing: %v", withAttrs)
	}
	if _, ok := lines[1]["event_id"]; ok {
		t.Error("parent logger leaked child attributes")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Info("discarded")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on nop logger error = %v", err)
	}
}
