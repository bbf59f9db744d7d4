package payment

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry types recorded in the payments log.
const (
	EntryCharge = "charge"
	EntryRefund = "refund"
)

// Entry is one line of the payments audit log. Refund entries carry the
// transaction ID of the charge they compensate.
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          string    `json:"type"`
	EventID       string    `json:"event_id,omitempty"`
	Gateway       string    `json:"gateway"`
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount,omitempty"`
	Success       bool      `json:"success"`
	Message       string    `json:"message,omitempty"`
}

// Log is an append-only JSONL payments log. Every append is flushed
// synchronously before returning.
type Log struct {
	path string
	mu   sync.Mutex
}

// NewLog creates a payments log at the given path. The file is created
// lazily on first append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append persists one entry. Callers stamp Timestamp themselves; the log
// records entries as given.
func (l *Log) Append(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("payment log: marshal entry: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("payment log: create directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("payment log: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("payment log: write: %w", err)
	}
	return f.Sync()
}

// Load returns all entries in append order.
// Returns nil (not an error) if the log does not exist yet.
func (l *Log) Load() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("payment log: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			// Skip malformed lines rather than failing entirely
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("payment log: scan: %w", err)
	}

	return entries, nil
}
