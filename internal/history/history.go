// Package history persists scaling events and alerts as append-only JSONL
// files, one JSON object per line.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fakelit/scalewatch/internal/pricing"
	"github.com/fakelit/scalewatch/internal/sizing"
)

// Event statuses, in lifecycle order.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ScalingEvent is one scaling attempt, from trigger to terminal state.
type ScalingEvent struct {
	ID            string               `json:"id"`
	Timestamp     time.Time            `json:"timestamp"`
	Status        string               `json:"status"`
	Manual        bool                 `json:"manual,omitempty"`
	ServerID      string               `json:"server_id"`
	CurrentUnits  int                  `json:"current_units"`
	TargetUnits   int                  `json:"target_units"`
	Cost          pricing.Cost         `json:"cost"`
	Spec          *sizing.ResourceSpec `json:"spec,omitempty"`
	Gateway       string               `json:"gateway,omitempty"`
	TransactionID string               `json:"transaction_id,omitempty"`
	Refunded      bool                 `json:"refunded,omitempty"`
	RefundID      string               `json:"refund_id,omitempty"`
	Error         string               `json:"error,omitempty"`
	FailedStep    string               `json:"failed_step,omitempty"`
	CompletedAt   *time.Time           `json:"completed_at,omitempty"`
}

// Store appends scaling events to a JSONL file. Each Append is flushed to
// disk before returning, so a crash never loses an acknowledged write.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store writing to path. The parent directory is created
// on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append writes one event as a single JSON line and syncs the file.
func (s *Store) Append(event ScalingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing history file: %w", err)
	}
	return nil
}

// Load reads the history, one event per scaling attempt in trigger order.
// A run is appended once per status transition; only the latest revision of
// each event ID survives the load, so a torn trailing write costs at most
// one transition, never the run. A missing file is an empty history.
// Malformed lines are skipped.
func (s *Store) Load() ([]ScalingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var events []ScalingEvent
	seen := make(map[string]int)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev ScalingEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if i, ok := seen[ev.ID]; ok && ev.ID != "" {
			events[i] = ev
			continue
		}
		seen[ev.ID] = len(events)
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	return events, nil
}

// Last returns the most recent event, or false when the history is empty.
func (s *Store) Last() (ScalingEvent, bool, error) {
	events, err := s.Load()
	if err != nil || len(events) == 0 {
		return ScalingEvent{}, false, err
	}
	return events[len(events)-1], true, nil
}

// LastCompleted returns the most recent completed event, or false when none
// exists. Used for cooldown checks.
func (s *Store) LastCompleted() (ScalingEvent, bool, error) {
	events, err := s.Load()
	if err != nil {
		return ScalingEvent{}, false, err
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Status == StatusCompleted {
			return events[i], true, nil
		}
	}
	return ScalingEvent{}, false, nil
}
