package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Alert severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is an operator-facing notification written alongside the scaling
// history: probe failures, payment declines, refund outcomes.
type Alert struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	EventID   string    `json:"event_id,omitempty"`
}

// AlertLog appends alerts to a JSONL file with the same durability
// guarantees as Store.
type AlertLog struct {
	mu   sync.Mutex
	path string
}

// NewAlertLog creates an AlertLog writing to path.
func NewAlertLog(path string) *AlertLog {
	return &AlertLog{path: path}
}

// Append writes one alert as a single JSON line and syncs the file.
func (l *AlertLog) Append(alert Alert) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating alert dir: %w", err)
	}

	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshaling alert: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening alert file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing alert: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing alert file: %w", err)
	}
	return nil
}

// Load reads all alerts in append order. A missing file is an empty log.
func (l *AlertLog) Load() ([]Alert, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening alert file: %w", err)
	}
	defer f.Close()

	var alerts []Alert
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var a Alert
		if err := json.Unmarshal(line, &a); err != nil {
			continue
		}
		alerts = append(alerts, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading alert file: %w", err)
	}
	return alerts, nil
}
