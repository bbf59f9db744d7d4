package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/history"
	"github.com/fakelit/scalewatch/internal/monitor"
)

func TestCheckScaleTarget(t *testing.T) {
	tests := []struct {
		name    string
		target  int
		current int
		wantErr bool
	}{
		{"target above limit", 200, 150, false},
		{"target equal to limit", 150, 150, true},
		{"target below limit", 100, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkScaleTarget(tt.target, tt.current)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkScaleTarget(%d, %d) error = %v, wantErr %v",
					tt.target, tt.current, err, tt.wantErr)
			}
		})
	}
}

// A completed scale in the history advances the monitor's limit past the
// configured one; the target floor must follow the restored limit, not the
// raw config value.
func TestScaleTargetValidatedAgainstRestoredLimit(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.jsonl"))
	err := store.Append(history.ScalingEvent{
		ID:          "ev-1",
		Timestamp:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:      history.StatusCompleted,
		TargetUnits: 150,
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	cfg := config.Default()
	m, err := monitor.New(cfg, monitor.Options{Store: store})
	if err != nil {
		t.Fatalf("monitor.New() error = %v", err)
	}

	current := m.Status().CurrentLimit
	if current != 150 {
		t.Fatalf("restored CurrentLimit = %d, want 150", current)
	}

	// 100 clears the configured limit of 50 but not the restored one.
	if err := checkScaleTarget(100, current); err == nil {
		t.Error("checkScaleTarget() accepted a target below the restored limit")
	}
	if err := checkScaleTarget(200, current); err != nil {
		t.Errorf("checkScaleTarget() rejected a valid target: %v", err)
	}
}
