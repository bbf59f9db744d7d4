package monitor

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestWritePidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.pid")

	if err := writePidFile(path); err != nil {
		t.Fatalf("writePidFile() error = %v", err)
	}

	pid, ok := ReadPidFile(path)
	if !ok || pid != os.Getpid() {
		t.Errorf("ReadPidFile() = %d ok=%v, want own pid", pid, ok)
	}

	// A live holder blocks a second writer. This process is the holder.
	if err := writePidFile(path); err == nil {
		t.Error("second writePidFile() with live holder should fail")
	}

	removePidFile(path)
	if _, ok := ReadPidFile(path); ok {
		t.Error("pidfile should be gone after removal")
	}
}

func TestWritePidFileReplacesStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.pid")

	// An implausibly high PID that no live process holds.
	if err := os.WriteFile(path, []byte("99999999\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := writePidFile(path); err != nil {
		t.Fatalf("writePidFile() over stale pidfile error = %v", err)
	}
	if pid, _ := ReadPidFile(path); pid != os.Getpid() {
		t.Errorf("pidfile holds %d, want own pid", pid)
	}
}

func TestReadPidFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.pid")

	if _, ok := ReadPidFile(path); ok {
		t.Error("missing pidfile should read as absent")
	}

	_ = os.WriteFile(path, []byte("not a pid"), 0o644)
	if _, ok := ReadPidFile(path); ok {
		t.Error("malformed pidfile should read as absent")
	}

	_ = os.WriteFile(path, []byte(strconv.Itoa(-3)), 0o644)
	if _, ok := ReadPidFile(path); ok {
		t.Error("negative pid should read as absent")
	}
}

func TestSignalStopMissingPidfile(t *testing.T) {
	if err := SignalStop(filepath.Join(t.TempDir(), "none.pid")); err == nil {
		t.Error("SignalStop() without a pidfile should fail")
	}
}
