package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// writePidFile records the current process ID at path. It refuses to write
// when another live monitor process already holds the file; a stale pidfile
// left by a crashed process is replaced.
func writePidFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating pidfile dir: %w", err)
	}

	if pid, ok := ReadPidFile(path); ok && processAlive(pid) {
		return fmt.Errorf("monitor already running with pid %d", pid)
	}

	pid := os.Getpid()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing pidfile: %w", err)
	}
	return nil
}

func removePidFile(path string) {
	os.Remove(path)
}

// ReadPidFile returns the PID recorded at path, or false when the file is
// missing or malformed.
func ReadPidFile(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// processAlive reports whether a process with the given PID exists.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// SignalStop sends SIGTERM to the monitor recorded in the pidfile at path.
func SignalStop(path string) error {
	pid, ok := ReadPidFile(path)
	if !ok {
		return fmt.Errorf("no monitor pidfile at %s", path)
	}
	if !processAlive(pid) {
		removePidFile(path)
		return fmt.Errorf("monitor pid %d is not running", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signalling monitor pid %d: %w", pid, err)
	}
	return nil
}
