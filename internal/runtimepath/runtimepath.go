// Package runtimepath locates the per-user runtime files of the daemon: its
// IPC socket and its pid file.
package runtimepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const (
	socketName = "deskwm.sock"
	pidName    = "deskwm.pid"
)

// ErrDaemonRunning is returned by ClaimPID when a live process holds the pid
// file.
var ErrDaemonRunning = errors.New("daemon already running")

// Dir returns XDG_RUNTIME_DIR, else /run/user/<uid> when it exists, else a
// private /tmp/deskwm-runtime-<uid> that is created on demand.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}
	uid := strconv.Itoa(os.Getuid())
	if dir := filepath.Join("/run/user", uid); isDir(dir) {
		return dir, nil
	}
	dir := "/tmp/deskwm-runtime-" + uid
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func inDir(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) { return inDir(socketName) }

// PIDPath returns the daemon pid file path.
func PIDPath() (string, error) { return inDir(pidName) }

// ReadPID returns the pid recorded in path.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%s: malformed pid %q", path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// Alive reports whether a process with pid exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// ClaimPID records the current process in path. A file left by a dead
// process is replaced. The returned release removes the file if it still
// names this process.
func ClaimPID(path string) (release func(), err error) {
	self := os.Getpid()
	if pid, err := ReadPID(path); err == nil && pid != self && Alive(pid) {
		return nil, fmt.Errorf("%w (pid %d, %s)", ErrDaemonRunning, pid, path)
	}

	tmp := fmt.Sprintf("%s.%d.tmp", path, self)
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(self)+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("failed to write pid file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("failed to write pid file: %w", err)
	}

	return func() {
		if pid, err := ReadPID(path); err == nil && pid == self {
			_ = os.Remove(path)
		}
	}, nil
}
