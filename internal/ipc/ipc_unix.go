//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// ErrInUse means another daemon is already serving the socket.
var ErrInUse = errors.New("ipc: socket already in use")

func socketPath() string {
	// Linux: prefer XDG_RUNTIME_DIR
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "ghostkey.sock")
	}
	// macOS / fallback
	return filepath.Join(os.TempDir(), "ghostkey.sock")
}

func listenIPC(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrInUse)
	}
	// Remove stale socket from a previous (crashed) run.
	_ = os.Remove(path)
	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	// Anyone who can reach the socket can type into the focused window.
	if err := os.Chmod(path, 0o600); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	return l, nil
}

func dialIPC(path string) (net.Conn, error) {
	return net.Dial("unix", path)
}
