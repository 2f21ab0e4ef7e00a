// Package ipc provides the local channel between ghostkey CLI commands (and
// other host processes) and a running `ghostkey serve` daemon.
//
// The channel is a Unix domain socket on Linux and macOS and a named pipe on
// Windows. The daemon multiplexes gRPC and the JSON gateway on it.
package ipc

import (
	"net"
	"os"
)

// EnvSocket overrides the socket path.
const EnvSocket = "GHOSTKEY_SOCKET"

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux / macOS: $XDG_RUNTIME_DIR/ghostkey.sock, else $TMPDIR/ghostkey.sock
//   - Windows:       \\.\pipe\ghostkey
//
// $GHOSTKEY_SOCKET overrides both.
func SocketPath() string {
	if s := os.Getenv(EnvSocket); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on path. It
// does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := Dial(path)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on path. A stale socket left by a crashed
// daemon is removed first; a live one is an error.
func Listen(path string) (net.Listener, error) {
	return listenIPC(path)
}

// Dial connects to the daemon at path.
func Dial(path string) (net.Conn, error) {
	return dialIPC(path)
}
