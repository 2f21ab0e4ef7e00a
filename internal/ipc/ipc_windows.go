//go:build windows

package ipc

import (
	"errors"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

// ErrInUse means another daemon is already serving the pipe.
var ErrInUse = errors.New("ipc: pipe already in use")

const pipeName = `\\.\pipe\ghostkey`

// Owner-only access for the current user.
const pipeSDDL = "D:P(A;;GA;;;OW)"

func socketPath() string { return pipeName }

func listenIPC(path string) (net.Listener, error) {
	return winio.ListenPipe(path, &winio.PipeConfig{SecurityDescriptor: pipeSDDL})
}

func dialIPC(path string) (net.Conn, error) {
	timeout := 2 * time.Second
	return winio.DialPipe(path, &timeout)
}
