package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/ghost"
	"go.klb.dev/ghostkey/internal/ipc"
	"go.klb.dev/ghostkey/internal/rpcservice"
)

// callTimeout bounds one daemon call. Reading a long context is the slowest
// operation: every character is a key press.
const callTimeout = 2 * time.Minute

var errNoDaemon = errors.New("no ghostkey daemon running (start one with \"ghostkey serve\")")

func socketPath(v *viper.Viper) string {
	if s := v.GetString("socket"); s != "" {
		return s
	}
	return ipc.SocketPath()
}

// dialIPC returns a client for the daemon on the local socket, or
// errNoDaemon when nothing is listening.
func dialIPC(v *viper.Viper) (*rpcservice.Client, func(), error) {
	path := socketPath(v)
	if !ipc.IsRunning(path) {
		return nil, nil, fmt.Errorf("%s: %w", path, errNoDaemon)
	}
	conn, err := grpc.NewClient(
		"passthrough:///ghostkey",
		grpc.WithContextDialer(func(_ context.Context, _ string) (net.Conn, error) {
			return ipc.Dial(path)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		rpcservice.WithToken(v.GetString("token")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", path, err)
	}
	slog.Debug("connected to daemon", "socket", path)
	return rpcservice.NewClient(conn), func() { _ = conn.Close() }, nil
}

// openLocal opens a one-shot session in this process, for commands that do
// not need state to outlive them.
func openLocal(v *viper.Viper) (*ghost.Session, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	return ghost.Open(cfg)
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}
