package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soheilhy/cmux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/ghost"
	"go.klb.dev/ghostkey/internal/ipc"
	"go.klb.dev/ghostkey/internal/keys"
	"go.klb.dev/ghostkey/internal/rpcservice"
	"go.klb.dev/ghostkey/internal/simdesk"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ghost text daemon on the local socket",
		Long: `Starts the ghostkey daemon. It owns one ghost text session, so a
deferred insertion made by one command can be accepted or rejected by a later
one. gRPC (ghostkey.v1.GhostService) and a JSON gateway share the socket:

  POST /v1/insert   {"text": "...", "deferred": true}
  POST /v1/accept
  POST /v1/reject
  GET  /v1/context?n=40
  GET  /v1/status

With --simulate the daemon types into an in-memory text field instead of the
focused application, for testing host integrations.

Precedence (lowest → highest): defaults → config file → GHOSTKEY_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runServe(v) },
	}

	f := cmd.Flags()
	f.Bool("simulate", false, "use a simulated text field and clipboard")
	f.Bool("prompt", true, "on macOS, ask for the accessibility permission if it is missing")
	addSocketFlags(cmd)
	addTimingFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(v *viper.Viper) error {
	setupLogging(v)

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	var session *ghost.Session
	if v.GetBool("simulate") {
		desk := simdesk.New("")
		session = ghost.New(desk, desk, cfg)
	} else {
		if !keys.Trusted(v.GetBool("prompt")) {
			slog.Warn("accessibility permission missing: key events will be dropped until it is granted")
		}
		session, err = ghost.Open(cfg)
		if err != nil {
			return fmt.Errorf("open session: %w", err)
		}
	}
	defer session.Close()

	path := socketPath(v)
	ln, err := ipc.Listen(path)
	if err != nil {
		return fmt.Errorf("listen %s: %w", path, err)
	}

	slog.Info("ghostkey daemon starting",
		"version", Version,
		"socket", path,
		"keys", session.KeysName(),
		"clipboard", session.ClipboardName(),
		"auth", v.GetString("token") != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, ln, session, v.GetString("token"))
}

// serve multiplexes gRPC and the JSON gateway on ln until ctx is done.
func serve(ctx context.Context, ln net.Listener, session *ghost.Session, token string) error {
	svc := rpcservice.New(session, Version)

	gs := grpc.NewServer(grpc.UnaryInterceptor(rpcservice.AuthInterceptor(token)))
	rpcservice.Register(gs, svc)

	gw, err := rpcservice.NewGateway(svc, token)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	hs := &http.Server{Handler: gw, ReadHeaderTimeout: 5 * time.Second}

	m := cmux.New(ln)
	grpcLn := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpLn := m.Match(cmux.HTTP1Fast())

	errc := make(chan error, 3)
	go func() { errc <- gs.Serve(grpcLn) }()
	go func() { errc <- serveHTTPGateway(hs, httpLn) }()
	go func() { errc <- m.Serve() }()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-errc:
		slog.Error("listener stopped", "err", err)
	}

	_ = ln.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hs.Shutdown(shutdownCtx)
	gs.GracefulStop()

	if err != nil && !isClosed(err) {
		return err
	}
	return nil
}

// serveHTTPGateway runs an HTTP/1.1 server on ln serving the gateway mux.
func serveHTTPGateway(srv *http.Server, ln net.Listener) error {
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, cmux.ErrListenerClosed) ||
		errors.Is(err, grpc.ErrServerStopped)
}
