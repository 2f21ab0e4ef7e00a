//go:build !windows

package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/ghost"
	"go.klb.dev/ghostkey/internal/ipc"
	"go.klb.dev/ghostkey/internal/simdesk"
)

// startDaemon serves a simulated session on a temporary socket.
func startDaemon(t *testing.T) (*simdesk.Desk, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ghostkey.sock")
	ln, err := ipc.Listen(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Timing = config.Timing{VerifyAttempts: 50}
	desk := simdesk.New("")
	desk.SetClipboard("old")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, ghost.New(desk, desk, cfg), "") }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("serve did not stop")
		}
	})
	return desk, path
}

func TestServeGRPC(t *testing.T) {
	desk, path := startDaemon(t)
	v := viper.New()
	v.Set("socket", path)

	client, done, err := dialIPC(v)
	if err != nil {
		t.Fatal(err)
	}
	defer done()

	ctx, cancel := callContext()
	defer cancel()
	if err := client.InsertDeferred(ctx, "hello"); err != nil {
		t.Fatalf("InsertDeferred: %v", err)
	}
	if err := client.Reject(ctx); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got := desk.Text(); got != "" {
		t.Errorf("text = %q", got)
	}
	if got, _ := desk.Clipboard(); got != "old" {
		t.Errorf("clipboard = %q", got)
	}
}

func TestServeHTTP(t *testing.T) {
	desk, path := startDaemon(t)
	hc := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", path)
		},
	}}

	resp, err := hc.Post("http://ghostkey/v1/insert", "application/json", strings.NewReader(`{"text":"hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("insert: %d %s", resp.StatusCode, body)
	}
	if got := desk.Text(); got != "\n\nhi" {
		t.Errorf("text = %q", got)
	}
}

func TestDialWithoutDaemon(t *testing.T) {
	v := viper.New()
	v.Set("socket", filepath.Join(t.TempDir(), "none.sock"))
	if _, _, err := dialIPC(v); err == nil {
		t.Fatal("expected errNoDaemon")
	}
}
