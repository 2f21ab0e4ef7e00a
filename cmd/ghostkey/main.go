// ghostkey: ghost text insertion through synthesized keystrokes and the
// system clipboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/ghostkey/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "ghostkey",
		Short: "Insert ghost text into the focused application",
		Long: `ghostkey types suggested ("ghost") text into whatever application has
keyboard focus by pasting it through the system clipboard, then either keeps
it (accept) or deletes it again (reject). The user's clipboard is put back
afterwards. It can also read the text just before the caret.

Run "ghostkey serve" once per desktop session. The other commands talk to it
over a local socket; insert, read and status also work without it.

Config file search order (first found wins):
  /etc/ghostkey/ghostkey.toml
  $HOME/.config/ghostkey/ghostkey.toml
  path supplied via --config

All settings can be set via GHOSTKEY_<KEY> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newInsertCmd(),
		newAcceptCmd(),
		newRejectCmd(),
		newReadCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("ghostkey %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
