package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and GHOSTKEY_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → GHOSTKEY_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if err := config.Discover(v, configFlag); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addSocketFlags adds the flags used to reach a running daemon.
func addSocketFlags(cmd *cobra.Command) {
	cmd.Flags().String("socket", "", "daemon socket path (default: $GHOSTKEY_SOCKET or the per-user runtime dir)")
	cmd.Flags().String("token", "", "shared secret required by the daemon (empty = none)")
}

// addTimingFlags exposes the most commonly tuned delays as flags. Their
// names match the config keys so viper binds them directly.
func addTimingFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.Duration(config.KeyKeyDelay, d.Timing.KeyDelay, "gap between key down and key up")
	f.Duration(config.KeyRestoreSettle, d.Timing.RestoreSettle, "wait after pasting before the clipboard is restored")
	f.String(config.KeyClipboard, string(d.Clipboard), "clipboard backend: auto|system|exec|memory")
	f.String(config.KeyCollapse, string(d.Collapse), "caret restore after reading: single|per-char")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
}

// setupCLILogging is setupLogging for one-shot commands: only warnings and
// errors unless --log-level says otherwise.
func setupCLILogging(v *viper.Viper) {
	level := v.GetString("log-level")
	if level == "" {
		level = "warn"
	}
	resolveLogging(false, v.GetString("log-format"), level)
}
