// Package config holds the tunables shared by the ghostkey CLI, daemon and
// shared library, and loads them through viper.
//
// Precedence (lowest → highest): defaults → config file → GHOSTKEY_* env vars → flags
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"go.klb.dev/ghostkey/internal/clip"
)

// EnvPrefix is prepended to every environment variable key.
const EnvPrefix = "GHOSTKEY"

// Timing holds the sleeps and retry budgets around OS calls. They were tuned
// by hand against macOS input-method latency; none is derived from a model,
// so treat changes as experiments.
type Timing struct {
	// KeyDelay is slept after each key-down and key-up event.
	KeyDelay time.Duration
	// LayoutSettle is slept after the blank-line presses, before the paste.
	LayoutSettle time.Duration
	// VerifyAttempts bounds clipboard read-backs after a write.
	VerifyAttempts int
	// VerifyInterval is slept between read-backs.
	VerifyInterval time.Duration
	// RestoreSettle lets the target application consume a paste before the
	// clipboard is restored in immediate mode.
	RestoreSettle time.Duration
	// SelectKeyDelay replaces KeyDelay for arrow presses in the text reader.
	SelectKeyDelay time.Duration
	// SelectionSettle is slept after the selection is extended.
	SelectionSettle time.Duration
	// CopySettle is slept after the copy before the clipboard is read.
	CopySettle time.Duration
}

// Collapse selects how the text reader returns the caret after copying.
type Collapse string

const (
	// CollapseSingle presses Right once; text fields collapse a selection to
	// its end on Right, which is where the caret started.
	CollapseSingle Collapse = "single"
	// CollapsePerChar presses Right once per requested character, for
	// editors whose Right arrow ignores the selection.
	CollapsePerChar Collapse = "per-char"
)

// Config is the full ghostkey configuration.
type Config struct {
	Timing    Timing
	Clipboard clip.Kind
	Collapse  Collapse
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Timing: Timing{
			KeyDelay:        20 * time.Millisecond,
			LayoutSettle:    100 * time.Millisecond,
			VerifyAttempts:  50,
			VerifyInterval:  2 * time.Millisecond,
			RestoreSettle:   time.Second,
			SelectKeyDelay:  2 * time.Millisecond,
			SelectionSettle: 10 * time.Millisecond,
			CopySettle:      50 * time.Millisecond,
		},
		Clipboard: clip.KindAuto,
		Collapse:  CollapseSingle,
	}
}

// Viper keys.
const (
	KeyKeyDelay        = "timing.key-delay"
	KeyLayoutSettle    = "timing.layout-settle"
	KeyVerifyAttempts  = "timing.verify-attempts"
	KeyVerifyInterval  = "timing.verify-interval"
	KeyRestoreSettle   = "timing.restore-settle"
	KeySelectKeyDelay  = "timing.select-key-delay"
	KeySelectionSettle = "timing.selection-settle"
	KeyCopySettle      = "timing.copy-settle"
	KeyClipboard       = "clipboard.backend"
	KeyCollapse        = "reader.collapse"
)

// SetDefaults registers Default() on v so that Load works on an empty viper.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyKeyDelay, d.Timing.KeyDelay)
	v.SetDefault(KeyLayoutSettle, d.Timing.LayoutSettle)
	v.SetDefault(KeyVerifyAttempts, d.Timing.VerifyAttempts)
	v.SetDefault(KeyVerifyInterval, d.Timing.VerifyInterval)
	v.SetDefault(KeyRestoreSettle, d.Timing.RestoreSettle)
	v.SetDefault(KeySelectKeyDelay, d.Timing.SelectKeyDelay)
	v.SetDefault(KeySelectionSettle, d.Timing.SelectionSettle)
	v.SetDefault(KeyCopySettle, d.Timing.CopySettle)
	v.SetDefault(KeyClipboard, string(d.Clipboard))
	v.SetDefault(KeyCollapse, string(d.Collapse))
}

// Discover points v at the config file and environment. path overrides the
// search; otherwise the first ghostkey.toml found in /etc/ghostkey or
// $HOME/.config/ghostkey wins. A missing file is not an error.
func Discover(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ghostkey")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/ghostkey/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ghostkey"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return nil
}

// Load reads a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	kind, err := clip.ParseKind(v.GetString(KeyClipboard))
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	c := Config{
		Timing: Timing{
			KeyDelay:        v.GetDuration(KeyKeyDelay),
			LayoutSettle:    v.GetDuration(KeyLayoutSettle),
			VerifyAttempts:  v.GetInt(KeyVerifyAttempts),
			VerifyInterval:  v.GetDuration(KeyVerifyInterval),
			RestoreSettle:   v.GetDuration(KeyRestoreSettle),
			SelectKeyDelay:  v.GetDuration(KeySelectKeyDelay),
			SelectionSettle: v.GetDuration(KeySelectionSettle),
			CopySettle:      v.GetDuration(KeyCopySettle),
		},
		Clipboard: kind,
		Collapse:  Collapse(strings.ToLower(v.GetString(KeyCollapse))),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	durations := []struct {
		key string
		d   time.Duration
	}{
		{KeyKeyDelay, c.Timing.KeyDelay},
		{KeyLayoutSettle, c.Timing.LayoutSettle},
		{KeyVerifyInterval, c.Timing.VerifyInterval},
		{KeyRestoreSettle, c.Timing.RestoreSettle},
		{KeySelectKeyDelay, c.Timing.SelectKeyDelay},
		{KeySelectionSettle, c.Timing.SelectionSettle},
		{KeyCopySettle, c.Timing.CopySettle},
	}
	for _, d := range durations {
		if d.d < 0 {
			return fmt.Errorf("config: %s must not be negative (got %s)", d.key, d.d)
		}
	}
	if c.Timing.VerifyAttempts < 1 {
		return fmt.Errorf("config: %s must be at least 1 (got %d)", KeyVerifyAttempts, c.Timing.VerifyAttempts)
	}
	switch c.Collapse {
	case CollapseSingle, CollapsePerChar:
	default:
		return fmt.Errorf("config: %s must be single or per-char (got %q)", KeyCollapse, c.Collapse)
	}
	if _, err := clip.ParseKind(string(c.Clipboard)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
