// Package clip provides access to the text slot of the system clipboard.
// Build constraints select the native implementation:
//
//	clip_system.go   — golang.design/x/clipboard (macOS, Linux with cgo, Windows)
//	clip_darwin.go   — NSPasteboard clearContents via cgo
//	clip_linux.go    — X11 clear
//	clip_windows.go  — Win32 clear
//	clip_nosystem.go — builds without a native backend
//
// clip_exec.go shells out to pbcopy/xclip/xsel/wl-clipboard via
// atotto/clipboard, and memory.go keeps the slot in-process for tests.
package clip

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnavailable means no clipboard handle could be obtained.
var ErrUnavailable = errors.New("clip: clipboard unavailable")

// Backend is the interface that all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the clipboard text. ok is false when the clipboard
	// holds no text.
	ReadText() (text string, ok bool, err error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// Clear empties the clipboard.
	Clear() error

	// Close releases any resources held by the backend.
	Close()
}

// Kind selects a backend implementation.
type Kind string

const (
	KindAuto   Kind = "auto"
	KindSystem Kind = "system"
	KindExec   Kind = "exec"
	KindMemory Kind = "memory"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindAuto:
		return KindAuto, nil
	case KindSystem, KindExec, KindMemory:
		return k, nil
	default:
		return "", fmt.Errorf("unknown clipboard backend %q (want auto|system|exec|memory)", s)
	}
}

// Constructors for the platform backends; tests replace them.
var (
	openSystem = newSystem
	openExec   = newExec
)

// New returns a backend of the requested kind. KindAuto tries the native
// backend, then the exec backend, and fails with ErrUnavailable when neither
// starts. The in-memory clipboard is never chosen automatically: the focused
// application cannot see it, so a paste would deliver stale content.
func New(kind Kind) (Backend, error) {
	switch kind {
	case KindSystem:
		return openSystem()
	case KindExec:
		return openExec()
	case KindMemory:
		return NewMemory(), nil
	case KindAuto, "":
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", kind)
	}

	b, err := openSystem()
	if err == nil {
		return b, nil
	}
	slog.Warn("native clipboard unavailable, trying command-line tools", "err", err)

	b, execErr := openExec()
	if execErr == nil {
		return b, nil
	}
	return nil, fmt.Errorf("%w: native: %v; commands: %v", ErrUnavailable, err, execErr)
}
