package clip

import (
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"
)

// execBackend drives the platform's clipboard commands (pbcopy/pbpaste,
// xclip, xsel, wl-copy/wl-paste, or the Win32 API on Windows).
type execBackend struct{}

func newExec() (Backend, error) {
	if clipboard.Unsupported {
		return nil, fmt.Errorf("%w: no clipboard utility found", ErrUnavailable)
	}
	return execBackend{}, nil
}

func (execBackend) Name() string { return "clipboard commands (atotto)" }

// ReadText treats a failed read as an empty clipboard: xclip and wl-paste
// exit non-zero when no text owner exists.
func (execBackend) ReadText() (string, bool, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		slog.Debug("clipboard read failed, treating as empty", "err", err)
		return "", false, nil
	}
	return text, text != "", nil
}

func (execBackend) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}

func (execBackend) Clear() error {
	if err := clipboard.WriteAll(""); err != nil {
		return fmt.Errorf("clipboard clear: %w", err)
	}
	return nil
}

func (execBackend) Close() {}
