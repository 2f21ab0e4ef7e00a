// Package reader reads the text just before the caret of the focused
// application without an accessibility API: it selects backwards with
// Shift+Left, copies, reads the clipboard, then collapses the selection and
// puts the user's clipboard back.
package reader

import (
	"fmt"
	"log/slog"
	"time"

	"go.klb.dev/ghostkey/internal/clip"
	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/keys"
	"go.klb.dev/ghostkey/internal/mediator"
)

// Reader runs the select → copy → read → collapse → restore sequence.
type Reader struct {
	clip     clip.Backend
	keys     *keys.Synthesizer
	med      *mediator.Mediator
	timing   config.Timing
	collapse config.Collapse
}

// New returns a Reader. Arrow presses use timing.SelectKeyDelay; the copy
// press keeps synth's own delay.
func New(backend clip.Backend, synth *keys.Synthesizer, med *mediator.Mediator, cfg config.Config) *Reader {
	return &Reader{
		clip:     backend,
		keys:     synth,
		med:      med,
		timing:   cfg.Timing,
		collapse: cfg.Collapse,
	}
}

// ReadPreceding returns up to n characters before the caret. Near the start
// of a field the selection stops at the boundary and the result is shorter
// than n; that is not an error.
//
// On failure the reader collapses whatever it managed to select and restores
// the clipboard before returning, but the caret may still have moved if the
// collapse presses fail too.
func (r *Reader) ReadPreceding(n int) (text string, err error) {
	if n <= 0 {
		return "", nil
	}

	prev, err := r.med.Capture()
	if err != nil {
		return "", err
	}
	if err := r.clip.Clear(); err != nil {
		return "", fmt.Errorf("clear clipboard: %w", err)
	}
	defer func() {
		if rerr := r.med.Restore(prev); rerr != nil {
			if err == nil {
				err = fmt.Errorf("restore clipboard: %w", rerr)
			} else {
				slog.Warn("clipboard restore failed", "err", rerr)
			}
		}
	}()

	arrows := r.keys.WithDelay(r.timing.SelectKeyDelay)
	selected := 0
	for ; selected < n; selected++ {
		if err := arrows.Left(true); err != nil {
			r.abandon(arrows, selected)
			return "", fmt.Errorf("select character %d of %d: %w", selected+1, n, err)
		}
	}
	time.Sleep(r.timing.SelectionSettle)

	if err := r.keys.Copy(); err != nil {
		r.abandon(arrows, selected)
		return "", fmt.Errorf("copy selection: %w", err)
	}
	time.Sleep(r.timing.CopySettle)

	text, err = r.readCopy()
	if err != nil {
		r.abandon(arrows, selected)
		return "", fmt.Errorf("read selection: %w", err)
	}

	if err := r.collapseSelection(arrows, n, text != ""); err != nil {
		return "", fmt.Errorf("restore caret: %w", err)
	}
	return text, nil
}

// readCopy polls the cleared clipboard until the copied selection shows up.
// Empty after the whole verify budget means nothing was selected, which is
// how the caret at the very start of a field looks. A copy slower than the
// budget is indistinguishable from that and leaves the selection in place.
func (r *Reader) readCopy() (string, error) {
	attempts := max(r.timing.VerifyAttempts, 1)
	for attempt := 1; ; attempt++ {
		text, ok, err := r.clip.ReadText()
		if err != nil || (ok && text != "") || attempt >= attempts {
			return text, err
		}
		time.Sleep(r.timing.VerifyInterval)
	}
}

// collapseSelection returns the caret to where it started. With nothing
// selected (caret at the very start of the field) a Right press would move
// the caret, so the single policy skips it.
func (r *Reader) collapseSelection(arrows *keys.Synthesizer, n int, selected bool) error {
	presses := n
	if r.collapse == config.CollapseSingle {
		presses = 0
		if selected {
			presses = 1
		}
	}
	for i := 0; i < presses; i++ {
		if err := arrows.Right(false); err != nil {
			return err
		}
	}
	return nil
}

// abandon is the best-effort collapse after a failure part way through.
func (r *Reader) abandon(arrows *keys.Synthesizer, selected int) {
	if selected == 0 {
		return
	}
	if err := r.collapseSelection(arrows, selected, true); err != nil {
		slog.Warn("could not collapse partial selection", "selected", selected, "err", err)
	}
}
