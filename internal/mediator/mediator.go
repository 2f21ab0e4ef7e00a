// Package mediator stages text on the system clipboard for a synthetic
// paste and puts the user's clipboard back afterwards.
//
// Clipboard writes are not synchronously observable on any supported OS, so
// every write is read back until it matches or the retry budget runs out.
// The paste is never synthesized before that read-back succeeds: pasting
// early would deliver whatever the clipboard held before.
package mediator

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.klb.dev/ghostkey/internal/clip"
	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/keys"
)

// ErrVerifyTimeout means the clipboard never reflected a write within the
// retry budget.
var ErrVerifyTimeout = errors.New("mediator: clipboard verification failed")

// ErrRestore marks an immediate insertion whose paste went through but whose
// clipboard restore failed. The text is already in the document.
var ErrRestore = errors.New("mediator: restore after paste failed")

// Snapshot is the clipboard text captured before an insertion.
type Snapshot struct {
	Text string
	// Present is false when the clipboard held no text.
	Present bool
}

// Mediator owns the capture → write → verify → paste → restore sequence.
type Mediator struct {
	clip   clip.Backend
	keys   *keys.Synthesizer
	timing config.Timing
}

// New returns a Mediator. timing.VerifyAttempts must be at least 1.
func New(backend clip.Backend, synth *keys.Synthesizer, timing config.Timing) *Mediator {
	return &Mediator{clip: backend, keys: synth, timing: timing}
}

// Capture reads the current clipboard text.
func (m *Mediator) Capture() (Snapshot, error) {
	text, ok, err := m.clip.ReadText()
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture clipboard: %w", err)
	}
	return Snapshot{Text: text, Present: ok}, nil
}

// InsertImmediate pastes text at the caret, waits for the target to consume
// it, then restores the previous clipboard. When the clipboard held no text
// beforehand it is cleared, so the final state always equals the snapshot.
func (m *Mediator) InsertImmediate(text string) error {
	prev, err := m.paste(text)
	if err != nil {
		return err
	}
	time.Sleep(m.timing.RestoreSettle)
	if err := m.Restore(prev); err != nil {
		return fmt.Errorf("%w: %w", ErrRestore, err)
	}
	return nil
}

// InsertDeferred pastes text at the caret and leaves it on the clipboard.
// The caller keeps the returned snapshot and passes it to Restore once the
// user has accepted or rejected the insertion.
func (m *Mediator) InsertDeferred(text string) (Snapshot, error) {
	return m.paste(text)
}

// Restore puts a snapshot back on the clipboard.
func (m *Mediator) Restore(s Snapshot) error {
	if !s.Present {
		if err := m.clip.Clear(); err != nil {
			return fmt.Errorf("clear clipboard: %w", err)
		}
		return nil
	}
	return m.RestoreText(s.Text)
}

// RestoreText clears the clipboard and writes text, verifying the write.
func (m *Mediator) RestoreText(text string) error {
	if err := m.write(text); err != nil {
		return err
	}
	slog.Debug("clipboard restored")
	return nil
}

func (m *Mediator) paste(text string) (Snapshot, error) {
	prev, err := m.Capture()
	if err != nil {
		return Snapshot{}, err
	}
	if err := m.write(text); err != nil {
		m.putBack(prev)
		return Snapshot{}, err
	}
	if err := m.keys.Paste(); err != nil {
		m.putBack(prev)
		return Snapshot{}, fmt.Errorf("paste: %w", err)
	}
	return prev, nil
}

// putBack is the best-effort restore after a failed paste; the caller
// reports the original failure.
func (m *Mediator) putBack(prev Snapshot) {
	if err := m.Restore(prev); err != nil {
		slog.Warn("clipboard restore after failed paste", "err", err)
	}
}

// write clears the clipboard, writes text and polls until it reads back.
func (m *Mediator) write(text string) error {
	if err := m.clip.Clear(); err != nil {
		return fmt.Errorf("clear clipboard: %w", err)
	}
	if err := m.clip.WriteText(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	n, err := m.verify(text)
	if err != nil {
		return err
	}
	slog.Debug("clipboard verified", "attempts", n)
	return nil
}

func (m *Mediator) verify(want string) (int, error) {
	for attempt := 1; attempt <= m.timing.VerifyAttempts; attempt++ {
		got, ok, err := m.clip.ReadText()
		if err != nil {
			return attempt, fmt.Errorf("verify clipboard: %w", err)
		}
		// Native backends report an empty text slot as absent.
		if got == want && (ok || want == "") {
			return attempt, nil
		}
		if attempt < m.timing.VerifyAttempts {
			time.Sleep(m.timing.VerifyInterval)
		}
	}
	return m.timing.VerifyAttempts, fmt.Errorf("%w after %d attempts", ErrVerifyTimeout, m.timing.VerifyAttempts)
}
