// Package ghost implements the ghost text lifecycle on top of the event
// synthesizer and the clipboard mediator: insert (with the blank-line layout
// step), then accept or reject, plus reading the text before the caret.
//
// A Session owns what would otherwise be process-wide state: the clipboard
// snapshot taken before a deferred insertion and the length of the text that
// a rejection must delete. Hosts keep one Session per edit surface and call
// it serially; the session lock also serializes overlapping calls so that
// their keystrokes never interleave.
package ghost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"go.klb.dev/ghostkey/internal/clip"
	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/keys"
	"go.klb.dev/ghostkey/internal/mediator"
	"go.klb.dev/ghostkey/internal/reader"
)

// LayoutBreaks is the number of Shift+Return presses that separate ghost
// text from the content above it. Reject deletes them too.
const LayoutBreaks = 2

// ErrInvalidText means the text was not valid UTF-8.
var ErrInvalidText = errors.New("ghost: text is not valid UTF-8")

// State describes the pending insertion, if any.
type State struct {
	Pending bool
	// Length is the pending ghost text length in user-perceived characters,
	// excluding the layout breaks. After a partly failed reject it counts
	// only what is still to be deleted.
	Length      int
	HasSnapshot bool
	Since       time.Time
}

// Session is one host-owned ghost text lifecycle.
type Session struct {
	clip   clip.Backend
	keys   *keys.Synthesizer
	med    *mediator.Mediator
	reader *reader.Reader
	timing config.Timing

	mu      sync.Mutex
	pending bool

	// remaining counts the backspaces a reject still has to send: the
	// pending ghost graphemes plus their layout breaks. It shrinks as
	// each one lands so that a retried reject never overshoots.
	remaining int
	snapshot  mediator.Snapshot
	since     time.Time
}

// New builds a Session on the given sink and clipboard.
func New(sink keys.Sink, backend clip.Backend, cfg config.Config) *Session {
	synth := keys.NewSynthesizer(sink, cfg.Timing.KeyDelay)
	med := mediator.New(backend, synth, cfg.Timing)
	return &Session{
		clip:   backend,
		keys:   synth,
		med:    med,
		reader: reader.New(backend, synth, med, cfg),
		timing: cfg.Timing,
	}
}

// Open builds a Session on the platform event sink and the clipboard backend
// named by cfg.
func Open(cfg config.Config) (*Session, error) {
	sink, err := keys.New()
	if err != nil {
		return nil, err
	}
	backend, err := clip.New(cfg.Clipboard)
	if err != nil {
		return nil, err
	}
	s, err := openOn(sink, backend, cfg)
	if err != nil {
		backend.Close()
		return nil, err
	}
	slog.Debug("ghost session opened", "keys", sink.Name(), "clipboard", backend.Name())
	return s, nil
}

// openOn refuses the in-process clipboard for a real sink: the focused
// application would paste whatever the system clipboard holds instead.
func openOn(sink keys.Sink, backend clip.Backend, cfg config.Config) (*Session, error) {
	if _, ok := backend.(*clip.Memory); ok {
		return nil, fmt.Errorf("%w: %s cannot feed pastes to %s", clip.ErrUnavailable, backend.Name(), sink.Name())
	}
	return New(sink, backend, cfg), nil
}

// Close releases the clipboard backend.
func (s *Session) Close() { s.clip.Close() }

// KeysName returns the name of the event sink.
func (s *Session) KeysName() string { return s.keys.Sink().Name() }

// ClipboardName returns the name of the clipboard backend.
func (s *Session) ClipboardName() string { return s.clip.Name() }

// InsertImmediate lays out two blank lines, pastes text and restores the
// clipboard after the settle delay. Empty text is a no-op.
func (s *Session) InsertImmediate(text string) error {
	if err := validate(text); err != nil || text == "" {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	logText("insert ghost text (immediate)", text)
	if err := s.layout(); err != nil {
		return err
	}
	if err := s.med.InsertImmediate(text); err != nil {
		if !errors.Is(err, mediator.ErrRestore) {
			s.unlayout()
		}
		return fmt.Errorf("insert: %w", err)
	}
	slog.Info("ghost text inserted", "mode", "immediate", "length", graphemes(text))
	return nil
}

// InsertDeferred lays out two blank lines and pastes text, keeping the
// previous clipboard until Accept or Reject. If an earlier insertion is
// still pending, its snapshot is kept (the clipboard now holds that earlier
// ghost text, not the user's) and the new text joins it. Empty text is a
// no-op.
func (s *Session) InsertDeferred(text string) error {
	if err := validate(text); err != nil || text == "" {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	logText("insert ghost text (deferred)", text)
	if err := s.layout(); err != nil {
		return err
	}
	prev, err := s.med.InsertDeferred(text)
	if err != nil {
		s.unlayout()
		return fmt.Errorf("insert: %w", err)
	}

	n := graphemes(text) + LayoutBreaks
	if s.pending {
		// Both insertions stay in the document; a reject removes them all.
		slog.Warn("previous ghost text still pending, keeping its clipboard snapshot", "length", s.length())
		s.remaining += n
	} else {
		s.snapshot = prev
		s.remaining = n
		s.since = time.Now()
	}
	s.pending = true
	slog.Info("ghost text inserted", "mode", "deferred", "length", s.length())
	return nil
}

// Accept keeps the pending ghost text and restores the clipboard. With
// nothing pending it does nothing.
func (s *Session) Accept() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		slog.Debug("accept: nothing pending")
		return nil
	}
	if err := s.med.Restore(s.snapshot); err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	slog.Info("ghost text accepted", "length", s.length())
	s.reset()
	return nil
}

// Reject deletes the pending ghost text and its layout breaks, then restores
// the clipboard. With nothing pending it does nothing. If a backspace fails
// the insertion stays pending with only the undeleted part left to remove,
// so calling Reject again finishes the job.
func (s *Session) Reject() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		slog.Debug("reject: nothing pending")
		return nil
	}
	deleted := 0
	for s.remaining > 0 {
		if err := s.keys.Backspace(); err != nil {
			return fmt.Errorf("reject: %d backspaces left: %w", s.remaining, err)
		}
		s.remaining--
		deleted++
	}
	if err := s.med.Restore(s.snapshot); err != nil {
		return fmt.Errorf("reject: %w", err)
	}
	slog.Info("ghost text rejected", "deleted", deleted)
	s.reset()
	return nil
}

// ReadBeforeCaret returns up to n characters before the caret, leaving the
// caret and clipboard as they were.
func (s *Session) ReadBeforeCaret(n int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.reader.ReadPreceding(n)
	if err != nil {
		return "", fmt.Errorf("read before caret: %w", err)
	}
	slog.Debug("read before caret", "requested", n, "got", utf8.RuneCountInString(text))
	return text, nil
}

// State returns the pending insertion state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Pending:     s.pending,
		Length:      s.length(),
		HasSnapshot: s.pending && s.snapshot.Present,
		Since:       s.since,
	}
}

func (s *Session) layout() error {
	for i := 0; i < LayoutBreaks; i++ {
		if err := s.keys.ShiftEnter(); err != nil {
			s.backspace(i)
			return fmt.Errorf("layout: line break %d: %w", i+1, err)
		}
	}
	time.Sleep(s.timing.LayoutSettle)
	return nil
}

// unlayout removes the line breaks of an insertion whose paste failed.
func (s *Session) unlayout() { s.backspace(LayoutBreaks) }

// backspace is the best-effort removal of n untracked layout breaks.
func (s *Session) backspace(n int) {
	for i := 0; i < n; i++ {
		if err := s.keys.Backspace(); err != nil {
			slog.Warn("could not remove layout breaks", "left", n-i, "err", err)
			return
		}
	}
}

// length is the pending ghost text length without the layout breaks.
func (s *Session) length() int {
	return max(s.remaining-LayoutBreaks, 0)
}

func (s *Session) reset() {
	s.pending = false
	s.remaining = 0
	s.snapshot = mediator.Snapshot{}
	s.since = time.Time{}
}

func validate(text string) error {
	if !utf8.ValidString(text) {
		return ErrInvalidText
	}
	return nil
}

// graphemes counts user-perceived characters: one Backspace removes one
// grapheme cluster, not one byte or rune.
func graphemes(text string) int {
	return uniseg.GraphemeClusterCount(text)
}

// logText logs a preview of ghost text at DEBUG only; it is user content.
func logText(msg, text string) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	preview := text
	if utf8.RuneCountInString(preview) > 120 {
		preview = string([]rune(preview)[:120]) + "…"
	}
	slog.Debug(msg, "preview", preview)
}
