// Package keys synthesizes hardware-level keyboard events for the focused
// application. Build constraints select the platform sink:
//
//	keys_darwin.go  — macOS via CoreGraphics (cgo), HID event tap
//	keys_kbd.go     — Linux (uinput) and Windows via micmonay/keybd_event
//	keys_other.go   — everything else, always unavailable
package keys

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnavailable means the OS event source could not be obtained.
	ErrUnavailable = errors.New("keys: event source unavailable")
	// ErrEvent means an individual key event could not be constructed or posted.
	ErrEvent = errors.New("keys: key event failed")
)

// Key is a logical key. Sinks translate it to a platform key code.
type Key int

const (
	Return Key = iota
	V
	C
	Delete
	Left
	Right
)

func (k Key) String() string {
	switch k {
	case Return:
		return "Return"
	case V:
		return "V"
	case C:
		return "C"
	case Delete:
		return "Delete"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Key(%d)", int(k))
	}
}

// Modifier is a set of modifier flags applied to both events of a press.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	// ModPrimary is Command on macOS and Control elsewhere.
	ModPrimary
)

func (m Modifier) String() string {
	switch m {
	case 0:
		return "none"
	case ModShift:
		return "shift"
	case ModPrimary:
		return "primary"
	case ModShift | ModPrimary:
		return "shift+primary"
	default:
		return fmt.Sprintf("Modifier(%d)", uint8(m))
	}
}

// Sink delivers key presses to the system input stream.
type Sink interface {
	// Name returns a human-readable name for the sink.
	Name() string

	// Press emits key-down then key-up for k with mods set on both events,
	// sleeping gap after each event.
	Press(k Key, mods Modifier, gap time.Duration) error
}

// DefaultDelay is the pause after each posted event. Input methods on macOS
// drop events that arrive faster than this; the value is tuned by hand.
const DefaultDelay = 20 * time.Millisecond

// Synthesizer emits the fixed key combinations the ghost text workflow needs.
// It holds no state beyond its sink and delay and never retries.
type Synthesizer struct {
	sink  Sink
	delay time.Duration
}

// NewSynthesizer returns a Synthesizer posting to sink with delay between events.
func NewSynthesizer(sink Sink, delay time.Duration) *Synthesizer {
	return &Synthesizer{sink: sink, delay: delay}
}

// WithDelay returns a copy of s that uses d between events.
func (s *Synthesizer) WithDelay(d time.Duration) *Synthesizer {
	return &Synthesizer{sink: s.sink, delay: d}
}

// Sink returns the underlying sink.
func (s *Synthesizer) Sink() Sink { return s.sink }

// Press emits one down/up pair.
func (s *Synthesizer) Press(k Key, mods Modifier) error {
	if err := s.sink.Press(k, mods, s.delay); err != nil {
		return fmt.Errorf("press %s (%s): %w", k, mods, err)
	}
	return nil
}

// ShiftEnter inserts a line break without submitting (Shift+Return).
func (s *Synthesizer) ShiftEnter() error { return s.Press(Return, ModShift) }

// Paste sends Primary+V.
func (s *Synthesizer) Paste() error { return s.Press(V, ModPrimary) }

// Copy sends Primary+C.
func (s *Synthesizer) Copy() error { return s.Press(C, ModPrimary) }

// Backspace deletes one character before the caret.
func (s *Synthesizer) Backspace() error { return s.Press(Delete, 0) }

// Left moves the caret left, extending the selection when shift is set.
func (s *Synthesizer) Left(shift bool) error { return s.Press(Left, shiftIf(shift)) }

// Right moves the caret right, extending the selection when shift is set.
func (s *Synthesizer) Right(shift bool) error { return s.Press(Right, shiftIf(shift)) }

func shiftIf(b bool) Modifier {
	if b {
		return ModShift
	}
	return 0
}

// New returns the platform sink, or an error wrapping ErrUnavailable when
// this build cannot synthesize events.
func New() (Sink, error) {
	return newPlatformSink()
}
